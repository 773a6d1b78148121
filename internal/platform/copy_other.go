//go:build !linux

package platform

import "os"

// CopyFile uses the portable buffered copy on platforms without a
// zero-copy fast path.
func CopyFile(dst *os.File, srcPath string, _ int64) (CopyResult, error) {
	return copyReadWrite(dst, srcPath)
}
