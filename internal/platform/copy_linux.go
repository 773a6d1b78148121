//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// CopyFile copies srcPath (size bytes) into dst, trying the most
// efficient method first: copy_file_range, then sendfile, then a
// buffered read/write loop. Unsupported-operation and cross-device
// errors fall through to the next strategy.
func CopyFile(dst *os.File, srcPath string, size int64) (CopyResult, error) {
	preallocate(dst, size)

	result, err := copyFileRange(dst, srcPath, size)
	if err == nil {
		return result, nil
	}
	if !isFallbackErr(err) {
		return result, err
	}

	result, err = copySendfile(dst, srcPath, size)
	if err == nil {
		return result, nil
	}
	if !isFallbackErr(err) {
		return result, err
	}

	return copyReadWrite(dst, srcPath)
}

func copyFileRange(dst *os.File, srcPath string, size int64) (CopyResult, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer src.Close()

	var roff, woff int64
	remaining := size
	var total int64
	for remaining > 0 {
		n, err := unix.CopyFileRange(int(src.Fd()), &roff, int(dst.Fd()), &woff, int(remaining), 0)
		if err != nil {
			if total == 0 {
				return CopyResult{}, err
			}
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		total += int64(n)
	}
	return CopyResult{BytesWritten: total, Method: CopyFileRange}, nil
}

func copySendfile(dst *os.File, srcPath string, size int64) (CopyResult, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer src.Close()

	var offset int64
	remaining := size
	var total int64
	for remaining > 0 {
		n, err := unix.Sendfile(int(dst.Fd()), int(src.Fd()), &offset, int(remaining))
		if err != nil {
			if total == 0 {
				return CopyResult{}, err
			}
			return CopyResult{BytesWritten: total, Method: Sendfile}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		total += int64(n)
	}
	return CopyResult{BytesWritten: total, Method: Sendfile}, nil
}

// preallocate attempts to reserve disk space up front. Errors are
// ignored as fallocate is not supported on all filesystems.
func preallocate(fd *os.File, size int64) {
	if size > 0 {
		_ = unix.Fallocate(int(fd.Fd()), 0, 0, size)
	}
}

// isFallbackErr reports whether err should trigger the next copy strategy.
func isFallbackErr(err error) bool {
	switch err {
	case unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP:
		return true
	}
	if e, ok := err.(*os.PathError); ok {
		return isFallbackErr(e.Err)
	}
	return false
}
