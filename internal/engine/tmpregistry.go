package engine

import (
	"os"
	"sync"
)

// tmpFiles tracks in-progress temporary files so an interrupted run can
// sweep its partial output on the way out. Keys are absolute tmp paths.
var tmpFiles sync.Map

// RegisterTmp marks a temporary file as in progress.
func RegisterTmp(path string) {
	tmpFiles.Store(path, struct{}{})
}

// DeregisterTmp clears a temporary file once it has been renamed into
// place or cleaned up by its writer.
func DeregisterTmp(path string) {
	tmpFiles.Delete(path)
}

// CleanupTmpFiles removes every still-registered temporary file.
func CleanupTmpFiles() {
	tmpFiles.Range(func(key, _ any) bool {
		tmpFiles.Delete(key)
		_ = os.Remove(key.(string))
		return true
	})
}
