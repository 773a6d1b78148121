package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wavmirror/wavmirror/internal/volume"
)

// Mode says whether this run continues a prior interrupted mirror of
// the same source drive.
type Mode int

const (
	Fresh Mode = iota
	Resume
)

func (m Mode) String() string {
	if m == Resume {
		return "resume"
	}
	return "fresh"
}

// DetectMode prepares dstRoot and the drive-labeled mirror folder under
// it, and reports whether a prior run already created that folder.
// Directory creation failure is fatal: the run must abort before any
// file is processed.
func DetectMode(srcRoot, dstRoot string, resolver volume.Resolver) (Mode, string, error) {
	if err := os.MkdirAll(dstRoot, 0o755); err != nil {
		return Fresh, "", fmt.Errorf("create destination %s: %w", dstRoot, err)
	}

	label := volume.LabelOrFallback(resolver, srcRoot)
	mirror := filepath.Join(dstRoot, label)

	if info, err := os.Stat(mirror); err == nil {
		if !info.IsDir() {
			return Fresh, "", fmt.Errorf("mirror folder %s exists and is not a directory", mirror)
		}
		return Resume, mirror, nil
	}

	if err := os.MkdirAll(mirror, 0o755); err != nil {
		return Fresh, "", fmt.Errorf("create mirror folder %s: %w", mirror, err)
	}
	return Fresh, mirror, nil
}
