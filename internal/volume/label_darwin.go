//go:build darwin

package volume

import (
	"path/filepath"
	"strings"
)

type platformResolver struct{}

// Label reports the volume name for roots mounted under /Volumes.
// Anything else (the boot volume included) has no separate label here.
func (platformResolver) Label(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	rest, ok := strings.CutPrefix(abs, "/Volumes/")
	if !ok {
		return "", ErrNoLabel
	}
	name, _, _ := strings.Cut(rest, "/")
	if name == "" {
		return "", ErrNoLabel
	}
	return name, nil
}
