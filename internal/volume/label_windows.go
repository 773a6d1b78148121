//go:build windows

package volume

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/windows"
)

type platformResolver struct{}

// Label queries the volume name of the drive containing root via
// GetVolumeInformation.
func (platformResolver) Label(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	drive := filepath.VolumeName(abs)
	if drive == "" {
		return "", ErrNoLabel
	}

	rootPath, err := windows.UTF16PtrFromString(drive + `\`)
	if err != nil {
		return "", err
	}

	name := make([]uint16, windows.MAX_PATH+1)
	err = windows.GetVolumeInformation(
		rootPath,
		&name[0], uint32(len(name)),
		nil, nil, nil,
		nil, 0,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoLabel, err)
	}

	label := windows.UTF16ToString(name)
	if label == "" {
		return "", ErrNoLabel
	}
	return label, nil
}
