//go:build linux

package volume

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type platformResolver struct{}

// Label finds the filesystem label of the device mounted at (or above)
// root by matching the mount source against /dev/disk/by-label entries.
func (platformResolver) Label(root string) (string, error) {
	device, err := deviceFor(root)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir("/dev/disk/by-label")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoLabel, err)
	}

	for _, entry := range entries {
		link := filepath.Join("/dev/disk/by-label", entry.Name())
		target, err := filepath.EvalSymlinks(link)
		if err != nil {
			continue
		}
		if target == device {
			return unescapeMountField(entry.Name()), nil
		}
	}
	return "", ErrNoLabel
}

// deviceFor returns the mount source of the longest mount point that is
// a prefix of root, per /proc/self/mounts.
func deviceFor(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoLabel, err)
	}
	defer f.Close()

	var device, best string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		mountPoint := unescapeMountField(fields[1])
		if mountPoint != "/" && !strings.HasSuffix(mountPoint, "/") {
			mountPoint += "/"
		}
		if strings.HasPrefix(abs+"/", mountPoint) && len(mountPoint) > len(best) {
			best = mountPoint
			device = unescapeMountField(fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoLabel, err)
	}
	if device == "" {
		return "", ErrNoLabel
	}
	return device, nil
}

// unescapeMountField decodes the octal escapes the kernel uses for
// spaces and other special characters in mount entries.
func unescapeMountField(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			var c byte
			if _, err := fmt.Sscanf(s[i+1:i+4], "%o", &c); err == nil {
				b.WriteByte(c)
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
