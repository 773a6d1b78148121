//go:build !linux && !darwin && !windows

package volume

type platformResolver struct{}

// Label is unsupported on this platform; callers fall back to a label
// derived from the root path.
func (platformResolver) Label(string) (string, error) {
	return "", ErrNoLabel
}
