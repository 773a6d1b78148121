// Package volume resolves a human-readable label for the volume that
// contains a filesystem root. Resolution is platform-specific; callers
// depend only on the Resolver capability and the best-effort fallback.
package volume

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrNoLabel indicates the platform could not determine a volume label.
var ErrNoLabel = errors.New("volume label unavailable")

// Resolver reports a human-readable label for the volume containing root.
type Resolver interface {
	Label(root string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(root string) (string, error)

func (f ResolverFunc) Label(root string) (string, error) { return f(root) }

// Detect returns the resolver for the current platform.
//
//nolint:ireturn // factory returns interface by design
func Detect() Resolver {
	return platformResolver{}
}

// Fallback derives a path-safe label from the root itself. A raw path
// contains separators and cannot name a mirror folder, so the base of
// the cleaned path is used instead.
func Fallback(root string) string {
	base := filepath.Base(filepath.Clean(root))
	if base == "." || base == string(filepath.Separator) || strings.TrimSpace(base) == "" {
		return "volume"
	}
	// Windows drive roots clean to forms like "C:"; keep the letter only.
	base = strings.TrimSuffix(base, ":")
	if base == "" {
		return "volume"
	}
	return base
}

// LabelOrFallback resolves root via r, silently degrading to Fallback
// when resolution fails. This is deliberate best-effort behavior, not
// an error path.
func LabelOrFallback(r Resolver, root string) string {
	if r != nil {
		if label, err := r.Label(root); err == nil && strings.TrimSpace(label) != "" {
			return label
		}
	}
	return Fallback(root)
}
