package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseSize parses a human-readable byte count such as "500G" or "18T"
// into bytes. Suffixes are powers of 1024 (case-insensitive B/K/M/G/T);
// a bare integer is bytes.
func ParseSize(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty size string")
	}

	shift := 0
	num := trimmed
	switch trimmed[len(trimmed)-1] {
	case 'b', 'B':
		num = trimmed[:len(trimmed)-1]
	case 'k', 'K':
		shift, num = 10, trimmed[:len(trimmed)-1]
	case 'm', 'M':
		shift, num = 20, trimmed[:len(trimmed)-1]
	case 'g', 'G':
		shift, num = 30, trimmed[:len(trimmed)-1]
	case 't', 'T':
		shift, num = 40, trimmed[:len(trimmed)-1]
	}

	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	if shift > 0 && n > math.MaxInt64>>shift {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return n << shift, nil
}
