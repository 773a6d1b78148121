package filter

import (
	"regexp"
	"strings"
)

// Chain holds an ordered list of exclude patterns matched against
// source-relative paths.
type Chain struct {
	patterns []*compiledPattern
}

// NewChain creates an empty exclude chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add compiles a pattern and appends it to the chain.
func (c *Chain) Add(pattern string) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.patterns = append(c.patterns, cp)
	return nil
}

// Empty reports whether the chain has no patterns.
func (c *Chain) Empty() bool {
	return c == nil || len(c.patterns) == 0
}

// Excluded reports whether relPath matches any exclude pattern.
// relPath is relative to the source root, isDir indicates directories.
func (c *Chain) Excluded(relPath string, isDir bool) bool {
	if c == nil {
		return false
	}
	for _, cp := range c.patterns {
		if cp.match(relPath, isDir) {
			return true
		}
	}
	return false
}

// compiledPattern is a compiled glob pattern that can match paths.
type compiledPattern struct {
	re       *regexp.Regexp
	original string
	anchored bool // pattern contains or starts with /
	dirOnly  bool // pattern ends with /
}

// compilePattern converts an rsync-style glob pattern into a compiled matcher.
func compilePattern(pattern string) (*compiledPattern, error) {
	cp := &compiledPattern{original: pattern}

	// Trailing / means directory-only.
	if strings.HasSuffix(pattern, "/") {
		cp.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	// A leading / anchors the pattern to the root; any other / in the
	// pattern anchors it too, per rsync rules.
	if strings.HasPrefix(pattern, "/") {
		cp.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	} else if strings.Contains(pattern, "/") {
		cp.anchored = true
	}

	reStr := globToRegex(pattern)
	if cp.anchored {
		reStr = "^" + reStr + "$"
	} else {
		// Match against basename or any path suffix.
		reStr = "(^|/)" + reStr + "$"
	}

	re, err := regexp.Compile(reStr)
	if err != nil {
		return nil, err
	}
	cp.re = re
	return cp, nil
}

// match tests whether a relative path matches this pattern.
func (cp *compiledPattern) match(relPath string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	return cp.re.MatchString(relPath)
}

// globToRegex converts a glob pattern to a regex string.
func globToRegex(pattern string) string {
	var b strings.Builder
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				// ** matches anything including /
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					b.WriteString("(.*/)?")
					i += 3
				} else {
					b.WriteString(".*")
					i += 2
				}
			} else {
				// * matches anything except /
				b.WriteString("[^/]*")
				i++
			}
		case '?':
			b.WriteString("[^/]")
			i++
		case '[':
			// Character class — pass through to regex.
			j := i + 1
			if j < len(pattern) && pattern[j] == '!' {
				j++
			}
			if j < len(pattern) && pattern[j] == ']' {
				j++
			}
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j < len(pattern) {
				cls := pattern[i+1 : j]
				if strings.HasPrefix(cls, "!") {
					cls = "^" + cls[1:]
				}
				b.WriteString("[" + cls + "]")
				i = j + 1
			} else {
				b.WriteString(regexp.QuoteMeta(string(c)))
				i++
			}
		case '.', '(', ')', '+', '{', '}', '^', '$', '|', '\\':
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}
