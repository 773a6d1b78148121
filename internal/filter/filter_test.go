package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavmirror/wavmirror/internal/filter"
)

func newChain(t *testing.T, patterns ...string) *filter.Chain {
	t.Helper()
	c := filter.NewChain()
	for _, p := range patterns {
		require.NoError(t, c.Add(p))
	}
	return c
}

func TestChain_Empty(t *testing.T) {
	var nilChain *filter.Chain
	assert.True(t, nilChain.Empty())
	assert.False(t, nilChain.Excluded("anything", false))

	c := filter.NewChain()
	assert.True(t, c.Empty())
	require.NoError(t, c.Add("*.tmp"))
	assert.False(t, c.Empty())
}

func TestChain_BasenameMatch(t *testing.T) {
	c := newChain(t, "*.tmp")

	assert.True(t, c.Excluded("scratch.tmp", false))
	assert.True(t, c.Excluded("deep/nested/scratch.tmp", false))
	assert.False(t, c.Excluded("scratch.txt", false))
}

func TestChain_AnchoredMatch(t *testing.T) {
	c := newChain(t, "/build")

	assert.True(t, c.Excluded("build", true))
	assert.False(t, c.Excluded("sub/build", true))
}

func TestChain_DirOnly(t *testing.T) {
	c := newChain(t, "cache/")

	assert.True(t, c.Excluded("cache", true))
	assert.False(t, c.Excluded("cache", false))
}

func TestChain_DoubleStar(t *testing.T) {
	c := newChain(t, "raw/**/*.bin")

	assert.True(t, c.Excluded("raw/a/b/x.bin", false))
	assert.True(t, c.Excluded("raw/x.bin", false))
	assert.False(t, c.Excluded("other/x.bin", false))
}

func TestChain_InvalidPattern(t *testing.T) {
	c := filter.NewChain()
	// Unterminated character class falls through to literal quoting,
	// which always compiles; use a pattern with a bad regex escape.
	assert.NoError(t, c.Add("[ab]*.wav"))
	assert.True(t, c.Excluded("a1.wav", false))
	assert.False(t, c.Excluded("c1.wav", false))
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"100", 100},
		{"100B", 100},
		{"1K", 1024},
		{"1k", 1024},
		{"2M", 2 * 1024 * 1024},
		{"1G", 1024 * 1024 * 1024},
		{"18T", 18 * 1024 * 1024 * 1024 * 1024},
		{"7g", 7 * 1024 * 1024 * 1024},
		{" 4M ", 4 * 1024 * 1024},
	}
	for _, tt := range tests {
		got, err := filter.ParseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseSize_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "K", "1X2", "1.5K", "-2G", "99999999999999999T"} {
		_, err := filter.ParseSize(in)
		assert.Error(t, err, in)
	}
}
