package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wavmirror/wavmirror/internal/stats"
)

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0 B/s", FormatRate(0))
	assert.Equal(t, "0 B/s", FormatRate(-5))
	assert.Equal(t, "5.00 B/s", FormatRate(5))
	assert.Equal(t, "50.0 KB/s", FormatRate(50*1024))
	assert.Equal(t, "500 MB/s", FormatRate(500*1024*1024))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1,000", FormatCount(1000))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "-1,000", FormatCount(-1000))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "3m 05s", FormatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2h 00m 01s", FormatDuration(2*time.Hour+time.Second))
}

func TestCompletionSummary(t *testing.T) {
	snap := stats.Snapshot{
		FilesCopied:     48917,
		FilesTranscoded: 312,
		FilesSkipped:    4,
		BytesCopied:     2 << 30,
		Elapsed:         3*time.Minute + 17*time.Second,
	}
	s := completionSummary(snap)
	assert.Contains(t, s, "done ✓")
	assert.Contains(t, s, "copied 48,917")
	assert.Contains(t, s, "converted 312")
	assert.Contains(t, s, "time 3m 17s")
	assert.Contains(t, s, "errors 0")

	snap.FilesFailed = 2
	s = completionSummary(snap)
	assert.Contains(t, s, "done ✗")
	assert.Contains(t, s, "errors 2")
}
