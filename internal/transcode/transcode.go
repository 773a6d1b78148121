// Package transcode wraps the external audio-probing and audio-encoding
// process pair used to re-encode lossless audio into FLAC.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultCompressionLevel is the fixed FLAC effort level used when none
// is configured.
const DefaultCompressionLevel = 5

// Transcoder shells out to ffprobe and ffmpeg.
type Transcoder struct {
	FFmpeg           string // encoder binary, default "ffmpeg"
	FFprobe          string // prober binary, default "ffprobe"
	CompressionLevel int
}

// New returns a Transcoder using the default tool names and effort level.
func New() *Transcoder {
	return &Transcoder{
		FFmpeg:           "ffmpeg",
		FFprobe:          "ffprobe",
		CompressionLevel: DefaultCompressionLevel,
	}
}

// Probe returns the channel count of the first audio stream in path.
func (t *Transcoder) Probe(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, t.FFprobe,
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=channels",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	channels, err := strconv.Atoi(strings.TrimSpace(stdout.String()))
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unexpected output %q", path, stdout.String())
	}
	return channels, nil
}

// Transcode re-encodes src into a FLAC file at dst and returns the
// probed channel count. The output channel count is forced to match the
// probe so the encoder can never silently renegotiate the layout; a
// file whose channels cannot be probed fails rather than encoding with
// whatever the encoder picks.
//
// The encode writes to a hidden temporary sibling and renames it into
// place, so an interrupted run never leaves a truncated file that a
// later resume would treat as complete.
func (t *Transcoder) Transcode(ctx context.Context, src, dst string) (int, error) {
	channels, err := t.Probe(ctx, src)
	if err != nil {
		return 0, err
	}

	tmp := tmpPath(dst)
	defer os.Remove(tmp) // no-op once renamed

	cmd := exec.CommandContext(ctx, t.FFmpeg,
		"-hide_banner", "-nostdin",
		"-v", "error",
		"-i", src,
		"-c:a", "flac",
		"-compression_level", strconv.Itoa(t.compressionLevel()),
		"-ac", strconv.Itoa(channels),
		"-f", "flac",
		"-y", tmp,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return channels, fmt.Errorf("ffmpeg %s: %w: %s", src, err, strings.TrimSpace(stderr.String()))
	}

	if err := os.Rename(tmp, dst); err != nil {
		return channels, fmt.Errorf("rename %s -> %s: %w", tmp, dst, err)
	}
	return channels, nil
}

func (t *Transcoder) compressionLevel() int {
	if t.CompressionLevel <= 0 {
		return DefaultCompressionLevel
	}
	return t.CompressionLevel
}

func tmpPath(dst string) string {
	dir := filepath.Dir(dst)
	base := filepath.Base(dst)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.wavmirror-tmp", base, uuid.New().String()[:8]))
}
