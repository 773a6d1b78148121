package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Minimal(t *testing.T) {
	path := writeConfig(t, `{
		"source_dir": "/mnt/recorder",
		"destination_dir": "/srv/archive"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/mnt/recorder", cfg.SourceDir)
	assert.Equal(t, "/srv/archive", cfg.DestinationDir)
	assert.Equal(t, DefaultCSVPath, cfg.CSVFilePath)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultFFmpeg, cfg.FFmpeg)
	assert.Equal(t, DefaultFFprobe, cfg.FFprobe)
	assert.Equal(t, DefaultCompressionLevel, cfg.CompressionLevel)

	limit, err := cfg.StorageLimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(18)<<40, limit)
}

func TestLoad_FullOverride(t *testing.T) {
	path := writeConfig(t, `{
		"source_dir": "/a",
		"destination_dir": "/b",
		"csv_file_path": "/var/log/failures.csv",
		"storage_limit": "500G",
		"workers": 4,
		"ffmpeg": "/opt/ffmpeg/bin/ffmpeg",
		"ffprobe": "/opt/ffmpeg/bin/ffprobe",
		"compression_level": 8,
		"exclude": ["*.tmp", "scratch/"]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/log/failures.csv", cfg.CSVFilePath)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 8, cfg.CompressionLevel)
	assert.Equal(t, []string{"*.tmp", "scratch/"}, cfg.Exclude)

	limit, err := cfg.StorageLimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(500)<<30, limit)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"source_dir": `)
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad_MissingRequiredKeys(t *testing.T) {
	path := writeConfig(t, `{"destination_dir": "/b"}`)
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)

	path = writeConfig(t, `{"source_dir": "/a"}`)
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	base := Config{SourceDir: "/a", DestinationDir: "/b", StorageLimit: "1G"}
	assert.NoError(t, base.Validate())

	bad := base
	bad.Workers = -1
	assert.ErrorIs(t, bad.Validate(), ErrInvalid)

	bad = base
	bad.CompressionLevel = 13
	assert.ErrorIs(t, bad.Validate(), ErrInvalid)

	bad = base
	bad.StorageLimit = "lots"
	assert.ErrorIs(t, bad.Validate(), ErrInvalid)
}

func TestStorageLimitBytes_Unlimited(t *testing.T) {
	cfg := Config{StorageLimit: ""}
	n, err := cfg.StorageLimitBytes()
	require.NoError(t, err)
	assert.Zero(t, n)

	cfg.StorageLimit = "0"
	n, err = cfg.StorageLimitBytes()
	require.NoError(t, err)
	assert.Zero(t, n)
}
