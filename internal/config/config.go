// Package config loads the run configuration from a JSON file.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"

	"github.com/wavmirror/wavmirror/internal/filter"
)

// Sentinel errors for config loading.
var (
	ErrNotFound = errors.New("config file not found")
	ErrInvalid  = errors.New("invalid config")
)

// Defaults applied when the config file omits a key.
const (
	DefaultCSVPath          = "copy_failures.csv"
	DefaultStorageLimit     = "18T"
	DefaultWorkers          = 1
	DefaultFFmpeg           = "ffmpeg"
	DefaultFFprobe          = "ffprobe"
	DefaultCompressionLevel = 5
)

// Config is the parsed configuration file.
type Config struct {
	SourceDir        string   `mapstructure:"source_dir"`
	DestinationDir   string   `mapstructure:"destination_dir"`
	CSVFilePath      string   `mapstructure:"csv_file_path"`
	StorageLimit     string   `mapstructure:"storage_limit"`
	Workers          int      `mapstructure:"workers"`
	FFmpeg           string   `mapstructure:"ffmpeg"`
	FFprobe          string   `mapstructure:"ffprobe"`
	CompressionLevel int      `mapstructure:"compression_level"`
	Exclude          []string `mapstructure:"exclude"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("csv_file_path", DefaultCSVPath)
	v.SetDefault("storage_limit", DefaultStorageLimit)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("ffmpeg", DefaultFFmpeg)
	v.SetDefault("ffprobe", DefaultFFprobe)
	v.SetDefault("compression_level", DefaultCompressionLevel)

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("%w: source_dir is required", ErrInvalid)
	}
	if c.DestinationDir == "" {
		return fmt.Errorf("%w: destination_dir is required", ErrInvalid)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative", ErrInvalid)
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 12 {
		return fmt.Errorf("%w: compression_level must be between 0 and 12", ErrInvalid)
	}
	if _, err := c.StorageLimitBytes(); err != nil {
		return fmt.Errorf("%w: storage_limit: %v", ErrInvalid, err)
	}
	return nil
}

// StorageLimitBytes parses the storage limit into bytes. An empty or
// "0" limit means unlimited.
func (c *Config) StorageLimitBytes() (int64, error) {
	if c.StorageLimit == "" || c.StorageLimit == "0" {
		return 0, nil
	}
	return filter.ParseSize(c.StorageLimit)
}
