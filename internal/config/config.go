// Package config loads, validates, and persists the tunepull settings file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath is the settings file used when nothing else is specified.
const DefaultPath = "config.json"

// ValidAudioQualities lists the accepted bitrate tokens for audio_quality.
var ValidAudioQualities = []string{"64k", "128k", "192k", "256k", "320k"}

// ValidLogLevels lists the accepted log_level values (canonical form).
var ValidLogLevels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

// Config is the flat settings record persisted as config.json. Zero-valued
// optional integers mean "unset"; index values are 1-based playlist positions.
type Config struct {
	OutputDirectory       string `json:"output_directory"`
	ProxyURL              string `json:"proxy_url"`
	AudioQuality          string `json:"audio_quality"`
	LogLevel              string `json:"log_level"`
	SkipDownloaded        bool   `json:"skip_downloaded"`
	DownloadStartIndex    int    `json:"download_start_index"`
	DownloadEndIndex      int    `json:"download_end_index"`
	MaxDownloads          int    `json:"max_downloads"`
	OutputFilenameTmpl    string `json:"output_filename_template"`
	EmbedThumbnail        bool   `json:"embed_thumbnail"`
	AddMetadata           bool   `json:"add_metadata"`
	SleepIntervalSeconds  int    `json:"sleep_interval_between_videos"`
	ForceOverwrites       bool   `json:"force_overwrites"`
	DisplayProgressBar    bool   `json:"display_progress_bar"`
}

// Default returns a Config populated with the shipped defaults.
func Default() Config {
	return Config{
		OutputDirectory:    "downloaded_youtube_music",
		AudioQuality:       "320k",
		LogLevel:           "INFO",
		SkipDownloaded:     true,
		OutputFilenameTmpl: "%(playlist_index)s - %(title)s.%(ext)s",
		AddMetadata:        true,
		DisplayProgressBar: true,
	}
}

// FieldError describes one invalid setting.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConfigError is returned by Load and Validate. When validation failed it
// carries every invalid field, not just the first.
type ConfigError struct {
	Path   string
	Fields []FieldError
	Err    error
}

func (e *ConfigError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Error())
		}
		return fmt.Sprintf("invalid configuration %s: %s", e.Path, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Load reads and validates the settings file. Missing file, malformed JSON,
// and schema violations all surface as *ConfigError. Absent optional fields
// take their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ConfigError{Path: path, Err: err}
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ConfigError{Path: path, Err: fmt.Errorf("parsing JSON: %w", err)}
	}

	if err := cfg.Validate(); err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return Config{}, err
	}
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)
	return cfg, nil
}

// LoadOrInit behaves like Load, but if the file does not exist it writes the
// defaults there first so a fresh checkout works without manual setup.
func LoadOrInit(path string) (Config, bool, error) {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return Config{}, false, &ConfigError{Path: path, Err: err}
		}
		cfg := Default()
		if err := Save(cfg, path); err != nil {
			return Config{}, false, err
		}
		return cfg, true, nil
	}
	cfg, err := Load(path)
	return cfg, false, err
}

// Save writes canonical indented JSON, replacing the file atomically.
func Save(cfg Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return &ConfigError{Path: path, Err: fmt.Errorf("encoding JSON: %w", err)}
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &ConfigError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &ConfigError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}

// Validate checks every schema invariant and reports all violations at once.
func (c Config) Validate() error {
	var fields []FieldError

	if strings.TrimSpace(c.OutputDirectory) == "" {
		fields = append(fields, FieldError{"output_directory", "must not be empty"})
	}
	if c.ProxyURL != "" && !validProxyURL(c.ProxyURL) {
		fields = append(fields, FieldError{"proxy_url", fmt.Sprintf("invalid proxy URL %q (expected http/https/socks4/socks5)", c.ProxyURL)})
	}
	if !containsFold(ValidAudioQualities, c.AudioQuality) {
		fields = append(fields, FieldError{"audio_quality", fmt.Sprintf("must be one of %s", strings.Join(ValidAudioQualities, ", "))})
	}
	if !containsFold(ValidLogLevels, c.LogLevel) {
		fields = append(fields, FieldError{"log_level", fmt.Sprintf("must be one of %s", strings.Join(ValidLogLevels, ", "))})
	}
	if c.DownloadStartIndex < 0 {
		fields = append(fields, FieldError{"download_start_index", "must be non-negative"})
	}
	if c.DownloadEndIndex < 0 {
		fields = append(fields, FieldError{"download_end_index", "must be non-negative"})
	}
	if c.DownloadStartIndex > 0 && c.DownloadEndIndex > 0 && c.DownloadStartIndex > c.DownloadEndIndex {
		fields = append(fields, FieldError{"download_start_index", "must not exceed download_end_index"})
	}
	if c.MaxDownloads < 0 {
		fields = append(fields, FieldError{"max_downloads", "must be non-negative"})
	}
	if strings.TrimSpace(c.OutputFilenameTmpl) == "" {
		fields = append(fields, FieldError{"output_filename_template", "must not be empty"})
	}
	if c.SleepIntervalSeconds < 0 {
		fields = append(fields, FieldError{"sleep_interval_between_videos", "must be non-negative"})
	}

	if len(fields) > 0 {
		return &ConfigError{Fields: fields}
	}
	return nil
}

func containsFold(valid []string, value string) bool {
	for _, v := range valid {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

func validProxyURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "socks4", "socks5":
	default:
		return false
	}
	return parsed.Host != ""
}
