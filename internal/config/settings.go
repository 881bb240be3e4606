package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ZakiuC/song/internal/http"
)

// Settings holds all configuration options.
type Settings struct {
	// Paths
	ReadDir string `json:"read_dir" toml:"read_dir" yaml:"read_dir"`
	SaveDir string `json:"save_dir" toml:"save_dir" yaml:"save_dir"`

	// Download settings
	MaxConcurrentTracks       int     `json:"max_concurrent_tracks" toml:"max_concurrent_tracks" yaml:"max_concurrent_tracks"`
	ConnectRetries            int     `json:"connect_retries" toml:"connect_retries" yaml:"connect_retries"`
	RetryBackoffFactor        float64 `json:"retry_backoff_factor" toml:"retry_backoff_factor" yaml:"retry_backoff_factor"`
	ResponseHeaderTimeout     float64 `json:"response_header_timeout" toml:"response_header_timeout" yaml:"response_header_timeout"` // seconds
	PageTimeout               float64 `json:"page_timeout" toml:"page_timeout" yaml:"page_timeout"`                                  // seconds
	DownloadTimeout           float64 `json:"download_timeout" toml:"download_timeout" yaml:"download_timeout"`                      // seconds
	UserAgent                 string  `json:"user_agent" toml:"user_agent" yaml:"user_agent"`
	SkipExisting              bool    `json:"skip_existing" toml:"skip_existing" yaml:"skip_existing"`
	AllowedFileSizeDifference float64 `json:"allowed_file_size_difference" toml:"allowed_file_size_difference" yaml:"allowed_file_size_difference"`

	// Tag settings
	ModifyTags bool `json:"modify_tags" toml:"modify_tags" yaml:"modify_tags"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist" toml:"create_playlist" yaml:"create_playlist"`
	PlaylistFormat string `json:"playlist_format" toml:"playlist_format" yaml:"playlist_format"` // m3u, pls, wpl
	M3UExtended    bool   `json:"m3u_extended" toml:"m3u_extended" yaml:"m3u_extended"`

	// Logging
	LogLevel  string `json:"log_level" toml:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" toml:"log_format" yaml:"log_format"` // console, json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		ReadDir: "target",
		SaveDir: "music",

		MaxConcurrentTracks:       1,
		ConnectRetries:            3,
		RetryBackoffFactor:        0.5,
		ResponseHeaderTimeout:     30,
		PageTimeout:               30,
		DownloadTimeout:           600,
		SkipExisting:              false,
		AllowedFileSizeDifference: 0.05,

		ModifyTags: false,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		LogLevel:  "info",
		LogFormat: "console",
	}
}

type codec struct {
	marshal   func(v any) ([]byte, error)
	unmarshal func(data []byte, v any) error
}

var (
	jsonCodec = codec{
		marshal:   func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") },
		unmarshal: json.Unmarshal,
	}
	tomlCodec = codec{marshal: toml.Marshal, unmarshal: toml.Unmarshal}
	yamlCodec = codec{marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}
)

// codecFor picks the file format from the extension. Unknown extensions
// are read as JSON.
func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return tomlCodec
	case ".yaml", ".yml":
		return yamlCodec
	default:
		return jsonCodec
	}
}

// Load reads settings from a JSON, TOML or YAML file, chosen by extension.
// Keys missing from the file keep their defaults; a missing file yields the
// defaults.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return nil, err
	}

	if err := codecFor(path).unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to path in the format its extension names.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := codecFor(path).marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting that is out of range.
func (s *Settings) Validate() error {
	switch {
	case s.ReadDir == "":
		return errors.New("read_dir must not be empty")
	case s.SaveDir == "":
		return errors.New("save_dir must not be empty")
	case s.MaxConcurrentTracks < 1:
		return fmt.Errorf("max_concurrent_tracks must be at least 1, got %d", s.MaxConcurrentTracks)
	case s.ConnectRetries < 0:
		return fmt.Errorf("connect_retries must not be negative, got %d", s.ConnectRetries)
	case s.RetryBackoffFactor < 0:
		return fmt.Errorf("retry_backoff_factor must not be negative, got %g", s.RetryBackoffFactor)
	case s.AllowedFileSizeDifference < 0:
		return fmt.Errorf("allowed_file_size_difference must not be negative, got %g", s.AllowedFileSizeDifference)
	}

	switch s.PlaylistFormat {
	case "m3u", "pls", "wpl":
	default:
		return fmt.Errorf("playlist_format must be m3u, pls or wpl, got %q", s.PlaylistFormat)
	}

	return nil
}

// ClientOptions converts settings to HTTP client options.
func (s *Settings) ClientOptions() http.Options {
	return http.Options{
		ConnectRetries:        s.ConnectRetries,
		BackoffFactor:         s.RetryBackoffFactor,
		ResponseHeaderTimeout: seconds(s.ResponseHeaderTimeout),
		UserAgent:             s.UserAgent,
	}
}

// PageTimeoutDuration bounds a single track page fetch.
func (s *Settings) PageTimeoutDuration() time.Duration {
	return seconds(s.PageTimeout)
}

// DownloadTimeoutDuration bounds a single media download.
func (s *Settings) DownloadTimeoutDuration() time.Duration {
	return seconds(s.DownloadTimeout)
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
