package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.ReadDir != "target" || s.SaveDir != "music" {
		t.Errorf("got dirs %q, %q", s.ReadDir, s.SaveDir)
	}
	if s.MaxConcurrentTracks != 1 {
		t.Errorf("got %d workers, want 1", s.MaxConcurrentTracks)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}

	opts := s.ClientOptions()
	if opts.ConnectRetries != 3 || opts.BackoffFactor != 0.5 {
		t.Errorf("got retries %d factor %g", opts.ConnectRetries, opts.BackoffFactor)
	}
	if opts.ResponseHeaderTimeout != 30*time.Second {
		t.Errorf("got header timeout %v", opts.ResponseHeaderTimeout)
	}
	if s.PageTimeoutDuration() != 30*time.Second {
		t.Errorf("got page timeout %v", s.PageTimeoutDuration())
	}
	if s.DownloadTimeoutDuration() != 10*time.Minute {
		t.Errorf("got download timeout %v", s.DownloadTimeoutDuration())
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "config.json",
			content: `{"save_dir": "/srv/music", "max_concurrent_tracks": 4, "modify_tags": true}`,
		},
		{
			name:    "toml",
			file:    "config.toml",
			content: "save_dir = \"/srv/music\"\nmax_concurrent_tracks = 4\nmodify_tags = true\n",
		},
		{
			name:    "yaml",
			file:    "config.yaml",
			content: "save_dir: /srv/music\nmax_concurrent_tracks: 4\nmodify_tags: true\n",
		},
		{
			name:    "yml",
			file:    "config.yml",
			content: "save_dir: /srv/music\nmax_concurrent_tracks: 4\nmodify_tags: true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			s, err := Load(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if s.SaveDir != "/srv/music" {
				t.Errorf("got save_dir %q", s.SaveDir)
			}
			if s.MaxConcurrentTracks != 4 {
				t.Errorf("got max_concurrent_tracks %d", s.MaxConcurrentTracks)
			}
			if !s.ModifyTags {
				t.Error("modify_tags not set")
			}
			// Untouched keys keep defaults.
			if s.ReadDir != "target" || s.ConnectRetries != 3 {
				t.Errorf("defaults lost: read_dir %q, connect_retries %d", s.ReadDir, s.ConnectRetries)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *s != *DefaultSettings() {
		t.Error("missing file did not yield defaults")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad json", "c.json", `{"save_dir": `},
		{"bad toml", "c.toml", "save_dir = "},
		{"zero workers", "c.json", `{"max_concurrent_tracks": 0}`},
		{"bad playlist format", "c.yaml", "playlist_format: zpl\n"},
		{"negative retries", "c.toml", "connect_retries = -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".toml", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "config"+ext)

			want := DefaultSettings()
			want.SaveDir = "/tmp/out"
			want.CreatePlaylist = true
			want.PlaylistFormat = "pls"
			want.DownloadTimeout = 120

			if err := want.Save(path); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if *got != *want {
				t.Errorf("got %+v, want %+v", *got, *want)
			}
		})
	}
}
