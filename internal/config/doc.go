// Package config provides configuration management for songdl.
//
// This package handles:
//   - Loading and saving settings as JSON, TOML or YAML
//   - Default configuration values
//   - Conversion to HTTP client options and timeouts
//
// # Loading from File
//
//	settings, err := config.Load("songdl.toml")
//	if err != nil {
//	    // Missing files yield defaults; this is a parse or range error
//	}
//
// The format follows the extension: .toml, .yaml or .yml; anything else is
// read as JSON. Keys absent from the file keep their defaults.
//
// # Saving Settings
//
//	settings.SaveDir = "/srv/music"
//	err := settings.Save("songdl.yaml")
//
// Timeouts are stored in seconds.
package config
