package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ZakiuC/song/internal/config"
	"github.com/ZakiuC/song/internal/logging"
)

// commandContext holds the persistent flags and the settings derived from
// them, shared by every subcommand.
type commandContext struct {
	configPath string
	readDir    string
	saveDir    string
	input      string
	workers    int
	logLevel   string
	logFormat  string
	verbose    bool

	settingsOnce sync.Once
	settings     *config.Settings
	settingsErr  error
}

func (c *commandContext) bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Configuration file (.json, .toml, .yaml)")
	flags.StringVarP(&c.readDir, "readDir", "t", "", "Directory holding album manifests (default \"target\")")
	flags.StringVarP(&c.saveDir, "saveDir", "s", "", "Directory receiving downloaded albums (default \"music\")")
	flags.StringVar(&c.input, "input", "", "Read the listing from a file, or - for stdin, instead of the clipboard")
	flags.IntVar(&c.workers, "workers", 0, "Tracks downloaded at the same time (default 1)")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&c.logFormat, "log-format", "", "Log format: console, json")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Show per-track progress messages")
}

// ensureSettings loads the configuration file once and applies the flags
// given on the command line on top of it.
func (c *commandContext) ensureSettings(cmd *cobra.Command) (*config.Settings, error) {
	c.settingsOnce.Do(func() {
		settings := config.DefaultSettings()
		if path := strings.TrimSpace(c.configPath); path != "" {
			loaded, err := config.Load(path)
			if err != nil {
				c.settingsErr = err
				return
			}
			settings = loaded
		}

		flags := cmd.Flags()
		if flags.Changed("readDir") {
			settings.ReadDir = c.readDir
		}
		if flags.Changed("saveDir") {
			settings.SaveDir = c.saveDir
		}
		if flags.Changed("workers") {
			settings.MaxConcurrentTracks = c.workers
		}
		if flags.Changed("log-level") {
			settings.LogLevel = c.logLevel
		}
		if flags.Changed("log-format") {
			settings.LogFormat = c.logFormat
		}

		if err := settings.Validate(); err != nil {
			c.settingsErr = err
			return
		}
		c.settings = settings
	})
	return c.settings, c.settingsErr
}

func (c *commandContext) logger(settings *config.Settings, w io.Writer) (*slog.Logger, error) {
	return logging.NewFromSettings(settings, w)
}
