// Command songdl-tui is the interactive front end of songdl. The editor is
// prefilled with the clipboard contents.
package main

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/ZakiuC/song/internal/config"
	"github.com/ZakiuC/song/internal/logging"
	"github.com/ZakiuC/song/internal/tui"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var configPath, logFile string

	cmd := &cobra.Command{
		Use:           "songdl-tui",
		Short:         "Paste an album listing and download its tracks",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings := config.DefaultSettings()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				settings = loaded
			}

			// An unreadable clipboard just leaves the editor empty.
			prefill, _ := clipboard.ReadAll()
			opts := tui.Options{Prefill: prefill}

			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()

				logger, err := logging.NewFromSettings(settings, f)
				if err != nil {
					return err
				}
				opts.Logger = logger
			}

			return tui.Run(settings, opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Configuration file (.json, .toml, .yaml)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Append logs to this file")
	return cmd
}
