package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "config FILE",
		Short: "Write the effective settings to a configuration file",
		Long: `Write the settings in effect (defaults, then --config, then the
command-line flags) to FILE. The format follows the extension: .json, .toml
or .yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings(cmd)
			if err != nil {
				return err
			}
			if err := settings.Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", args[0])
			return nil
		},
	}
}
