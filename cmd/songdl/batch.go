package main

import (
	"github.com/spf13/cobra"

	"github.com/ZakiuC/song/internal/download"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Download every manifest in the read directory",
		Long: `Download every *.json manifest in the read directory. Each manifest
is downloaded into a folder of the save directory named after the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := ctx.ensureSettings(cmd)
			if err != nil {
				return err
			}

			logger, err := ctx.logger(settings, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			console := newConsole(cmd.ErrOrStderr(), ctx.verbose, settings.MaxConcurrentTracks)
			manager := download.NewManager(settings, console.handle, download.WithLogger(logger))

			reports, err := manager.ProcessManifests(cmd.Context())
			console.close()
			for _, report := range reports {
				printSummary(cmd.OutOrStdout(), report)
			}
			return err
		},
	}
}
