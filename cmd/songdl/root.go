package main

import (
	"github.com/spf13/cobra"

	"github.com/ZakiuC/song/internal/download"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "songdl",
		Short: "Download the tracks of an album listing",
		Long: `Read an album track listing from the clipboard, save it as a JSON
manifest and download the audio of every track.

The listing starts with the album title (beginning with 《), then a blank
line, then track headers such as 【1. Title】, optional key lines such as
C调, and the track page links.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := ctx.ensureSettings(cmd)
			if err != nil {
				return err
			}
			raw, err := readListing(cmd, ctx.input)
			if err != nil {
				return err
			}

			logger, err := ctx.logger(settings, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			console := newConsole(cmd.ErrOrStderr(), ctx.verbose, settings.MaxConcurrentTracks)
			manager := download.NewManager(settings, console.handle, download.WithLogger(logger))

			report, err := manager.ProcessListing(cmd.Context(), raw)
			console.close()
			if report != nil {
				printSummary(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	ctx.bindFlags(rootCmd)

	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newBatchCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
