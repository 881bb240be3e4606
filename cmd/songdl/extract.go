package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZakiuC/song/internal/download"
	"github.com/ZakiuC/song/internal/listing"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var printListing bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Save the listing as a manifest without downloading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := ctx.ensureSettings(cmd)
			if err != nil {
				return err
			}
			raw, err := readListing(cmd, ctx.input)
			if err != nil {
				return err
			}

			console := newConsole(cmd.ErrOrStderr(), ctx.verbose, 1)
			defer console.close()

			album, path, err := download.NewManager(settings, console.handle).ExtractOnly(raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printListing {
				fmt.Fprint(out, listing.Render(album))
				return nil
			}
			fmt.Fprintf(out, "%s: %d tracks saved to %s\n", album.Title, len(album.Tracks), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&printListing, "print", false, "Print the normalized listing")

	return cmd
}
