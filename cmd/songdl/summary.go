package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ZakiuC/song/internal/download"
)

// printSummary writes one table row per track followed by the album totals.
func printSummary(w io.Writer, report *download.Report) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(report.Album.Title)
	tw.AppendHeader(table.Row{"#", "Title", "Status", "Size", "File / Error"})

	for _, res := range report.Results {
		size := ""
		detail := filepath.Base(res.Path)
		switch res.Status {
		case download.StatusDownloaded:
			size = humanize.IBytes(uint64(res.Bytes))
		case download.StatusFailed:
			detail = res.Err.Error()
		}
		tw.AppendRow(table.Row{strconv.Itoa(res.Index + 1), res.Track.Title, res.Status.String(), size, detail})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, WidthMax: 60},
	})

	fmt.Fprintln(w, tw.Render())
	fmt.Fprintf(w, "Complete! %d/%d tracks (%s) in %s\n",
		report.Succeeded(), len(report.Results), humanize.IBytes(uint64(report.Bytes())), report.Dir)
}
