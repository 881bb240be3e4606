package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/ZakiuC/song/internal/download"
)

// console renders manager events on a terminal. When tracks download one at
// a time on a TTY, each track gets a progress bar. Otherwise only messages
// are printed, and only with --verbose or at warning level and above.
type console struct {
	out     io.Writer
	verbose bool

	// bars is nil when progress bars are off. Keyed by track index.
	bars map[int]*progressbar.ProgressBar
}

func newConsole(out io.Writer, verbose bool, workers int) *console {
	c := &console{out: out, verbose: verbose}
	if workers <= 1 && isTerminal(out) {
		c.bars = make(map[int]*progressbar.ProgressBar)
	}
	return c
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (c *console) handle(event download.ProgressEvent) {
	switch event.Kind {
	case download.EventTrackStarted:
		if c.bars != nil {
			c.startBar(event)
			return
		}
	case download.EventTrackProgress:
		if bar := c.bars[event.Index]; bar != nil {
			if event.Total > 0 && bar.GetMax64() != event.Total {
				bar.ChangeMax64(event.Total)
			}
			_ = bar.Set64(event.Written)
			if event.Written == event.Total {
				c.finishBar(event.Index)
			}
		}
		return
	case download.EventTrackDone, download.EventTrackSkipped, download.EventTrackFailed:
		c.finishBar(event.Index)
	}

	c.print(event)
}

func (c *console) print(event download.ProgressEvent) {
	if event.Message == "" {
		return
	}
	if event.Level == download.LevelVerbose && !c.verbose {
		return
	}

	prefix := "   "
	switch event.Level {
	case download.LevelError:
		prefix = "✗  "
	case download.LevelWarning:
		prefix = "!  "
	case download.LevelSuccess:
		prefix = "✓  "
	case download.LevelInfo:
		prefix = "·  "
	}
	fmt.Fprintln(c.out, prefix+event.Message)
}

func (c *console) startBar(event download.ProgressEvent) {
	c.finishBar(event.Index)
	c.bars[event.Index] = progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(fmt.Sprintf("[%d] %s", event.Index+1, event.Title)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (c *console) finishBar(index int) {
	bar, ok := c.bars[index]
	if !ok {
		return
	}
	_ = bar.Finish()
	delete(c.bars, index)
}

// close clears the bars left behind by interrupted tracks.
func (c *console) close() {
	for index := range c.bars {
		c.finishBar(index)
	}
}
