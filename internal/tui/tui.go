// Package tui provides a Bubble Tea terminal user interface for songdl.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ZakiuC/song/internal/config"
	"github.com/ZakiuC/song/internal/download"
	"github.com/ZakiuC/song/internal/listing"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is how many log lines the download view keeps.
const maxLogs = 10

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// preview is what the listing in the editor currently parses to.
type preview struct {
	title   string
	tracks  int
	headers int
	links   int
	err     error
}

func newPreview(raw string) preview {
	var p preview
	for _, line := range strings.Split(raw, "\n") {
		switch listing.Classify(strings.TrimSpace(line)).Kind {
		case listing.KindHeader:
			p.headers++
		case listing.KindURL:
			p.links++
		}
	}

	album, err := listing.Extract(raw)
	p.title = album.Title
	p.tracks = len(album.Tracks)
	switch {
	case err != nil:
		p.err = err
	case album.Empty():
		p.err = download.ErrNoTracks
	}
	return p
}

// Options configures the initial model.
type Options struct {
	// Prefill is put into the editor, typically the clipboard contents.
	Prefill string

	// Logger receives the manager's logs. The screen belongs to the UI, so
	// nil discards them.
	Logger *slog.Logger
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	input    textarea.Model
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logger   *slog.Logger
	preview  preview
	logs     []LogEntry
	album    string
	report   *download.Report
	err      error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent

	// Download progress
	totalFiles      int32
	downloadedFiles int32
	totalBytes      int64
	receivedBytes   int64

	// Options
	playlist bool
	tags     bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil settings uses the defaults.
func NewModel(settings *config.Settings, opts Options) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ta := textarea.New()
	ta.Placeholder = "《Album》\n\n【1. Title】\nC调\nhttps://example.com/track/1"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(70)
	ta.SetHeight(12)
	ta.SetValue(opts.Prefill)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateInput,
		input:    ta,
		spinner:  sp,
		progress: prog,
		settings: settings,
		logger:   opts.Logger,
		preview:  newPreview(opts.Prefill),
		ctx:      ctx,
		cancel:   cancel,
		playlist: settings.CreatePlaylist,
		tags:     settings.ModifyTags,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when the manager reports an event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// DownloadDoneMsg is sent when the album run ends.
	DownloadDoneMsg struct {
		Report *download.Report
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		m.input.SetWidth(min(max(msg.Width-4, 30), 100))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateInput:
				return m, tea.Quit
			case StateDownloading:
				m.cancel()
			}
			return m, nil

		case "ctrl+s":
			if m.state == StateInput {
				return m.start()
			}
			return m, nil

		case "ctrl+l":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}
			return m, nil

		case "ctrl+g":
			if m.state == StateInput {
				m.tags = !m.tags
			}
			return m, nil

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				return m.reset(), textarea.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case DownloadDoneMsg:
		m.pollProgress()
		m.report = msg.Report
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			m.pollProgress()
			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.downloadedFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.preview = newPreview(m.input.Value())
	}

	return m, tea.Batch(cmds...)
}

// start validates the listing and launches the download in the background.
// An unusable listing keeps the editor open.
func (m Model) start() (tea.Model, tea.Cmd) {
	m.preview = newPreview(m.input.Value())
	if m.preview.err != nil {
		return m, nil
	}

	settings := *m.settings
	settings.CreatePlaylist = m.playlist
	settings.ModifyTags = m.tags

	m.events = make(chan download.ProgressEvent, 64)
	var managerOpts []download.Option
	if m.logger != nil {
		managerOpts = append(managerOpts, download.WithLogger(m.logger))
	}
	m.manager = download.NewManager(&settings, forwardEvents(m.ctx, m.events), managerOpts...)
	m.album = m.preview.title
	m.state = StateDownloading
	m.input.Blur()

	return m, tea.Batch(
		runDownload(m.ctx, m.manager, m.events, m.input.Value()),
		waitForEvent(m.events),
		tickProgress(),
		m.spinner.Tick,
	)
}

func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.album = ""
	m.report = nil
	m.err = nil
	m.downloadedFiles = 0
	m.totalFiles = 0
	m.receivedBytes = 0
	m.totalBytes = 0
	m.manager = nil
	m.events = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.input.SetValue("")
	m.input.Focus()
	m.preview = newPreview("")
	return m
}

func (m *Model) pollProgress() {
	if m.manager == nil {
		return
	}
	m.receivedBytes, m.totalBytes, m.downloadedFiles, m.totalFiles = m.manager.GetProgress()
}

// forwardEvents passes manager events to the UI. Byte progress is left to
// polling, so the channel only carries messages.
func forwardEvents(ctx context.Context, ch chan<- download.ProgressEvent) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		if event.Kind == download.EventTrackProgress || event.Message == "" {
			return
		}
		select {
		case ch <- event:
		case <-ctx.Done():
		}
	}
}

// waitForEvent returns a command delivering the next manager event.
func waitForEvent(ch <-chan download.ProgressEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// runDownload processes the listing and closes events once the manager has
// stopped reporting.
func runDownload(ctx context.Context, manager *download.Manager, events chan download.ProgressEvent, raw string) tea.Cmd {
	return func() tea.Msg {
		report, err := manager.ProcessListing(ctx, raw)
		close(events)
		return DownloadDoneMsg{Report: report, Err: err}
	}
}

// tickProgress returns a command to tick progress updates.
func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♪ songdl"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download the tracks of an album listing"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Paste the album listing:"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.viewPreview())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+l)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s Write ID3 tags (ctrl+g)\n", checkbox(m.tags))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+o)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Manifests: %s · Downloads: %s", m.settings.ReadDir, m.settings.SaveDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewPreview() string {
	p := m.preview
	if errors.Is(p.err, listing.ErrMalformedInput) {
		return warningStyle.Render("! First line must be the album title starting with 《, followed by a blank line")
	}

	counts := fmt.Sprintf("%d headers · %d links · %d tracks", p.headers, p.links, p.tracks)
	if p.err != nil {
		return warningStyle.Render(fmt.Sprintf("! %s: no track links under a header (%s)", p.title, counts))
	}
	return successStyle.Render("✓ ") + albumStyle.Render(p.title) + dimStyle.Render(" "+counts)
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(albumStyle.Render(m.album))
	b.WriteString("\n\n")

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.downloadedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %s",
		m.downloadedFiles,
		m.totalFiles,
		humanize.IBytes(uint64(max(m.receivedBytes, 0))),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	summary := "✨ Download Complete!\n\n"
	if r := m.report; r != nil {
		summary += fmt.Sprintf(
			"Album: %s\nTracks: %d/%d\nSize: %s\nFolder: %s",
			r.Album.Title,
			r.Succeeded(),
			len(r.Results),
			humanize.IBytes(uint64(r.Bytes())),
			r.Dir,
		)
	}
	b.WriteString(boxStyle.Render(summary))
	b.WriteString("\n")

	if m.report != nil && m.report.Failed() > 0 {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Failed tracks:"))
		b.WriteString("\n")
		for _, res := range m.report.Results {
			if res.Status == download.StatusFailed {
				b.WriteString(errorStyle.Render(fmt.Sprintf("  ✗ %d. %s", res.Index+1, res.Track.Title)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s\n", m.err.Error())
	}
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "ctrl+s: start • ctrl+l: playlist • ctrl+g: tags • ctrl+o: verbose • esc: quit"
	case StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings, opts Options) error {
	m := NewModel(settings, opts)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
