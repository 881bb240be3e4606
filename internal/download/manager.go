package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/ZakiuC/song/internal/audio"
	"github.com/ZakiuC/song/internal/config"
	"github.com/ZakiuC/song/internal/http"
	ioutils "github.com/ZakiuC/song/internal/io"
	"github.com/ZakiuC/song/internal/listing"
	"github.com/ZakiuC/song/internal/logging"
	"github.com/ZakiuC/song/internal/manifest"
	"github.com/ZakiuC/song/internal/model"
	"github.com/ZakiuC/song/internal/source"
)

const (
	// LockFileName is created in every album directory while it is written.
	LockFileName = ".songdl.lock"

	// TrackExtension is the extension given to downloaded files.
	TrackExtension = ".mp3"

	// progressStep is the minimum number of bytes between two progress
	// events of one track.
	progressStep = 64 * 1024
)

var (
	// ErrDownload wraps every per-track failure.
	ErrDownload = errors.New("download failed")

	// ErrNoTracks is returned for a listing or manifest without tracks.
	ErrNoTracks = errors.New("no tracks to download")

	// ErrAlbumBusy is returned when another process holds the album lock.
	ErrAlbumBusy = errors.New("album is being downloaded by another process")
)

// Client is the network surface the Manager needs. *http.Client satisfies it.
type Client interface {
	GetString(ctx context.Context, url string) (string, error)
	GetFileSize(ctx context.Context, url string) (int64, error)
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithClient makes the Manager use c instead of building a client from the
// settings.
func WithClient(c Client) Option {
	return func(m *Manager) { m.client = c }
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Manager coordinates album downloads.
type Manager struct {
	settings *config.Settings
	logger   *slog.Logger
	tagger   *audio.Tagger
	playlist *audio.PlaylistCreator

	client     Client
	clientOnce sync.Once

	totalBytes      atomic.Int64
	receivedBytes   atomic.Int64
	totalFiles      atomic.Int32
	downloadedFiles atomic.Int32

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new download Manager. onProgress may be nil; it is
// never called concurrently.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	format, err := audio.ParsePlaylistFormat(settings.PlaylistFormat)
	if err != nil {
		format = audio.FormatM3U
	}

	m := &Manager{
		settings:   settings,
		logger:     logging.Discard(),
		tagger:     audio.NewTagger(audio.DefaultTagConfig()),
		playlist:   audio.NewPlaylistCreator(format, settings.M3UExtended),
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// session returns the HTTP client, creating it on first use.
func (m *Manager) session() Client {
	m.clientOnce.Do(func() {
		if m.client != nil {
			return
		}
		opts := m.settings.ClientOptions()
		opts.Logger = m.logger
		client := http.NewClient(opts)
		m.logger.Debug("http client ready", "user_agent", client.UserAgent(), "retries", opts.ConnectRetries)
		m.client = client
	})
	return m.client
}

// ProcessListing extracts an album from raw, saves its manifest and
// downloads it. Malformed or empty listings fail before any network
// access.
func (m *Manager) ProcessListing(ctx context.Context, raw string) (*Report, error) {
	album, _, err := m.ExtractOnly(raw)
	if err != nil {
		return nil, err
	}
	return m.DownloadAlbum(ctx, album)
}

// ExtractOnly extracts an album from raw and saves its manifest under the
// read directory. It returns the album and the manifest path.
func (m *Manager) ExtractOnly(raw string) (model.Album, string, error) {
	album, err := listing.Extract(raw)
	if err != nil {
		m.progress(ProgressEvent{Kind: EventInfo, Level: LevelError, Index: -1, Err: err, Message: fmt.Sprintf("Could not read listing: %v", err)})
		return album, "", err
	}
	if album.Empty() {
		err := fmt.Errorf("%w in %s", ErrNoTracks, album.Title)
		m.progress(ProgressEvent{Kind: EventInfo, Level: LevelError, Index: -1, Err: err, Message: fmt.Sprintf("No tracks found in %s", album.Title)})
		return album, "", err
	}

	path, err := manifest.Save(m.settings.ReadDir, album)
	if err != nil {
		return album, "", err
	}

	m.logger.Info("manifest saved", "album", album.Title, "tracks", len(album.Tracks), "path", path)
	m.progress(ProgressEvent{Kind: EventInfo, Level: LevelInfo, Index: -1, Message: fmt.Sprintf("Found album: %s (%d tracks), saved %s", album.Title, len(album.Tracks), path)})

	return album, path, nil
}

// ProcessManifests downloads every manifest in the read directory, in file
// name order. A manifest that cannot be read aborts the run before any
// download. Albums that fail as a whole are reported and skipped; their
// errors are joined into the returned error.
func (m *Manager) ProcessManifests(ctx context.Context) ([]*Report, error) {
	albums, err := manifest.LoadDir(m.settings.ReadDir)
	if err != nil {
		return nil, fmt.Errorf("load manifests: %w", err)
	}

	if len(albums) == 0 {
		m.progress(ProgressEvent{Kind: EventInfo, Level: LevelWarning, Index: -1, Message: fmt.Sprintf("No manifests in %s", m.settings.ReadDir)})
		return nil, nil
	}

	var (
		reports []*Report
		errs    []error
	)
	for _, album := range albums {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		report, err := m.DownloadAlbum(ctx, album)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			m.progress(ProgressEvent{Kind: EventInfo, Level: LevelError, Index: -1, Err: err, Message: fmt.Sprintf("Skipping %s: %v", album.Title, err)})
			errs = append(errs, fmt.Errorf("%s: %w", album.Title, err))
		}
	}

	return reports, errors.Join(errs...)
}

// DownloadAlbum downloads every track of album into its own directory under
// the save directory. Track failures are recorded in the report and do not
// stop the album; the returned error is only set when the album could not
// be started or ctx was cancelled.
func (m *Manager) DownloadAlbum(ctx context.Context, album model.Album) (*Report, error) {
	if len(album.Tracks) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTracks, album.Title)
	}

	dir := filepath.Join(m.settings.SaveDir, album.Name())
	if err := ioutils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create album directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire album lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrAlbumBusy, dir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			m.logger.Warn("failed to release album lock", "album", album.Title, "error", err)
		}
	}()

	paths := allocatePaths(dir, album.Tracks)

	m.totalFiles.Add(int32(len(album.Tracks)))
	m.logger.Info("album started", "album", album.Title, "tracks", len(album.Tracks), "dir", dir)

	client := m.session()
	resolver := source.NewResolver(client, m.settings.PageTimeoutDuration())
	results := make([]TrackResult, len(album.Tracks))

	var g errgroup.Group
	g.SetLimit(max(m.settings.MaxConcurrentTracks, 1))
	for i := range album.Tracks {
		g.Go(func() error {
			results[i] = m.downloadTrack(ctx, client, resolver, album, i, paths[i])
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{Album: album, Dir: dir, Results: results}

	if m.settings.CreatePlaylist {
		m.writePlaylist(report)
	}

	if report.Failed() == 0 {
		m.progress(ProgressEvent{Kind: EventInfo, Level: LevelSuccess, Index: -1, Message: fmt.Sprintf("Successfully downloaded album: %s", album.Title)})
	} else {
		m.progress(ProgressEvent{Kind: EventInfo, Level: LevelWarning, Index: -1, Message: fmt.Sprintf("Finished %s, %d of %d tracks failed", album.Title, report.Failed(), len(results))})
	}
	m.logger.Info("album finished", "album", album.Title, "succeeded", report.Succeeded(), "failed", report.Failed(), "bytes", report.Bytes())
	if err := report.Err(); err != nil {
		m.logger.Warn("album finished with failed tracks", "album", album.Title, "error", err)
	}

	return report, ctx.Err()
}

// allocatePaths names every track file before any download starts, so the
// names do not depend on download order.
func allocatePaths(dir string, tracks []model.Track) []string {
	alloc := ioutils.NewPathAllocator(dir, TrackExtension)
	paths := make([]string, len(tracks))
	for i, track := range tracks {
		paths[i] = alloc.Next(track.Title)
	}
	return paths
}

// GetProgress returns current download progress across all albums of this
// Manager. total only counts sizes the servers announced.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return m.receivedBytes.Load(), m.totalBytes.Load(),
		m.downloadedFiles.Load(), m.totalFiles.Load()
}

func (m *Manager) downloadTrack(ctx context.Context, client Client, resolver *source.Resolver, album model.Album, index int, path string) TrackResult {
	track := album.Tracks[index]
	res := TrackResult{Index: index, Track: track, Path: path}
	log := m.logger.With("album", album.Title, "track", track.Title, "url", track.URL)

	if err := ctx.Err(); err != nil {
		return m.fail(log, res, err)
	}

	m.progress(ProgressEvent{Kind: EventTrackStarted, Level: LevelVerbose, Index: index, Title: track.Title, Total: -1, Message: fmt.Sprintf("Downloading %s", track.Title)})

	candidates, err := resolver.Resolve(ctx, track.URL)
	if err != nil {
		return m.fail(log, res, err)
	}

	var lastErr error
	for media, err := range candidates {
		if err != nil {
			log.Warn("skipping media candidate", "error", err)
			m.progress(ProgressEvent{Kind: EventInfo, Level: LevelWarning, Index: index, Title: track.Title, Err: err, Message: fmt.Sprintf("Skipping media of %s: %v", track.Title, err)})
			lastErr = err
			continue
		}

		res.MediaURL = media.URL

		if m.settings.SkipExisting && m.existing(ctx, client, path, media.URL) {
			res.Status = StatusSkipped
			m.downloadedFiles.Add(1)
			log.Info("skipping existing file", "path", path)
			m.progress(ProgressEvent{Kind: EventTrackSkipped, Level: LevelVerbose, Index: index, Title: track.Title, Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(path))})
			return res
		}

		n, err := m.fetch(ctx, client, index, track, media.URL, path)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			log.Warn("media download failed", "media", media.URL, "error", err)
			continue
		}

		res.Status = StatusDownloaded
		res.Bytes = n
		m.downloadedFiles.Add(1)

		if m.settings.ModifyTags {
			m.tag(log, album, index, path)
		}

		log.Info("track downloaded", "path", path, "bytes", n)
		m.progress(ProgressEvent{Kind: EventTrackDone, Level: LevelVerbose, Index: index, Title: track.Title, Written: n, Total: n, Message: fmt.Sprintf("Downloaded: %s", filepath.Base(path))})
		return res
	}

	return m.fail(log, res, lastErr)
}

func (m *Manager) fail(log *slog.Logger, res TrackResult, cause error) TrackResult {
	res.Status = StatusFailed
	res.Err = fmt.Errorf("%w: %s: %w", ErrDownload, res.Track.Title, cause)

	log.Error("track failed", "error", cause)
	m.progress(ProgressEvent{Kind: EventTrackFailed, Level: LevelError, Index: res.Index, Title: res.Track.Title, Err: res.Err, Message: fmt.Sprintf("Error downloading %s: %v", res.Track.Title, cause)})
	return res
}

// fetch downloads one media URL to path, keeping the byte counters and
// emitting throttled progress events.
func (m *Manager) fetch(ctx context.Context, client Client, index int, track model.Track, mediaURL, path string) (int64, error) {
	if timeout := m.settings.DownloadTimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var (
		counted   int64
		emitted   int64
		announced int64
	)
	n, err := client.DownloadFile(ctx, mediaURL, path, func(written, total int64) {
		if announced == 0 && total > 0 {
			m.totalBytes.Add(total)
			announced = total
		}
		m.receivedBytes.Add(written - counted)
		counted = written

		if written-emitted >= progressStep || written == total {
			emitted = written
			m.progress(ProgressEvent{Kind: EventTrackProgress, Level: LevelVerbose, Index: index, Title: track.Title, Written: written, Total: total})
		}
	})
	if err != nil {
		m.receivedBytes.Add(-counted)
		m.totalBytes.Add(-announced)
		return 0, err
	}
	return n, nil
}

// existing reports whether path already holds the media at mediaURL, by
// comparing its size with the announced one.
func (m *Manager) existing(ctx context.Context, client Client, path, mediaURL string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	if timeout := m.settings.PageTimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	expected, err := client.GetFileSize(ctx, mediaURL)
	if err != nil || expected <= 0 {
		return false
	}

	diff := math.Abs(float64(info.Size()-expected)) / float64(expected)
	return diff <= m.settings.AllowedFileSizeDifference
}

func (m *Manager) tag(log *slog.Logger, album model.Album, index int, path string) {
	err := m.tagger.SaveTags(path, audio.TrackInfo{
		Title:  album.Tracks[index].Title,
		Album:  album.BareTitle(),
		Number: index + 1,
		Total:  len(album.Tracks),
	})
	if err != nil {
		log.Warn("tagging failed", "path", path, "error", err)
		m.progress(ProgressEvent{Kind: EventInfo, Level: LevelWarning, Index: index, Title: album.Tracks[index].Title, Err: err, Message: fmt.Sprintf("Error tagging %s: %v", album.Tracks[index].Title, err)})
	}
}

func (m *Manager) writePlaylist(report *Report) {
	var entries []audio.Entry
	for _, res := range report.Results {
		if res.Status != StatusFailed {
			entries = append(entries, audio.Entry{Path: res.Path, Title: res.Track.Title})
		}
	}
	if len(entries) == 0 {
		return
	}

	content := m.playlist.CreatePlaylist(report.Album.Title, entries)
	path := filepath.Join(report.Dir, report.Album.Name()+m.playlist.Format().Extension())
	if err := ioutils.WriteFileAtomic(path, []byte(content)); err != nil {
		m.logger.Warn("playlist not written", "path", path, "error", err)
		m.progress(ProgressEvent{Kind: EventInfo, Level: LevelWarning, Index: -1, Err: err, Message: fmt.Sprintf("Error creating playlist: %v", err)})
		return
	}

	m.progress(ProgressEvent{Kind: EventInfo, Level: LevelSuccess, Index: -1, Message: fmt.Sprintf("Created playlist for %s", report.Album.Title)})
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProgress(event)
}
