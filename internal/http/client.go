package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	ioutils "github.com/ZakiuC/song/internal/io"
)

// ChunkSize is the read size used when streaming a download to disk.
const ChunkSize = 1024

// userAgents is the pool a client picks its identity from.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
}

// Options configures a Client.
type Options struct {
	// ConnectRetries is how many times a request is retried after a
	// connection failure. Zero disables retries.
	ConnectRetries int

	// BackoffFactor scales the wait between retries, in seconds. The n-th
	// retry (starting at zero) waits BackoffFactor * 2^n seconds.
	BackoffFactor float64

	// ResponseHeaderTimeout bounds the wait for response headers after the
	// request is written. Zero means no limit.
	ResponseHeaderTimeout time.Duration

	// UserAgent fixes the User-Agent header. Empty picks one at random.
	UserAgent string

	// Logger receives retry diagnostics. Nil disables them.
	Logger *slog.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ConnectRetries:        3,
		BackoffFactor:         0.5,
		ResponseHeaderTimeout: 30 * time.Second,
	}
}

// StatusError is returned when a server answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.Code, http.StatusText(e.Code), e.URL)
}

// Client wraps HTTP operations with retry and identity configuration.
//
// A Client is safe for concurrent use. Its User-Agent is fixed for its
// lifetime, so every request of one album run looks like the same browser.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client.
func NewClient(opts Options) *Client {
	transport := cleanhttp.DefaultPooledTransport()
	transport.ResponseHeaderTimeout = opts.ResponseHeaderTimeout

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: transport}
	rc.RetryMax = max(opts.ConnectRetries, 0)
	rc.Backoff = Backoff(opts.BackoffFactor)
	rc.CheckRetry = retryConnectErrors
	rc.Logger = nil
	if opts.Logger != nil {
		rc.Logger = opts.Logger
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = userAgents[rand.IntN(len(userAgents))]
	}

	return &Client{
		httpClient: rc.StandardClient(),
		userAgent:  ua,
	}
}

// UserAgent returns the User-Agent sent with every request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Backoff returns a retry wait function growing as factor * 2^attempt
// seconds. The min and max bounds of the retry client are ignored.
func Backoff(factor float64) retryablehttp.Backoff {
	return func(_, _ time.Duration, attempt int, _ *http.Response) time.Duration {
		return time.Duration(factor * math.Pow(2, float64(attempt)) * float64(time.Second))
	}
}

// retryConnectErrors retries only requests that never reached the server.
func retryConnectErrors(ctx context.Context, _ *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return isConnectError(err), nil
}

func isConnectError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// ProgressWriter wraps a writer to track download progress.
//
// OnUpdate, if set, receives the cumulative bytes written and the expected
// total after every Write. Total is -1 when the size is unknown.
type ProgressWriter struct {
	Writer   io.Writer
	Total    int64
	Written  int64
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: url}
	}

	return resp, nil
}

// Get performs a GET request and returns the response body as bytes.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// GetString performs a GET request and returns the response body as a string.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetFileSize returns the size of the resource at url via a HEAD request.
//
// It fails when the server sends no Content-Length.
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}

	return resp.ContentLength, nil
}

// DownloadFile streams url to destPath and returns the number of bytes
// written.
//
// The body is written to a temporary file next to destPath, which replaces
// destPath only once the whole body arrived. On failure the temporary file
// is removed and destPath is left untouched. onProgress may be nil.
//
// Example:
//
//	n, err := client.DownloadFile(ctx, mediaURL, "/music/song.mp3", func(written, total int64) {
//	    if total > 0 {
//	        fmt.Printf("%.1f%%\r", float64(written)/float64(total)*100)
//	    }
//	})
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	tmp := ioutils.TempPath(destPath)
	file, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}

	pw := &ProgressWriter{
		Writer:   file,
		Total:    resp.ContentLength,
		OnUpdate: onProgress,
	}

	written, err := copyChunks(pw, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp, destPath)
	}
	if err != nil {
		os.Remove(tmp)
		return written, err
	}

	return written, nil
}

func copyChunks(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, ChunkSize)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			w, err := dst.Write(buf[:n])
			written += int64(w)
			if err != nil {
				return written, err
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
