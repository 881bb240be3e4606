// Package http provides the HTTP client used to fetch track pages and media.
//
// The Client in this package handles:
//   - Connection retries with exponential backoff
//   - A browser User-Agent chosen once per client
//   - File downloads through a temporary file with progress tracking
//   - File size retrieval via HEAD requests
//
// Only failures to establish a connection are retried. A response with an
// error status is returned at once as a *StatusError, and a body that breaks
// off mid-transfer fails the download.
//
// # Basic Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	// Fetch a track page
//	page, err := client.GetString(ctx, "https://example.com/track/1")
//
//	// Download media with progress callback
//	n, err := client.DownloadFile(ctx, mediaURL, "/music/Album/Song.mp3", func(written, total int64) {
//	    fmt.Printf("%d / %d\n", written, total)
//	})
//
// # Timeouts
//
// The transport bounds the wait for response headers. There is no overall
// client timeout; callers bound page fetches and downloads with context
// deadlines so that slow but progressing transfers are not cut.
package http
