package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.BackoffFactor = 0.001
	return opts
}

func TestClient_UserAgent(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.UserAgent())
		mu.Unlock()
	}))
	defer srv.Close()

	c := NewClient(testOptions())
	for range 3 {
		if _, err := c.Get(context.Background(), srv.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if c.UserAgent() == "" {
		t.Fatal("empty User-Agent")
	}
	if !slices.Contains(userAgents, c.UserAgent()) {
		t.Errorf("User-Agent %q not from pool", c.UserAgent())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Fatalf("server saw %d requests, want 3", len(seen))
	}
	for i, ua := range seen {
		if ua != c.UserAgent() {
			t.Errorf("request %d sent %q, want %q", i, ua, c.UserAgent())
		}
	}
}

func TestClient_FixedUserAgent(t *testing.T) {
	opts := testOptions()
	opts.UserAgent = "songdl-test"

	if got := NewClient(opts).UserAgent(); got != "songdl-test" {
		t.Errorf("got %q, want %q", got, "songdl-test")
	}
}

func TestClient_StatusNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"not found", http.StatusNotFound},
		{"forbidden", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewClient(testOptions()).GetString(context.Background(), srv.URL)

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected *StatusError, got %v", err)
			}
			if statusErr.Code != tt.status {
				t.Errorf("got status %d, want %d", statusErr.Code, tt.status)
			}
			if n := hits.Load(); n != 1 {
				t.Errorf("server hit %d times, want 1", n)
			}
		})
	}
}

func TestClient_ConnectionRetriesExhausted(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	tests := []struct {
		name     string
		retries  int
		attempts string
	}{
		{"no retries", 0, "giving up after 1 attempt(s)"},
		{"two retries", 2, "giving up after 3 attempt(s)"},
		{"default retries", DefaultOptions().ConnectRetries, "giving up after 4 attempt(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.ConnectRetries = tt.retries

			_, err := NewClient(opts).Get(context.Background(), "http://"+addr+"/")
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !isConnectError(err) {
				t.Errorf("error does not wrap the dial failure: %v", err)
			}
			if !strings.Contains(err.Error(), tt.attempts) {
				t.Errorf("error %q does not contain %q", err, tt.attempts)
			}
		})
	}
}

func TestClient_GetString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	got, err := NewClient(testOptions()).GetString(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "<html>ok</html>" {
		t.Errorf("got %q", got)
	}
}

func TestClient_GetFileSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("got method %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Length", "4096")
	}))
	defer srv.Close()

	size, err := NewClient(testOptions()).GetFileSize(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 4096 {
		t.Errorf("got %d, want 4096", size)
	}
}

func TestClient_DownloadFile(t *testing.T) {
	body := strings.Repeat("a", 500)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "song.mp3")

	var calls int
	var lastWritten, lastTotal int64
	n, err := NewClient(testOptions()).DownloadFile(context.Background(), srv.URL, dest, func(written, total int64) {
		calls++
		if written < lastWritten {
			t.Errorf("progress went backwards: %d after %d", written, lastWritten)
		}
		lastWritten, lastTotal = written, total
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n != 500 {
		t.Errorf("returned %d bytes, want 500", n)
	}
	if calls == 0 {
		t.Error("progress callback never called")
	}
	if lastWritten != 500 || lastTotal != 500 {
		t.Errorf("last progress %d/%d, want 500/500", lastWritten, lastTotal)
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 500 {
		t.Errorf("file has %d bytes, want 500", info.Size())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("got %d files in dir, want only the download", len(entries))
	}
}

func TestClient_DownloadFileChunks(t *testing.T) {
	body := strings.Repeat("b", 3*ChunkSize+10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	var maxStep, prev int64
	_, err := NewClient(testOptions()).DownloadFile(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x.mp3"), func(written, _ int64) {
		maxStep = max(maxStep, written-prev)
		prev = written
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if maxStep > ChunkSize {
		t.Errorf("wrote %d bytes in one step, want at most %d", maxStep, ChunkSize)
	}
	if prev != int64(len(body)) {
		t.Errorf("got %d bytes, want %d", prev, len(body))
	}
}

func TestClient_DownloadFileFailureLeavesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewClient(testOptions()).DownloadFile(context.Background(), srv.URL, dest, nil)
	if err == nil {
		t.Fatal("expected error but got none")
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "old" {
		t.Errorf("destination changed to %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("got %d files in dir, want 1", len(entries))
	}
}

func TestClient_DownloadFileTruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write([]byte("short"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := NewClient(testOptions()).DownloadFile(context.Background(), srv.URL, filepath.Join(dir, "song.mp3"), nil)
	if err == nil {
		t.Fatal("expected error but got none")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("got %d files in dir, want none", len(entries))
	}
}

func TestBackoff(t *testing.T) {
	backoff := Backoff(0.5)

	want := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
	for attempt, w := range want {
		if got := backoff(0, 0, attempt, nil); got != w {
			t.Errorf("attempt %d: got %v, want %v", attempt, got, w)
		}
	}
}

func TestIsConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"wrapped dial", &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}, true},
		{"read", &net.OpError{Op: "read", Err: errors.New("reset")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectError(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryConnectErrorsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retry, err := retryConnectErrors(ctx, nil, &net.OpError{Op: "dial", Err: errors.New("refused")})
	if retry {
		t.Error("retried after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
