package download

import (
	"errors"

	"github.com/ZakiuC/song/internal/model"
)

// TrackStatus is the outcome of one track.
type TrackStatus int

const (
	StatusFailed TrackStatus = iota
	StatusDownloaded
	StatusSkipped
)

func (s TrackStatus) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// TrackResult records what happened to one track.
type TrackResult struct {
	Index    int
	Track    model.Track
	Path     string
	MediaURL string
	Status   TrackStatus
	Bytes    int64
	Err      error
}

// Report summarizes one album run. Results are in listing order.
type Report struct {
	Album   model.Album
	Dir     string
	Results []TrackResult
}

// Succeeded returns the number of tracks downloaded or already present.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Status != StatusFailed {
			n++
		}
	}
	return n
}

// Failed returns the number of tracks that could not be downloaded.
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Bytes returns the number of bytes written in this run.
func (r *Report) Bytes() int64 {
	var n int64
	for _, res := range r.Results {
		n += res.Bytes
	}
	return n
}

// Err joins the errors of all failed tracks, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}
