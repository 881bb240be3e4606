package listing

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ZakiuC/song/internal/model"
)

// ErrMalformedInput is returned when the listing does not start with an
// album title line followed by a blank line.
var ErrMalformedInput = errors.New("malformed listing")

// parseState is the scanner state between lines. It is a value: every step
// returns a new state.
type parseState struct {
	baseTitle string
	tune      string
}

// next folds one classified line into the state. It returns the emitted
// track, if the line completed one.
func (s parseState) next(line Line) (parseState, model.Track, bool) {
	switch line.Kind {
	case KindHeader:
		return parseState{baseTitle: line.Value}, model.Track{}, false
	case KindTune:
		return parseState{baseTitle: s.baseTitle, tune: line.Value}, model.Track{}, false
	case KindURL:
		if s.baseTitle == "" {
			// A link before any header cannot be attributed to a track.
			return s, model.Track{}, false
		}
		return s, model.NewTrack(s.baseTitle, s.tune, line.Value), true
	default:
		return s, model.Track{}, false
	}
}

// Extract parses a track listing.
//
// On malformed input it returns an album titled model.UnknownAlbum with no
// tracks and an error wrapping ErrMalformedInput. A well-formed listing
// without any attributable link returns the album with no tracks and a nil
// error; callers should check Album.Empty.
func Extract(raw string) (model.Album, error) {
	lines := splitLines(raw)

	if len(lines) < 2 || !strings.HasPrefix(lines[0], model.AlbumMarker) || lines[1] != "" {
		return model.Album{Title: model.UnknownAlbum},
			fmt.Errorf("%w: first line must be an album title starting with %s, followed by a blank line",
				ErrMalformedInput, model.AlbumMarker)
	}

	album := model.Album{Title: lines[0]}

	var state parseState
	for _, text := range lines[2:] {
		var (
			track model.Track
			ok    bool
		)
		state, track, ok = state.next(Classify(text))
		if ok {
			album.Tracks = append(album.Tracks, track)
		}
	}

	return album, nil
}

func splitLines(raw string) []string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	for i, line := range lines {
		lines[i] = norm.NFC.String(strings.TrimSpace(line))
	}
	return lines
}

// Render writes album back in listing format. Consecutive tracks sharing a
// title and tune are written under one header.
//
// Tracks loaded from a manifest have no BaseTitle; their display title is
// used as the header instead.
func Render(album model.Album) string {
	var sb strings.Builder

	sb.WriteString(album.Title)
	sb.WriteString("\n\n")

	var (
		prev   parseState
		header int
	)
	for _, track := range album.Tracks {
		cur := parseState{baseTitle: track.BaseTitle, tune: track.Tune}
		if cur.baseTitle == "" {
			cur = parseState{baseTitle: track.Title}
		}

		if header == 0 || cur != prev {
			header++
			fmt.Fprintf(&sb, "【%d. %s】\n", header, cur.baseTitle)
			if cur.tune != "" {
				sb.WriteString(cur.tune)
				sb.WriteString("\n")
			}
			prev = cur
		}

		sb.WriteString(track.URL)
		sb.WriteString("\n")
	}

	return sb.String()
}
