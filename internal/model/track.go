package model

// TitleSeparator joins a track's base title and its tune annotation.
const TitleSeparator = " | "

// Track represents a single entry of an album track listing.
//
// Title and URL are the only fields written to a manifest:
//
//	{"title": "Song A | C调", "url": "https://example.com/a"}
//
// Tracks loaded back from a manifest therefore have an empty BaseTitle and
// Tune.
type Track struct {
	// Title is the display title: BaseTitle alone, or BaseTitle and Tune
	// joined by TitleSeparator.
	Title string `json:"title"`

	// URL is the track's web page that embeds the audio source.
	URL string `json:"url"`

	// BaseTitle is the title captured from the track header line.
	BaseTitle string `json:"-"`

	// Tune is the optional key annotation, e.g. "C调".
	Tune string `json:"-"`
}

// NewTrack creates a Track, composing the display title from base and tune.
func NewTrack(base, tune, url string) Track {
	return Track{
		Title:     DisplayTitle(base, tune),
		URL:       url,
		BaseTitle: base,
		Tune:      tune,
	}
}

// DisplayTitle composes the title shown for a track.
func DisplayTitle(base, tune string) string {
	if tune == "" {
		return base
	}
	return base + TitleSeparator + tune
}
