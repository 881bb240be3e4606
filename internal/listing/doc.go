// Package listing turns a loosely formatted album track listing into an
// album title and an ordered list of tracks.
//
// # Input Format
//
// The first line is the album title and must start with 《. The second line
// must be blank. Every following line is one of:
//
//	【3. Song Name】          track header, starts a new track
//	（原调C调）                tune annotation for the current track
//	https://example.com/3    link, emits one track for the current header
//
// Anything else is ignored. A header resets the tune; a tune stays in effect
// until the next header or tune line. Several links after one header emit
// several tracks with the same title.
//
// # Usage
//
//	album, err := listing.Extract(text)
//	if errors.Is(err, listing.ErrMalformedInput) {
//	    // album.Title == model.UnknownAlbum, no tracks
//	}
//
// Render writes an album back in the same format; extracting the rendered
// text yields the same tracks.
package listing
