// Package model defines the core data structures shared by the listing
// parser, the download manager and the manifest store.
//
// # Album
//
// Album is the result of parsing one track listing:
//
//	album, err := listing.Extract(text)
//	if album.Empty() {
//	    // nothing to download
//	}
//	fmt.Println(album.Name()) // file-safe stem for the manifest and folder
//
// # Track
//
// Track is a single entry of the listing. Only Title and URL are persisted;
// BaseTitle and Tune are kept in memory so the listing can be rendered back:
//
//	track := model.NewTrack("Song A", "C调", "https://example.com/a")
//	fmt.Println(track.Title) // "Song A | C调"
package model
