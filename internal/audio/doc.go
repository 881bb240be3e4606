// Package audio provides ID3 tag writing and playlist generation for
// downloaded tracks.
//
// # ID3 Tagging
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, audio.TrackInfo{Title: "Song A", Album: "Album", Number: 1, Total: 10})
//
// The tagger writes album title, track title and track number, and clears
// comments.
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(album.Title, entries)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
package audio
