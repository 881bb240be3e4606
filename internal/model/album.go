package model

import (
	"strings"

	ioutils "github.com/ZakiuC/song/internal/io"
)

// AlbumMarker is the glyph an album title line must start with.
const AlbumMarker = "《"

// UnknownAlbum is the title reported when a listing has no valid album header.
const UnknownAlbum = "未知专辑"

// Album represents one parsed track listing.
//
// An album whose Title is UnknownAlbum, or that has no tracks, carries
// nothing to download; check Empty before doing any work with it.
type Album struct {
	// Title is the first line of the listing, including the 《》 marks.
	Title string

	// Tracks are the listing entries in input order.
	Tracks []Track
}

// Empty reports whether the album is the unknown-album sentinel or has no tracks.
func (a Album) Empty() bool {
	return a.Title == UnknownAlbum || a.Title == "" || len(a.Tracks) == 0
}

// Name returns the album title made safe for use as a file or folder name.
func (a Album) Name() string {
	return ioutils.SanitizeFileName(a.Title)
}

// BareTitle returns the title without the surrounding 《》 marks.
func (a Album) BareTitle() string {
	t := strings.TrimPrefix(a.Title, AlbumMarker)
	return strings.TrimSpace(strings.TrimSuffix(t, "》"))
}
