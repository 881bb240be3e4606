// Package ioutils provides file system helpers for the downloader.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Collision-free file names within one album
//   - Atomic file writes
//   - Directory creation
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("Song A | C调") // Returns "Song A - C调"
//
// # Unique Paths
//
// Several listing entries may share a title (one header followed by two
// links). PathAllocator hands out a distinct path for each of them:
//
//	alloc := ioutils.NewPathAllocator("/music/《Album》", ".mp3")
//	alloc.Next("Song")  // "/music/《Album》/Song.mp3"
//	alloc.Next("Song")  // "/music/《Album》/Song (2).mp3"
package ioutils
