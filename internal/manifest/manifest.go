// Package manifest stores album track lists as JSON files.
//
// A manifest is a JSON array of {"title", "url"} objects named after the
// album, e.g. target/《Test Album》.json. Non-ASCII text is written as is.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ioutils "github.com/ZakiuC/song/internal/io"
	"github.com/ZakiuC/song/internal/model"
)

// Extension is the manifest file extension.
const Extension = ".json"

// ErrInvalidManifest is returned for a file that is not a track array.
var ErrInvalidManifest = errors.New("invalid manifest")

// Path returns where the manifest of album is stored under dir.
func Path(dir string, album model.Album) string {
	return filepath.Join(dir, album.Name()+Extension)
}

// Encode renders tracks as an indented JSON array.
func Encode(tracks []model.Track) ([]byte, error) {
	if tracks == nil {
		tracks = []model.Track{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(tracks); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes album's tracks to its manifest under dir, replacing any
// previous one. It returns the manifest path.
func Save(dir string, album model.Album) (string, error) {
	data, err := Encode(album.Tracks)
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}

	path := Path(dir, album)
	if err := ioutils.WriteFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// Load reads the manifest at path. The album title is the file name
// without its extension.
func Load(path string) (model.Album, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Album{}, err
	}

	var tracks []model.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return model.Album{}, fmt.Errorf("%w %s: %w", ErrInvalidManifest, path, err)
	}
	for i, track := range tracks {
		if track.URL == "" {
			return model.Album{}, fmt.Errorf("%w %s: entry %d has no url", ErrInvalidManifest, path, i+1)
		}
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return model.Album{Title: title, Tracks: tracks}, nil
}

// LoadDir reads every manifest in dir, sorted by file name. The first
// unreadable manifest aborts the load.
func LoadDir(dir string) ([]model.Album, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.EqualFold(filepath.Ext(entry.Name()), Extension) {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)

	albums := make([]model.Album, 0, len(names))
	for _, name := range names {
		album, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}

	return albums, nil
}
