package ioutils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// FallbackName is used when sanitization leaves nothing of a name.
const FallbackName = "untitled"

var (
	removedChars  = regexp.MustCompile(`[?:"<>*]`)
	replacedChars = regexp.MustCompile(`[/\\\x00-\x1f]`)
	trailingJunk  = regexp.MustCompile(`[.\s]+$`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - "|" → " -" (keeps "Title | Tune" readable)
//   - ? : " < > * → removed
//   - / \ and control chars 0x00-0x1f → underscore
//   - Multiple whitespace → single space
//   - Trailing dots and whitespace → removed (Windows limitation)
//
// The result is NFC-normalized. An empty result becomes FallbackName.
//
// Example:
//
//	SanitizeFileName("Song A | C调")  // Returns "Song A - C调"
//	SanitizeFileName("What? <Live>") // Returns "What Live"
//	SanitizeFileName("AC/DC")        // Returns "AC_DC"
func SanitizeFileName(name string) string {
	name = norm.NFC.String(name)
	name = strings.ReplaceAll(name, "|", " -")
	name = removedChars.ReplaceAllString(name, "")
	name = replacedChars.ReplaceAllString(name, "_")
	name = spaceRun.ReplaceAllString(name, " ")
	name = trailingJunk.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return FallbackName
	}
	return name
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// TempPath returns a unique sibling path of dest used while dest is being written.
func TempPath(dest string) string {
	return fmt.Sprintf("%s.%s.part", dest, uuid.NewString()[:8])
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it
// into place, so readers never observe a half-written file.
//
// The parent directory is created if needed. The file mode is 0644.
func WriteFileAtomic(path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	tmp := TempPath(path)
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// PathAllocator hands out collision-free file paths inside one directory.
//
// Names are compared case-insensitively, since the common desktop file
// systems are. Files that already exist on disk are not considered: a
// re-run of the same album maps every title to the same path it got before.
type PathAllocator struct {
	dir   string
	ext   string
	mu    sync.Mutex
	taken map[string]struct{}
}

// NewPathAllocator creates an allocator for files with extension ext
// (including the dot) in dir.
func NewPathAllocator(dir, ext string) *PathAllocator {
	return &PathAllocator{
		dir:   dir,
		ext:   ext,
		taken: make(map[string]struct{}),
	}
}

// Next sanitizes title and returns the first unused path for it.
func (a *PathAllocator) Next(title string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	base := SanitizeFileName(title)
	name := base
	for n := 2; ; n++ {
		if _, ok := a.taken[strings.ToLower(name)]; !ok {
			break
		}
		name = fmt.Sprintf("%s (%d)", base, n)
	}
	a.taken[strings.ToLower(name)] = struct{}{}

	return filepath.Join(a.dir, name+a.ext)
}
