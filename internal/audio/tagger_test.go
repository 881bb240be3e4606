package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("\xff\xfb\x90\x00audio-frames"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTagger_SaveTags(t *testing.T) {
	path := writeAudio(t)

	err := NewTagger(nil).SaveTags(path, TrackInfo{
		Title:  "Song A | C调",
		Album:  "测试专辑",
		Number: 2,
		Total:  12,
	})
	if err != nil {
		t.Fatalf("SaveTags returned error: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tag.Close()

	if got := tag.Title(); got != "Song A | C调" {
		t.Errorf("title: got %q", got)
	}
	if got := tag.Album(); got != "测试专辑" {
		t.Errorf("album: got %q", got)
	}
	if got := tag.GetTextFrame("TRCK").Text; got != "2/12" {
		t.Errorf("track number: got %q", got)
	}
}

func TestTagger_KeepsAudio(t *testing.T) {
	path := writeAudio(t)

	if err := NewTagger(nil).SaveTags(path, TrackInfo{Title: "x", Number: 1}); err != nil {
		t.Fatalf("SaveTags returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:3]) != "ID3" {
		t.Errorf("file does not start with an ID3 header")
	}
	if want := "\xff\xfb\x90\x00audio-frames"; string(data[len(data)-len(want):]) != want {
		t.Error("audio data was not preserved after the tag")
	}
}

func TestTagger_DoNotModify(t *testing.T) {
	path := writeAudio(t)

	if err := NewTagger(nil).SaveTags(path, TrackInfo{Title: "first", Album: "A"}); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultTagConfig()
	cfg.Album = TagDoNotModify
	if err := NewTagger(cfg).SaveTags(path, TrackInfo{Title: "second", Album: "B"}); err != nil {
		t.Fatal(err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if tag.Title() != "second" || tag.Album() != "A" {
		t.Errorf("got title %q album %q, want second, A", tag.Title(), tag.Album())
	}
}

func TestTagger_MissingFile(t *testing.T) {
	err := NewTagger(nil).SaveTags(filepath.Join(t.TempDir(), "absent.mp3"), TrackInfo{Title: "x"})
	if err == nil {
		t.Error("expected error but got none")
	}
}

func TestTrackNumber(t *testing.T) {
	if got := trackNumber(3, 0); got != "3" {
		t.Errorf("got %q", got)
	}
	if got := trackNumber(3, 9); got != "3/9" {
		t.Errorf("got %q", got)
	}
}
