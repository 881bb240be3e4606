package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZakiuC/song/internal/model"
)

func TestExtract(t *testing.T) {
	raw := "《Test Album》\n\n【1. Song A】\nC调\nhttps://x/a\n【2. Song B】\nhttps://x/b\n"

	album, err := Extract(raw)
	require.NoError(t, err)

	assert.Equal(t, "《Test Album》", album.Title)
	require.Len(t, album.Tracks, 2)
	assert.Equal(t, "Song A | C调", album.Tracks[0].Title)
	assert.Equal(t, "https://x/a", album.Tracks[0].URL)
	assert.Equal(t, "Song B", album.Tracks[1].Title)
	assert.Equal(t, "https://x/b", album.Tracks[1].URL)
}

func TestExtractTracks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []model.Track
	}{
		{
			name: "url without header",
			body: "https://x/a\nhttps://x/b",
			want: nil,
		},
		{
			name: "two urls under one header",
			body: "【1. Song A】\nhttps://x/a1\nhttps://x/a2",
			want: []model.Track{
				model.NewTrack("Song A", "", "https://x/a1"),
				model.NewTrack("Song A", "", "https://x/a2"),
			},
		},
		{
			name: "tune persists across urls",
			body: "【1. Song A】\nD调\nhttps://x/a1\nsome note\nhttps://x/a2",
			want: []model.Track{
				model.NewTrack("Song A", "D调", "https://x/a1"),
				model.NewTrack("Song A", "D调", "https://x/a2"),
			},
		},
		{
			name: "header resets tune",
			body: "【1. Song A】\nD调\nhttps://x/a\n【2. Song B】\nhttps://x/b",
			want: []model.Track{
				model.NewTrack("Song A", "D调", "https://x/a"),
				model.NewTrack("Song B", "", "https://x/b"),
			},
		},
		{
			name: "later tune replaces earlier one",
			body: "【1. Song A】\nC调\nhttps://x/a1\nE调\nhttps://x/a2",
			want: []model.Track{
				model.NewTrack("Song A", "C调", "https://x/a1"),
				model.NewTrack("Song A", "E调", "https://x/a2"),
			},
		},
		{
			name: "original key and parentheses",
			body: "【1. Song A】\n（原调D调）\nhttps://x/a",
			want: []model.Track{
				model.NewTrack("Song A", "原调", "https://x/a"),
			},
		},
		{
			name: "key in parentheses",
			body: "【1. Song A】\n（降E调）\nhttps://x/a",
			want: []model.Track{
				model.NewTrack("Song A", "降E调", "https://x/a"),
			},
		},
		{
			name: "header without dot and with extra spaces",
			body: "【12   Song C 】\nhttps://x/c",
			want: []model.Track{
				model.NewTrack("Song C", "", "https://x/c"),
			},
		},
		{
			name: "empty header title drops urls",
			body: "【1. Song A】\nhttps://x/a\n【2.】\nhttps://x/b",
			want: []model.Track{
				model.NewTrack("Song A", "", "https://x/a"),
			},
		},
		{
			name: "url keeps only the leading non-space run",
			body: "【1. Song A】\nhttps://x/a?id=1 trailing text",
			want: []model.Track{
				model.NewTrack("Song A", "", "https://x/a?id=1"),
			},
		},
		{
			name: "crlf line endings and indentation",
			body: "  【1. Song A】\r\n\tC调\r\n  https://x/a  \r\n",
			want: []model.Track{
				model.NewTrack("Song A", "C调", "https://x/a"),
			},
		},
		{
			name: "ignored lines",
			body: "random text\n【1. Song A】\nftp://x/a\nhttps://x/a",
			want: []model.Track{
				model.NewTrack("Song A", "", "https://x/a"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			album, err := Extract("《Album》\n\n" + tt.body)
			require.NoError(t, err)
			assert.Equal(t, "《Album》", album.Title)
			assert.Equal(t, tt.want, album.Tracks)
		})
	}
}

func TestExtractMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"single line", "《Album》"},
		{"missing marker", "Album\n\n【1. Song】\nhttps://x/a"},
		{"missing blank line", "《Album》\n【1. Song】\nhttps://x/a"},
		{"url first", "https://x/a\n\n【1. Song】"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			album, err := Extract(tt.raw)
			require.ErrorIs(t, err, ErrMalformedInput)
			assert.Equal(t, model.UnknownAlbum, album.Title)
			assert.Empty(t, album.Tracks)
			assert.True(t, album.Empty())
		})
	}
}

func TestExtractLeadingWhitespace(t *testing.T) {
	album, err := Extract("\n\n  《Album》\n\n【1. A】\nhttps://x/a\n\n")
	require.NoError(t, err)
	assert.Equal(t, "《Album》", album.Title)
	assert.Len(t, album.Tracks, 1)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Line
	}{
		{"【3. Song】", Line{KindHeader, "Song"}},
		{"【３ Song】", Line{KindHeader, "Song"}},
		{"【1. 调音】", Line{KindHeader, "调音"}},
		{"C调", Line{KindTune, "C调"}},
		{"原调", Line{KindTune, "原调"}},
		{"（原调）", Line{KindTune, "原调"}},
		{"https://x/调", Line{KindTune, "https://x/调"}},
		{"http://x/a", Line{KindURL, "http://x/a"}},
		{"https://", Line{KindIgnored, ""}},
		{"", Line{KindIgnored, ""}},
		{"note", Line{KindIgnored, ""}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestRenderRoundTrip(t *testing.T) {
	inputs := []string{
		"《Test Album》\n\n【1. Song A】\nC调\nhttps://x/a\n【2. Song B】\nhttps://x/b\n",
		"《A》\n\n【1. Song A】\n（原调D调）\nhttps://x/a1\nhttps://x/a2\nE调\nhttps://x/a3\n【2. Song A】\nhttps://x/a4",
		"《A》\n\nhttps://x/orphan\n【7. Solo】\nnote\nhttps://x/s",
	}

	for _, raw := range inputs {
		first, err := Extract(raw)
		require.NoError(t, err)

		second, err := Extract(Render(first))
		require.NoError(t, err)

		assert.Equal(t, first.Title, second.Title)
		assert.Equal(t, first.Tracks, second.Tracks)
	}
}

func TestRenderManifestTracks(t *testing.T) {
	album := model.Album{
		Title: "《Loaded》",
		Tracks: []model.Track{
			{Title: "Song A | C调", URL: "https://x/a"},
			{Title: "Song B", URL: "https://x/b"},
		},
	}

	parsed, err := Extract(Render(album))
	require.NoError(t, err)
	require.Len(t, parsed.Tracks, 2)
	assert.Equal(t, "Song A | C调", parsed.Tracks[0].Title)
	assert.Equal(t, "Song B", parsed.Tracks[1].Title)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "header", KindHeader.String())
	assert.Equal(t, "tune", KindTune.String())
	assert.Equal(t, "url", KindURL.String())
	assert.Equal(t, "ignored", KindIgnored.String())
}
