package source

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrFetch is returned when the track page cannot be retrieved.
	ErrFetch = errors.New("fetch track page")

	// ErrNoAudioSource is returned when the page declares no audio source.
	ErrNoAudioSource = errors.New("no audio source on page")

	// ErrInvalidMediaURL is yielded for a declared URL that lacks the
	// authorization parameters.
	ErrInvalidMediaURL = errors.New("invalid media url")
)

// RequiredParams are the query parameters a media URL must carry.
var RequiredParams = []string{"id", "timestamp", "code"}

// Media is a validated, downloadable audio URL.
type Media struct {
	URL string
}

// Fetcher retrieves a page body. *http.Client from internal/http satisfies it.
type Fetcher interface {
	GetString(ctx context.Context, url string) (string, error)
}

// Resolver turns track pages into media candidates.
type Resolver struct {
	fetcher Fetcher
	timeout time.Duration
}

// NewResolver creates a Resolver. A positive timeout bounds each page fetch.
func NewResolver(fetcher Fetcher, timeout time.Duration) *Resolver {
	return &Resolver{fetcher: fetcher, timeout: timeout}
}

// Resolve fetches pageURL and returns its media candidates in document
// order. Each candidate is validated as the sequence is consumed: a
// declaration without the authorization parameters yields an error wrapping
// ErrInvalidMediaURL, and iteration may continue past it.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (iter.Seq2[Media, error], error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	page, err := r.fetcher.GetString(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrFetch, pageURL, err)
	}

	sources, err := ParseSources(pageURL, page)
	if err != nil {
		return nil, err
	}

	return func(yield func(Media, error) bool) {
		for _, src := range sources {
			if !yield(Validate(src)) {
				return
			}
		}
	}, nil
}

// ParseSources extracts the src of every <source> element in html, in
// document order and without duplicates. Relative URLs are resolved against
// pageURL.
func ParseSources(pageURL, html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	base, baseErr := url.Parse(pageURL)

	seen := make(map[string]struct{})
	var sources []string

	doc.Find("source[src]").Each(func(_ int, s *goquery.Selection) {
		src := repairQuery(strings.TrimSpace(s.AttrOr("src", "")))
		if src == "" {
			return
		}
		if baseErr == nil {
			if ref, err := base.Parse(src); err == nil {
				src = ref.String()
			}
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		sources = append(sources, src)
	})

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAudioSource, pageURL)
	}

	return sources, nil
}

// repairQuery undoes "&timestamp=" having been decoded as the HTML entity
// "&times" followed by "tamp=". Pages saved or generated through a lenient
// HTML decoder carry the broken form.
func repairQuery(src string) string {
	return strings.ReplaceAll(src, "×tamp=", "&timestamp=")
}

// Validate checks that raw is an absolute URL carrying every parameter in
// RequiredParams.
func Validate(raw string) (Media, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Media{}, fmt.Errorf("%w: %w", ErrInvalidMediaURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Media{}, fmt.Errorf("%w: %s is not absolute", ErrInvalidMediaURL, raw)
	}

	query := u.Query()
	var missing []string
	for _, key := range RequiredParams {
		if !query.Has(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Media{}, fmt.Errorf("%w: %s missing %s", ErrInvalidMediaURL, raw, strings.Join(missing, ", "))
	}

	return Media{URL: raw}, nil
}
