package listing

import (
	"regexp"
	"strings"
)

// Kind identifies what a listing line announces.
type Kind int

const (
	// KindIgnored is a line that carries no track information.
	KindIgnored Kind = iota

	// KindHeader is a track header such as "【3. Song Name】".
	KindHeader

	// KindTune is a key annotation such as "C调" or "（原调D调）".
	KindTune

	// KindURL is a link to the track's page.
	KindURL
)

// String returns the kind name for logs and tests.
func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindTune:
		return "tune"
	case KindURL:
		return "url"
	default:
		return "ignored"
	}
}

// Line is a classified listing line. Value holds the extracted base title,
// normalized tune or URL, depending on Kind.
type Line struct {
	Kind  Kind
	Value string
}

var (
	// Digits and spaces are matched as Unicode classes so full-width
	// ordinals and ideographic spaces are accepted.
	headerPattern = regexp.MustCompile(`^【\p{Nd}+\.?[\s\p{Zs}]*(.*?)】`)
	tunePattern   = regexp.MustCompile(`^(.*?)(原调)?调`)
	urlPattern    = regexp.MustCompile(`^https?://[^\s\p{Zs}]+`)

	parenStripper = strings.NewReplacer("（", "", "）", "")
)

type matcher struct {
	kind  Kind
	match func(line string) (string, bool)
}

// matchers are tried in order. The tune pattern matches any line containing
// 调, header lines included, so it must come after the header matcher.
var matchers = []matcher{
	{KindHeader, matchHeader},
	{KindTune, matchTune},
	{KindURL, matchURL},
}

// Classify reports what a single, already trimmed, listing line announces.
func Classify(line string) Line {
	for _, m := range matchers {
		if value, ok := m.match(line); ok {
			return Line{Kind: m.kind, Value: value}
		}
	}
	return Line{Kind: KindIgnored}
}

func matchHeader(line string) (string, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// matchTune keeps the text before the first 调. The optional 原调 group only
// steers the match and is not carried into the result.
func matchTune(line string) (string, bool) {
	m := tunePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return parenStripper.Replace(m[1] + "调"), true
}

func matchURL(line string) (string, bool) {
	url := urlPattern.FindString(line)
	return url, url != ""
}
