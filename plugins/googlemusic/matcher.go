package googlemusic

import (
	"net/url"
	"strings"
)

// URLMatcher extracts track IDs from Google Play Music URLs.
//
// Supported form:
//   - https://play.google.com/music/m/Tdj6m2cvlli4dm45tkw3g25lwly
type URLMatcher struct{}

// NewURLMatcher creates a Google Play Music URL matcher.
func NewURLMatcher() *URLMatcher {
	return &URLMatcher{}
}

// MatchURL extracts a track ID from a Google Play Music URL.
func (m *URLMatcher) MatchURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	if u.Hostname() != "play.google.com" {
		return "", false
	}

	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	// Path shape: /music/m/<id>
	if len(segments) >= 3 && segments[0] == "music" && segments[1] == "m" {
		return segments[2], true
	}

	return "", false
}
