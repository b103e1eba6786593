package spotify

import (
	"net/url"
	"strings"
)

// URLMatcher extracts track IDs from Spotify URLs.
//
// Supported forms:
//   - https://open.spotify.com/track/6rqhFgbbKwnb9MLmUQDhG6
//   - https://open.spotify.com/intl-fr/track/6rqhFgbbKwnb9MLmUQDhG6?si=abc
type URLMatcher struct{}

// NewURLMatcher creates a Spotify URL matcher.
func NewURLMatcher() *URLMatcher {
	return &URLMatcher{}
}

// MatchURL extracts a track ID from a Spotify URL.
func (m *URLMatcher) MatchURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := u.Hostname()
	if host != "spotify.com" && !strings.HasSuffix(host, ".spotify.com") {
		return "", false
	}

	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	for i, seg := range segments {
		if seg == "track" && i+1 < len(segments) && isBase62(segments[i+1]) {
			return segments[i+1], true
		}
	}

	return "", false
}

func isBase62(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}
