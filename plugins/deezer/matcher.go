package deezer

import (
	"net/url"
	"strings"
)

// URLMatcher extracts track IDs from Deezer URLs.
//
// Supported forms:
//   - https://www.deezer.com/track/64746961
//   - https://www.deezer.com/en/track/64746961
type URLMatcher struct{}

// NewURLMatcher creates a Deezer URL matcher.
func NewURLMatcher() *URLMatcher {
	return &URLMatcher{}
}

// MatchURL extracts a track ID from a Deezer URL.
// Returns the track ID and true if the URL points at a track.
func (m *URLMatcher) MatchURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := u.Hostname()
	if host != "deezer.com" && !strings.HasSuffix(host, ".deezer.com") {
		return "", false
	}

	segments := splitPath(u.Path)
	for i, seg := range segments {
		if seg == "track" && i+1 < len(segments) && allDigits(segments[i+1]) {
			return segments[i+1], true
		}
	}

	return "", false
}

func splitPath(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
