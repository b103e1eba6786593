package applemusic

import (
	"net/url"
	"strings"
)

// URLMatcher extracts track IDs from Apple Music URLs.
//
// Track links use the album page with a song selector:
//   - https://music.apple.com/us/album/some-song/1558533900?i=1558534271
//
// The "i" query parameter identifies the track.
type URLMatcher struct{}

// NewURLMatcher creates an Apple Music URL matcher.
func NewURLMatcher() *URLMatcher {
	return &URLMatcher{}
}

// MatchURL extracts a track ID from an Apple Music URL.
func (m *URLMatcher) MatchURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := u.Hostname()
	if host != "music.apple.com" && !strings.HasSuffix(host, ".music.apple.com") {
		return "", false
	}

	id := u.Query().Get("i")
	if !allDigits(id) {
		return "", false
	}
	return id, true
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
