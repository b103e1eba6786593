package yandexmusic

import (
	"net/url"
	"strings"
)

// URLMatcher extracts track IDs from Yandex Music URLs.
//
// Supported forms:
//   - https://music.yandex.ru/album/9425747/track/60643350
//   - https://music.yandex.com/track/60643350
type URLMatcher struct{}

// NewURLMatcher creates a Yandex Music URL matcher.
func NewURLMatcher() *URLMatcher {
	return &URLMatcher{}
}

// MatchURL extracts a track ID from a Yandex Music URL.
func (m *URLMatcher) MatchURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := u.Hostname()
	if host != "music.yandex.ru" && host != "music.yandex.com" {
		return "", false
	}

	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	for i, seg := range segments {
		if seg == "track" && i+1 < len(segments) && allDigits(segments[i+1]) {
			return segments[i+1], true
		}
	}

	return "", false
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
