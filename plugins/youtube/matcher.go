package youtube

import (
	"net/url"
	"strings"
)

// URLMatcher extracts video IDs from YouTube URLs.
//
// Supported forms:
//   - https://www.youtube.com/watch?v=dQw4w9WgXcQ
//   - https://m.youtube.com/watch?v=dQw4w9WgXcQ&t=42
//   - https://youtu.be/dQw4w9WgXcQ
type URLMatcher struct{}

// NewURLMatcher creates a YouTube URL matcher.
func NewURLMatcher() *URLMatcher {
	return &URLMatcher{}
}

// MatchURL extracts a video ID from a YouTube URL.
func (m *URLMatcher) MatchURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	switch u.Hostname() {
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		if !strings.HasPrefix(u.Path, "/watch") {
			return "", false
		}
		id := u.Query().Get("v")
		if !isVideoID(id) {
			return "", false
		}
		return id, true
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if !isVideoID(id) {
			return "", false
		}
		return id, true
	}

	return "", false
}

// MusicURLMatcher extracts video IDs from YouTube Music URLs
// (https://music.youtube.com/watch?v=...).
type MusicURLMatcher struct{}

// NewMusicURLMatcher creates a YouTube Music URL matcher.
func NewMusicURLMatcher() *MusicURLMatcher {
	return &MusicURLMatcher{}
}

// MatchURL extracts a video ID from a YouTube Music URL.
func (m *MusicURLMatcher) MatchURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	if u.Hostname() != "music.youtube.com" || !strings.HasPrefix(u.Path, "/watch") {
		return "", false
	}
	id := u.Query().Get("v")
	if !isVideoID(id) {
		return "", false
	}
	return id, true
}

func isVideoID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
