package soundcloud

import (
	"net/url"
	"strings"
)

// URLMatcher extracts track slugs from SoundCloud URLs.
//
// SoundCloud track pages have the shape
// https://soundcloud.com/<artist>/<track>; the "<artist>/<track>" pair is
// used as the track identifier.
type URLMatcher struct{}

// Non-track top level sections of soundcloud.com.
var reservedSections = map[string]struct{}{
	"discover": {},
	"search":   {},
	"stream":   {},
	"upload":   {},
	"you":      {},
	"charts":   {},
	"pages":    {},
	"settings": {},
}

// NewURLMatcher creates a SoundCloud URL matcher.
func NewURLMatcher() *URLMatcher {
	return &URLMatcher{}
}

// MatchURL extracts an "<artist>/<track>" slug from a SoundCloud URL.
func (m *URLMatcher) MatchURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := u.Hostname()
	if host != "soundcloud.com" && !strings.HasSuffix(host, ".soundcloud.com") {
		return "", false
	}

	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) != 2 {
		return "", false
	}
	if _, reserved := reservedSections[segments[0]]; reserved {
		return "", false
	}
	// Playlists live under /<artist>/sets/<name>, which has three segments
	// and is already excluded above.
	return segments[0] + "/" + segments[1], true
}
