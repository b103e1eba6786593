package yandexmusic

import "regexp"

const (
	platformKey   = "yandex"
	platformName  = "Yandex Music"
	platformOrder = 3
)

var urlPattern = regexp.MustCompile(`https?://music\.yandex\.(ru|com)/[^\s.,]*`)

// Platform implements registry.Platform for Yandex Music.
type Platform struct {
	matcher *URLMatcher
}

// NewPlatform creates the Yandex Music platform.
func NewPlatform() *Platform {
	return &Platform{matcher: NewURLMatcher()}
}

func (p *Platform) Name() string        { return platformKey }
func (p *Platform) DisplayName() string { return platformName }
func (p *Platform) Order() int          { return platformOrder }

// MatchURL extracts a track ID from a Yandex Music URL.
func (p *Platform) MatchURL(rawURL string) (string, bool) {
	return p.matcher.MatchURL(rawURL)
}

// URLPattern returns the pattern used to find Yandex Music URLs in text.
func (p *Platform) URLPattern() *regexp.Regexp {
	return urlPattern
}
