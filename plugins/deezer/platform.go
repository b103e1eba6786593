package deezer

import "regexp"

const (
	platformKey   = "deezer"
	platformName  = "Deezer"
	platformOrder = 0
)

var urlPattern = regexp.MustCompile(`https?://([a-zA-Z\d-]+\.)*deezer\.com/[^\s.,]*`)

// Platform implements registry.Platform for Deezer.
type Platform struct {
	matcher *URLMatcher
}

// NewPlatform creates the Deezer platform.
func NewPlatform() *Platform {
	return &Platform{matcher: NewURLMatcher()}
}

func (p *Platform) Name() string        { return platformKey }
func (p *Platform) DisplayName() string { return platformName }
func (p *Platform) Order() int          { return platformOrder }

// MatchURL extracts a track ID from a Deezer URL.
func (p *Platform) MatchURL(rawURL string) (string, bool) {
	return p.matcher.MatchURL(rawURL)
}

// URLPattern returns the pattern used to find Deezer URLs in text.
func (p *Platform) URLPattern() *regexp.Regexp {
	return urlPattern
}
