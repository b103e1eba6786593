package applemusic

import "regexp"

const (
	platformKey   = "appleMusic"
	platformName  = "Apple Music"
	platformOrder = 7
)

var urlPattern = regexp.MustCompile(`https?://([a-zA-Z\d-]+\.)*music\.apple\.com/[^\s.,]*`)

// Platform implements registry.Platform for Apple Music.
type Platform struct {
	matcher *URLMatcher
}

// NewPlatform creates the Apple Music platform.
func NewPlatform() *Platform {
	return &Platform{matcher: NewURLMatcher()}
}

func (p *Platform) Name() string        { return platformKey }
func (p *Platform) DisplayName() string { return platformName }
func (p *Platform) Order() int          { return platformOrder }

// MatchURL extracts a track ID from an Apple Music URL.
func (p *Platform) MatchURL(rawURL string) (string, bool) {
	return p.matcher.MatchURL(rawURL)
}

// URLPattern returns the pattern used to find Apple Music URLs in text.
func (p *Platform) URLPattern() *regexp.Regexp {
	return urlPattern
}
