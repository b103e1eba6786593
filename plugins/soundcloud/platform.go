package soundcloud

import "regexp"

const (
	platformKey   = "soundcloud"
	platformName  = "SoundCloud"
	platformOrder = 2
)

var urlPattern = regexp.MustCompile(`https?://([a-zA-Z\d-]+\.)*soundcloud\.com/[^\s.,]*`)

// Platform implements registry.Platform for SoundCloud.
type Platform struct {
	matcher *URLMatcher
}

// NewPlatform creates the SoundCloud platform.
func NewPlatform() *Platform {
	return &Platform{matcher: NewURLMatcher()}
}

func (p *Platform) Name() string        { return platformKey }
func (p *Platform) DisplayName() string { return platformName }
func (p *Platform) Order() int          { return platformOrder }

// MatchURL extracts a track slug from a SoundCloud URL.
func (p *Platform) MatchURL(rawURL string) (string, bool) {
	return p.matcher.MatchURL(rawURL)
}

// URLPattern returns the pattern used to find SoundCloud URLs in text.
func (p *Platform) URLPattern() *regexp.Regexp {
	return urlPattern
}
