package spotify

import "regexp"

const (
	platformKey   = "spotify"
	platformName  = "Spotify"
	platformOrder = 4
)

var urlPattern = regexp.MustCompile(`https?://([a-zA-Z\d-]+\.)*spotify\.com/[^\s.,]*`)

// Platform implements registry.Platform for Spotify.
type Platform struct {
	matcher *URLMatcher
}

// NewPlatform creates the Spotify platform.
func NewPlatform() *Platform {
	return &Platform{matcher: NewURLMatcher()}
}

func (p *Platform) Name() string        { return platformKey }
func (p *Platform) DisplayName() string { return platformName }
func (p *Platform) Order() int          { return platformOrder }

// MatchURL extracts a track ID from a Spotify URL.
func (p *Platform) MatchURL(rawURL string) (string, bool) {
	return p.matcher.MatchURL(rawURL)
}

// URLPattern returns the pattern used to find Spotify URLs in text.
func (p *Platform) URLPattern() *regexp.Regexp {
	return urlPattern
}
