package googlemusic

import "regexp"

const (
	platformKey   = "google"
	platformName  = "Google Music"
	platformOrder = 1
)

var urlPattern = regexp.MustCompile(`https?://([a-zA-Z\d-]+\.)*play\.google\.com/music/[^\s.,]*`)

// Platform implements registry.Platform for Google Play Music.
type Platform struct {
	matcher *URLMatcher
}

// NewPlatform creates the Google Play Music platform.
func NewPlatform() *Platform {
	return &Platform{matcher: NewURLMatcher()}
}

func (p *Platform) Name() string        { return platformKey }
func (p *Platform) DisplayName() string { return platformName }
func (p *Platform) Order() int          { return platformOrder }

// MatchURL extracts a track ID from a Google Play Music URL.
func (p *Platform) MatchURL(rawURL string) (string, bool) {
	return p.matcher.MatchURL(rawURL)
}

// URLPattern returns the pattern used to find Google Play Music URLs in text.
func (p *Platform) URLPattern() *regexp.Regexp {
	return urlPattern
}
