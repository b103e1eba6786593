package youtube

import "regexp"

var (
	urlPattern      = regexp.MustCompile(`https?://((www\.|m\.)?youtube\.com/watch\?[^\s.,]*|youtu\.be/[^\s.,]*)`)
	musicURLPattern = regexp.MustCompile(`https?://music\.youtube\.com/watch\?[^\s.,]*`)
)

// Platform implements registry.Platform for YouTube.
type Platform struct {
	matcher *URLMatcher
}

// NewPlatform creates the YouTube platform.
func NewPlatform() *Platform {
	return &Platform{matcher: NewURLMatcher()}
}

func (p *Platform) Name() string        { return "youtube" }
func (p *Platform) DisplayName() string { return "YouTube" }
func (p *Platform) Order() int          { return 5 }

// MatchURL extracts a video ID from a YouTube URL.
func (p *Platform) MatchURL(rawURL string) (string, bool) {
	return p.matcher.MatchURL(rawURL)
}

// URLPattern returns the pattern used to find YouTube URLs in text.
// music.youtube.com is intentionally not covered; it belongs to
// the YouTube Music platform.
func (p *Platform) URLPattern() *regexp.Regexp {
	return urlPattern
}

// MusicPlatform implements registry.Platform for YouTube Music.
type MusicPlatform struct {
	matcher *MusicURLMatcher
}

// NewMusicPlatform creates the YouTube Music platform.
func NewMusicPlatform() *MusicPlatform {
	return &MusicPlatform{matcher: NewMusicURLMatcher()}
}

func (p *MusicPlatform) Name() string        { return "youtubeMusic" }
func (p *MusicPlatform) DisplayName() string { return "YouTube Music" }
func (p *MusicPlatform) Order() int          { return 6 }

// MatchURL extracts a video ID from a YouTube Music URL.
func (p *MusicPlatform) MatchURL(rawURL string) (string, bool) {
	return p.matcher.MatchURL(rawURL)
}

// URLPattern returns the pattern used to find YouTube Music URLs in text.
func (p *MusicPlatform) URLPattern() *regexp.Regexp {
	return musicURLPattern
}
