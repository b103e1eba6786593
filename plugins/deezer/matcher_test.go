package deezer

import "testing"

func TestMatchURL(t *testing.T) {
	m := NewURLMatcher()

	tests := []struct {
		name      string
		url       string
		wantID    string
		wantMatch bool
	}{
		{
			name:      "track url",
			url:       "https://www.deezer.com/track/64746961",
			wantID:    "64746961",
			wantMatch: true,
		},
		{
			name:      "localized track url",
			url:       "https://www.deezer.com/en/track/64746961",
			wantID:    "64746961",
			wantMatch: true,
		},
		{
			name:      "no www",
			url:       "https://deezer.com/track/123",
			wantID:    "123",
			wantMatch: true,
		},
		{
			name:      "http scheme",
			url:       "http://www.deezer.com/track/123",
			wantID:    "123",
			wantMatch: true,
		},
		{
			name:      "album url",
			url:       "https://www.deezer.com/album/9313796",
			wantMatch: false,
		},
		{
			name:      "non numeric track",
			url:       "https://www.deezer.com/track/abc",
			wantMatch: false,
		},
		{
			name:      "wrong host",
			url:       "https://example.com/track/123",
			wantMatch: false,
		},
		{
			name:      "lookalike host",
			url:       "https://notdeezer.com/track/123",
			wantMatch: false,
		},
		{
			name:      "empty",
			url:       "",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := m.MatchURL(tt.url)
			if ok != tt.wantMatch {
				t.Errorf("MatchURL(%q) ok = %v, want %v", tt.url, ok, tt.wantMatch)
			}
			if ok && id != tt.wantID {
				t.Errorf("MatchURL(%q) id = %q, want %q", tt.url, id, tt.wantID)
			}
		})
	}
}

func TestURLPattern(t *testing.T) {
	p := NewPlatform()

	tests := []struct {
		text string
		want bool
	}{
		{"https://www.deezer.com/track/64746961", true},
		{"see https://deezer.com/en/track/1 now", true},
		{"deezer.com/track/1 without scheme", false},
		{"https://example.com/track/1", false},
	}

	for _, tt := range tests {
		if got := p.URLPattern().MatchString(tt.text); got != tt.want {
			t.Errorf("URLPattern().MatchString(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
