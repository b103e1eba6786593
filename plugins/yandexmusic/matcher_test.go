package yandexmusic

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
			name:      "album track url",
			url:       "https://music.yandex.ru/album/9425747/track/60643350",
			wantID:    "60643350",
			wantMatch: true,
		},
		{
			name:      "com domain",
			url:       "https://music.yandex.com/album/1/track/2",
			wantID:    "2",
			wantMatch: true,
		},
		{
			name:      "direct track url",
			url:       "https://music.yandex.ru/track/60643350",
			wantID:    "60643350",
			wantMatch: true,
		},
		{
			name:      "album only",
			url:       "https://music.yandex.ru/album/9425747",
			wantMatch: false,
		},
		{
			name:      "artist page",
			url:       "https://music.yandex.ru/artist/737526",
			wantMatch: false,
		},
		{
			name:      "wrong host",
			url:       "https://yandex.ru/album/1/track/2",
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
		{"https://music.yandex.ru/album/9425747/track/60643350", true},
		{"https://music.yandex.com/track/1", true},
		{"https://music.yandex.by/track/1", false},
		{"https://yandex.ru/search", false},
	}

	for _, tt := range tests {
		if got := p.URLPattern().MatchString(tt.text); got != tt.want {
			t.Errorf("URLPattern().MatchString(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
