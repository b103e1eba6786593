package odesli

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
	"github.com/akarpov91/SongLinkBot-Go/bot/resolve"
)

type stubPlatform struct {
	key     string
	display string
	order   int
}

func (p *stubPlatform) Name() string                   { return p.key }
func (p *stubPlatform) DisplayName() string            { return p.display }
func (p *stubPlatform) Order() int                     { return p.order }
func (p *stubPlatform) MatchURL(string) (string, bool) { return "", false }
func (p *stubPlatform) URLPattern() *regexp.Regexp     { return nil }

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, p := range []*stubPlatform{
		{key: "deezer", display: "Deezer", order: 0},
		{key: "spotify", display: "Spotify", order: 4},
		{key: "youtube", display: "YouTube", order: 5},
	} {
		if err := reg.Register(p); err != nil {
			t.Fatalf("Register(%s) failed: %v", p.key, err)
		}
	}
	return reg
}

func newTestClient(t *testing.T, apiURL string, opts Options) *Client {
	t.Helper()
	opts.APIURL = apiURL
	if opts.RatePerMinute == 0 {
		opts.RatePerMinute = 6000
	}
	if opts.Burst == 0 {
		opts.Burst = 100
	}
	return New(opts, testRegistry(t), nil)
}

const fullResponse = `{
	"entityUniqueId": "DEEZER_SONG::123456",
	"userCountry": "US",
	"entitiesByUniqueId": {
		"DEEZER_SONG::123456": {
			"id": "123456",
			"apiProvider": "deezer",
			"title": "Test Song",
			"artistName": "Test Artist",
			"thumbnailUrl": "https://img.example/cover.jpg"
		},
		"SPOTIFY_SONG::abc123": {
			"id": "abc123",
			"apiProvider": "spotify",
			"title": "Test Song",
			"artistName": "Test Artist"
		},
		"YOUTUBE_VIDEO::dQw4w9": {
			"id": "dQw4w9",
			"apiProvider": "youtube",
			"title": "Test Song (Official Video)",
			"artistName": "Test Artist"
		}
	},
	"linksByPlatform": {
		"spotify": {"url": "https://open.spotify.com/track/abc123", "entityUniqueId": "SPOTIFY_SONG::abc123"},
		"youtube": {"url": "https://youtube.com/watch?v=dQw4w9", "entityUniqueId": "YOUTUBE_VIDEO::dQw4w9"},
		"deezer": {"url": "https://deezer.com/track/123456", "entityUniqueId": "DEEZER_SONG::123456"},
		"tidal": {"url": "https://tidal.com/track/999", "entityUniqueId": "TIDAL_SONG::999"}
	}
}`

func TestResolve_Success(t *testing.T) {
	var gotQuery atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fullResponse))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{APIKey: "secret", UserCountry: "US"})

	info, err := c.Resolve(context.Background(), "https://deezer.com/track/123456")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	q := gotQuery.Load().(url.Values)
	if got := q["url"]; len(got) != 1 || got[0] != "https://deezer.com/track/123456" {
		t.Errorf("url param = %v, want the raw link", got)
	}
	if got := q["userCountry"]; len(got) != 1 || got[0] != "US" {
		t.Errorf("userCountry param = %v, want [US]", got)
	}
	if got := q["api_key"]; len(got) != 1 || got[0] != "secret" {
		t.Errorf("api_key param = %v, want [secret]", got)
	}

	if info.Title != "Test Song" {
		t.Errorf("Title = %q, want most common %q", info.Title, "Test Song")
	}
	if info.Artist != "Test Artist" {
		t.Errorf("Artist = %q, want %q", info.Artist, "Test Artist")
	}
	if info.Thumbnail != "https://img.example/cover.jpg" {
		t.Errorf("Thumbnail = %q", info.Thumbnail)
	}

	wantIDs := []string{"123456", "abc123", "dQw4w9"}
	if len(info.IDs) != len(wantIDs) {
		t.Fatalf("IDs = %v, want %v", info.IDs, wantIDs)
	}
	for i, id := range wantIDs {
		if info.IDs[i] != id {
			t.Errorf("IDs[%d] = %q, want %q", i, info.IDs[i], id)
		}
	}

	// Unregistered tidal is dropped, the rest come out in reply order.
	wantKeys := []string{"deezer", "spotify", "youtube"}
	if len(info.Links) != len(wantKeys) {
		t.Fatalf("got %d links, want %d: %+v", len(info.Links), len(wantKeys), info.Links)
	}
	for i, key := range wantKeys {
		if info.Links[i].Key != key {
			t.Errorf("Links[%d].Key = %q, want %q", i, info.Links[i].Key, key)
		}
	}
	if info.Links[0].Name != "Deezer" || info.Links[0].URL != "https://deezer.com/track/123456" {
		t.Errorf("deezer link = %+v", info.Links[0])
	}

	if len(info.SourceURLs) != 1 || info.SourceURLs[0] != "https://deezer.com/track/123456" {
		t.Errorf("SourceURLs = %v", info.SourceURLs)
	}
}

func TestResolve_NumericEntityID(t *testing.T) {
	// Bandcamp entities carry numeric ids; they must decode as strings.
	response := `{
		"entitiesByUniqueId": {
			"BANDCAMP_SONG::1384348948": {
				"id": 1384348948,
				"apiProvider": "bandcamp",
				"title": "Numeric",
				"artistName": "Someone"
			}
		},
		"linksByPlatform": {
			"deezer": {"url": "https://deezer.com/track/1", "entityUniqueId": "BANDCAMP_SONG::1384348948"}
		}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(response))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{})

	info, err := c.Resolve(context.Background(), "https://example.bandcamp.com/track/x")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(info.IDs) != 1 || info.IDs[0] != "1384348948" {
		t.Errorf("IDs = %v, want [1384348948]", info.IDs)
	}
}

func TestResolve_UnknownArtistDefault(t *testing.T) {
	response := `{
		"entitiesByUniqueId": {
			"DEEZER_SONG::1": {"id": "1", "apiProvider": "deezer", "title": "Nameless"}
		},
		"linksByPlatform": {
			"deezer": {"url": "https://deezer.com/track/1", "entityUniqueId": "DEEZER_SONG::1"}
		}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(response))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{})

	info, err := c.Resolve(context.Background(), "https://deezer.com/track/1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if info.Artist != unknownArtist {
		t.Errorf("Artist = %q, want %q", info.Artist, unknownArtist)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entitiesByUniqueId": {}, "linksByPlatform": {}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{})

	_, err := c.Resolve(context.Background(), "https://deezer.com/track/0")
	if !errors.Is(err, resolve.ErrNoMatch) {
		t.Errorf("err = %v, want ErrNoMatch", err)
	}
	if !errors.Is(err, resolve.ErrResolutionFailed) {
		t.Errorf("err = %v, want it wrapped in ErrResolutionFailed", err)
	}
}

func TestResolve_OnlyUnknownPlatforms(t *testing.T) {
	response := `{
		"entitiesByUniqueId": {
			"TIDAL_SONG::9": {"id": "9", "apiProvider": "tidal", "title": "Elsewhere", "artistName": "Someone"}
		},
		"linksByPlatform": {
			"tidal": {"url": "https://tidal.com/track/9", "entityUniqueId": "TIDAL_SONG::9"}
		}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(response))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{})

	_, err := c.Resolve(context.Background(), "https://tidal.com/track/9")
	if !errors.Is(err, resolve.ErrNoMatch) {
		t.Errorf("err = %v, want ErrNoMatch when no registered platform has a link", err)
	}
}

func TestResolve_IncompleteResponse(t *testing.T) {
	response := `{
		"entitiesByUniqueId": {
			"DEEZER_SONG::1": {"apiProvider": "deezer", "artistName": "Someone"}
		},
		"linksByPlatform": {
			"deezer": {"url": "https://deezer.com/track/1", "entityUniqueId": "DEEZER_SONG::1"}
		}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(response))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{})

	_, err := c.Resolve(context.Background(), "https://deezer.com/track/1")
	if !errors.Is(err, resolve.ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream for a response without ids or title", err)
	}
}

func TestResolve_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{})

	_, err := c.Resolve(context.Background(), "https://deezer.com/track/1")
	if !errors.Is(err, resolve.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}

	c.mu.Lock()
	cooldown := time.Until(c.notBefore)
	c.mu.Unlock()
	if cooldown <= time.Second {
		t.Errorf("cool-down = %v, want Retry-After honored", cooldown)
	}
}

func TestResolve_UpstreamError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{})

	_, err := c.Resolve(context.Background(), "https://deezer.com/track/1")
	if !errors.Is(err, resolve.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server got %d requests, want 1 (no retry on definitive responses)", n)
	}
}

func TestResolve_TransportErrorRetriedOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Drop the connection so the client sees a transport error.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("response writer does not support hijacking")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack failed: %v", err)
			}
			conn.Close()
			return
		}
		w.Write([]byte(fullResponse))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{})

	info, err := c.Resolve(context.Background(), "https://deezer.com/track/123456")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if info.Title != "Test Song" {
		t.Errorf("Title = %q after retry", info.Title)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server got %d requests, want 2 (one retry)", n)
	}
}

func TestResolve_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(fullResponse))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{Timeout: 50 * time.Millisecond})

	_, err := c.Resolve(context.Background(), "https://deezer.com/track/1")
	if !errors.Is(err, resolve.ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestResolve_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, Options{})

	for i := 0; i < 6; i++ {
		if _, err := c.Resolve(context.Background(), "https://deezer.com/track/1"); !errors.Is(err, resolve.ErrUpstream) {
			t.Fatalf("call %d: err = %v, want ErrUpstream", i, err)
		}
	}

	_, err := c.Resolve(context.Background(), "https://deezer.com/track/1")
	if !errors.Is(err, resolve.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable once the breaker is open", err)
	}
}

func TestMostCommon(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		order  []string
		want   string
	}{
		{
			name:   "clear winner",
			counts: map[string]int{"a": 1, "b": 3, "c": 2},
			order:  []string{"a", "b", "c"},
			want:   "b",
		},
		{
			name:   "tie keeps first encountered",
			counts: map[string]int{"a": 2, "b": 2},
			order:  []string{"a", "b"},
			want:   "a",
		},
		{
			name:   "empty",
			counts: map[string]int{},
			order:  nil,
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mostCommon(tt.counts, tt.order); got != tt.want {
				t.Errorf("mostCommon() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntityIDDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "string", in: `"abc123"`, want: "abc123"},
		{name: "integer", in: `1384348948`, want: "1384348948"},
		{name: "null", in: `null`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id entityID
			if err := id.UnmarshalJSON([]byte(tt.in)); err != nil {
				t.Fatalf("UnmarshalJSON(%s) failed: %v", tt.in, err)
			}
			if string(id) != tt.want {
				t.Errorf("decoded %q, want %q", id, tt.want)
			}
		})
	}
}
