package handler

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	botpkg "github.com/akarpov91/SongLinkBot-Go/bot"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
)

// stubSettingsRepository implements botpkg.SettingsRepository with
// in-memory maps. Missing group settings are lazily created with defaults,
// matching the real repository.
type stubSettingsRepository struct {
	mu      sync.RWMutex
	groups  map[int64]*botpkg.GroupSettings
	replies int64
}

func newStubRepo() *stubSettingsRepository {
	return &stubSettingsRepository{groups: make(map[int64]*botpkg.GroupSettings)}
}

func (r *stubSettingsRepository) GetGroupSettings(ctx context.Context, chatID int64) (*botpkg.GroupSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if settings, ok := r.groups[chatID]; ok {
		return settings, nil
	}
	settings := &botpkg.GroupSettings{ChatID: chatID, AutoDelete: true, LinkDetection: true}
	r.groups[chatID] = settings
	return settings, nil
}

func (r *stubSettingsRepository) UpdateGroupSettings(ctx context.Context, settings *botpkg.GroupSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[settings.ChatID] = settings
	return nil
}

func (r *stubSettingsRepository) ReplyCount(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.replies, nil
}

func (r *stubSettingsRepository) AddReplies(ctx context.Context, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies += n
	return nil
}

// stubResolver returns canned results keyed by URL.
type stubResolver struct {
	mu      sync.RWMutex
	calls   atomic.Int32
	results map[string]*botpkg.SongInfo
	errs    map[string]error
}

func newStubResolver() *stubResolver {
	return &stubResolver{
		results: make(map[string]*botpkg.SongInfo),
		errs:    make(map[string]error),
	}
}

func (s *stubResolver) GetOrResolve(ctx context.Context, rawURL string) (*botpkg.SongInfo, error) {
	s.calls.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err, ok := s.errs[rawURL]; ok {
		return nil, err
	}
	if info, ok := s.results[rawURL]; ok {
		return info, nil
	}
	return nil, errNotStubbed
}

var errNotStubbed = errors.New("no stubbed result for url")

// fakePlatform is a minimal registry.Platform used to drive extraction.
type fakePlatform struct {
	key     string
	display string
	order   int
	pattern *regexp.Regexp
}

func (p *fakePlatform) Name() string        { return p.key }
func (p *fakePlatform) DisplayName() string { return p.display }
func (p *fakePlatform) Order() int          { return p.order }

func (p *fakePlatform) MatchURL(rawURL string) (string, bool) {
	if p.pattern == nil || !p.pattern.MatchString(rawURL) {
		return "", false
	}
	return rawURL, true
}

func (p *fakePlatform) URLPattern() *regexp.Regexp { return p.pattern }

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	platforms := []*fakePlatform{
		{key: "deezer", display: "Deezer", order: 0, pattern: regexp.MustCompile(`https?://([a-zA-Z\d-]+\.)*deezer\.com/[^\s.,]*`)},
		{key: "spotify", display: "Spotify", order: 4, pattern: regexp.MustCompile(`https?://([a-zA-Z\d-]+\.)*spotify\.com/[^\s.,]*`)},
		{key: "youtube", display: "YouTube", order: 5, pattern: regexp.MustCompile(`https?://([a-zA-Z\d-]+\.)*youtube\.com/[^\s.,]*`)},
	}
	for _, p := range platforms {
		if err := reg.Register(p); err != nil {
			t.Fatalf("register %s: %v", p.key, err)
		}
	}
	return reg
}

func testSong(title string, ids []string, links ...botpkg.PlatformLink) *botpkg.SongInfo {
	return &botpkg.SongInfo{
		IDs:    ids,
		Title:  title,
		Artist: "Test Artist",
		Links:  links,
	}
}
