package resolve

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/akarpov91/SongLinkBot-Go/bot"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
)

// Client resolves a music link through an external service.
type Client interface {
	Resolve(ctx context.Context, rawURL string) (*bot.SongInfo, error)
}

// KeyFunc normalizes a raw link into a cache key.
type KeyFunc func(rawURL string) string

// Options configure a Cache.
type Options struct {
	// MaxEntries bounds the number of stored results; the least recently
	// used entry is evicted when full. Defaults to 1024.
	MaxEntries int

	// TTL is how long a stored result stays valid. Expired entries are
	// never returned. Defaults to 5 hours.
	TTL time.Duration

	// KeyFunc normalizes request links before lookup and coalescing.
	// Defaults to whitespace trimming.
	KeyFunc KeyFunc

	Logger bot.Logger
}

// Cache wraps a Client with an in-memory result cache and request
// coalescing. Concurrent requests for the same normalized link share a
// single upstream resolution. Results are stored under the canonical song
// identity, so the same song reached through different platform links hits
// one entry.
type Cache struct {
	client Client
	keyFn  KeyFunc
	logger bot.Logger

	flight singleflight.Group

	// entries holds results keyed by canonical identity; aliases maps
	// normalized request keys and per-platform link keys onto it. A stale
	// alias whose entry was evicted simply misses.
	entries *expirable.LRU[string, *bot.SongInfo]
	aliases *expirable.LRU[string, string]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a Cache resolving misses through client.
func NewCache(client Client, opts Options) *Cache {
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Hour
	}
	keyFn := opts.KeyFunc
	if keyFn == nil {
		keyFn = func(rawURL string) string { return strings.TrimSpace(rawURL) }
	}
	return &Cache{
		client:  client,
		keyFn:   keyFn,
		logger:  opts.Logger,
		entries: expirable.NewLRU[string, *bot.SongInfo](maxEntries, nil, ttl),
		aliases: expirable.NewLRU[string, string](maxEntries*8, nil, ttl),
	}
}

// PlatformKeyFunc normalizes links a registered platform recognizes to
// "<platform>:<trackID>", so URL variants of the same track share one cache
// key. Unrecognized links fall back to the trimmed raw string.
func PlatformKeyFunc(platforms *registry.Registry) KeyFunc {
	return func(rawURL string) string {
		raw := strings.TrimSpace(rawURL)
		if id, p, ok := platforms.MatchURL(raw); ok && id != "" {
			return p.Name() + ":" + id
		}
		return raw
	}
}

// GetOrResolve returns the cached result for rawURL or resolves it through
// the client. Nothing is stored on failure; the error reaches every caller
// sharing the resolution. A caller whose context ends stops waiting and gets
// the context error, while the shared resolution keeps running for the rest.
func (c *Cache) GetOrResolve(ctx context.Context, rawURL string) (*bot.SongInfo, error) {
	key := c.keyFn(rawURL)

	if info, ok := c.lookup(key); ok {
		c.hits.Add(1)
		if c.logger != nil {
			c.logger.Debug("cache hit", "key", key)
		}
		return info, nil
	}
	c.misses.Add(1)

	ch := c.flight.DoChan(key, func() (interface{}, error) {
		// A racing flight may have stored the result between the miss
		// above and this function running.
		if info, ok := c.lookup(key); ok {
			return info, nil
		}
		if c.logger != nil {
			c.logger.Debug("resolving", "key", key, "url", rawURL)
		}
		// Detached from waiter cancellation; the client bounds its own
		// work with a timeout.
		info, err := c.client.Resolve(context.WithoutCancel(ctx), rawURL)
		if err != nil {
			return nil, err
		}
		c.store(key, info)
		return info, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*bot.SongInfo), nil
	}
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

func (c *Cache) Stats() Stats {
	return Stats{
		Entries: c.entries.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

func (c *Cache) lookup(key string) (*bot.SongInfo, bool) {
	canon, ok := c.aliases.Get(key)
	if !ok {
		return nil, false
	}
	return c.entries.Get(canon)
}

// store indexes the result under its canonical identity and points the
// request key plus every returned platform link at it.
func (c *Cache) store(requestKey string, info *bot.SongInfo) {
	canon := canonicalKey(info)
	if canon == "" {
		canon = requestKey
	}
	c.entries.Add(canon, info)
	c.aliases.Add(requestKey, canon)
	for _, link := range info.Links {
		c.aliases.Add(c.keyFn(link.URL), canon)
	}
	if c.logger != nil {
		c.logger.Debug("cached", "key", canon, "aliases", len(info.Links)+1)
	}
}

// canonicalKey derives a stable identity from the resolved entity ids,
// independent of which platform link was asked about.
func canonicalKey(info *bot.SongInfo) string {
	if len(info.IDs) == 0 {
		return ""
	}
	ids := make([]string, len(info.IDs))
	copy(ids, info.IDs)
	sort.Strings(ids)
	return strings.Join(ids, "|")
}
