package odesli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/akarpov91/SongLinkBot-Go/bot"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
	"github.com/akarpov91/SongLinkBot-Go/bot/resolve"
)

// unknownArtist substitutes for entities the API reports without an artist.
const unknownArtist = "<Unknown>"

// defaultCooldown gates requests after a 429 without a Retry-After header.
const defaultCooldown = 5 * time.Second

// Options configure the Odesli API client.
type Options struct {
	// APIURL is the links endpoint, e.g. https://api.song.link/v1-alpha.1/links.
	APIURL string

	// APIKey raises the request quota when set.
	APIKey string

	// UserCountry is passed through to the API for region-specific links.
	UserCountry string

	// Timeout bounds one resolution including the single transport retry.
	Timeout time.Duration

	// RatePerMinute paces outgoing requests (the free tier allows 10/min).
	RatePerMinute int

	// Burst is the pacing burst size.
	Burst int
}

// Client resolves music links through the Odesli (song.link) API.
// It retries transient transport failures once, never retries a definitive
// response, and trips a circuit breaker on persistent upstream trouble.
type Client struct {
	apiURL      string
	apiKey      string
	userCountry string
	timeout     time.Duration
	retry       *retryablehttp.Client
	breaker     *gobreaker.CircuitBreaker
	limiter     *rate.Limiter
	platforms   *registry.Registry
	logger      bot.Logger

	mu        sync.Mutex
	notBefore time.Time // 429 cool-down gate
}

// New creates an Odesli client with retry, circuit breaker and request pacing.
func New(opts Options, platforms *registry.Registry, logger bot.Logger) *Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 1
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil
	// Retry transport errors once; any HTTP response, including 429 and 5xx,
	// is final for this call.
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		return false, nil
	}

	settings := gobreaker.Settings{
		Name:        "odesli-api",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// A 200 with no match is the service working fine, and 429s are
		// handled by the cool-down gate.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, resolve.ErrNoMatch) || errors.Is(err, resolve.ErrRateLimited)
		},
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	perMinute := opts.RatePerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		apiURL:      opts.APIURL,
		apiKey:      opts.APIKey,
		userCountry: opts.UserCountry,
		timeout:     timeout,
		retry:       client,
		breaker:     gobreaker.NewCircuitBreaker(settings),
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
		platforms:   platforms,
		logger:      logger,
	}
}

// Resolve queries the API for rawURL and builds the consolidated result.
// Failures satisfy errors.Is(err, resolve.ErrResolutionFailed).
func (c *Client) Resolve(ctx context.Context, rawURL string) (*bot.SongInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.waitTurn(ctx); err != nil {
		return nil, &resolve.ResolutionError{URL: rawURL, Err: mapContextErr(err)}
	}

	var info *bot.SongInfo
	_, err := c.breaker.Execute(func() (interface{}, error) {
		res, err := c.fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		info = res
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &resolve.ResolutionError{URL: rawURL, Err: resolve.ErrUnavailable}
		}
		var resErr *resolve.ResolutionError
		if errors.As(err, &resErr) {
			return nil, err
		}
		return nil, &resolve.ResolutionError{URL: rawURL, Err: fmt.Errorf("%w: %v", resolve.ErrUpstream, err)}
	}
	return info, nil
}

// waitTurn paces requests and waits out an armed 429 cool-down.
func (c *Client) waitTurn(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	wait := time.Until(c.notBefore)
	c.mu.Unlock()
	if wait <= 0 {
		return nil
	}

	if c.logger != nil {
		c.logger.Debug("waiting out API cool-down", "wait", wait)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func (c *Client) armCooldown(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = defaultCooldown
	}
	c.mu.Lock()
	if nb := time.Now().Add(retryAfter); nb.After(c.notBefore) {
		c.notBefore = nb
	}
	c.mu.Unlock()
}

func (c *Client) fetch(ctx context.Context, rawURL string) (*bot.SongInfo, error) {
	endpoint, err := c.buildURL(rawURL)
	if err != nil {
		return nil, &resolve.ResolutionError{URL: rawURL, Err: err}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &resolve.ResolutionError{URL: rawURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.retry.Do(req)
	if err != nil {
		return nil, &resolve.ResolutionError{URL: rawURL, Err: mapContextErr(err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.armCooldown(retryAfter)
		if c.logger != nil {
			c.logger.Warn("API rate limit hit", "retry_after", retryAfter)
		}
		return nil, &resolve.ResolutionError{URL: rawURL, Err: resolve.ErrRateLimited}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if c.logger != nil {
			c.logger.Error("API returned error status", "status", resp.StatusCode, "body", string(body))
		}
		return nil, &resolve.ResolutionError{
			URL: rawURL,
			Err: fmt.Errorf("%w: status %d", resolve.ErrUpstream, resp.StatusCode),
		}
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &resolve.ResolutionError{
			URL: rawURL,
			Err: fmt.Errorf("%w: decode response: %v", resolve.ErrUpstream, err),
		}
	}

	return c.buildSongInfo(rawURL, &payload)
}

func (c *Client) buildURL(rawURL string) (string, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("url", rawURL)
	if c.userCountry != "" {
		q.Set("userCountry", c.userCountry)
	}
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// buildSongInfo condenses the API payload into a SongInfo: canonical ids
// from all entities, the most frequent title and artist, the first
// thumbnail, and platform links filtered to registered platforms in
// reply order.
func (c *Client) buildSongInfo(rawURL string, payload *apiResponse) (*bot.SongInfo, error) {
	if len(payload.Entities) == 0 || len(payload.Links) == 0 {
		return nil, &resolve.ResolutionError{URL: rawURL, Err: resolve.ErrNoMatch}
	}

	uniqueIDs := make([]string, 0, len(payload.Entities))
	for uid := range payload.Entities {
		uniqueIDs = append(uniqueIDs, uid)
	}
	sort.Strings(uniqueIDs)

	var (
		ids         []string
		seen        = make(map[string]struct{})
		titleCount  = make(map[string]int)
		artistCount = make(map[string]int)
		titleOrder  []string
		artistOrder []string
		thumbnail   string
	)
	for _, uid := range uniqueIDs {
		entity := payload.Entities[uid]

		if id := string(entity.ID); id != "" {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}

		if entity.Title != "" {
			if titleCount[entity.Title] == 0 {
				titleOrder = append(titleOrder, entity.Title)
			}
			titleCount[entity.Title]++
		}

		artist := entity.ArtistName
		if artist == "" {
			artist = unknownArtist
		}
		if artistCount[artist] == 0 {
			artistOrder = append(artistOrder, artist)
		}
		artistCount[artist]++

		if thumbnail == "" && entity.ThumbnailURL != "" {
			thumbnail = entity.ThumbnailURL
		}
	}

	title := mostCommon(titleCount, titleOrder)
	if len(ids) == 0 || title == "" {
		return nil, &resolve.ResolutionError{
			URL: rawURL,
			Err: fmt.Errorf("%w: incomplete response", resolve.ErrUpstream),
		}
	}

	links := c.orderedLinks(payload.Links)
	if len(links) == 0 {
		// The song exists upstream but on no platform this bot knows.
		return nil, &resolve.ResolutionError{URL: rawURL, Err: resolve.ErrNoMatch}
	}

	return &bot.SongInfo{
		IDs:        ids,
		Title:      title,
		Artist:     mostCommon(artistCount, artistOrder),
		Thumbnail:  thumbnail,
		Links:      links,
		SourceURLs: []string{rawURL},
	}, nil
}

func (c *Client) orderedLinks(apiLinks map[string]apiPlatformLink) []bot.PlatformLink {
	var links []bot.PlatformLink
	for _, p := range c.platforms.GetAll() {
		al, ok := apiLinks[p.Name()]
		if !ok || al.URL == "" {
			if c.logger != nil {
				c.logger.Debug("no url for platform in response", "platform", p.Name())
			}
			continue
		}
		links = append(links, bot.PlatformLink{
			Key:   p.Name(),
			Name:  p.DisplayName(),
			URL:   al.URL,
			Order: p.Order(),
		})
	}
	return links
}

// mostCommon picks the highest count value, the first encountered winning ties.
func mostCommon(counts map[string]int, order []string) string {
	best := ""
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// mapContextErr converts a deadline expiry into the timeout sentinel so
// callers see a resolution failure rather than a bare context error.
func mapContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return resolve.ErrTimeout
	}
	return fmt.Errorf("%w: %v", resolve.ErrUpstream, err)
}
