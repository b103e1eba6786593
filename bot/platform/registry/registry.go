package registry

import (
	"errors"
	"regexp"
	"sync"
)

// Platform describes a music streaming platform known to the bot.
type Platform interface {
	// Name returns the platform key used by the resolution API
	// (e.g. "deezer", "appleMusic").
	Name() string

	// DisplayName returns the human readable name used in replies.
	DisplayName() string

	// Order determines the platform's position in replies; lower comes first.
	Order() int

	// MatchURL checks if the platform can handle the given URL.
	// Returns the extracted track ID and true if matched, or empty string and false if not.
	MatchURL(url string) (string, bool)

	// URLPattern returns the regexp used to find this platform's URLs in
	// free-form text. A nil pattern excludes the platform from extraction.
	URLPattern() *regexp.Regexp
}

// Registry manages registered Platform implementations in a thread-safe manner.
type Registry struct {
	mu        sync.RWMutex
	platforms map[string]Platform
	// Kept sorted by Order, registration order breaking ties.
	ordered []Platform
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{
		platforms: make(map[string]Platform),
		ordered:   make([]Platform, 0),
	}
}

// Register adds a platform to the registry.
// Returns an error if the platform is nil, has an empty name, or is already registered.
func (r *Registry) Register(p Platform) error {
	if p == nil {
		return errors.New("platform cannot be nil")
	}

	name := p.Name()
	if name == "" {
		return errors.New("platform name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.platforms[name]; exists {
		return errors.New("platform already registered: " + name)
	}

	r.platforms[name] = p

	pos := len(r.ordered)
	for i, existing := range r.ordered {
		if p.Order() < existing.Order() {
			pos = i
			break
		}
	}
	r.ordered = append(r.ordered, nil)
	copy(r.ordered[pos+1:], r.ordered[pos:])
	r.ordered[pos] = p

	return nil
}

// Unregister removes a platform by name. Returns true when it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.platforms[name]
	if !ok {
		return false
	}
	delete(r.platforms, name)
	for i, existing := range r.ordered {
		if existing == p {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	return true
}

// Get retrieves a platform by name.
// Returns the platform and true if found, or nil and false if not found.
func (r *Registry) Get(name string) (Platform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.platforms[name]
	return p, ok
}

// GetAll returns all registered platforms sorted by Order.
// The returned slice is a copy and safe for concurrent use.
func (r *Registry) GetAll() []Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Platform, 0, len(r.ordered))
	result = append(result, r.ordered...)

	return result
}

// MatchURL finds the first platform that can handle the given URL.
// Returns the extracted track ID, the platform, and true if a match is found.
// Returns empty string, nil, and false if no platform matches.
// Platforms are checked in Order.
func (r *Registry) MatchURL(url string) (string, Platform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.ordered {
		if id, ok := p.MatchURL(url); ok {
			return id, p, true
		}
	}

	return "", nil, false
}

// Reset clears all registered platforms.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.platforms = make(map[string]Platform)
	r.ordered = r.ordered[:0]
}

// Default is the global default registry instance.
// Platforms can register themselves by calling Default.Register() in their init() functions.
var Default = New()
