package platform

import (
	"sort"

	"github.com/akarpov91/SongLinkBot-Go/bot"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
)

// Extractor finds music platform URLs in free-form message text.
type Extractor struct {
	registry *registry.Registry
}

// NewExtractor creates an Extractor over the given registry.
func NewExtractor(r *registry.Registry) *Extractor {
	return &Extractor{registry: r}
}

type match struct {
	start int
	end   int
	link  bot.SongLink
}

// Extract returns every known platform URL in text, ordered by position of
// appearance. The same URL posted twice yields two entries. Overlapping
// matches keep the earliest one, the longer winning on equal start.
// Returns nil when text contains no known platform URLs.
func (e *Extractor) Extract(text string) []bot.SongLink {
	if text == "" {
		return nil
	}

	var found []match
	for _, p := range e.registry.GetAll() {
		pattern := p.URLPattern()
		if pattern == nil {
			continue
		}
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			found = append(found, match{
				start: loc[0],
				end:   loc[1],
				link: bot.SongLink{
					PlatformKey:  p.Name(),
					PlatformName: p.DisplayName(),
					URL:          text[loc[0]:loc[1]],
				},
			})
		}
	}
	if len(found) == 0 {
		return nil
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].start != found[j].start {
			return found[i].start < found[j].start
		}
		return found[i].end > found[j].end
	})

	links := make([]bot.SongLink, 0, len(found))
	lastEnd := -1
	for _, m := range found {
		if m.start < lastEnd {
			continue
		}
		links = append(links, m.link)
		lastEnd = m.end
	}
	return links
}

// HasLink reports whether text contains at least one known platform URL.
func (e *Extractor) HasLink(text string) bool {
	if text == "" {
		return false
	}
	for _, p := range e.registry.GetAll() {
		pattern := p.URLPattern()
		if pattern == nil {
			continue
		}
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
