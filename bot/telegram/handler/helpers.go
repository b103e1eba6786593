package handler

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"

	botpkg "github.com/akarpov91/SongLinkBot-Go/bot"
	logpkg "github.com/akarpov91/SongLinkBot-Go/bot/logger"
	"github.com/akarpov91/SongLinkBot-Go/bot/platform/registry"
	"github.com/mymmrac/telego"
)

func commandName(text, botName string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	parts := strings.SplitN(text, " ", 2)
	command := strings.TrimPrefix(parts[0], "/")
	if command == "" {
		return ""
	}
	if strings.Contains(command, "@") {
		seg := strings.SplitN(command, "@", 2)
		command = seg[0]
		if botName != "" && len(seg) > 1 && seg[1] != "" && seg[1] != botName {
			return ""
		}
	}
	return command
}

func displayName(user *telego.User) string {
	if user == nil {
		return ""
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return user.FirstName
}

func platformNames(r *registry.Registry) string {
	if r == nil {
		return ""
	}
	all := r.GetAll()
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.DisplayName())
	}
	return strings.Join(names, " | ")
}

// resolvedLink is the outcome of resolving one extracted link.
type resolvedLink struct {
	link botpkg.SongLink
	info *botpkg.SongInfo
	err  error
}

// resolveLinks resolves every link concurrently. One link failing never
// blocks the others; its slot carries the error instead.
func resolveLinks(ctx context.Context, resolver botpkg.Resolver, links []botpkg.SongLink, logger *logpkg.Logger) []resolvedLink {
	results := make([]resolvedLink, len(links))
	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := resolver.GetOrResolve(ctx, link.URL)
			if err != nil && logger != nil {
				logger.Warn("cannot resolve link", "url", link.URL, "error", err)
			}
			results[i] = resolvedLink{link: link, info: info, err: err}
		}()
	}
	wg.Wait()
	return results
}

// replyEntry is one numbered item of a reply. A nil info marks a link that
// failed to resolve; sources lists the message URLs behind the entry.
type replyEntry struct {
	info    *botpkg.SongInfo
	sources []string
}

// buildReplyEntries turns per-link outcomes into reply entries, merging
// results that point to the same song.
func buildReplyEntries(results []resolvedLink) []replyEntry {
	entries := make([]replyEntry, 0, len(results))
	for _, r := range results {
		entry := replyEntry{sources: []string{r.link.URL}}
		if r.err == nil && r.info != nil {
			entry.info = r.info
		}
		entries = append(entries, entry)
	}
	return mergeEntries(entries)
}

// mergeEntries combines entries whose songs share a canonical id. Failed
// entries are never merged. Resolved SongInfo values may be shared with
// other callers, so merging always builds fresh ones.
func mergeEntries(entries []replyEntry) []replyEntry {
	merged := make([]replyEntry, 0, len(entries))
	consumed := make([]bool, len(entries))
	for i, entry := range entries {
		if consumed[i] {
			continue
		}
		if entry.info == nil {
			merged = append(merged, entry)
			continue
		}
		cur := entry
		for j := i + 1; j < len(entries); j++ {
			if consumed[j] || entries[j].info == nil {
				continue
			}
			if !sharesAnyID(cur.info, entries[j].info) {
				continue
			}
			sources := make([]string, 0, len(cur.sources)+len(entries[j].sources))
			sources = append(sources, cur.sources...)
			sources = append(sources, entries[j].sources...)
			cur = replyEntry{
				info:    mergeSongInfos(cur.info, entries[j].info),
				sources: sources,
			}
			consumed[j] = true
		}
		merged = append(merged, cur)
	}
	return merged
}

func sharesAnyID(a, b *botpkg.SongInfo) bool {
	for _, id := range b.IDs {
		if a.HasID(id) {
			return true
		}
	}
	return false
}

// mergeSongInfos builds a new SongInfo holding the union of both songs'
// ids and platform links. On a platform clash the second song's URL wins.
// Title and artist stay those of the first song.
func mergeSongInfos(a, b *botpkg.SongInfo) *botpkg.SongInfo {
	ids := make([]string, 0, len(a.IDs)+len(b.IDs))
	ids = append(ids, a.IDs...)
	for _, id := range b.IDs {
		if !a.HasID(id) {
			ids = append(ids, id)
		}
	}

	links := make([]botpkg.PlatformLink, 0, len(a.Links)+len(b.Links))
	index := make(map[string]int, len(a.Links))
	for _, l := range a.Links {
		index[l.Key] = len(links)
		links = append(links, l)
	}
	for _, l := range b.Links {
		if at, ok := index[l.Key]; ok {
			links[at] = l
			continue
		}
		index[l.Key] = len(links)
		links = append(links, l)
	}
	sort.SliceStable(links, func(i, j int) bool { return links[i].Order < links[j].Order })

	sources := make([]string, 0, len(a.SourceURLs)+len(b.SourceURLs))
	sources = append(sources, a.SourceURLs...)
	sources = append(sources, b.SourceURLs...)

	thumbnail := a.Thumbnail
	if thumbnail == "" {
		thumbnail = b.Thumbnail
	}

	return &botpkg.SongInfo{
		IDs:        ids,
		Title:      a.Title,
		Artist:     a.Artist,
		Thumbnail:  thumbnail,
		Links:      links,
		SourceURLs: sources,
	}
}

// replaceURLsWithFootnotes swaps every entry's source URLs in text for a
// numbered marker like [1].
func replaceURLsWithFootnotes(text string, entries []replyEntry) string {
	for i, entry := range entries {
		marker := fmt.Sprintf("[%d]", i+1)
		for _, u := range entry.sources {
			text = strings.ReplaceAll(text, u, marker)
		}
	}
	return text
}

func platformLinksLine(links []botpkg.PlatformLink) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		parts = append(parts, fmt.Sprintf(platformLinkTag, html.EscapeString(l.URL), html.EscapeString(l.Name)))
	}
	return strings.Join(parts, linkSeparator)
}

// songMessageBody renders a single song as a standalone HTML message, used
// for inline query results.
func songMessageBody(info *botpkg.SongInfo) string {
	header := fmt.Sprintf("<b>%s - %s</b>", html.EscapeString(info.Artist), html.EscapeString(info.Title))
	return header + "\n" + platformLinksLine(info.Links)
}
