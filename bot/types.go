package bot

import "time"

// SongLink is a music URL found in message text, tagged with the platform
// whose pattern matched it.
type SongLink struct {
	PlatformKey  string
	PlatformName string
	URL          string
}

// PlatformLink is one platform's URL for a resolved song.
type PlatformLink struct {
	Key   string
	Name  string
	URL   string
	Order int
}

// SongInfo is the consolidated resolution result for one song: its identity
// across platforms plus the metadata used to render a reply. Values are
// treated as immutable once produced; merging builds a new SongInfo.
type SongInfo struct {
	IDs        []string       // canonical entity ids reported by the resolver
	Title      string
	Artist     string
	Thumbnail  string
	Links      []PlatformLink // sorted by platform order
	SourceURLs []string       // URLs from the triggering message that produced this song
}

// HasID reports whether id is one of the song's canonical ids.
func (s *SongInfo) HasID(id string) bool {
	for _, v := range s.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// GroupSettings represents group-level preferences for the bot.
type GroupSettings struct {
	ID            uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
	ChatID        int64
	AutoDelete    bool
	LinkDetection bool
}
