package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSongInfoHasID(t *testing.T) {
	song := &SongInfo{
		IDs:    []string{"SPOTIFY_SONG::1", "DEEZER_SONG::2"},
		Title:  "Song",
		Artist: "Artist",
	}

	assert.True(t, song.HasID("SPOTIFY_SONG::1"))
	assert.True(t, song.HasID("DEEZER_SONG::2"))
	assert.False(t, song.HasID("ITUNES_SONG::3"))
	assert.False(t, song.HasID(""))
}

func TestSongInfoHasIDEmpty(t *testing.T) {
	song := &SongInfo{Title: "Song"}
	require.Empty(t, song.IDs)
	assert.False(t, song.HasID("anything"))
}

func TestGroupSettingsZeroValue(t *testing.T) {
	// Fresh rows get their real defaults from the repository; the zero
	// value must read as everything off so it is never mistaken for one.
	var settings GroupSettings
	assert.Zero(t, settings.ChatID)
	assert.False(t, settings.AutoDelete)
	assert.False(t, settings.LinkDetection)
}
