package odesli

import (
	"encoding/json"
	"fmt"
)

// entityID tolerates both string and numeric values; Bandcamp entity ids
// arrive as JSON numbers while every other provider sends strings.
type entityID string

func (id *entityID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = entityID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("entity id: %w", err)
	}
	*id = entityID(n.String())
	return nil
}

// apiResponse mirrors the song.link links endpoint payload.
// Fields the bot does not use are ignored.
type apiResponse struct {
	EntityUniqueID string                     `json:"entityUniqueId"`
	UserCountry    string                     `json:"userCountry"`
	Entities       map[string]apiEntity       `json:"entitiesByUniqueId"`
	Links          map[string]apiPlatformLink `json:"linksByPlatform"`
}

type apiEntity struct {
	ID           entityID `json:"id"`
	Provider     string   `json:"apiProvider"`
	Title        string   `json:"title"`
	ArtistName   string   `json:"artistName"`
	ThumbnailURL string   `json:"thumbnailUrl"`
}

type apiPlatformLink struct {
	URL            string `json:"url"`
	EntityUniqueID string `json:"entityUniqueId"`
}
