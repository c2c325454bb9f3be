package recipe

import "encoding/json"

// PlaceholderImage is substituted at render time when a source has no image.
const PlaceholderImage = "https://via.placeholder.com/300x200.png?text=No+Image"

// Recipe is the canonical shape every provider record is unified into.
// Raw keeps the original payload so a detail view can recover
// provider-specific fields that were not hoisted here.
type Recipe struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	Image           string          `json:"image,omitempty"`
	Source          string          `json:"source,omitempty"`
	URL             string          `json:"url,omitempty"`
	Category        string          `json:"category,omitempty"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

// IsLocal reports whether the recipe was authored in the local store rather
// than fetched from a remote provider.
func (r Recipe) IsLocal() bool {
	return r.Source == "local"
}
