package models

// SearchRequest is the payload for POST /api/v1/search.
type SearchRequest struct {
	// Query is the Maps search query (e.g. "restaurants in New York"). Required.
	Query string `json:"query" binding:"required"`

	// MaxPlaces caps the number of places scraped. 0 means scrape all found.
	MaxPlaces int `json:"max_places,omitempty" binding:"omitempty,min=1"`

	// Language is the Maps interface language code (hl parameter).
	// Default: "en".
	Language string `json:"language,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults() {
	if r.Language == "" {
		r.Language = "en"
	}
}
