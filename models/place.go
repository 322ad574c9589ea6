package models

// Coordinates is a latitude/longitude pair. It is only ever populated as a
// whole: a record never carries half a pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PlaceRecord holds the fields extracted for one place. Every field is
// independently optional; absent fields are omitted from JSON output.
type PlaceRecord struct {
	Name         string       `json:"name,omitempty"`
	PlaceID      string       `json:"place_id,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	Address      string       `json:"address,omitempty"`
	Rating       *float64     `json:"rating,omitempty"`
	ReviewsCount *int         `json:"reviews_count,omitempty"`
	Categories   []string     `json:"categories,omitempty"`
	Website      string       `json:"website,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Thumbnail    string       `json:"thumbnail,omitempty"`

	// Link is the source place URL, attached by the pipeline.
	Link string `json:"link,omitempty"`
}

// Empty reports whether no field resolved. An empty record means the
// extraction attempt failed and the record is discarded.
func (p *PlaceRecord) Empty() bool {
	return p.Name == "" &&
		p.PlaceID == "" &&
		p.Coordinates == nil &&
		p.Address == "" &&
		p.Rating == nil &&
		p.ReviewsCount == nil &&
		len(p.Categories) == 0 &&
		p.Website == "" &&
		p.Phone == "" &&
		p.Thumbnail == ""
}
