package models

// Listing is one marketplace search result. Listings are transient: only the
// derived price estimate and the chosen representative image are persisted.
type Listing struct {
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
	Title    string  `json:"title"`
}

// PriceEstimate is the derived market price for one query.
type PriceEstimate struct {
	Mean           float64  `json:"mean"`
	ListingCount   int      `json:"listing_count"`
	Representative *Listing `json:"representative,omitempty"`
}
