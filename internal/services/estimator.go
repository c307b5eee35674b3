package services

import (
	"math"
	"sort"
	"strings"

	"github.com/Holy623/psa-pop-tracker/internal/models"
)

// medianMinListings is the minimum number of prices for the median to rank
// meaningfully; below it the representative listing is chosen by distance to
// the mean instead.
const medianMinListings = 3

// EstimatePrice derives a market price estimate from raw marketplace
// listings for a query. Listings missing an image URL or whose title does
// not contain every whitespace-delimited query token (case-insensitive) are
// discarded first; irrelevant search results otherwise contaminate the
// estimate.
//
// The recorded price is the arithmetic mean rounded to two decimals. The
// representative listing is the one closest to the median of observed prices
// (mean when too few to rank), exact ties going to the earliest listing.
//
// ok is false when no listing survives filtering; the caller is expected to
// fall back to the last recorded price and cached image rather than fail.
func EstimatePrice(query string, listings []models.Listing) (estimate models.PriceEstimate, ok bool) {
	valid := FilterListings(query, listings)
	if len(valid) == 0 {
		return models.PriceEstimate{}, false
	}

	sum := 0.0
	for _, listing := range valid {
		sum += listing.Price
	}
	mean := sum / float64(len(valid))

	center := mean
	if len(valid) >= medianMinListings {
		center = medianPrice(valid)
	}

	rep := valid[0]
	best := math.Abs(rep.Price - center)
	for _, listing := range valid[1:] {
		if d := math.Abs(listing.Price - center); d < best {
			rep = listing
			best = d
		}
	}

	return models.PriceEstimate{
		Mean:           math.Round(mean*100) / 100,
		ListingCount:   len(valid),
		Representative: &rep,
	}, true
}

// FilterListings drops listings that cannot contribute to an estimate: no
// positive price, no image, or a title that does not mention every query
// token.
func FilterListings(query string, listings []models.Listing) []models.Listing {
	tokens := strings.Fields(strings.ToLower(query))

	valid := make([]models.Listing, 0, len(listings))
	for _, listing := range listings {
		if listing.Price <= 0 || listing.ImageURL == "" {
			continue
		}
		if !titleMatches(listing.Title, tokens) {
			continue
		}
		valid = append(valid, listing)
	}
	return valid
}

func titleMatches(title string, tokens []string) bool {
	lower := strings.ToLower(title)
	for _, token := range tokens {
		if !strings.Contains(lower, token) {
			return false
		}
	}
	return true
}

func medianPrice(listings []models.Listing) float64 {
	prices := make([]float64, len(listings))
	for i, listing := range listings {
		prices[i] = listing.Price
	}
	sort.Float64s(prices)

	mid := len(prices) / 2
	if len(prices)%2 == 1 {
		return prices[mid]
	}
	return (prices[mid-1] + prices[mid]) / 2
}
