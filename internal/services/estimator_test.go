package services

import (
	"testing"

	"github.com/Holy623/psa-pop-tracker/internal/models"
)

func listing(price float64, title string) models.Listing {
	return models.Listing{Price: price, ImageURL: "https://img.example/x.jpg", Title: title}
}

func TestEstimatePriceMeanAndRepresentative(t *testing.T) {
	listings := []models.Listing{
		listing(100, "Charizard Base Set PSA 10"),
		listing(200, "Charizard Base Set holo"),
		listing(300, "1999 Charizard Base Set"),
	}

	estimate, ok := EstimatePrice("Charizard Base Set", listings)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if estimate.Mean != 200.0 {
		t.Errorf("Mean = %v, want 200.0", estimate.Mean)
	}
	if estimate.ListingCount != 3 {
		t.Errorf("ListingCount = %d, want 3", estimate.ListingCount)
	}
	if estimate.Representative == nil || estimate.Representative.Price != 200 {
		t.Errorf("Representative = %+v, want the median-closest listing at 200", estimate.Representative)
	}
}

func TestEstimatePriceMedianBeatsOutlier(t *testing.T) {
	// A single extreme listing drags the mean but not the median; the
	// representative should stay near the typical price.
	listings := []models.Listing{
		listing(90, "Pikachu promo card"),
		listing(100, "Pikachu promo card"),
		listing(110, "Pikachu promo card"),
		listing(5000, "Pikachu promo card graded"),
	}

	estimate, ok := EstimatePrice("Pikachu promo", listings)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if estimate.Mean != 1325.0 {
		t.Errorf("Mean = %v, want 1325.0", estimate.Mean)
	}
	// Median of {90,100,110,5000} is 105; 100 and 110 are equidistant so the
	// first occurrence wins.
	if estimate.Representative.Price != 100 {
		t.Errorf("Representative price = %v, want 100", estimate.Representative.Price)
	}
}

func TestEstimatePriceMeanFallbackForFewListings(t *testing.T) {
	listings := []models.Listing{
		listing(100, "Blastoise card"),
		listing(300, "Blastoise card mint"),
	}

	estimate, ok := EstimatePrice("Blastoise", listings)
	if !ok {
		t.Fatal("expected an estimate")
	}
	// Too few listings to rank by median; closest to the mean (200) ties at
	// 100 and 300, first occurrence wins.
	if estimate.Representative.Price != 100 {
		t.Errorf("Representative price = %v, want 100", estimate.Representative.Price)
	}
}

func TestEstimatePriceRounding(t *testing.T) {
	listings := []models.Listing{
		listing(10, "Mewtwo card"),
		listing(10, "Mewtwo card"),
		listing(10.01, "Mewtwo card"),
	}

	estimate, ok := EstimatePrice("Mewtwo", listings)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if estimate.Mean != 10.00 {
		t.Errorf("Mean = %v, want 10.00", estimate.Mean)
	}
}

func TestFilterListings(t *testing.T) {
	listings := []models.Listing{
		listing(100, "Charizard Base Set"),
		listing(0, "Charizard Base Set"),                                      // no price
		{Price: 150, ImageURL: "", Title: "Charizard Base Set"},               // no image
		listing(200, "Blastoise Base Set"),                                    // missing query token
		listing(250, "CHARIZARD base SET first edition"),                      // case-insensitive match
		{Price: 300, ImageURL: "https://img.example/y.jpg", Title: "Chariz"}, // partial token only
	}

	valid := FilterListings("Charizard Base Set", listings)
	if len(valid) != 2 {
		t.Fatalf("expected 2 valid listings, got %d: %v", len(valid), valid)
	}
	if valid[0].Price != 100 || valid[1].Price != 250 {
		t.Errorf("kept wrong listings: %v", valid)
	}
}

func TestEstimatePriceNoValidListings(t *testing.T) {
	_, ok := EstimatePrice("Charizard", nil)
	if ok {
		t.Error("expected no estimate for nil listings")
	}

	_, ok = EstimatePrice("Charizard", []models.Listing{listing(100, "Blastoise")})
	if ok {
		t.Error("expected no estimate when no listing matches the query")
	}
}
