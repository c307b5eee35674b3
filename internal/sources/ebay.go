package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/Holy623/psa-pop-tracker/internal/models"
)

const ebaySearchURL = "https://www.ebay.com/sch/i.html?_nkw=%s"

// EbaySource scrapes eBay search results into raw listings. Listings with
// an unparseable price cell are dropped here; relevance filtering happens in
// the price estimator.
type EbaySource struct {
	client    *resty.Client
	limiter   *rate.Limiter
	searchURL string
}

// NewEbaySource creates the eBay listing scraper.
func NewEbaySource(client *resty.Client, limiter *rate.Limiter) *EbaySource {
	return &EbaySource{client: client, limiter: limiter, searchURL: ebaySearchURL}
}

// Query fetches the eBay search page for query and extracts one listing per
// result card.
func (s *EbaySource) Query(ctx context.Context, query string) ([]models.Listing, error) {
	searchURL := fmt.Sprintf(s.searchURL, strings.ReplaceAll(query, " ", "+"))
	doc, err := fetchDocument(ctx, s.client, s.limiter, searchURL)
	if err != nil {
		return nil, err
	}

	listings := []models.Listing{}
	doc.Find("li.s-item").Each(func(_ int, item *goquery.Selection) {
		price, ok := ParseListingPrice(item.Find("span.s-item__price").First().Text())
		if !ok {
			return
		}
		image, _ := item.Find("img").First().Attr("src")
		title := strings.TrimSpace(item.Find(".s-item__title").First().Text())

		listings = append(listings, models.Listing{
			Price:    price,
			ImageURL: image,
			Title:    title,
		})
	})
	return listings, nil
}

// FetchImage returns the first image URL on the search page for query, used
// as the card preview when no representative listing is available.
func (s *EbaySource) FetchImage(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf(s.searchURL, strings.ReplaceAll(query, " ", "+"))
	doc, err := fetchDocument(ctx, s.client, s.limiter, searchURL)
	if err != nil {
		return "", err
	}

	src, ok := doc.Find("img").First().Attr("src")
	if !ok || src == "" {
		return "", fmt.Errorf("%w: no image found for %q", ErrSourceUnavailable, query)
	}
	return src, nil
}

// ParseListingPrice parses an eBay price cell like "$1,234.56" or
// "$10.00 to $15.00" (ranges take the first amount).
func ParseListingPrice(text string) (float64, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if fields := strings.Fields(cleaned); len(fields) > 0 {
		cleaned = fields[0]
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}
