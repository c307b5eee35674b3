// Package sources implements the outbound collaborators: the PSA, CGC and
// SGC population report scrapers and the eBay listing scraper. Every source
// is best-effort; a failed or unparseable fetch degrades to an empty result
// for that source only, so partial data still produces a usable lookup.
package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/Holy623/psa-pop-tracker/internal/models"
)

const (
	requestTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; PSA Pop Tracker/1.0)"
)

// ErrSourceUnavailable wraps any fetch or parse failure of an outbound
// source. Callers match on it to degrade instead of aborting the lookup.
var ErrSourceUnavailable = errors.New("source unavailable")

// PopulationSource returns raw grade -> count-text pairs for a query, as
// scraped. Counts are parsed and filtered downstream by the normalizer.
type PopulationSource interface {
	Authority() models.Authority
	Query(ctx context.Context, query string) (map[string]string, error)
}

// NewClient builds the shared HTTP client: bounded timeout on every call so
// a stuck upstream cannot block a lookup indefinitely, fixed User-Agent,
// no retries (failures degrade instead).
func NewClient() *resty.Client {
	return resty.New().
		SetTimeout(requestTimeout).
		SetHeader("User-Agent", userAgent)
}

// fetchDocument rate-limits, fetches url, and parses the response body. All
// failure modes collapse into ErrSourceUnavailable.
func fetchDocument(ctx context.Context, client *resty.Client, limiter *rate.Limiter, url string) (*goquery.Document, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrSourceUnavailable, url, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return doc, nil
}
