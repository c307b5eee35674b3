package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Holy623/psa-pop-tracker/internal/metrics"
	"github.com/Holy623/psa-pop-tracker/internal/models"
	"github.com/Holy623/psa-pop-tracker/internal/sources"
	"github.com/Holy623/psa-pop-tracker/internal/store"
)

// PlaceholderImageURL is shown when neither a live listing nor the image
// cache has anything for an item.
const PlaceholderImageURL = "https://via.placeholder.com/300x400?text=No+Image"

// resultCacheSize bounds the in-process hot cache of recent lookup results.
const resultCacheSize = 50

// Session holds one dashboard user's search history. State lives on the
// session object, not in process globals, so its lifecycle is tied to the
// session.
type Session struct {
	ID string

	mu      sync.Mutex
	history []string
}

// NewSession creates a session with a fresh identifier.
func NewSession() *Session {
	return &Session{ID: uuid.New().String()}
}

// Remember appends query to the session's search history, skipping
// duplicates.
func (s *Session) Remember(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, previous := range s.history {
		if previous == query {
			return
		}
	}
	s.history = append(s.history, query)
}

// History returns the session's searches in the order first seen.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// SessionRegistry tracks live sessions by ID.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry creates an empty session registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Get returns the session with the given ID, creating a new session when the
// ID is empty or unknown.
func (r *SessionRegistry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		return session
	}
	session := NewSession()
	r.sessions[session.ID] = session
	return session
}

// LookupResult is everything one lookup produces for the dashboard.
type LookupResult struct {
	Query        string                  `json:"query"`
	ImageURL     string                  `json:"image_url"`
	ImageSource  string                  `json:"image_source"` // "live", "cached" or "placeholder"
	Price        *float64                `json:"price,omitempty"`
	PriceLive    bool                    `json:"price_live"`
	ListingCount int                     `json:"listing_count"`
	Population   models.PopulationRecord `json:"population"`
	Changes      []models.ChangeEvent    `json:"changes"`
	LookedUpAt   time.Time               `json:"looked_up_at"`
}

// ListingSource is the marketplace collaborator: raw listings for the price
// estimate plus a page image for the fallback chain.
type ListingSource interface {
	Query(ctx context.Context, query string) ([]models.Listing, error)
	FetchImage(ctx context.Context, query string) (string, error)
}

// Tracker runs the lookup pipeline: query every source independently,
// normalize and estimate, persist the day's snapshots, then report changes
// against the previous snapshot.
type Tracker struct {
	popSources []sources.PopulationSource
	listings   ListingSource

	populations *store.HistoryStore[models.PopulationRecord]
	prices      *store.HistoryStore[float64]
	images      *store.ImageCache
	detector    *ChangeDetector

	recent *lru.Cache[string, *LookupResult]
	now    func() time.Time
}

// NewTracker wires the lookup pipeline together.
func NewTracker(
	popSources []sources.PopulationSource,
	listings ListingSource,
	populations *store.HistoryStore[models.PopulationRecord],
	prices *store.HistoryStore[float64],
	images *store.ImageCache,
	detector *ChangeDetector,
) *Tracker {
	recent, err := lru.New[string, *LookupResult](resultCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		log.Fatalf("Failed to create lookup result cache: %v", err)
	}
	return &Tracker{
		popSources:  popSources,
		listings:    listings,
		populations: populations,
		prices:      prices,
		images:      images,
		detector:    detector,
		recent:      recent,
		now:         time.Now,
	}
}

// Lookup performs one full lookup for query on behalf of session. Source
// failures degrade to empty results per source; only a history-store write
// failure is returned as an error, since silently losing a snapshot would
// corrupt the time series.
func (t *Tracker) Lookup(ctx context.Context, session *Session, query string) (*LookupResult, error) {
	start := t.now()
	metrics.LookupsTotal.Inc()
	defer func() {
		metrics.LookupDuration.Observe(time.Since(start).Seconds())
	}()

	session.Remember(query)

	result := &LookupResult{
		Query:      query,
		Changes:    []models.ChangeEvent{},
		LookedUpAt: start,
	}

	population, err := t.collectPopulation(ctx, query)
	if err != nil {
		return nil, err
	}
	result.Population = population

	if err := t.estimateAndRecordPrice(ctx, query, result); err != nil {
		return nil, err
	}

	changes, err := t.detector.DetectChanges(query)
	if err != nil {
		return nil, err
	}
	result.Changes = changes

	metrics.TrackedItemsTotal.Set(float64(len(t.populations.Items())))
	t.recent.Add(query, result)
	return result, nil
}

// RecentResult returns the last in-process lookup result for query, letting
// the dashboard re-render without another scrape round.
func (t *Tracker) RecentResult(query string) (*LookupResult, bool) {
	return t.recent.Get(query)
}

// collectPopulation queries every grading authority independently, merges
// whatever succeeded, and records the combined snapshot when non-empty.
func (t *Tracker) collectPopulation(ctx context.Context, query string) (models.PopulationRecord, error) {
	raw := make(map[models.Authority]map[string]string, len(t.popSources))
	for _, source := range t.popSources {
		name := string(source.Authority())

		scrapeStart := t.now()
		grades, err := source.Query(ctx, query)
		metrics.ScrapeDuration.WithLabelValues(name).Observe(time.Since(scrapeStart).Seconds())

		if err != nil {
			metrics.SourceFailuresTotal.WithLabelValues(name).Inc()
			log.Printf("Population source %s failed for %q: %v", name, query, err)
			continue
		}
		raw[source.Authority()] = grades
	}

	merged := MergePopulations(raw)
	if len(merged) == 0 {
		return merged, nil
	}

	if err := t.populations.Record(query, t.now(), merged); err != nil {
		return nil, err
	}
	metrics.SnapshotWritesTotal.WithLabelValues("population").Inc()
	return merged, nil
}

// estimateAndRecordPrice runs the listing scrape and price estimation,
// falling back to the last recorded price and cached image when no usable
// listings come back.
func (t *Tracker) estimateAndRecordPrice(ctx context.Context, query string, result *LookupResult) error {
	scrapeStart := t.now()
	listings, err := t.listings.Query(ctx, query)
	metrics.ScrapeDuration.WithLabelValues("ebay").Observe(time.Since(scrapeStart).Seconds())
	if err != nil {
		metrics.SourceFailuresTotal.WithLabelValues("ebay").Inc()
		log.Printf("Listing source failed for %q: %v", query, err)
		listings = nil
	}

	estimate, ok := EstimatePrice(query, listings)
	if ok {
		metrics.PriceEstimatesTotal.Inc()
		if err := t.prices.Record(query, t.now(), estimate.Mean); err != nil {
			return err
		}
		metrics.SnapshotWritesTotal.WithLabelValues("price").Inc()

		price := estimate.Mean
		result.Price = &price
		result.PriceLive = true
		result.ListingCount = estimate.ListingCount

		result.ImageURL = estimate.Representative.ImageURL
		result.ImageSource = "live"
		if err := t.images.Put(query, estimate.Representative.ImageURL); err != nil {
			// Best-effort cache: the lookup still succeeded.
			log.Printf("Failed to cache image for %q: %v", query, err)
		}
		return nil
	}

	metrics.PriceFallbacksTotal.Inc()
	if latest, found := t.prices.Latest(query); found {
		price := latest.Value
		result.Price = &price
	}
	t.fillFallbackImage(ctx, query, result)
	return nil
}

// fillFallbackImage walks the image fallback chain: a live page image, then
// the persisted cache, then the fixed placeholder.
func (t *Tracker) fillFallbackImage(ctx context.Context, query string, result *LookupResult) {
	if url, err := t.listings.FetchImage(ctx, query); err == nil {
		result.ImageURL = url
		result.ImageSource = "live"
		if err := t.images.Put(query, url); err != nil {
			log.Printf("Failed to cache image for %q: %v", query, err)
		}
		return
	} else if !errors.Is(err, sources.ErrSourceUnavailable) {
		log.Printf("Image fetch failed for %q: %v", query, err)
	}

	if url, ok := t.images.Get(query); ok {
		result.ImageURL = url
		result.ImageSource = "cached"
		return
	}

	result.ImageURL = PlaceholderImageURL
	result.ImageSource = "placeholder"
}
