package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Holy623/psa-pop-tracker/internal/models"
	"github.com/Holy623/psa-pop-tracker/internal/services"
	"github.com/Holy623/psa-pop-tracker/internal/store"
)

// HistoryHandler serves the persisted time series and derived views: chart
// data, change events, and trend rankings.
type HistoryHandler struct {
	populations *store.HistoryStore[models.PopulationRecord]
	prices      *store.HistoryStore[float64]
	detector    *services.ChangeDetector
	trends      *services.TrendAggregator
}

// NewHistoryHandler creates a history handler.
func NewHistoryHandler(
	populations *store.HistoryStore[models.PopulationRecord],
	prices *store.HistoryStore[float64],
	detector *services.ChangeDetector,
	trends *services.TrendAggregator,
) *HistoryHandler {
	return &HistoryHandler{
		populations: populations,
		prices:      prices,
		detector:    detector,
		trends:      trends,
	}
}

// chartPoint is one day of the combined price/population chart.
type chartPoint struct {
	Date       string   `json:"date"`
	Price      *float64 `json:"price,omitempty"`
	Population *int     `json:"population,omitempty"`
}

// GetHistory returns the full day-by-day history for an item, merged across
// the price and population series for charting.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	item := c.Query("item")
	if item == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item is required"})
		return
	}

	points := map[string]*chartPoint{}
	order := []string{}

	point := func(day string) *chartPoint {
		if p, ok := points[day]; ok {
			return p
		}
		p := &chartPoint{Date: day}
		points[day] = p
		order = append(order, day)
		return p
	}

	for _, entry := range h.prices.History(item) {
		price := entry.Value
		point(entry.Date.Format(store.DateLayout)).Price = &price
	}
	for _, entry := range h.populations.History(item) {
		total := entry.Value.Total()
		point(entry.Date.Format(store.DateLayout)).Population = &total
	}

	// Price and population entries were each appended in date order; a
	// final sort merges the two series.
	merged := make([]chartPoint, 0, len(order))
	for _, day := range order {
		merged = append(merged, *points[day])
	}
	sortChartPoints(merged)

	c.JSON(http.StatusOK, gin.H{
		"item":   item,
		"points": merged,
	})
}

// GetChanges returns population changes between the two latest snapshots of
// an item. Items with fewer than two snapshots get an empty list.
func (h *HistoryHandler) GetChanges(c *gin.Context) {
	item := c.Query("item")
	if item == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item is required"})
		return
	}

	changes, err := h.detector.DetectChanges(item)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item":    item,
		"changes": changes,
	})
}

// GetItems lists every tracked item.
func (h *HistoryHandler) GetItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.populations.Items()})
}

// GetTopPopulation returns items ranked by latest total population.
func (h *HistoryHandler) GetTopPopulation(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rankings": h.trends.TopByLatestTotal(limitParam(c))})
}

// GetTopGrowth returns items ranked by population growth between their two
// latest snapshots.
func (h *HistoryHandler) GetTopGrowth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rankings": h.trends.TopByGrowth(limitParam(c))})
}

func limitParam(c *gin.Context) int {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

func sortChartPoints(points []chartPoint) {
	// Dates are ISO formatted, so lexical order is chronological order.
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
}
