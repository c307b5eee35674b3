package services

import (
	"sort"

	"github.com/Holy623/psa-pop-tracker/internal/models"
	"github.com/Holy623/psa-pop-tracker/internal/store"
)

// ItemTotal is one row of the top-population ranking.
type ItemTotal struct {
	Item  string `json:"item"`
	Total int    `json:"total"`
}

// ItemGrowth is one row of the fastest-growth ranking. Percent is the change
// in total population between an item's two latest snapshots.
type ItemGrowth struct {
	Item    string  `json:"item"`
	Percent float64 `json:"percent"`
}

// TrendAggregator computes cross-item rankings from the full population
// history. Both rankings are pure read-side computations.
type TrendAggregator struct {
	populations *store.HistoryStore[models.PopulationRecord]
}

// NewTrendAggregator creates a trend aggregator over the population history.
func NewTrendAggregator(populations *store.HistoryStore[models.PopulationRecord]) *TrendAggregator {
	return &TrendAggregator{populations: populations}
}

// TopByLatestTotal ranks items descending by the summed counts of their most
// recent snapshot, returning at most n rows. Ties keep item name order.
func (a *TrendAggregator) TopByLatestTotal(n int) []ItemTotal {
	rows := []ItemTotal{}
	for _, item := range a.populations.Items() {
		latest, ok := a.populations.Latest(item)
		if !ok {
			continue
		}
		rows = append(rows, ItemTotal{Item: item, Total: latest.Value.Total()})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// TopByGrowth ranks items descending by percent change of total population
// between their two latest snapshots, returning at most n rows. Items with
// fewer than two snapshots are excluded; a previous total of zero counts as
// zero growth rather than a division error.
func (a *TrendAggregator) TopByGrowth(n int) []ItemGrowth {
	rows := []ItemGrowth{}
	for _, item := range a.populations.Items() {
		previous, latest, err := a.populations.LatestTwo(item)
		if err != nil {
			continue
		}
		prevTotal := previous.Value.Total()
		latestTotal := latest.Value.Total()

		percent := 0.0
		if prevTotal != 0 {
			percent = float64(latestTotal-prevTotal) / float64(prevTotal) * 100
		}
		rows = append(rows, ItemGrowth{Item: item, Percent: percent})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Percent > rows[j].Percent
	})
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
