package services

import (
	"errors"

	"github.com/Holy623/psa-pop-tracker/internal/models"
	"github.com/Holy623/psa-pop-tracker/internal/store"
)

// ChangeDetector compares the two most recent population snapshots of an
// item and reports grade counts that moved. It is a pure read over history
// and never writes to the store.
type ChangeDetector struct {
	populations *store.HistoryStore[models.PopulationRecord]
}

// NewChangeDetector creates a change detector over the population history.
func NewChangeDetector(populations *store.HistoryStore[models.PopulationRecord]) *ChangeDetector {
	return &ChangeDetector{populations: populations}
}

// DetectChanges returns one event per grade key whose count differs between
// the previous and latest snapshot of item, in display key order. Keys new
// in the latest snapshot are a baseline, not a change. Items with fewer than
// two snapshots yield an empty list.
func (d *ChangeDetector) DetectChanges(item string) ([]models.ChangeEvent, error) {
	previous, latest, err := d.populations.LatestTwo(item)
	if errors.Is(err, store.ErrInsufficientHistory) {
		return []models.ChangeEvent{}, nil
	}
	if err != nil {
		return nil, err
	}

	events := []models.ChangeEvent{}
	for _, key := range latest.Value.SortedKeys() {
		newValue := latest.Value[key]
		oldValue, existed := previous.Value[key]
		if !existed || oldValue == newValue {
			continue
		}
		events = append(events, models.ChangeEvent{
			Item:     item,
			Key:      key,
			OldValue: oldValue,
			NewValue: newValue,
		})
	}
	return events, nil
}
