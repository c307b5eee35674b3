package store

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// DateLayout is the calendar-day key used in the persisted documents.
const DateLayout = "2006-01-02"

// Entry is one day's recorded payload for one tracked item.
type Entry[T any] struct {
	Date  time.Time `json:"date"`
	Value T         `json:"value"`
}

// HistoryStore keeps a day-keyed time series per tracked item, backed by one
// atomically-replaced JSON document. Item names are exact-match keys: no
// trimming or case folding is applied, so "Charizard" and "charizard " are
// distinct items.
//
// At most one snapshot exists per item per calendar day; recording twice on
// the same day overwrites that day's value.
type HistoryStore[T any] struct {
	mu   sync.RWMutex
	path string
	data map[string]map[string]T // item -> "2006-01-02" -> payload
}

// OpenHistoryStore loads (or initializes) the history document at path.
func OpenHistoryStore[T any](path string) (*HistoryStore[T], error) {
	s := &HistoryStore[T]{
		path: path,
		data: make(map[string]map[string]T),
	}
	if err := loadDocument(path, &s.data); err != nil {
		return nil, err
	}
	if s.data == nil {
		s.data = make(map[string]map[string]T)
	}
	return s, nil
}

// Record appends or overwrites the payload for item at date's calendar day,
// creating the item's history if absent. The full document is rewritten; a
// write failure is returned to the caller since silently losing a snapshot
// breaks the time series.
func (s *HistoryStore[T]) Record(item string, date time.Time, payload T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := date.Format(DateLayout)
	if s.data[item] == nil {
		s.data[item] = make(map[string]T)
	}
	s.data[item][day] = payload

	return saveDocument(s.path, s.data)
}

// History returns the item's snapshots sorted ascending by date. Unknown
// items yield an empty slice.
func (s *HistoryStore[T]) History(item string) []Entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyLocked(item)
}

func (s *HistoryStore[T]) historyLocked(item string) []Entry[T] {
	days := s.data[item]
	entries := make([]Entry[T], 0, len(days))
	for day, value := range days {
		date, err := time.Parse(DateLayout, day)
		if err != nil {
			continue
		}
		entries = append(entries, Entry[T]{Date: date, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries
}

// ErrInsufficientHistory reports that an item has fewer than two snapshots,
// so there is nothing to compare against.
var ErrInsufficientHistory = errors.New("fewer than two snapshots recorded")

// LatestTwo returns the two chronologically-last snapshots for the item,
// previous first. It reports ErrInsufficientHistory when fewer than two
// exist.
func (s *HistoryStore[T]) LatestTwo(item string) (previous, latest Entry[T], err error) {
	entries := s.History(item)
	if len(entries) < 2 {
		return previous, latest, ErrInsufficientHistory
	}
	return entries[len(entries)-2], entries[len(entries)-1], nil
}

// Latest returns the most recent snapshot for the item, if any.
func (s *HistoryStore[T]) Latest(item string) (Entry[T], bool) {
	entries := s.History(item)
	if len(entries) == 0 {
		return Entry[T]{}, false
	}
	return entries[len(entries)-1], true
}

// Items returns all tracked item names in sorted order.
func (s *HistoryStore[T]) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]string, 0, len(s.data))
	for item := range s.data {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}
