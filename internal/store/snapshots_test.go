package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func day(offset int) time.Time {
	return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestHistoryOrderedByDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s, err := OpenHistoryStore[int](path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	// Record out of order
	s.Record("item", day(2), 30)
	s.Record("item", day(0), 10)
	s.Record("item", day(1), 20)

	history := s.History("item")
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Date.Before(history[i-1].Date) {
			t.Errorf("history out of order at %d: %v", i, history)
		}
	}
	if history[0].Value != 10 || history[2].Value != 30 {
		t.Errorf("values out of order: %v", history)
	}
}

func TestSameDayOverwrites(t *testing.T) {
	s, err := OpenHistoryStore[float64](filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	s.Record("item", day(0), 100.0)
	s.Record("item", day(0), 150.0)

	history := s.History("item")
	if len(history) != 1 {
		t.Fatalf("same-day write must overwrite, got %d entries", len(history))
	}
	if history[0].Value != 150.0 {
		t.Errorf("value = %v, want the second write 150.0", history[0].Value)
	}

	// Different time of day, same calendar day: still one entry
	s.Record("item", day(0).Add(18*time.Hour), 175.0)
	if got := len(s.History("item")); got != 1 {
		t.Errorf("time of day must not split snapshots, got %d entries", got)
	}
}

func TestUnknownItemEmptyHistory(t *testing.T) {
	s, err := OpenHistoryStore[int](filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if got := s.History("nobody"); len(got) != 0 {
		t.Errorf("expected empty history, got %v", got)
	}
}

func TestExactMatchItemKeys(t *testing.T) {
	s, err := OpenHistoryStore[int](filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	s.Record("Charizard", day(0), 1)
	s.Record("charizard ", day(0), 2)

	if len(s.Items()) != 2 {
		t.Error("item keys must not be normalized; case and whitespace variants are distinct items")
	}
}

func TestLatestTwo(t *testing.T) {
	s, err := OpenHistoryStore[int](filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if _, _, err := s.LatestTwo("item"); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory for unknown item, got %v", err)
	}

	s.Record("item", day(0), 10)
	if _, _, err := s.LatestTwo("item"); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory with one snapshot, got %v", err)
	}

	s.Record("item", day(1), 20)
	s.Record("item", day(2), 30)
	previous, latest, err := s.LatestTwo("item")
	if err != nil {
		t.Fatalf("LatestTwo failed: %v", err)
	}
	if previous.Value != 20 || latest.Value != 30 {
		t.Errorf("LatestTwo = (%d, %d), want (20, 30)", previous.Value, latest.Value)
	}
}

func TestRoundTripAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	s, err := OpenHistoryStore[map[string]int](path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	record := map[string]int{"10_PSA": 1234, "9.5_CGC": 500}
	if err := s.Record("Charizard", day(0), record); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	// Reopen as a fresh process would
	reopened, err := OpenHistoryStore[map[string]int](path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	history := reopened.History("Charizard")
	if len(history) != 1 {
		t.Fatalf("expected 1 entry after reload, got %d", len(history))
	}
	for key, want := range record {
		if got := history[0].Value[key]; got != want {
			t.Errorf("%s = %d after reload, want %d", key, got, want)
		}
	}
	if !history[0].Date.Equal(day(0)) {
		t.Errorf("date = %v after reload, want %v", history[0].Date, day(0))
	}
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenHistoryStore[int](filepath.Join(dir, "history.json"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := s.Record("item", day(0), 1); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "history.json" {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only history.json on disk, got %v", names)
	}
}

func TestRecordFailurePropagates(t *testing.T) {
	// Point the store at a path whose parent cannot exist.
	s, err := OpenHistoryStore[int](filepath.Join(t.TempDir(), "missing", "history.json"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := s.Record("item", day(0), 1); err == nil {
		t.Error("a persistence failure must propagate, not be swallowed")
	}
}

func TestImageCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image_cache.json")
	c, err := OpenImageCache(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if _, ok := c.Get("Charizard"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Put("Charizard", "https://img.example/old.jpg")
	c.Put("Charizard", "https://img.example/new.jpg")

	url, ok := c.Get("Charizard")
	if !ok || url != "https://img.example/new.jpg" {
		t.Errorf("Get = (%q, %v), want the overwritten URL", url, ok)
	}

	// Survives restart
	reopened, err := OpenImageCache(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if url, ok := reopened.Get("Charizard"); !ok || url != "https://img.example/new.jpg" {
		t.Errorf("reloaded Get = (%q, %v), want cached URL", url, ok)
	}
}
