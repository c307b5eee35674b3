package services

import (
	"testing"

	"github.com/Holy623/psa-pop-tracker/internal/models"
)

func TestMergePopulations(t *testing.T) {
	merged := MergePopulations(map[models.Authority]map[string]string{
		models.AuthorityPSA: {"10": "1,234"},
		models.AuthorityCGC: {"10": "500"},
	})

	if len(merged) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(merged), merged)
	}
	if merged["10_PSA"] != 1234 {
		t.Errorf("10_PSA = %d, want 1234", merged["10_PSA"])
	}
	if merged["10_CGC"] != 500 {
		t.Errorf("10_CGC = %d, want 500", merged["10_CGC"])
	}
}

func TestMergePopulationsDropsUnparsableCounts(t *testing.T) {
	merged := MergePopulations(map[models.Authority]map[string]string{
		models.AuthorityPSA: {"9": "N/A", "10": "42"},
	})

	if _, ok := merged["9_PSA"]; ok {
		t.Error("unparsable count should be dropped, not zeroed")
	}
	if merged["10_PSA"] != 42 {
		t.Errorf("10_PSA = %d, want 42", merged["10_PSA"])
	}
}

func TestMergePopulationsFiltersNoiseRows(t *testing.T) {
	merged := MergePopulations(map[models.Authority]map[string]string{
		models.AuthorityPSA: {
			"Grade":  "100", // header row
			"Total":  "900",
			"10":     "5",
			"9":      "7", // single digit grade is valid
			"9.5":    "3", // second char is not a digit, dropped by the heuristic
			"10 GEM": "2",
		},
	})

	want := map[string]int{"10_PSA": 5, "9_PSA": 7, "10 GEM_PSA": 2}
	if len(merged) != len(want) {
		t.Fatalf("expected %d keys, got %d: %v", len(want), len(merged), merged)
	}
	for key, count := range want {
		if merged[key] != count {
			t.Errorf("%s = %d, want %d", key, merged[key], count)
		}
	}
}

func TestMergePopulationsEmptySources(t *testing.T) {
	merged := MergePopulations(map[models.Authority]map[string]string{
		models.AuthorityPSA: {},
		models.AuthorityCGC: nil,
	})
	if len(merged) != 0 {
		t.Errorf("expected empty record, got %v", merged)
	}

	merged = MergePopulations(nil)
	if len(merged) != 0 {
		t.Errorf("expected empty record from nil input, got %v", merged)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		text  string
		count int
		ok    bool
	}{
		{"1,234", 1234, true},
		{" 500 ", 500, true},
		{"0", 0, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"-5", 0, false},
		{"12.5", 0, false},
	}

	for _, tt := range tests {
		count, ok := parseCount(tt.text)
		if ok != tt.ok || count != tt.count {
			t.Errorf("parseCount(%q) = (%d, %v), want (%d, %v)", tt.text, count, ok, tt.count, tt.ok)
		}
	}
}
