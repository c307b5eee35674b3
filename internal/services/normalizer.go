package services

import (
	"strconv"
	"strings"

	"github.com/Holy623/psa-pop-tracker/internal/models"
)

// MergePopulations combines per-authority raw grade counts into one
// population record keyed by "{grade}_{AUTHORITY}". Any subset of
// authorities may be empty; keys are namespaced by authority so merge order
// cannot overwrite anything.
//
// Upstream formatting is unreliable, so this is deliberately best-effort:
// counts that fail to parse are dropped rather than zeroed or errored, and
// grade tokens are kept only when they start with digits, which filters out
// header and noise rows from the scraped tables.
func MergePopulations(raw map[models.Authority]map[string]string) models.PopulationRecord {
	merged := make(models.PopulationRecord)
	for authority, grades := range raw {
		for grade, countText := range grades {
			if !validGradeToken(grade) {
				continue
			}
			count, ok := parseCount(countText)
			if !ok {
				continue
			}
			merged[models.GradeKey(grade, authority)] = count
		}
	}
	return merged
}

// validGradeToken accepts a grade only when its first two characters (or its
// only character, for single-character grades) are digits. A heuristic, not
// a grade-format validator.
func validGradeToken(grade string) bool {
	if grade == "" {
		return false
	}
	prefix := grade
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	for i := 0; i < len(prefix); i++ {
		if prefix[i] < '0' || prefix[i] > '9' {
			return false
		}
	}
	return true
}

// parseCount parses a graded-count cell, stripping thousands separators.
// Negative counts never appear upstream and are rejected.
func parseCount(text string) (int, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	count, err := strconv.Atoi(cleaned)
	if err != nil || count < 0 {
		return 0, false
	}
	return count, true
}
