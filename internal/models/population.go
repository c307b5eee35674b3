package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Authority is a grading organization producing independent population counts
type Authority string

const (
	AuthorityPSA Authority = "PSA"
	AuthorityCGC Authority = "CGC"
	AuthoritySGC Authority = "SGC"
)

// AllAuthorities returns the grading authorities queried on every lookup.
// Adding a new authority only requires a new constant and a source for it;
// population keys are namespaced so no schema change is needed.
func AllAuthorities() []Authority {
	return []Authority{AuthorityPSA, AuthorityCGC, AuthoritySGC}
}

// GradeKey builds the composite population key, e.g. "10_PSA".
// Keys are namespaced by authority so merging per-authority maps can never
// collide.
func GradeKey(grade string, authority Authority) string {
	return fmt.Sprintf("%s_%s", grade, authority)
}

// SplitGradeKey is the inverse of GradeKey. The authority suffix follows the
// last underscore; everything before it is the grade token.
func SplitGradeKey(key string) (grade string, authority Authority) {
	idx := strings.LastIndex(key, "_")
	if idx < 0 {
		return key, ""
	}
	return key[:idx], Authority(key[idx+1:])
}

// PopulationRecord maps composite grade keys ("10_PSA") to graded counts.
// One record is the combined population across all authorities for a single
// item on a single day.
type PopulationRecord map[string]int

// Total sums all counts in the record.
func (r PopulationRecord) Total() int {
	total := 0
	for _, count := range r {
		total += count
	}
	return total
}

// SortedKeys returns the record's keys ordered for display: descending by
// the grade's numeric value, then lexically. The numeric value is extracted
// only for ordering and never stored.
func (r PopulationRecord) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		gi, _ := SplitGradeKey(keys[i])
		gj, _ := SplitGradeKey(keys[j])
		vi, oki := GradeSortValue(gi)
		vj, okj := GradeSortValue(gj)
		if oki && okj && vi != vj {
			return vi > vj
		}
		if oki != okj {
			return oki // numeric grades ahead of free-text ones
		}
		return keys[i] < keys[j]
	})
	return keys
}

// GradeSortValue extracts the sortable numeric value of a free-text grade
// token ("10" -> 10, "9.5" -> 9.5). Tokens with no leading number ("Authentic")
// report ok=false and sort after numeric grades.
func GradeSortValue(grade string) (float64, bool) {
	end := 0
	seenDot := false
	for end < len(grade) {
		c := grade[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot && end > 0 {
			seenDot = true
			end++
			continue
		}
		break
	}
	token := strings.TrimSuffix(grade[:end], ".")
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
