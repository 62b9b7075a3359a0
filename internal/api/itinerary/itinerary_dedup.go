package itinerary

import (
	"strings"
	"unicode"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

// jaccardThreshold is the name-similarity cutoff above which two candidates
// in the same day and slot count as the same thing.
const jaccardThreshold = 0.7

// collapseNearDuplicates keeps one survivor per duplicate group. Only
// candidates suggested for the same day and slot are compared; survivors
// keep their input order so "first encountered" ties stay stable.
func collapseNearDuplicates(scored []types.ScoredActivity) []types.ScoredActivity {
	type slotKey struct {
		day  int
		slot types.TimeSlot
	}

	kept := make([]types.ScoredActivity, 0, len(scored))
	byKey := make(map[slotKey][]int)

	for _, cand := range scored {
		key := slotKey{day: cand.Activity.DayNumber, slot: cand.Activity.TimeSlot}
		duplicate := false
		for _, idx := range byKey[key] {
			if !sameCandidate(kept[idx].Activity, cand.Activity) {
				continue
			}
			duplicate = true
			if !firstWins(kept[idx], cand) {
				kept[idx] = cand
			}
			break
		}
		if !duplicate {
			byKey[key] = append(byKey[key], len(kept))
			kept = append(kept, cand)
		}
	}
	return kept
}

// sameCandidate reports whether two activities are near-duplicates: name
// token-Jaccard above the threshold, or an exact location+category match.
// The exact match requires both fields to be present, so sparse provider
// listings with empty metadata are never lumped together.
func sameCandidate(a, b types.Activity) bool {
	if tokenJaccard(a.Name, b.Name) > jaccardThreshold {
		return true
	}
	return a.Location != "" && a.Category != "" &&
		a.Location == b.Location && a.Category == b.Category
}

// firstWins resolves a duplicate pair: a rating gap over 0.3 wins outright,
// then a review lead of at least 1.5x, then the cheaper price. Remaining
// ties keep the first encountered.
func firstWins(first, second types.ScoredActivity) bool {
	a, b := first.Activity, second.Activity

	if diff := a.Rating - b.Rating; diff > 0.3 {
		return true
	} else if diff < -0.3 {
		return false
	}

	ar, br := float64(a.NumberOfReviews), float64(b.NumberOfReviews)
	if ar > br && ar >= 1.5*br {
		return true
	}
	if br > ar && br >= 1.5*ar {
		return false
	}

	if a.Price.Amount != b.Price.Amount {
		return a.Price.Amount < b.Price.Amount
	}
	return true
}

func tokenJaccard(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	intersection := 0
	for tok := range ta {
		if tb[tok] {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

// tokenSet lowercases and splits on anything that is not a letter or digit,
// which strips punctuation along the way.
func tokenSet(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
