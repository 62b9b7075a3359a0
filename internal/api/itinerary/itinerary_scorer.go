package itinerary

import (
	"strings"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

// Slot keyword lists, checked in this order. A name or description hit
// beats the category default, which beats the afternoon fallback.
var (
	eveningKeywords = []string{"dinner", "night", "evening"}
	morningKeywords = []string{"breakfast", "morning", "sunrise"}
)

// categorySlots maps normalized activity categories to their natural slot.
var categorySlots = map[string]types.TimeSlot{
	"nightlife":     types.SlotEvening,
	"dining":        types.SlotEvening,
	"entertainment": types.SlotEvening,
	"shows":         types.SlotEvening,
	"museums":       types.SlotMorning,
	"sightseeing":   types.SlotMorning,
	"tours":         types.SlotMorning,
	"outdoor":       types.SlotMorning,
	"nature":        types.SlotMorning,
	"shopping":      types.SlotAfternoon,
	"culture":       types.SlotAfternoon,
	"relaxation":    types.SlotAfternoon,
}

// scoreActivity ranks one candidate for scheduling. The score is the
// unweighted sum of four stable terms:
//
//	rating * 2                      (0-10)
//	min(reviews, 1000) / 1000       (0-1, saturating)
//	+1 when the tier matches the requested travel style
//	duration fit: +1 for 2-4h inclusive, +0.5 under 2h, -0.5 over 4h
//
// Higher is better. The preferred slot is inferred independently of the
// score.
func scoreActivity(a types.Activity, prefs types.SchedulePreferences) types.ScoredActivity {
	score := a.Rating * 2

	reviews := a.NumberOfReviews
	if reviews > 1000 {
		reviews = 1000
	}
	score += float64(reviews) / 1000

	if a.Tier == prefs.TravelStyle.Tier() {
		score++
	}

	switch d := a.DurationHours; {
	case d >= 2 && d <= 4:
		score++
	case d < 2:
		score += 0.5
	default:
		score -= 0.5
	}

	return types.ScoredActivity{
		Activity:          a,
		Score:             score,
		PreferredTimeSlot: preferredTimeSlot(a),
		DurationHours:     a.DurationHours,
	}
}

func preferredTimeSlot(a types.Activity) types.TimeSlot {
	text := strings.ToLower(a.Name + " " + a.Description)
	for _, kw := range eveningKeywords {
		if strings.Contains(text, kw) {
			return types.SlotEvening
		}
	}
	for _, kw := range morningKeywords {
		if strings.Contains(text, kw) {
			return types.SlotMorning
		}
	}
	if slot, ok := categorySlots[strings.ToLower(strings.TrimSpace(a.Category))]; ok {
		return slot
	}
	return types.SlotAfternoon
}
