package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

func TestScoreActivity_Formula(t *testing.T) {
	prefs := types.SchedulePreferences{TravelStyle: types.StyleBudget, TripDays: 3}

	tests := []struct {
		name     string
		activity types.Activity
		want     float64
	}{
		{
			name:     "rating doubled, ideal duration, tier match",
			activity: types.Activity{Name: "A", Rating: 4.5, Tier: types.TierBudget, DurationHours: 3},
			want:     4.5*2 + 0 + 1 + 1,
		},
		{
			name:     "review volume saturates at 1000",
			activity: types.Activity{Name: "B", Rating: 4, NumberOfReviews: 2500, Tier: types.TierBudget, DurationHours: 3},
			want:     8 + 1 + 1 + 1,
		},
		{
			name:     "partial review volume",
			activity: types.Activity{Name: "C", Rating: 4, NumberOfReviews: 500, Tier: types.TierBudget, DurationHours: 3},
			want:     8 + 0.5 + 1 + 1,
		},
		{
			name:     "no tier match",
			activity: types.Activity{Name: "D", Rating: 4, Tier: types.TierPremium, DurationHours: 3},
			want:     8 + 0 + 0 + 1,
		},
		{
			name:     "short activity",
			activity: types.Activity{Name: "E", Rating: 4, Tier: types.TierBudget, DurationHours: 1.5},
			want:     8 + 0 + 1 + 0.5,
		},
		{
			name:     "unknown duration counts as short",
			activity: types.Activity{Name: "F", Rating: 4, Tier: types.TierBudget},
			want:     8 + 0 + 1 + 0.5,
		},
		{
			name:     "overlong activity penalized",
			activity: types.Activity{Name: "G", Rating: 4, Tier: types.TierBudget, DurationHours: 6},
			want:     8 + 0 + 1 - 0.5,
		},
		{
			name:     "boundary durations are ideal",
			activity: types.Activity{Name: "H", Rating: 4, Tier: types.TierBudget, DurationHours: 4},
			want:     8 + 0 + 1 + 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreActivity(tt.activity, prefs)
			assert.InDelta(t, tt.want, got.Score, 1e-9)
		})
	}
}

func TestScoreActivity_DefaultStyleTargetsMedium(t *testing.T) {
	prefs := types.SchedulePreferences{TripDays: 2}

	medium := scoreActivity(types.Activity{Name: "M", Rating: 4, Tier: types.TierMedium, DurationHours: 3}, prefs)
	budget := scoreActivity(types.Activity{Name: "B", Rating: 4, Tier: types.TierBudget, DurationHours: 3}, prefs)

	assert.InDelta(t, 1.0, medium.Score-budget.Score, 1e-9)
}

func TestPreferredTimeSlot(t *testing.T) {
	tests := []struct {
		name     string
		activity types.Activity
		want     types.TimeSlot
	}{
		{name: "dinner keyword", activity: types.Activity{Name: "Seine Dinner Cruise"}, want: types.SlotEvening},
		{name: "night keyword in description", activity: types.Activity{Name: "City Lights", Description: "Panoramic night views"}, want: types.SlotEvening},
		{name: "sunrise keyword", activity: types.Activity{Name: "Sunrise Hot Air Balloon"}, want: types.SlotMorning},
		{name: "breakfast keyword", activity: types.Activity{Name: "Local Breakfast Tasting"}, want: types.SlotMorning},
		{name: "category default museums", activity: types.Activity{Name: "Louvre Guided Visit", Category: "museums"}, want: types.SlotMorning},
		{name: "category default nightlife", activity: types.Activity{Name: "Rooftop Bars Crawl", Category: "nightlife"}, want: types.SlotEvening},
		{name: "keyword beats category default", activity: types.Activity{Name: "Night at the Museum", Category: "museums"}, want: types.SlotEvening},
		{name: "afternoon fallback", activity: types.Activity{Name: "Old Town Stroll"}, want: types.SlotAfternoon},
		{name: "unknown category falls back", activity: types.Activity{Name: "Pottery Class", Category: "crafts"}, want: types.SlotAfternoon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preferredTimeSlot(tt.activity))
		})
	}
}
