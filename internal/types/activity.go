package types

import (
	"strings"
)

// TimeSlot is the scheduling granularity within a day.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

// Slots lists the time slots in scheduling order.
func Slots() []TimeSlot {
	return []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening}
}

// Activity is one candidate itinerary entry, built from an activity
// provider listing or an LLM suggestion. Tier is derived by the tier
// classifier; DayNumber and TimeSlot carry the source's suggestion and
// may be zero-valued for free candidates.
type Activity struct {
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DurationHours   float64   `json:"duration,omitempty"`
	Price           Price     `json:"price"`
	Category        string    `json:"category,omitempty"`
	Location        string    `json:"location,omitempty"`
	Rating          float64   `json:"rating,omitempty"`
	NumberOfReviews int       `json:"numberOfReviews,omitempty"`
	TimeSlot        TimeSlot  `json:"timeSlot,omitempty"`
	DayNumber       int       `json:"dayNumber,omitempty"`
	ReferenceURL    string    `json:"referenceUrl,omitempty"`
	BookingInfo     string    `json:"bookingInfo,omitempty"`
	Tier            PriceTier `json:"tier,omitempty"`
}

// Key is the identity used to guarantee an activity is scheduled at most
// once: lowercased name plus location.
func (a Activity) Key() string {
	return strings.ToLower(strings.TrimSpace(a.Name)) + "|" + strings.ToLower(strings.TrimSpace(a.Location))
}

// ScoredActivity pairs an activity with its preference score and the time
// slot inferred from its description, independent of any requested slot.
type ScoredActivity struct {
	Activity          Activity `json:"activity"`
	Score             float64  `json:"score"`
	PreferredTimeSlot TimeSlot `json:"preferredTimeSlot"`
	DurationHours     float64  `json:"duration"`
}

// SchedulePreferences steer scoring and day-by-day assembly.
type SchedulePreferences struct {
	TravelStyle TravelStyle `json:"travelStyle,omitempty"`
	TripDays    int         `json:"tripDays" validate:"required,min=1,max=30"`
	DailyBudget float64     `json:"dailyBudget,omitempty" validate:"omitempty,gt=0"`
	TotalBudget float64     `json:"totalBudget,omitempty" validate:"omitempty,gt=0"`
	Interests   []string    `json:"interests,omitempty"`
}

// BudgetPerDay resolves the per-day spending cap. An explicit daily budget
// wins; otherwise the total budget is spread over the trip days. Zero
// means no cap.
func (p SchedulePreferences) BudgetPerDay() float64 {
	if p.DailyBudget > 0 {
		return p.DailyBudget
	}
	if p.TotalBudget > 0 && p.TripDays > 0 {
		return p.TotalBudget / float64(p.TripDays)
	}
	return 0
}
