package types

// DayPlan holds the chosen activity for each slot of one day. Empty slots
// stay nil; SpentBudget is the sum of the committed activities' prices.
type DayPlan struct {
	Day         int       `json:"day"`
	Morning     *Activity `json:"morning,omitempty"`
	Afternoon   *Activity `json:"afternoon,omitempty"`
	Evening     *Activity `json:"evening,omitempty"`
	SpentBudget float64   `json:"spentBudget"`
}

// SlotActivity returns the activity committed to the given slot, or nil.
func (d *DayPlan) SlotActivity(slot TimeSlot) *Activity {
	switch slot {
	case SlotMorning:
		return d.Morning
	case SlotAfternoon:
		return d.Afternoon
	case SlotEvening:
		return d.Evening
	default:
		return nil
	}
}

// Commit places an activity in the given slot and books its price.
func (d *DayPlan) Commit(slot TimeSlot, a *Activity) {
	switch slot {
	case SlotMorning:
		d.Morning = a
	case SlotAfternoon:
		d.Afternoon = a
	case SlotEvening:
		d.Evening = a
	default:
		return
	}
	d.SpentBudget += a.Price.Amount
}

// Schedule is the day-by-day plan produced by the optimizer. Days are
// ordered 1..N; an activity identity key appears in at most one cell.
type Schedule struct {
	Days        []DayPlan `json:"days"`
	DailyBudget float64   `json:"dailyBudget,omitempty"`
	TotalCost   float64   `json:"totalCost"`
}

// TieredSchedules are the three suggested plans built by the tier-layered
// optimizer variant, one per price tier.
type TieredSchedules struct {
	Budget  Schedule `json:"budget"`
	Medium  Schedule `json:"medium"`
	Premium Schedule `json:"premium"`
}

// ScheduleRequest is the inbound payload for schedule building: the
// candidate activity pool plus assembly preferences.
type ScheduleRequest struct {
	Activities  []Activity          `json:"activities" validate:"required,min=1"`
	Preferences SchedulePreferences `json:"preferences"`
}
