package itinerary

import (
	"sort"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

// buildSchedule assembles the day-by-day plan greedily over the whole
// candidate pool: day 1..N, slot morning/afternoon/evening in fixed order,
// committing the highest-scoring unused candidate that prefers the slot and
// fits the remaining day budget. Slots with no fitting candidate stay
// empty; earlier choices are never revisited.
func buildSchedule(scored []types.ScoredActivity, prefs types.SchedulePreferences) *types.Schedule {
	return assemble([][]types.ScoredActivity{scored}, prefs)
}

// buildTieredSchedules builds the three suggested plans. Each plan draws
// from its own tier's pool first and falls back per empty slot: the medium
// plan to budget options, the premium plan to medium then budget.
func buildTieredSchedules(scored []types.ScoredActivity, prefs types.SchedulePreferences) *types.TieredSchedules {
	pool := func(tier types.PriceTier) []types.ScoredActivity {
		var out []types.ScoredActivity
		for _, cand := range scored {
			if cand.Activity.Tier == tier {
				out = append(out, cand)
			}
		}
		return out
	}
	budget := pool(types.TierBudget)
	medium := pool(types.TierMedium)
	premium := pool(types.TierPremium)

	return &types.TieredSchedules{
		Budget:  *assemble([][]types.ScoredActivity{budget}, prefs),
		Medium:  *assemble([][]types.ScoredActivity{medium, budget}, prefs),
		Premium: *assemble([][]types.ScoredActivity{premium, medium, budget}, prefs),
	}
}

// assemble runs the greedy grid fill over layered candidate pools. For each
// slot the pools are tried in order, so later pools only serve slots the
// earlier ones could not fill. An activity identity key is committed at
// most once across the whole schedule.
func assemble(pools [][]types.ScoredActivity, prefs types.SchedulePreferences) *types.Schedule {
	ranked := make([][]types.ScoredActivity, len(pools))
	for i, pool := range pools {
		ranked[i] = rankCandidates(pool)
	}

	dailyBudget := prefs.BudgetPerDay()
	used := make(map[string]bool)
	days := make([]types.DayPlan, 0, prefs.TripDays)
	total := 0.0

	for day := 1; day <= prefs.TripDays; day++ {
		plan := types.DayPlan{Day: day}
		remaining := dailyBudget
		for _, slot := range types.Slots() {
			for _, pool := range ranked {
				idx := pickBest(pool, used, slot, dailyBudget, remaining)
				if idx < 0 {
					continue
				}
				a := pool[idx].Activity
				plan.Commit(slot, &a)
				used[a.Key()] = true
				remaining -= a.Price.Amount
				total += a.Price.Amount
				break
			}
		}
		days = append(days, plan)
	}

	return &types.Schedule{Days: days, DailyBudget: dailyBudget, TotalCost: total}
}

// pickBest returns the index of the highest-scoring unused candidate that
// prefers the slot and fits the remaining budget, or -1. A zero daily
// budget means uncapped.
func pickBest(ranked []types.ScoredActivity, used map[string]bool, slot types.TimeSlot, dailyBudget, remaining float64) int {
	for i, cand := range ranked {
		if used[cand.Activity.Key()] {
			continue
		}
		if cand.PreferredTimeSlot != slot {
			continue
		}
		if dailyBudget > 0 && cand.Activity.Price.Amount > remaining {
			continue
		}
		return i
	}
	return -1
}

// rankCandidates sorts by score descending without mutating the input.
// The sort is stable so equal scores keep first-encountered order.
func rankCandidates(scored []types.ScoredActivity) []types.ScoredActivity {
	ranked := make([]types.ScoredActivity, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}
