// Package tiers classifies priced items into budget, medium and premium
// tiers. Thresholds are per-domain constants: flight, hotel and activity
// pricing live on different scales and must never share a table.
package tiers

import (
	"strings"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

// Thresholds holds the price ceilings for the two lower tiers of one
// product domain. Ceilings are inclusive: a price exactly on a boundary
// belongs to the cheaper tier.
type Thresholds struct {
	BudgetMax float64
	MediumMax float64
}

// Classify maps a price onto a tier using the receiver's ceilings.
func (t Thresholds) Classify(price float64) types.PriceTier {
	switch {
	case price <= t.BudgetMax:
		return types.TierBudget
	case price <= t.MediumMax:
		return types.TierMedium
	default:
		return types.TierPremium
	}
}

// Canonical per-domain tables. Flight ceilings apply to the total fare,
// hotel ceilings to the nightly rate, the rest to a single person-day.
var (
	Flights    = Thresholds{BudgetMax: 1000, MediumMax: 2000}
	Hotels     = Thresholds{BudgetMax: 200, MediumMax: 500}
	Transport  = Thresholds{BudgetMax: 15, MediumMax: 40}
	Food       = Thresholds{BudgetMax: 25, MediumMax: 75}
	Activities = Thresholds{BudgetMax: 30, MediumMax: 100}
)

// ForCategory returns the canonical threshold table for a budget
// category. Unknown categories fall back to the activity table, the
// narrowest of the five.
func ForCategory(category string) Thresholds {
	switch category {
	case types.CategoryFlights:
		return Flights
	case types.CategoryHotels:
		return Hotels
	case types.CategoryTransport:
		return Transport
	case types.CategoryFood:
		return Food
	default:
		return Activities
	}
}

// Classify maps a price onto a tier using the canonical table for the
// given category.
func Classify(category string, price float64) types.PriceTier {
	return ForCategory(category).Classify(price)
}

// ClassifyFlight applies the cabin-class override before price: a first
// or business fare is premium no matter how cheap, premium economy is at
// least medium, and only economy fares are classified by price alone.
func ClassifyFlight(cabin types.CabinClass, price float64) types.PriceTier {
	switch types.CabinClass(strings.ToUpper(strings.TrimSpace(string(cabin)))) {
	case types.CabinFirst, types.CabinBusiness:
		return types.TierPremium
	case types.CabinPremiumEconomy:
		return types.TierMedium
	default:
		return Flights.Classify(price)
	}
}
