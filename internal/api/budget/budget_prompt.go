package budget

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/api/tiers"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

// estimateSystemPrompt frames every category estimate call. The response
// contract is strict JSON because the output feeds the repair pipeline and
// then the bucket validator.
const estimateSystemPrompt = `You are a travel budget analyst with up-to-date knowledge of real-world travel prices.
Respond with a single JSON object and nothing else: no markdown fences, no commentary, no trailing text.
All prices are plain numbers (not strings, not ranges) in the requested currency.`

// categoryUnit describes what one price means for a category. The phrasing
// is injected into the prompt so the model and the bucket builder agree on
// units.
func categoryUnit(category string) string {
	switch category {
	case types.CategoryFlights:
		return "round-trip fare per traveler"
	case types.CategoryHotels:
		return "room rate per night"
	case types.CategoryTransport:
		return "local transportation cost per person per day (metro, bus, taxi, rideshare)"
	case types.CategoryFood:
		return "food cost per person per day (all meals)"
	case types.CategoryActivities:
		return "price per person per activity (tours, museums, attractions)"
	default:
		return "price per person"
	}
}

// categoryLabel is the human name used inside prompts.
func categoryLabel(category string) string {
	switch category {
	case types.CategoryFlights:
		return "flights"
	case types.CategoryHotels:
		return "hotels"
	case types.CategoryTransport:
		return "local transportation"
	case types.CategoryFood:
		return "food and dining"
	case types.CategoryActivities:
		return "activities and attractions"
	default:
		return category
	}
}

// estimatePrompt builds the user prompt for one category of one trip. Tier
// boundaries come from the shared classifier thresholds so the model's
// bucketing matches the rest of the pipeline.
func estimatePrompt(category string, req types.BudgetRequest, city types.CityInfo) string {
	th := tiers.ForCategory(category)
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	prompt := fmt.Sprintf(`Estimate %s prices for this trip:
    - Origin: %s
    - Destination: %s (%s, %s)
    - Departure: %s
    - Return: %s
    - Travelers: %d
    - Trip length: %d days
    - Currency: %s`,
		categoryLabel(category), req.Origin, req.Destination, city.Name, city.Country,
		req.DepartureDate, orOneWay(req.ReturnDate), req.Travelers, req.TripDays(), currency)

	if req.TravelStyle != "" {
		prompt += fmt.Sprintf(`
    - Travel style: %s`, req.TravelStyle)
	}
	if len(req.Interests) > 0 {
		prompt += fmt.Sprintf(`
    - Interests: [%s]`, strings.Join(req.Interests, ", "))
	}

	prompt += fmt.Sprintf(`

Each price is the %s.
Break the estimate into three tiers using these boundaries:
    - budget: up to %.0f %s
    - medium: %.0f to %.0f %s
    - premium: above %.0f %s

Return exactly this JSON structure:
{
  "budget": {"min": 0, "max": 0, "average": 0, "examples": [{"name": "", "description": "", "price": 0}]},
  "medium": {"min": 0, "max": 0, "average": 0, "examples": [{"name": "", "description": "", "price": 0}]},
  "premium": {"min": 0, "max": 0, "average": 0, "examples": [{"name": "", "description": "", "price": 0}]}
}

Rules:
    - min <= average <= max within every tier, all values >= 0.
    - 2 to 3 named real examples per tier (real airlines, real hotels, real venues for %s).
    - Prices as plain numbers only.`,
		categoryUnit(category),
		th.BudgetMax, currency, th.BudgetMax, th.MediumMax, currency, th.MediumMax, currency,
		city.Name)

	return prompt
}

func orOneWay(returnDate string) string {
	if returnDate == "" {
		return "one-way"
	}
	return returnDate
}
