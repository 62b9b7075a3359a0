package types

import (
	"time"
)

// PriceTier buckets a priced item into one of the three spending levels
// every category of a budget response is broken down by.
type PriceTier string

const (
	TierBudget  PriceTier = "budget"
	TierMedium  PriceTier = "medium"
	TierPremium PriceTier = "premium"
)

// Tiers lists the price tiers from cheapest to most expensive.
func Tiers() []PriceTier {
	return []PriceTier{TierBudget, TierMedium, TierPremium}
}

// TravelStyle is the requested spending preference carried on a budget request.
type TravelStyle string

const (
	StyleBudget   TravelStyle = "budget"
	StyleModerate TravelStyle = "moderate"
	StyleLuxury   TravelStyle = "luxury"
)

// Tier maps a travel style onto the price tier it targets.
// Unrecognised or empty styles target the medium tier.
func (s TravelStyle) Tier() PriceTier {
	switch s {
	case StyleBudget:
		return TierBudget
	case StyleLuxury:
		return TierPremium
	default:
		return TierMedium
	}
}

// Price is an amount in a specific currency.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PricedReference is one concrete priced item (a flight offer, a hotel
// listing, an activity listing) backing a TierBucket. References are
// immutable once bucketed; corrections replace the whole bucket.
type PricedReference struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Airline      string `json:"airline,omitempty"`
	FlightNumber string `json:"flightNumber,omitempty"`
	HotelName    string `json:"hotelName,omitempty"`
	RoomType     string `json:"roomType,omitempty"`
	Price        Price  `json:"price"`
	ReferenceURL string `json:"referenceUrl,omitempty"`
}

// DisplayName returns the best human-readable label for the reference.
func (r PricedReference) DisplayName() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.HotelName != "":
		return r.HotelName
	case r.Airline != "":
		return r.Airline
	default:
		return "unnamed"
	}
}

// TierBucket aggregates the references of one tier of one category.
// Invariant: Min <= Average <= Max whenever References is non-empty.
// Confidence encodes provenance: ~0.9 for real provider data, ~0.7-0.8
// for LLM-derived estimates, 0 for a default placeholder.
type TierBucket struct {
	Min        float64           `json:"min"`
	Max        float64           `json:"max"`
	Average    float64           `json:"average"`
	Confidence float64           `json:"confidence"`
	Source     string            `json:"source"`
	References []PricedReference `json:"references"`
}

// CategoryBudget is the budget/medium/premium triple for one category.
type CategoryBudget struct {
	Budget  TierBucket `json:"budget"`
	Medium  TierBucket `json:"medium"`
	Premium TierBucket `json:"premium"`
}

// Bucket returns a pointer to the bucket for the given tier.
func (c *CategoryBudget) Bucket(t PriceTier) *TierBucket {
	switch t {
	case TierBudget:
		return &c.Budget
	case TierPremium:
		return &c.Premium
	default:
		return &c.Medium
	}
}

// Category names are the five fixed keys of a budget response.
const (
	CategoryFlights    = "flights"
	CategoryHotels     = "hotels"
	CategoryTransport  = "localTransportation"
	CategoryFood       = "food"
	CategoryActivities = "activities"
)

// Categories lists the five budget categories in envelope order.
func Categories() []string {
	return []string{CategoryFlights, CategoryHotels, CategoryTransport, CategoryFood, CategoryActivities}
}

// BudgetRequest is the inbound request for a composite trip budget.
// Origin and Destination are IATA city/airport codes.
type BudgetRequest struct {
	Origin        string      `json:"origin" validate:"required,len=3,alpha"`
	Destination   string      `json:"destination" validate:"required,len=3,alpha"`
	DepartureDate string      `json:"departureDate" validate:"required,datetime=2006-01-02"`
	ReturnDate    string      `json:"returnDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Travelers     int         `json:"travelers" validate:"required,min=1,max=9"`
	Currency      string      `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	TotalBudget   float64     `json:"totalBudget,omitempty" validate:"omitempty,gt=0"`
	TravelStyle   TravelStyle `json:"travelStyle,omitempty" validate:"omitempty,oneof=budget moderate luxury"`
	Interests     []string    `json:"interests,omitempty"`
}

// TripDays derives the trip length in days from the date range.
// One-way requests and unparsable ranges count as a single day.
func (r BudgetRequest) TripDays() int {
	if r.ReturnDate == "" {
		return 1
	}
	dep, err := time.Parse("2006-01-02", r.DepartureDate)
	if err != nil {
		return 1
	}
	ret, err := time.Parse("2006-01-02", r.ReturnDate)
	if err != nil {
		return 1
	}
	days := int(ret.Sub(dep).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// RequestDetails echoes the request back on the response envelope.
type RequestDetails struct {
	RequestID     string    `json:"requestId"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departureDate"`
	ReturnDate    string    `json:"returnDate,omitempty"`
	Travelers     int       `json:"travelers"`
	Currency      string    `json:"currency"`
	TravelStyle   string    `json:"travelStyle,omitempty"`
	TripDays      int       `json:"tripDays"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// BudgetResponse is the composite envelope. All five category keys are
// always present; a category whose sources all failed carries a
// zero-confidence default triple instead of being omitted.
type BudgetResponse struct {
	RequestDetails      RequestDetails `json:"requestDetails"`
	Flights             CategoryBudget `json:"flights"`
	Hotels              CategoryBudget `json:"hotels"`
	LocalTransportation CategoryBudget `json:"localTransportation"`
	Food                CategoryBudget `json:"food"`
	Activities          CategoryBudget `json:"activities"`
}

// Category returns a pointer to the named category of the envelope,
// or nil when the name is not one of the five fixed keys.
func (b *BudgetResponse) Category(name string) *CategoryBudget {
	switch name {
	case CategoryFlights:
		return &b.Flights
	case CategoryHotels:
		return &b.Hotels
	case CategoryTransport:
		return &b.LocalTransportation
	case CategoryFood:
		return &b.Food
	case CategoryActivities:
		return &b.Activities
	default:
		return nil
	}
}

// GenerationConfig carries the tunables forwarded to the LLM provider.
type GenerationConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
}
