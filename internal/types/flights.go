package types

// CabinClass is the fare cabin requested from or reported by the flight
// inventory provider.
type CabinClass string

const (
	CabinEconomy        CabinClass = "ECONOMY"
	CabinPremiumEconomy CabinClass = "PREMIUM_ECONOMY"
	CabinBusiness       CabinClass = "BUSINESS"
	CabinFirst          CabinClass = "FIRST"
)

// CabinClasses lists the fare cabins searched for a budget request,
// cheapest first.
func CabinClasses() []CabinClass {
	return []CabinClass{CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst}
}

// FlightSegment is one leg of a flight itinerary.
type FlightSegment struct {
	DepartureAirport string `json:"departureAirport"`
	DepartureTime    string `json:"departureTime"`
	ArrivalAirport   string `json:"arrivalAirport"`
	ArrivalTime      string `json:"arrivalTime"`
	CarrierCode      string `json:"carrierCode"`
	FlightNumber     string `json:"flightNumber"`
}

// FlightItinerary is one direction of travel (outbound or return).
type FlightItinerary struct {
	Duration string          `json:"duration"`
	Stops    int             `json:"stops"`
	Segments []FlightSegment `json:"segments"`
}

// FlightOffer is a normalized flight inventory result. Price is the grand
// total for all requested travelers.
type FlightOffer struct {
	ID           string            `json:"id"`
	Airline      string            `json:"airline"`
	AirlineCode  string            `json:"airlineCode,omitempty"`
	CabinClass   CabinClass        `json:"cabinClass"`
	Itineraries  []FlightItinerary `json:"itineraries"`
	Price        Price             `json:"price"`
	ReferenceURL string            `json:"referenceUrl,omitempty"`
}

// FlightSearchRequest is the query handed to the flight inventory provider.
type FlightSearchRequest struct {
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureDate string     `json:"departureDate"`
	ReturnDate    string     `json:"returnDate,omitempty"`
	Adults        int        `json:"adults"`
	CabinClass    CabinClass `json:"cabinClass,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	MaxResults    int        `json:"maxResults,omitempty"`
}
