package types

// HotelOffer is a normalized hotel inventory result. Price is the total
// for the whole stay at the best available rate.
type HotelOffer struct {
	HotelID      string  `json:"hotelId,omitempty"`
	Name         string  `json:"name"`
	RoomType     string  `json:"roomType,omitempty"`
	Location     string  `json:"location,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	Price        Price   `json:"price"`
	ReferenceURL string  `json:"referenceUrl,omitempty"`
}

// HotelSearchRequest is the query handed to the hotel inventory provider.
type HotelSearchRequest struct {
	CityCode     string `json:"cityCode"`
	CheckIn      string `json:"checkIn"`
	CheckOut     string `json:"checkOut"`
	Adults       int    `json:"adults"`
	RoomQuantity int    `json:"roomQuantity,omitempty"`
	Currency     string `json:"currency,omitempty"`
}

// ActivitySearchRequest is the query handed to the activity inventory
// provider. Searches are geocode-based with an optional free-text keyword.
type ActivitySearchRequest struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	RadiusKm   int     `json:"radiusKm,omitempty"`
	Keyword    string  `json:"keyword,omitempty"`
	MaxResults int     `json:"maxResults,omitempty"`
}
