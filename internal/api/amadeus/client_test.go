package amadeus

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-budget-planner/app/fetch"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

const tokenResponse = `{"access_token": "test-token", "expires_in": 1799, "token_type": "Bearer"}`

const flightOffersFixture = `{
  "data": [
    {
      "id": "1",
      "price": {"grandTotal": "1250.70", "currency": "USD"},
      "itineraries": [
        {"duration": "PT5H30M", "segments": [
          {"departure": {"iataCode": "LHR", "at": "2025-06-01T08:30:00"},
           "arrival": {"iataCode": "IST", "at": "2025-06-01T14:00:00"},
           "carrierCode": "TK", "number": "1980"}
        ]}
      ],
      "travelerPricings": [{"fareDetailsBySegment": [{"cabin": "BUSINESS"}]}],
      "validatingAirlineCodes": ["TK"]
    },
    {"id": "2", "price": {"grandTotal": "300.00", "currency": "USD"}, "itineraries": []}
  ]
}`

const hotelListFixture = `{
  "data": [
    {"hotelId": "HLPAR123", "name": "Hotel Lutetia"},
    {"hotelId": "HLPAR456", "name": "Le Meurice"}
  ]
}`

const hotelOffersFixture = `{
  "data": [
    {
      "hotel": {"hotelId": "HLPAR123", "name": "Hotel Lutetia", "cityCode": "PAR", "rating": "4", "address": {"cityName": "Paris"}},
      "available": true,
      "offers": [{"price": {"total": "840.00", "currency": "USD"}, "room": {"typeEstimated": {"category": "DELUXE_ROOM"}}}]
    },
    {
      "hotel": {"hotelId": "HLPAR456", "name": "Le Meurice", "cityCode": "PAR", "rating": "5", "address": {"cityName": "Paris"}},
      "available": false,
      "offers": []
    }
  ]
}`

const activitiesFixture = `{
  "data": [
    {"id": "A1", "name": "Louvre Museum Skip-the-Line", "shortDescription": "Guided museum tour", "rating": "4.7",
     "price": {"amount": "35.00", "currencyCode": "EUR"}, "bookingLink": "https://example.com/louvre", "minimumDuration": "PT2H30M"},
    {"id": "A2", "name": "Seine Dinner Cruise", "shortDescription": "Evening cruise with dinner", "rating": "4.4",
     "price": {"amount": "89.00", "currencyCode": "EUR"}, "bookingLink": "https://example.com/seine", "minimumDuration": "3 hours"}
  ]
}`

type fakeAmadeus struct {
	tokenCalls  atomic.Int32
	flightCalls atomic.Int32

	flightQuery url.Values
	listQuery   url.Values
	offersQuery url.Values

	// flightFailures makes the flight endpoint return 500 for the first
	// N calls.
	flightFailures int32
}

func (f *fakeAmadeus) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		_ = r.ParseForm()
		if r.PostFormValue("grant_type") != "client_credentials" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, tokenResponse)
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		call := f.flightCalls.Add(1)
		f.flightQuery = r.URL.Query()
		if call <= f.flightFailures {
			http.Error(w, "upstream hiccup", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, flightOffersFixture)
	})
	mux.HandleFunc("/v1/reference-data/locations/hotels/by-city", func(w http.ResponseWriter, r *http.Request) {
		f.listQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, hotelListFixture)
	})
	mux.HandleFunc("/v3/shopping/hotel-offers", func(w http.ResponseWriter, r *http.Request) {
		f.offersQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, hotelOffersFixture)
	})
	mux.HandleFunc("/v1/shopping/activities", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, activitiesFixture)
	})
	return mux
}

func newTestClient(t *testing.T, fake *fakeAmadeus) *Client {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetcher := fetch.New(srv.Client(), logger, fetch.Config{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
	return NewClient(Config{ClientID: "id", ClientSecret: "secret", BaseURL: srv.URL}, fetcher, logger)
}

func TestSearchFlightsParsesOffers(t *testing.T) {
	fake := &fakeAmadeus{}
	client := newTestClient(t, fake)

	offers, err := client.SearchFlights(context.Background(), types.FlightSearchRequest{
		Origin:        "LHR",
		Destination:   "IST",
		DepartureDate: "2025-06-01",
		ReturnDate:    "2025-06-08",
		Adults:        2,
		CabinClass:    types.CabinBusiness,
	})
	require.NoError(t, err)
	require.Len(t, offers, 1, "offer without itineraries must be dropped")

	got := offers[0]
	assert.Equal(t, "Turkish Airlines", got.Airline)
	assert.Equal(t, "TK", got.AirlineCode)
	assert.Equal(t, types.CabinBusiness, got.CabinClass)
	assert.Equal(t, 1250.70, got.Price.Amount)
	assert.Equal(t, "USD", got.Price.Currency)

	require.Len(t, got.Itineraries, 1)
	assert.Equal(t, "5h 30m", got.Itineraries[0].Duration)
	assert.Equal(t, 0, got.Itineraries[0].Stops)
	require.Len(t, got.Itineraries[0].Segments, 1)
	assert.Equal(t, "TK1980", got.Itineraries[0].Segments[0].FlightNumber)
	assert.Equal(t, "LHR", got.Itineraries[0].Segments[0].DepartureAirport)

	assert.Equal(t, "BUSINESS", fake.flightQuery.Get("travelClass"))
	assert.Equal(t, "USD", fake.flightQuery.Get("currencyCode"))
	assert.Equal(t, "6", fake.flightQuery.Get("max"))
	assert.Equal(t, "2", fake.flightQuery.Get("adults"))
	assert.Equal(t, "2025-06-08", fake.flightQuery.Get("returnDate"))
}

func TestSearchFlightsRetriesServerErrors(t *testing.T) {
	fake := &fakeAmadeus{flightFailures: 1}
	client := newTestClient(t, fake)

	offers, err := client.SearchFlights(context.Background(), types.FlightSearchRequest{
		Origin:        "LHR",
		Destination:   "IST",
		DepartureDate: "2025-06-01",
		Adults:        1,
	})
	require.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Equal(t, int32(2), fake.flightCalls.Load())
}

func TestSearchFlightsWithoutCredentials(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetcher := fetch.New(nil, logger, fetch.Config{})
	client := NewClient(Config{}, fetcher, logger)

	assert.False(t, client.Available())

	_, err := client.SearchFlights(context.Background(), types.FlightSearchRequest{
		Origin: "LHR", Destination: "IST", DepartureDate: "2025-06-01", Adults: 1,
	})
	require.ErrorIs(t, err, ErrNoCredentials)
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	fake := &fakeAmadeus{}
	client := newTestClient(t, fake)
	ctx := context.Background()

	req := types.FlightSearchRequest{Origin: "LHR", Destination: "IST", DepartureDate: "2025-06-01", Adults: 1}

	_, err := client.SearchFlights(ctx, req)
	require.NoError(t, err)
	_, err = client.SearchFlights(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fake.tokenCalls.Load(), "second search must reuse the cached token")

	// Force expiry and confirm the next call refreshes.
	client.mu.Lock()
	client.tokenExpiry = time.Now().Add(-time.Minute)
	client.mu.Unlock()

	_, err = client.SearchFlights(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fake.tokenCalls.Load())
}

func TestSearchHotelsTwoStepLookup(t *testing.T) {
	fake := &fakeAmadeus{}
	client := newTestClient(t, fake)

	hotels, err := client.SearchHotels(context.Background(), types.HotelSearchRequest{
		CityCode: "CDG",
		CheckIn:  "2025-06-01",
		CheckOut: "2025-06-08",
		Adults:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, "PAR", fake.listQuery.Get("cityCode"), "airport code must map to its city")
	assert.Equal(t, "HLPAR123,HLPAR456", fake.offersQuery.Get("hotelIds"))
	assert.Equal(t, "true", fake.offersQuery.Get("bestRateOnly"))

	require.Len(t, hotels, 1, "unavailable hotels must be dropped")
	got := hotels[0]
	assert.Equal(t, "Hotel Lutetia", got.Name)
	assert.Equal(t, "DELUXE_ROOM", got.RoomType)
	assert.Equal(t, "Paris", got.Location)
	assert.Equal(t, 4.0, got.Rating)
	assert.Equal(t, 840.0, got.Price.Amount)
}

func TestSearchActivitiesParsesListings(t *testing.T) {
	fake := &fakeAmadeus{}
	client := newTestClient(t, fake)
	ctx := context.Background()

	t.Run("all listings without keyword", func(t *testing.T) {
		activities, err := client.SearchActivities(ctx, types.ActivitySearchRequest{
			Latitude:  48.8566,
			Longitude: 2.3522,
		})
		require.NoError(t, err)
		require.Len(t, activities, 2)

		assert.Equal(t, "Louvre Museum Skip-the-Line", activities[0].Name)
		assert.Equal(t, 35.0, activities[0].Price.Amount)
		assert.Equal(t, 4.7, activities[0].Rating)
		assert.InDelta(t, 2.5, activities[0].DurationHours, 0.001)
		assert.InDelta(t, 3.0, activities[1].DurationHours, 0.001)
	})

	t.Run("keyword filters locally", func(t *testing.T) {
		activities, err := client.SearchActivities(ctx, types.ActivitySearchRequest{
			Latitude:  48.8566,
			Longitude: 2.3522,
			Keyword:   "museum",
		})
		require.NoError(t, err)
		require.Len(t, activities, 1)
		assert.Equal(t, "Louvre Museum Skip-the-Line", activities[0].Name)
	})

	t.Run("keyword with no matches falls back to everything", func(t *testing.T) {
		activities, err := client.SearchActivities(ctx, types.ActivitySearchRequest{
			Latitude:  48.8566,
			Longitude: 2.3522,
			Keyword:   "volcano boarding",
		})
		require.NoError(t, err)
		assert.Len(t, activities, 2)
	})
}

func TestDurationHelpers(t *testing.T) {
	tests := []struct {
		iso  string
		want string
	}{
		{"PT5H30M", "5h 30m"},
		{"PT2H", "2h"},
		{"PT45M", "45m"},
		{"garbled", "garbled"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatISODuration(tt.iso))
	}

	assert.InDelta(t, 5.5, durationHours("PT5H30M"), 0.001)
	assert.InDelta(t, 1.5, durationHours("90 minutes"), 0.001)
	assert.InDelta(t, 3.0, durationHours("3 hours"), 0.001)
	assert.Zero(t, durationHours("soonish"))
}
