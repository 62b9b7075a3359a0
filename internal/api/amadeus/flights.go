package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

type flightOffersResponse struct {
	Data []flightOffer `json:"data"`
}

type flightOffer struct {
	ID    string `json:"id"`
	Price struct {
		GrandTotal string `json:"grandTotal"`
		Total      string `json:"total"`
		Currency   string `json:"currency"`
	} `json:"price"`
	Itineraries []struct {
		Duration string `json:"duration"`
		Segments []struct {
			Departure struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"departure"`
			Arrival struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"arrival"`
			CarrierCode string `json:"carrierCode"`
			Number      string `json:"number"`
		} `json:"segments"`
	} `json:"itineraries"`
	TravelerPricings []struct {
		FareDetailsBySegment []struct {
			Cabin string `json:"cabin"`
		} `json:"fareDetailsBySegment"`
	} `json:"travelerPricings"`
	ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
}

// SearchFlights queries the Flight Offers Search API for one cabin class
// and returns normalized offers. Offers without itineraries or with an
// unusable price are dropped rather than surfaced as errors.
func (c *Client) SearchFlights(ctx context.Context, req types.FlightSearchRequest) ([]types.FlightOffer, error) {
	ctx, span := otel.Tracer("AmadeusClient").Start(ctx, "SearchFlights", trace.WithAttributes(
		attribute.String("flight.origin", req.Origin),
		attribute.String("flight.destination", req.Destination),
		attribute.String("flight.cabin", string(req.CabinClass)),
	))
	defer span.End()

	adults := req.Adults
	if adults < 1 {
		adults = 1
	}
	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	maxOffers := req.MaxResults
	if maxOffers <= 0 {
		maxOffers = defaultMaxOffers
	}

	q := url.Values{}
	q.Set("originLocationCode", strings.ToUpper(req.Origin))
	q.Set("destinationLocationCode", strings.ToUpper(req.Destination))
	q.Set("departureDate", req.DepartureDate)
	if req.ReturnDate != "" {
		q.Set("returnDate", req.ReturnDate)
	}
	q.Set("adults", strconv.Itoa(adults))
	if req.CabinClass != "" {
		q.Set("travelClass", string(req.CabinClass))
	}
	q.Set("currencyCode", currency)
	q.Set("max", strconv.Itoa(maxOffers))

	body, err := c.get(ctx, "amadeus.flights.search", "/v2/shopping/flight-offers", q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Flight search failed")
		return nil, fmt.Errorf("flight search failed: %w", err)
	}

	offers, err := parseFlightOffers(body, req.CabinClass)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to parse flight offers")
		return nil, err
	}

	span.SetAttributes(attribute.Int("flight.offers", len(offers)))
	span.SetStatus(codes.Ok, "Flight search completed")
	return offers, nil
}

func parseFlightOffers(data []byte, requested types.CabinClass) ([]types.FlightOffer, error) {
	var resp flightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	offers := make([]types.FlightOffer, 0, len(resp.Data))
	for _, offer := range resp.Data {
		if len(offer.Itineraries) == 0 {
			continue
		}

		total := offer.Price.GrandTotal
		if total == "" {
			total = offer.Price.Total
		}
		price := parsePrice(total)
		if price <= 0 {
			continue
		}

		airlineCode := ""
		if len(offer.Itineraries[0].Segments) > 0 {
			airlineCode = offer.Itineraries[0].Segments[0].CarrierCode
		} else if len(offer.ValidatingAirlineCodes) > 0 {
			airlineCode = offer.ValidatingAirlineCodes[0]
		}

		itineraries := make([]types.FlightItinerary, 0, len(offer.Itineraries))
		for _, it := range offer.Itineraries {
			segments := make([]types.FlightSegment, 0, len(it.Segments))
			for _, seg := range it.Segments {
				segments = append(segments, types.FlightSegment{
					DepartureAirport: seg.Departure.IataCode,
					DepartureTime:    seg.Departure.At,
					ArrivalAirport:   seg.Arrival.IataCode,
					ArrivalTime:      seg.Arrival.At,
					CarrierCode:      seg.CarrierCode,
					FlightNumber:     seg.CarrierCode + seg.Number,
				})
			}
			itineraries = append(itineraries, types.FlightItinerary{
				Duration: formatISODuration(it.Duration),
				Stops:    max(0, len(it.Segments)-1),
				Segments: segments,
			})
		}

		offers = append(offers, types.FlightOffer{
			ID:          offer.ID,
			Airline:     types.AirlineName(airlineCode),
			AirlineCode: airlineCode,
			CabinClass:  reportedCabin(offer, requested),
			Itineraries: itineraries,
			Price:       types.Price{Amount: price, Currency: offer.Price.Currency},
		})
	}

	return offers, nil
}

// reportedCabin prefers the cabin the fare was actually priced in over
// the one that was asked for.
func reportedCabin(offer flightOffer, requested types.CabinClass) types.CabinClass {
	for _, tp := range offer.TravelerPricings {
		for _, fd := range tp.FareDetailsBySegment {
			if fd.Cabin != "" {
				return types.CabinClass(fd.Cabin)
			}
		}
	}
	return requested
}
