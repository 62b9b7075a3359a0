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

type hotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

type hotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID  string `json:"hotelId"`
			Name     string `json:"name"`
			CityCode string `json:"cityCode"`
			Rating   string `json:"rating"`
			Address  struct {
				CityName string `json:"cityName"`
			} `json:"address"`
		} `json:"hotel"`
		Available bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
			Room struct {
				TypeEstimated struct {
					Category string `json:"category"`
				} `json:"typeEstimated"`
			} `json:"room"`
		} `json:"offers"`
	} `json:"data"`
}

// SearchHotels runs the two-step hotel lookup: hotel IDs for the city,
// then best-rate offers for those IDs. Airport codes are mapped to their
// city code first, since the hotel APIs key on cities.
func (c *Client) SearchHotels(ctx context.Context, req types.HotelSearchRequest) ([]types.HotelOffer, error) {
	ctx, span := otel.Tracer("AmadeusClient").Start(ctx, "SearchHotels", trace.WithAttributes(
		attribute.String("hotel.city", req.CityCode),
		attribute.String("hotel.check_in", req.CheckIn),
		attribute.String("hotel.check_out", req.CheckOut),
	))
	defer span.End()

	hotelIDs, err := c.hotelIDsByCity(ctx, req.CityCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Hotel list failed")
		return nil, fmt.Errorf("hotel list failed: %w", err)
	}
	if len(hotelIDs) == 0 {
		err := fmt.Errorf("no hotels listed for city %s", req.CityCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, "No hotels for city")
		return nil, err
	}
	// Cap the ID list so the offers query stays within provider limits.
	if len(hotelIDs) > maxHotelIDsPerReq {
		hotelIDs = hotelIDs[:maxHotelIDsPerReq]
	}

	offers, err := c.hotelOffers(ctx, hotelIDs, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Hotel offers failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("hotel.offers", len(offers)))
	span.SetStatus(codes.Ok, "Hotel search completed")
	return offers, nil
}

func (c *Client) hotelIDsByCity(ctx context.Context, cityCode string) ([]string, error) {
	city := strings.ToUpper(cityCode)
	if info, ok := types.LookupDestination(city); ok {
		city = info.CityCode
	}

	q := url.Values{}
	q.Set("cityCode", city)
	q.Set("radius", strconv.Itoa(defaultRadiusKm))
	q.Set("radiusUnit", "KM")
	q.Set("hotelSource", "ALL")

	body, err := c.get(ctx, "amadeus.hotels.list", "/v1/reference-data/locations/hotels/by-city", q)
	if err != nil {
		return nil, err
	}

	var resp hotelListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel list: %w", err)
	}

	ids := make([]string, 0, len(resp.Data))
	for _, h := range resp.Data {
		if h.HotelID != "" {
			ids = append(ids, h.HotelID)
		}
	}
	return ids, nil
}

func (c *Client) hotelOffers(ctx context.Context, hotelIDs []string, req types.HotelSearchRequest) ([]types.HotelOffer, error) {
	adults := req.Adults
	if adults < 1 {
		adults = 1
	}
	rooms := req.RoomQuantity
	if rooms < 1 {
		rooms = 1
	}
	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	q := url.Values{}
	q.Set("hotelIds", strings.Join(hotelIDs, ","))
	q.Set("checkInDate", req.CheckIn)
	q.Set("checkOutDate", req.CheckOut)
	q.Set("adults", strconv.Itoa(adults))
	q.Set("roomQuantity", strconv.Itoa(rooms))
	q.Set("currency", currency)
	q.Set("bestRateOnly", "true")

	body, err := c.get(ctx, "amadeus.hotels.offers", "/v3/shopping/hotel-offers", q)
	if err != nil {
		return nil, fmt.Errorf("hotel offers failed: %w", err)
	}

	var resp hotelOffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel offers: %w", err)
	}

	hotels := make([]types.HotelOffer, 0, len(resp.Data))
	for _, item := range resp.Data {
		if !item.Available || len(item.Offers) == 0 {
			continue
		}
		price := parsePrice(item.Offers[0].Price.Total)
		if price <= 0 {
			continue
		}

		location := item.Hotel.Address.CityName
		if location == "" {
			location = item.Hotel.CityCode
		}

		hotels = append(hotels, types.HotelOffer{
			HotelID:  item.Hotel.HotelID,
			Name:     item.Hotel.Name,
			RoomType: item.Offers[0].Room.TypeEstimated.Category,
			Location: location,
			Rating:   parseRating(item.Hotel.Rating),
			Price:    types.Price{Amount: price, Currency: item.Offers[0].Price.Currency},
		})
	}

	return hotels, nil
}
