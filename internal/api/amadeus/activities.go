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

type activitiesResponse struct {
	Data []struct {
		ID               string `json:"id"`
		Name             string `json:"name"`
		ShortDescription string `json:"shortDescription"`
		Rating           string `json:"rating"`
		Price            struct {
			Amount       string `json:"amount"`
			CurrencyCode string `json:"currencyCode"`
		} `json:"price"`
		BookingLink     string `json:"bookingLink"`
		MinimumDuration string `json:"minimumDuration"`
	} `json:"data"`
}

// SearchActivities queries the Tours and Activities API around a
// geocode. The API has no server-side keyword parameter, so a keyword is
// applied as a local filter; when the filter would empty the result set
// the unfiltered listings come back instead.
func (c *Client) SearchActivities(ctx context.Context, req types.ActivitySearchRequest) ([]types.Activity, error) {
	ctx, span := otel.Tracer("AmadeusClient").Start(ctx, "SearchActivities", trace.WithAttributes(
		attribute.Float64("activity.lat", req.Latitude),
		attribute.Float64("activity.lon", req.Longitude),
		attribute.String("activity.keyword", req.Keyword),
	))
	defer span.End()

	radius := req.RadiusKm
	if radius <= 0 {
		radius = defaultRadiusKm
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', 6, 64))
	q.Set("radius", strconv.Itoa(radius))

	body, err := c.get(ctx, "amadeus.activities.search", "/v1/shopping/activities", q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Activity search failed")
		return nil, fmt.Errorf("activity search failed: %w", err)
	}

	activities, err := parseActivities(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to parse activities")
		return nil, err
	}

	if req.Keyword != "" {
		if filtered := filterByKeyword(activities, req.Keyword); len(filtered) > 0 {
			activities = filtered
		}
	}
	if req.MaxResults > 0 && len(activities) > req.MaxResults {
		activities = activities[:req.MaxResults]
	}

	span.SetAttributes(attribute.Int("activity.results", len(activities)))
	span.SetStatus(codes.Ok, "Activity search completed")
	return activities, nil
}

func parseActivities(data []byte) ([]types.Activity, error) {
	var resp activitiesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse activities: %w", err)
	}

	activities := make([]types.Activity, 0, len(resp.Data))
	for _, item := range resp.Data {
		if item.Name == "" {
			continue
		}
		activities = append(activities, types.Activity{
			Name:          item.Name,
			Description:   item.ShortDescription,
			DurationHours: durationHours(item.MinimumDuration),
			Price: types.Price{
				Amount:   parsePrice(item.Price.Amount),
				Currency: item.Price.CurrencyCode,
			},
			Rating:       parseRating(item.Rating),
			ReferenceURL: item.BookingLink,
		})
	}
	return activities, nil
}

func filterByKeyword(activities []types.Activity, keyword string) []types.Activity {
	keyword = strings.ToLower(keyword)
	filtered := make([]types.Activity, 0, len(activities))
	for _, a := range activities {
		if strings.Contains(strings.ToLower(a.Name), keyword) ||
			strings.Contains(strings.ToLower(a.Description), keyword) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
