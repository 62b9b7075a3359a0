package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-travel-budget-planner/app/observability/metrics"
	generativeAI "github.com/FACorreiaa/go-travel-budget-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/api/jsonrepair"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/api/tiers"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

// ErrUnknownDestination marks a request naming an airport or city code the
// planner has no metadata for. It maps to an invalid-input response.
var ErrUnknownDestination = errors.New("unknown origin or destination code")

// ErrAggregationTimeout marks an aggregation abandoned by the request
// deadline. Partial results are discarded, never returned truncated.
var ErrAggregationTimeout = errors.New("budget aggregation timed out")

const defaultCurrency = "USD"

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for budget operations.
type Service interface {
	ComputeBudget(ctx context.Context, req types.BudgetRequest) (*types.BudgetResponse, error)
}

// InventoryClient is the slice of the travel inventory provider the budget
// service consumes. Available reports whether credentials are configured;
// an unavailable provider routes every category through the model estimate.
type InventoryClient interface {
	Available() bool
	SearchFlights(ctx context.Context, req types.FlightSearchRequest) ([]types.FlightOffer, error)
	SearchHotels(ctx context.Context, req types.HotelSearchRequest) ([]types.HotelOffer, error)
	SearchActivities(ctx context.Context, req types.ActivitySearchRequest) ([]types.Activity, error)
}

type ServiceImpl struct {
	logger       *slog.Logger
	llm          generativeAI.Client
	inventory    InventoryClient
	cache        *cache.Cache
	genCfg       types.GenerationConfig
	softDeadline time.Duration
}

func NewServiceImpl(llm generativeAI.Client, inventory InventoryClient, genCfg types.GenerationConfig, cacheTTL, softDeadline time.Duration, logger *slog.Logger) *ServiceImpl {
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	if softDeadline <= 0 {
		softDeadline = 25 * time.Second
	}
	return &ServiceImpl{
		logger:       logger,
		llm:          llm,
		inventory:    inventory,
		cache:        cache.New(cacheTTL, 1*time.Hour),
		genCfg:       genCfg,
		softDeadline: softDeadline,
	}
}

// ComputeBudget aggregates the five category budgets concurrently and
// assembles the composite envelope. Individual category failures degrade to
// placeholder buckets; only invalid input and a deadline on ctx surface as
// errors.
func (s *ServiceImpl) ComputeBudget(ctx context.Context, req types.BudgetRequest) (*types.BudgetResponse, error) {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "ComputeBudget", trace.WithAttributes(
		attribute.String("trip.origin", req.Origin),
		attribute.String("trip.destination", req.Destination),
		attribute.Int("trip.travelers", req.Travelers),
	))
	defer span.End()

	req.Origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	req.Destination = strings.ToUpper(strings.TrimSpace(req.Destination))
	if req.Currency == "" {
		req.Currency = defaultCurrency
	}
	req.Currency = strings.ToUpper(req.Currency)

	l := s.logger.With(slog.String("origin", req.Origin), slog.String("destination", req.Destination))
	start := time.Now()

	city, ok := types.LookupDestination(req.Destination)
	if !ok {
		span.SetStatus(codes.Error, "unknown destination")
		return nil, fmt.Errorf("%w: %s", ErrUnknownDestination, req.Destination)
	}
	if _, ok := types.LookupDestination(req.Origin); !ok {
		span.SetStatus(codes.Error, "unknown origin")
		return nil, fmt.Errorf("%w: %s", ErrUnknownDestination, req.Origin)
	}

	key := budgetCacheKey(req)
	if cached, found := s.cache.Get(key); found {
		if prev, ok := cached.(*types.BudgetResponse); ok {
			l.DebugContext(ctx, "budget served from cache", slog.String("cache_key", key))
			span.SetStatus(codes.Ok, "budget served from cache")
			metrics.RecordBudgetComputation(ctx, time.Since(start), true)
			out := *prev
			out.RequestDetails = s.requestDetails(req)
			return &out, nil
		}
	}

	slow := time.AfterFunc(s.softDeadline, func() {
		l.WarnContext(ctx, "budget aggregation running past soft deadline",
			slog.Duration("soft_deadline", s.softDeadline))
	})
	defer slow.Stop()

	type categoryResult struct {
		name   string
		budget types.CategoryBudget
	}

	categories := types.Categories()
	results := make(chan categoryResult, len(categories))
	var wg sync.WaitGroup
	for _, name := range categories {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			results <- categoryResult{name: name, budget: s.categoryBudget(ctx, name, req, city)}
		}(name)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	resp := &types.BudgetResponse{RequestDetails: s.requestDetails(req)}
	for {
		select {
		case res, open := <-results:
			if !open {
				s.cache.Set(key, resp, cache.DefaultExpiration)
				l.InfoContext(ctx, "budget computed", slog.Duration("elapsed", time.Since(start)))
				span.SetStatus(codes.Ok, "budget computed")
				metrics.RecordBudgetComputation(ctx, time.Since(start), false)
				return resp, nil
			}
			if cb := resp.Category(res.name); cb != nil {
				*cb = res.budget
			}
		case <-ctx.Done():
			span.RecordError(ctx.Err())
			span.SetStatus(codes.Error, "budget aggregation aborted")
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, errors.Join(ErrAggregationTimeout, ctx.Err())
			}
			return nil, ctx.Err()
		}
	}
}

func (s *ServiceImpl) requestDetails(req types.BudgetRequest) types.RequestDetails {
	return types.RequestDetails{
		RequestID:     uuid.New().String(),
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Travelers:     req.Travelers,
		Currency:      req.Currency,
		TravelStyle:   string(req.TravelStyle),
		TripDays:      req.TripDays(),
		GeneratedAt:   time.Now().UTC(),
	}
}

// categoryBudget never fails: whatever the sources could not provide ends
// up as placeholder buckets.
func (s *ServiceImpl) categoryBudget(ctx context.Context, name string, req types.BudgetRequest, city types.CityInfo) types.CategoryBudget {
	switch name {
	case types.CategoryFlights:
		return s.flightsBudget(ctx, req, city)
	case types.CategoryHotels:
		return s.hotelsBudget(ctx, req, city)
	case types.CategoryActivities:
		return s.activitiesBudget(ctx, req, city)
	default:
		return s.estimatedBudget(ctx, name, req, city)
	}
}

func (s *ServiceImpl) flightsBudget(ctx context.Context, req types.BudgetRequest, city types.CityInfo) types.CategoryBudget {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "flightsBudget")
	defer span.End()

	var cb types.CategoryBudget
	if s.inventory != nil && s.inventory.Available() {
		refs := s.providerFlightRefs(ctx, req)
		found := 0
		for _, rs := range refs {
			found += len(rs)
		}
		if found > 0 {
			// Real inventory replaces the flights estimate wholesale. Tiers
			// the searches did not cover stay placeholders; provider and
			// model data are never mixed inside this category.
			for _, tier := range types.Tiers() {
				if rs := refs[tier]; len(rs) > 0 {
					*cb.Bucket(tier) = bucketFromReferences(rs)
				} else {
					*cb.Bucket(tier) = defaultBucket(types.CategoryFlights, tier)
				}
			}
			return cb
		}
	}
	s.completeCategory(ctx, &cb, types.CategoryFlights, req, city)
	return cb
}

// providerFlightRefs searches every fare cabin concurrently and buckets the
// offers per traveler, letting the cabin override the price-based tier where
// the fare class already implies one. A failing cabin narrows the data
// instead of failing the category.
func (s *ServiceImpl) providerFlightRefs(ctx context.Context, req types.BudgetRequest) map[types.PriceTier][]types.PricedReference {
	var mu sync.Mutex
	refs := make(map[types.PriceTier][]types.PricedReference)

	g, ctx := errgroup.WithContext(ctx)
	for _, cabin := range types.CabinClasses() {
		g.Go(func() error {
			offers, err := s.inventory.SearchFlights(ctx, types.FlightSearchRequest{
				Origin:        req.Origin,
				Destination:   req.Destination,
				DepartureDate: req.DepartureDate,
				ReturnDate:    req.ReturnDate,
				Adults:        req.Travelers,
				CabinClass:    cabin,
				Currency:      req.Currency,
			})
			if err != nil {
				s.logger.WarnContext(ctx, "flight search failed for cabin",
					slog.String("cabin", string(cabin)), slog.Any("error", err))
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for _, offer := range offers {
				perTraveler := offer.Price.Amount / float64(req.Travelers)
				tier := tiers.ClassifyFlight(offer.CabinClass, perTraveler)
				refs[tier] = append(refs[tier], flightReference(offer, perTraveler, req.Currency))
			}
			return nil
		})
	}
	_ = g.Wait() // workers log their own failures and return nil
	return refs
}

func flightReference(offer types.FlightOffer, perTraveler float64, currency string) types.PricedReference {
	cur := offer.Price.Currency
	if cur == "" {
		cur = currency
	}
	var description, flightNumber string
	if len(offer.Itineraries) > 0 && len(offer.Itineraries[0].Segments) > 0 {
		segs := offer.Itineraries[0].Segments
		description = fmt.Sprintf("%s-%s, %s", segs[0].DepartureAirport, segs[len(segs)-1].ArrivalAirport, offer.Itineraries[0].Duration)
		flightNumber = segs[0].FlightNumber
	}
	return types.PricedReference{
		Name:         offer.Airline,
		Description:  description,
		Airline:      offer.Airline,
		FlightNumber: flightNumber,
		Price:        types.Price{Amount: perTraveler, Currency: cur},
		ReferenceURL: offer.ReferenceURL,
	}
}

func (s *ServiceImpl) hotelsBudget(ctx context.Context, req types.BudgetRequest, city types.CityInfo) types.CategoryBudget {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "hotelsBudget")
	defer span.End()

	var cb types.CategoryBudget
	if s.inventory != nil && s.inventory.Available() {
		nights := req.TripDays() - 1
		if nights < 1 {
			nights = 1
		}
		checkOut := req.ReturnDate
		if checkOut == "" {
			if dep, err := time.Parse("2006-01-02", req.DepartureDate); err == nil {
				checkOut = dep.AddDate(0, 0, 1).Format("2006-01-02")
			}
		}

		offers, err := s.inventory.SearchHotels(ctx, types.HotelSearchRequest{
			CityCode: city.CityCode,
			CheckIn:  req.DepartureDate,
			CheckOut: checkOut,
			Adults:   req.Travelers,
			Currency: req.Currency,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "hotel search failed", slog.Any("error", err))
		}

		byTier := make(map[types.PriceTier][]types.PricedReference)
		for _, offer := range offers {
			nightly := offer.Price.Amount / float64(nights)
			cur := offer.Price.Currency
			if cur == "" {
				cur = req.Currency
			}
			tier := tiers.Classify(types.CategoryHotels, nightly)
			byTier[tier] = append(byTier[tier], types.PricedReference{
				Name:         offer.Name,
				Description:  offer.Location,
				HotelName:    offer.Name,
				RoomType:     offer.RoomType,
				Price:        types.Price{Amount: nightly, Currency: cur},
				ReferenceURL: offer.ReferenceURL,
			})
		}
		for tier, refs := range byTier {
			*cb.Bucket(tier) = bucketFromReferences(refs)
		}
	}
	s.completeCategory(ctx, &cb, types.CategoryHotels, req, city)
	return cb
}

func (s *ServiceImpl) activitiesBudget(ctx context.Context, req types.BudgetRequest, city types.CityInfo) types.CategoryBudget {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "activitiesBudget")
	defer span.End()

	var cb types.CategoryBudget
	if s.inventory != nil && s.inventory.Available() {
		var keyword string
		if len(req.Interests) > 0 {
			keyword = req.Interests[0]
		}
		activities, err := s.inventory.SearchActivities(ctx, types.ActivitySearchRequest{
			Latitude:   city.Latitude,
			Longitude:  city.Longitude,
			Keyword:    keyword,
			MaxResults: 30,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "activity search failed", slog.Any("error", err))
		}

		byTier := make(map[types.PriceTier][]types.PricedReference)
		for _, a := range activities {
			if a.Price.Amount <= 0 {
				continue // free listings carry no pricing signal
			}
			tier := tiers.Classify(types.CategoryActivities, a.Price.Amount)
			byTier[tier] = append(byTier[tier], types.PricedReference{
				Name:         a.Name,
				Description:  truncate(a.Description, 160),
				Price:        a.Price,
				ReferenceURL: a.ReferenceURL,
			})
		}
		for tier, refs := range byTier {
			*cb.Bucket(tier) = bucketFromReferences(refs)
		}
	}
	s.completeCategory(ctx, &cb, types.CategoryActivities, req, city)
	return cb
}

// estimatedBudget covers the categories with no inventory source, local
// transportation and food.
func (s *ServiceImpl) estimatedBudget(ctx context.Context, category string, req types.BudgetRequest, city types.CityInfo) types.CategoryBudget {
	var cb types.CategoryBudget
	s.completeCategory(ctx, &cb, category, req, city)
	return cb
}

// completeCategory fills the tiers the provider left empty from a single
// model estimate, falling back to placeholders when the estimate fails.
func (s *ServiceImpl) completeCategory(ctx context.Context, cb *types.CategoryBudget, category string, req types.BudgetRequest, city types.CityInfo) {
	missing := 0
	for _, tier := range types.Tiers() {
		if cb.Bucket(tier).Source == "" {
			missing++
		}
	}
	if missing == 0 {
		return
	}

	est, err := s.estimateTiers(ctx, category, req, city)
	if err != nil {
		s.logger.WarnContext(ctx, "category estimate failed, using placeholders",
			slog.String("category", category), slog.Any("error", err))
		metrics.RecordCategoryFallback(ctx, category)
		est = nil
	}
	fillMissingTiers(cb, category, est)
}

func (s *ServiceImpl) estimateTiers(ctx context.Context, category string, req types.BudgetRequest, city types.CityInfo) (map[types.PriceTier]types.TierBucket, error) {
	ctx, span := otel.Tracer("BudgetService").Start(ctx, "estimateTiers", trace.WithAttributes(
		attribute.String("budget.category", category),
	))
	defer span.End()

	content, err := s.llm.GenerateResponse(ctx, estimateSystemPrompt, estimatePrompt(category, req, city), s.genCfg)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("generate %s estimate: %w", category, err)
	}

	est, stage, err := parseCategoryEstimate(content)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("parse %s estimate: %w", category, err)
	}
	if stage != jsonrepair.StageDirect {
		s.logger.DebugContext(ctx, "estimate payload needed repair",
			slog.String("category", category), slog.String("stage", stage))
		metrics.RecordParseRepair(ctx, stage)
	}

	out := make(map[types.PriceTier]types.TierBucket, 3)
	for _, tier := range types.Tiers() {
		if b, ok := est.tier(tier).bucket(req.Currency); ok {
			out[tier] = b
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s estimate contained no usable tier", category)
	}
	span.SetStatus(codes.Ok, "estimate parsed")
	return out, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
