package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	HTTPRequestsTotal          metric.Int64Counter
	HTTPRequestDurationSeconds metric.Float64Histogram
	BudgetComputationSeconds   metric.Float64Histogram
	CategoryFallbacksTotal     metric.Int64Counter
	FetchRetriesTotal          metric.Int64Counter
	ParseRepairsTotal          metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider, so it must
// run after the provider is set up.
func InitAppMetrics() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TravelBudgetPlanner")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests served"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDurationSeconds, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.BudgetComputationSeconds, err = meter.Float64Histogram(
			"budget_computation_duration_seconds",
			metric.WithDescription("End-to-end duration of budget aggregations in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create budget_computation_duration_seconds: %v", err)
		}

		m.CategoryFallbacksTotal, err = meter.Int64Counter(
			"category_fallbacks_total",
			metric.WithDescription("Total number of categories degraded to default placeholders"),
			metric.WithUnit("{category}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create category_fallbacks_total: %v", err)
		}

		m.FetchRetriesTotal, err = meter.Int64Counter(
			"fetch_retries_total",
			metric.WithDescription("Total number of retried outbound requests"),
			metric.WithUnit("{retry}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create fetch_retries_total: %v", err)
		}

		m.ParseRepairsTotal, err = meter.Int64Counter(
			"parse_repairs_total",
			metric.WithDescription("Total number of LLM responses that needed repair before parsing"),
			metric.WithUnit("{response}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create parse_repairs_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m // Assign to global variable
	})
	return appMetrics
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		// This indicates a programming error - InitAppMetrics must be called at startup.
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

// The Record helpers below are no-ops until InitAppMetrics has run, so
// library code can call them unconditionally and unit tests need no
// metrics setup.

// RecordHTTPRequest notes one served request.
func RecordHTTPRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if appMetrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		semconv.HTTPRequestMethodKey.String(method),
		semconv.HTTPRouteKey.String(route),
		semconv.HTTPResponseStatusCodeKey.Int(status),
	)
	appMetrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
	appMetrics.HTTPRequestDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordBudgetComputation notes one completed aggregation.
func RecordBudgetComputation(ctx context.Context, elapsed time.Duration, cacheHit bool) {
	if appMetrics == nil {
		return
	}
	appMetrics.BudgetComputationSeconds.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.Bool("cache_hit", cacheHit)))
}

// RecordCategoryFallback notes a category that degraded to defaults.
func RecordCategoryFallback(ctx context.Context, category string) {
	if appMetrics == nil {
		return
	}
	appMetrics.CategoryFallbacksTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", category)))
}

// RecordFetchRetry notes one retried outbound request.
func RecordFetchRetry(ctx context.Context, op string) {
	if appMetrics == nil {
		return
	}
	appMetrics.FetchRetriesTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("op", op)))
}

// RecordParseRepair notes an LLM response that only parsed after repair.
func RecordParseRepair(ctx context.Context, stage string) {
	if appMetrics == nil {
		return
	}
	appMetrics.ParseRepairsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("stage", stage)))
}
