// Package fetch wraps outbound provider calls with the retry policy every
// upstream in this service shares: bounded attempts, exponential backoff,
// Retry-After awareness on rate-limit responses, and a per-provider
// request spacing limiter. HTTP calls go through Do; SDK calls that manage
// their own transport go through DoFunc with errors marked Transient.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-travel-budget-planner/app/observability/metrics"
)

const (
	defaultMaxAttempts = 3
	defaultBaseBackoff = 500 * time.Millisecond
	defaultMaxBackoff  = 8 * time.Second
	errorBodyLimit     = 2 << 10
)

// Doer is the subset of http.Client the fetcher needs.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config tunes the retry policy. Zero values fall back to the defaults
// of three attempts starting at 500ms backoff.
type Config struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// MinInterval spaces successive requests to the same provider; zero
	// disables the limiter.
	MinInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = defaultBaseBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	return c
}

// Fetcher retries transient failures and gives up on permanent ones.
// One Fetcher per provider so rate limiting stays per-upstream.
type Fetcher struct {
	client  Doer
	limiter *rate.Limiter
	logger  *slog.Logger
	cfg     Config
	sleep   func(ctx context.Context, d time.Duration) error
}

func New(client Doer, logger *slog.Logger, cfg Config) *Fetcher {
	cfg = cfg.withDefaults()
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		client: client,
		logger: logger,
		cfg:    cfg,
		sleep:  sleepContext,
	}
	if cfg.MinInterval > 0 {
		f.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	return f
}

// HTTPStatusError is a non-2xx response. Status codes other than 429 and
// 5xx surface immediately without consuming further attempts.
type HTTPStatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// RetryExhaustedError reports that every attempt failed; Err holds the
// last transient failure.
type RetryExhaustedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s: giving up after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }

// Do executes req, retrying on network errors, 5xx responses and 429s.
// On a 429 carrying Retry-After the server's delay replaces the computed
// backoff for that wait. The request must be replayable (GET, or a body
// with GetBody set, which http.NewRequest provides for common readers).
func (f *Fetcher) Do(ctx context.Context, op string, req *http.Request) (*http.Response, error) {
	backoff := f.cfg.BaseBackoff
	var lastErr error

	for attempt := 1; ; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}

		clone := req.Clone(ctx)
		if req.Body != nil && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("%s: replaying request body: %w", op, err)
			}
			clone.Body = body
		}

		resp, err := f.client.Do(clone)
		var serverDelay time.Duration
		var hasServerDelay bool
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%s: %w", op, err)
		case resp.StatusCode < http.StatusBadRequest:
			return resp, nil
		default:
			statusErr := &HTTPStatusError{Op: op, StatusCode: resp.StatusCode, Body: drainBody(resp)}
			if !retryableStatus(resp.StatusCode) {
				return nil, statusErr
			}
			lastErr = statusErr
			if resp.StatusCode == http.StatusTooManyRequests {
				serverDelay, hasServerDelay = retryAfterDelay(resp.Header.Get("Retry-After"), time.Now())
			}
		}

		if attempt >= f.cfg.MaxAttempts {
			return nil, &RetryExhaustedError{Op: op, Attempts: f.cfg.MaxAttempts, Err: lastErr}
		}

		delay := backoff
		backoff = nextBackoff(backoff, f.cfg.MaxBackoff)
		if hasServerDelay {
			delay = serverDelay
		}
		f.logger.WarnContext(ctx, "retrying upstream request",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr))
		metrics.RecordFetchRetry(ctx, op)
		if err := f.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
}

// DoFunc applies the same retry policy to a call that handles its own
// transport, typically an SDK client. fn signals a retryable failure by
// wrapping it with Transient or TransientAfter; any other error is
// treated as permanent and returned as-is.
func (f *Fetcher) DoFunc(ctx context.Context, op string, fn func(context.Context) error) error {
	backoff := f.cfg.BaseBackoff
	var lastErr error

	for attempt := 1; ; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		var te *transientError
		if !errors.As(err, &te) {
			return err
		}
		lastErr = te.err

		if attempt >= f.cfg.MaxAttempts {
			return &RetryExhaustedError{Op: op, Attempts: f.cfg.MaxAttempts, Err: lastErr}
		}

		delay := backoff
		backoff = nextBackoff(backoff, f.cfg.MaxBackoff)
		if te.hasDelay {
			delay = te.delay
		}
		f.logger.WarnContext(ctx, "retrying upstream call",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr))
		metrics.RecordFetchRetry(ctx, op)
		if err := f.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
}

type transientError struct {
	err      error
	delay    time.Duration
	hasDelay bool
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable for DoFunc.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// TransientAfter marks err as retryable and asks for a specific delay
// before the next attempt, e.g. one parsed from a provider's rate-limit
// response.
func TransientAfter(err error, delay time.Duration) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err, delay: delay, hasDelay: true}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

// retryAfterDelay parses a Retry-After header, which carries either a
// delay in whole seconds or an HTTP date.
func retryAfterDelay(header string, now time.Time) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

func drainBody(resp *http.Response) string {
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err != nil {
		return ""
	}
	return string(b)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
