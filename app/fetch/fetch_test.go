package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResponse struct {
	status int
	header http.Header
	body   string
	err    error
}

type stubDoer struct {
	responses []stubResponse
	bodies    []string
	calls     int
}

func (s *stubDoer) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		req.Body.Close()
		s.bodies = append(s.bodies, string(b))
	} else {
		s.bodies = append(s.bodies, "")
	}

	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	r := s.responses[i]
	if r.err != nil {
		return nil, r.err
	}
	header := r.header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: r.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(r.body)),
	}, nil
}

func newTestFetcher(t *testing.T, doer Doer) (*Fetcher, *[]time.Duration) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := New(doer, logger, Config{MaxAttempts: 3, BaseBackoff: 500 * time.Millisecond, MaxBackoff: 8 * time.Second})

	sleeps := &[]time.Duration{}
	f.sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	return f, sleeps
}

func getRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/v1/things", nil)
	require.NoError(t, err)
	return req
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	doer := &stubDoer{responses: []stubResponse{{status: http.StatusOK, body: `{"ok": true}`}}}
	f, sleeps := newTestFetcher(t, doer)

	resp, err := f.Do(context.Background(), "things.list", getRequest(t))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, doer.calls)
	assert.Empty(t, *sleeps)
}

func TestDoRetriesServerErrorsWithBackoff(t *testing.T) {
	doer := &stubDoer{responses: []stubResponse{
		{status: http.StatusInternalServerError},
		{status: http.StatusBadGateway},
		{status: http.StatusOK, body: `{}`},
	}}
	f, sleeps := newTestFetcher(t, doer)

	resp, err := f.Do(context.Background(), "things.list", getRequest(t))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 3, doer.calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, *sleeps)
}

func TestDoPrefersRetryAfterSeconds(t *testing.T) {
	doer := &stubDoer{responses: []stubResponse{
		{status: http.StatusTooManyRequests, header: http.Header{"Retry-After": []string{"5"}}},
		{status: http.StatusOK, body: `{}`},
	}}
	f, sleeps := newTestFetcher(t, doer)

	resp, err := f.Do(context.Background(), "things.list", getRequest(t))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Len(t, *sleeps, 1)
	assert.Equal(t, 5*time.Second, (*sleeps)[0], "server delay replaces computed backoff")
}

func TestDoParsesRetryAfterDate(t *testing.T) {
	at := time.Now().Add(3 * time.Second).UTC().Format(http.TimeFormat)
	doer := &stubDoer{responses: []stubResponse{
		{status: http.StatusTooManyRequests, header: http.Header{"Retry-After": []string{at}}},
		{status: http.StatusOK, body: `{}`},
	}}
	f, sleeps := newTestFetcher(t, doer)

	resp, err := f.Do(context.Background(), "things.list", getRequest(t))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Len(t, *sleeps, 1)
	assert.Greater(t, (*sleeps)[0], time.Second)
	assert.LessOrEqual(t, (*sleeps)[0], 3*time.Second)
}

func TestDoRateLimitWithoutHeaderUsesBackoff(t *testing.T) {
	doer := &stubDoer{responses: []stubResponse{
		{status: http.StatusTooManyRequests},
		{status: http.StatusOK, body: `{}`},
	}}
	f, sleeps := newTestFetcher(t, doer)

	resp, err := f.Do(context.Background(), "things.list", getRequest(t))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, []time.Duration{500 * time.Millisecond}, *sleeps)
}

func TestDoClientErrorIsPermanent(t *testing.T) {
	doer := &stubDoer{responses: []stubResponse{{status: http.StatusNotFound, body: "no such city"}}}
	f, sleeps := newTestFetcher(t, doer)

	_, err := f.Do(context.Background(), "things.list", getRequest(t))
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "no such city", statusErr.Body)
	assert.Equal(t, 1, doer.calls, "4xx must not burn retry attempts")
	assert.Empty(t, *sleeps)
}

func TestDoExhaustsAttempts(t *testing.T) {
	doer := &stubDoer{responses: []stubResponse{{status: http.StatusServiceUnavailable}}}
	f, sleeps := newTestFetcher(t, doer)

	_, err := f.Do(context.Background(), "things.list", getRequest(t))
	require.Error(t, err)

	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, 3, doer.calls)
	assert.Len(t, *sleeps, 2)

	var statusErr *HTTPStatusError
	assert.ErrorAs(t, err, &statusErr)
}

func TestDoRetriesNetworkErrors(t *testing.T) {
	doer := &stubDoer{responses: []stubResponse{
		{err: errors.New("connection reset")},
		{status: http.StatusOK, body: `{}`},
	}}
	f, _ := newTestFetcher(t, doer)

	resp, err := f.Do(context.Background(), "things.list", getRequest(t))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 2, doer.calls)
}

func TestDoReplaysRequestBody(t *testing.T) {
	doer := &stubDoer{responses: []stubResponse{
		{status: http.StatusInternalServerError},
		{status: http.StatusOK, body: `{}`},
	}}
	f, _ := newTestFetcher(t, doer)

	req, err := http.NewRequest(http.MethodPost, "https://api.example.com/oauth/token", strings.NewReader("grant_type=client_credentials"))
	require.NoError(t, err)

	resp, err := f.Do(context.Background(), "token", req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Len(t, doer.bodies, 2)
	assert.Equal(t, "grant_type=client_credentials", doer.bodies[0])
	assert.Equal(t, "grant_type=client_credentials", doer.bodies[1], "retried request must carry the same body")
}

func TestDoStopsWhenContextCancelledDuringSleep(t *testing.T) {
	doer := &stubDoer{responses: []stubResponse{{status: http.StatusInternalServerError}}}
	f, _ := newTestFetcher(t, doer)
	f.sleep = func(ctx context.Context, _ time.Duration) error { return context.Canceled }

	_, err := f.Do(context.Background(), "things.list", getRequest(t))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, doer.calls)
}

func TestDoFuncRetriesTransientOnly(t *testing.T) {
	f, sleeps := newTestFetcher(t, nil)

	t.Run("transient failures retried until success", func(t *testing.T) {
		calls := 0
		err := f.DoFunc(context.Background(), "llm.generate", func(context.Context) error {
			calls++
			if calls < 3 {
				return Transient(errors.New("model overloaded"))
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent failure returns immediately", func(t *testing.T) {
		calls := 0
		wantErr := errors.New("invalid api key")
		err := f.DoFunc(context.Background(), "llm.generate", func(context.Context) error {
			calls++
			return wantErr
		})
		require.ErrorIs(t, err, wantErr)
		assert.Equal(t, 1, calls)
	})

	t.Run("transient with delay overrides backoff", func(t *testing.T) {
		*sleeps = nil
		calls := 0
		err := f.DoFunc(context.Background(), "llm.generate", func(context.Context) error {
			calls++
			if calls == 1 {
				return TransientAfter(errors.New("quota"), 2*time.Second)
			}
			return nil
		})
		require.NoError(t, err)
		require.Len(t, *sleeps, 1)
		assert.Equal(t, 2*time.Second, (*sleeps)[0])
	})

	t.Run("exhaustion wraps the last error", func(t *testing.T) {
		last := errors.New("still overloaded")
		err := f.DoFunc(context.Background(), "llm.generate", func(context.Context) error {
			return Transient(last)
		})

		var exhausted *RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.ErrorIs(t, err, last)
	})
}

func TestRetryAfterDelay(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		header string
		want   time.Duration
		wantOK bool
	}{
		{"empty", "", 0, false},
		{"seconds", "5", 5 * time.Second, true},
		{"zero seconds", "0", 0, true},
		{"negative", "-1", 0, false},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second, true},
		{"past date clamps to zero", now.Add(-time.Minute).Format(http.TimeFormat), 0, true},
		{"garbage", "soon", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := retryAfterDelay(tt.header, now)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLimiterWiring(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	withSpacing := New(nil, logger, Config{MinInterval: 200 * time.Millisecond})
	assert.NotNil(t, withSpacing.limiter)

	without := New(nil, logger, Config{})
	assert.Nil(t, without.limiter)
}
