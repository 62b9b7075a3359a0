// Package amadeus is the real-time inventory client for flight, hotel
// and activity search, backed by the Amadeus Self-Service APIs. Every
// request goes through the shared fetch policy, so provider rate limits
// and transient failures are handled in one place rather than per call
// site. A client built without credentials stays usable: each search
// returns ErrNoCredentials and callers fall back to LLM-only estimates.
package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/FACorreiaa/go-travel-budget-planner/app/fetch"
)

const (
	defaultBaseURL    = "https://test.api.amadeus.com"
	productionBaseURL = "https://api.amadeus.com"

	tokenPath         = "/v1/security/oauth2/token"
	tokenSafetyMargin = 30 * time.Second

	defaultCurrency   = "USD"
	defaultMaxOffers  = 6
	defaultRadiusKm   = 5
	maxHotelIDsPerReq = 20
)

// ErrNoCredentials reports that the client has no API credentials.
var ErrNoCredentials = errors.New("amadeus: credentials not configured")

// Config carries the client credentials and environment selection.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

// ConfigFromEnv reads AMADEUS_CLIENT_ID, AMADEUS_CLIENT_SECRET and
// AMADEUS_ENV. Anything other than AMADEUS_ENV=production targets the
// free test environment.
func ConfigFromEnv() Config {
	baseURL := defaultBaseURL
	if os.Getenv("AMADEUS_ENV") == "production" {
		baseURL = productionBaseURL
	}
	return Config{
		ClientID:     os.Getenv("AMADEUS_CLIENT_ID"),
		ClientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
		BaseURL:      baseURL,
	}
}

// Client talks to the Amadeus APIs with a cached OAuth2 token.
type Client struct {
	cfg     Config
	fetcher *fetch.Fetcher
	logger  *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg Config, fetcher *fetch.Fetcher, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Available reports whether the client holds credentials.
func (c *Client) Available() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiry := c.accessToken, c.tokenExpiry
	c.mu.Unlock()

	if token != "" && time.Now().Before(expiry) {
		return token, nil
	}
	return c.refreshToken(ctx)
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.fetcher.Do(ctx, "amadeus.token", req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	expiry := time.Now().Add(time.Duration(result.ExpiresIn)*time.Second - tokenSafetyMargin)
	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = expiry
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "amadeus token refreshed",
		slog.Time("expires_at", expiry))
	return result.AccessToken, nil
}

// get runs an authorized GET and returns the raw response body.
func (c *Client) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	if !c.Available() {
		return nil, ErrNoCredentials
	}

	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.fetcher.Do(ctx, op, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", op, err)
	}
	return body, nil
}

// parsePrice reads a decimal price string such as "1250.70".
func parsePrice(s string) float64 {
	var v float64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &v); err != nil {
		return 0
	}
	return v
}

// parseRating reads a star or score rating such as "4" or "4.5".
func parseRating(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// formatISODuration renders an ISO 8601 duration like "PT5H30M" as
// "5h 30m" for display.
func formatISODuration(iso string) string {
	h, m, ok := splitISODuration(iso)
	if !ok {
		return iso
	}
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// durationHours converts a duration string to fractional hours. ISO 8601
// ("PT2H30M") is handled first; free-form provider values like "3 hours"
// or "90 minutes" fall back to a loose numeric read.
func durationHours(s string) float64 {
	if h, m, ok := splitISODuration(s); ok {
		return float64(h) + float64(m)/60
	}
	var v float64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &v); err != nil {
		return 0
	}
	if strings.Contains(strings.ToLower(s), "min") {
		return v / 60
	}
	return v
}

func splitISODuration(s string) (hours, minutes int, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "PT") {
		return 0, 0, false
	}
	s = strings.TrimPrefix(s, "PT")
	if i := strings.Index(s, "H"); i >= 0 {
		h, err := strconv.Atoi(s[:i])
		if err != nil {
			return 0, 0, false
		}
		hours = h
		s = s[i+1:]
	}
	if i := strings.Index(s, "M"); i >= 0 {
		m, err := strconv.Atoi(s[:i])
		if err != nil {
			return 0, 0, false
		}
		minutes = m
	}
	return hours, minutes, true
}
