package budget

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

// MockBudgetService is a mock implementation of Service
type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) ComputeBudget(ctx context.Context, req types.BudgetRequest) (*types.BudgetResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.BudgetResponse), args.Error(1)
}

func setupBudgetHandlerTest() (*Handler, *MockBudgetService) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := new(MockBudgetService)
	handler := NewHandler(mockService, logger)
	return handler, mockService
}

func postBudget(handler *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/budget", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ComputeBudget(rr, req)
	return rr
}

const validBudgetBody = `{
  "origin": "LIS",
  "destination": "PAR",
  "departureDate": "2026-09-10",
  "returnDate": "2026-09-13",
  "travelers": 2,
  "currency": "USD",
  "travelStyle": "moderate"
}`

func TestComputeBudgetHandler_Success(t *testing.T) {
	handler, mockService := setupBudgetHandlerTest()
	mockService.On("ComputeBudget", mock.Anything, mock.Anything).
		Return(&types.BudgetResponse{RequestDetails: types.RequestDetails{RequestID: "req-1"}}, nil)

	rr := postBudget(handler, validBudgetBody)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	for _, key := range append([]string{"requestDetails"}, types.Categories()...) {
		assert.Contains(t, envelope, key)
	}
	mockService.AssertExpectations(t)
}

func TestComputeBudgetHandler_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"origin": "LIS",`},
		{name: "empty body", body: ``},
		{name: "missing travelers", body: `{"origin": "LIS", "destination": "PAR", "departureDate": "2026-09-10"}`},
		{name: "travelers out of range", body: `{"origin": "LIS", "destination": "PAR", "departureDate": "2026-09-10", "travelers": 12}`},
		{name: "bad date format", body: `{"origin": "LIS", "destination": "PAR", "departureDate": "10/09/2026", "travelers": 2}`},
		{name: "numeric origin", body: `{"origin": "123", "destination": "PAR", "departureDate": "2026-09-10", "travelers": 2}`},
		{name: "unknown field", body: `{"origin": "LIS", "destination": "PAR", "departureDate": "2026-09-10", "travelers": 2, "budgetLevel": 3}`},
		{name: "return precedes departure", body: `{"origin": "LIS", "destination": "PAR", "departureDate": "2026-09-10", "returnDate": "2026-09-01", "travelers": 2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := setupBudgetHandlerTest()

			rr := postBudget(handler, tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			mockService.AssertNotCalled(t, "ComputeBudget", mock.Anything, mock.Anything)
		})
	}
}

func TestComputeBudgetHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "unknown destination", err: ErrUnknownDestination, wantStatus: http.StatusBadRequest},
		{name: "aggregation timeout", err: errors.Join(ErrAggregationTimeout, context.DeadlineExceeded), wantStatus: http.StatusGatewayTimeout},
		{name: "bare deadline exceeded", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout},
		{name: "unexpected failure", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := setupBudgetHandlerTest()
			mockService.On("ComputeBudget", mock.Anything, mock.Anything).Return(nil, tt.err)

			rr := postBudget(handler, validBudgetBody)

			assert.Equal(t, tt.wantStatus, rr.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}
