package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core"
	"shopledger/internal/services"
	"shopledger/internal/storage"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := storage.NewMemoryStore()
	transactions := services.NewTransactionService(store, nil)
	categories := services.NewCategoryService(store, core.DefaultCategories)
	return NewServer("0", transactions, categories, nil)
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var env testEnvelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func postTransaction(t *testing.T, srv *Server, date string, typ, category, payment string, amount float64) core.Transaction {
	t.Helper()
	rec, env := doRequest(t, srv, http.MethodPost, "/api/transactions", map[string]any{
		"date":        date,
		"type":        typ,
		"category":    category,
		"paymentType": payment,
		"description": "test entry",
		"amount":      amount,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	var created core.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &created))
	return created
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, srv, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndListTransactions(t *testing.T) {
	srv := newTestServer(t)

	created := postTransaction(t, srv, "2026-09-01", "income", "Shop Earnings", "upi", 150.50)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(15050), created.Amount.Cents)

	rec, env := doRequest(t, srv, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var listed []core.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestCreateTransactionValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing description", map[string]any{
			"date": "2026-09-01", "type": "expense", "category": "Misc",
			"paymentType": "cash", "description": " ", "amount": 10,
		}},
		{"bad type", map[string]any{
			"date": "2026-09-01", "type": "transfer", "category": "Misc",
			"paymentType": "cash", "description": "x", "amount": 10,
		}},
		{"bad payment", map[string]any{
			"date": "2026-09-01", "type": "expense", "category": "Misc",
			"paymentType": "cheque", "description": "x", "amount": 10,
		}},
		{"negative amount", map[string]any{
			"date": "2026-09-01", "type": "expense", "category": "Misc",
			"paymentType": "cash", "description": "x", "amount": -5,
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := doRequest(t, srv, http.MethodPost, "/api/transactions", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestTransactionListFilters(t *testing.T) {
	srv := newTestServer(t)

	postTransaction(t, srv, "2026-08-30", "expense", "Misc", "cash", 10)
	postTransaction(t, srv, "2026-09-01", "expense", "Raw Material", "upi", 20)
	postTransaction(t, srv, "2026-09-02", "income", "Shop Earnings", "bank", 500)

	rec, env := doRequest(t, srv, http.MethodGet, "/api/transactions?type=income", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []core.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 1)

	rec, env = doRequest(t, srv, http.MethodGet,
		"/api/transactions?startDate=2026-09-01&endDate=2026-09-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 2)

	// A lone range bound is rejected.
	rec, _ = doRequest(t, srv, http.MethodGet, "/api/transactions?startDate=2026-09-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(t)

	created := postTransaction(t, srv, "2026-09-01", "expense", "Misc", "cash", 10)

	rec, env := doRequest(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = doRequest(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestStatsAggregation(t *testing.T) {
	srv := newTestServer(t)

	postTransaction(t, srv, "2026-09-01", "income", "Shop Earnings", "upi", 500)
	postTransaction(t, srv, "2026-09-01", "expense", "Raw Material Purchase", "cash", 200)
	postTransaction(t, srv, "2026-09-01", "expense", "Electricity Bill", "bank", 50)

	rec, env := doRequest(t, srv, http.MethodGet, "/api/stats?period=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var s core.Summary
	require.NoError(t, json.Unmarshal(env.Data, &s))
	assert.Equal(t, int64(50000), s.TotalIncome.Cents)
	assert.Equal(t, int64(25000), s.TotalExpenses.Cents)
	assert.Equal(t, int64(50000), s.ShopEarnings.Cents)
	assert.Equal(t, int64(20000), s.ShopRawMaterial.Cents)
	assert.Equal(t, int64(5000), s.ElectricityBills.Cents)
	assert.Equal(t, int64(25000), s.NetProfit.Cents)
	assert.Equal(t, 3, s.TransactionCount)
}

func TestStatsCustomPeriodRequiresDate(t *testing.T) {
	srv := newTestServer(t)

	rec, env := doRequest(t, srv, http.MethodGet, "/api/stats?period=custom", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)

	rec, _ = doRequest(t, srv, http.MethodGet, "/api/stats?period=custom&date=2026-09-01", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatsUnknownPeriod(t *testing.T) {
	srv := newTestServer(t)

	rec, env := doRequest(t, srv, http.MethodGet, "/api/stats?period=decade", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestStatsCacheInvalidatedByWrites(t *testing.T) {
	srv := newTestServer(t)

	postTransaction(t, srv, "2026-09-01", "income", "Shop Earnings", "cash", 100)

	_, env := doRequest(t, srv, http.MethodGet, "/api/stats?period=all", nil)
	var s core.Summary
	require.NoError(t, json.Unmarshal(env.Data, &s))
	require.Equal(t, 1, s.TransactionCount)

	// A second write must not be hidden by the memoized summary.
	postTransaction(t, srv, "2026-09-01", "income", "Shop Earnings", "cash", 100)

	_, env = doRequest(t, srv, http.MethodGet, "/api/stats?period=all", nil)
	require.NoError(t, json.Unmarshal(env.Data, &s))
	assert.Equal(t, 2, s.TransactionCount)
	assert.Equal(t, int64(20000), s.TotalIncome.Cents)
}

func TestCategoryEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec, env := doRequest(t, srv, http.MethodPost, "/api/categories", map[string]any{
		"name": "Fuel", "type": "expense",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created core.Category
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, core.DefaultIcon, created.Icon)
	assert.False(t, created.IsDefault)

	rec, env = doRequest(t, srv, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []core.Category
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 1)

	rec, _ = doRequest(t, srv, http.MethodDelete, "/api/categories/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = doRequest(t, srv, http.MethodDelete, "/api/categories/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestCategoryCreateValidation(t *testing.T) {
	srv := newTestServer(t)

	rec, env := doRequest(t, srv, http.MethodPost, "/api/categories", map[string]any{
		"name": "  ", "type": "expense",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestInitSeedsDefaultsOnce(t *testing.T) {
	srv := newTestServer(t)

	rec, env := doRequest(t, srv, http.MethodPost, "/api/init", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "initialized successfully")

	rec, env = doRequest(t, srv, http.MethodPost, "/api/init", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "already exist")

	_, env = doRequest(t, srv, http.MethodGet, "/api/categories", nil)
	var listed []core.Category
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, len(core.DefaultCategories))
}

func TestDeleteDefaultCategoryRejected(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doRequest(t, srv, http.MethodPost, "/api/init", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, env := doRequest(t, srv, http.MethodGet, "/api/categories", nil)
	var listed []core.Category
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.NotEmpty(t, listed)

	rec, env = doRequest(t, srv, http.MethodDelete, "/api/categories/"+listed[0].ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestEnvelopeShape(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doRequest(t, srv, http.MethodGet, "/api/stats?period=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, true, raw["success"])
	assert.Contains(t, raw, "data")
	assert.NotContains(t, raw, "error")

	rec, _ = doRequest(t, srv, http.MethodGet, "/api/stats?period=bogus", nil)
	raw = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, false, raw["success"])
	assert.NotContains(t, raw, "data")
	assert.Contains(t, raw, "error")
}

func TestReadEndpointsNotRateLimited(t *testing.T) {
	srv := newTestServer(t)

	// Well past the per-minute write budget; probes and reads must not
	// consume it.
	for i := 0; i < 70; i++ {
		rec, _ := doRequest(t, srv, http.MethodGet, "/healthz", nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
	for i := 0; i < 70; i++ {
		rec, _ := doRequest(t, srv, http.MethodGet, "/api/stats?period=all", nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
}

func TestWriteEndpointsRateLimited(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 60; i++ {
		rec, _ := doRequest(t, srv, http.MethodPost, "/api/init", nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec, env := doRequest(t, srv, http.MethodPost, "/api/init", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Reads still pass for the same client.
	rec, _ = doRequest(t, srv, http.MethodGet, "/api/categories", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	postTransaction(t, srv, "2026-09-01", "expense", "Misc", "cash", 10)
	rec, _ := doRequest(t, srv, http.MethodGet, "/api/stats?period=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := doRequest(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var metrics map[string]float64
	require.NoError(t, json.Unmarshal(env.Data, &metrics))
	assert.GreaterOrEqual(t, metrics["http_requests_total"], float64(2))
	assert.GreaterOrEqual(t, metrics["active_clients"], float64(1))
	assert.Equal(t, float64(1), metrics["stats_cache_entries"])
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestMoneyDecimalParsing(t *testing.T) {
	srv := newTestServer(t)

	for i, amount := range []any{"99.99", 99.99} {
		created := func() core.Transaction {
			rec, env := doRequest(t, srv, http.MethodPost, "/api/transactions", map[string]any{
				"date":        "2026-09-01",
				"type":        "expense",
				"category":    fmt.Sprintf("Misc %d", i),
				"paymentType": "cash",
				"description": "decimal amount",
				"amount":      amount,
			})
			require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
			var out core.Transaction
			require.NoError(t, json.Unmarshal(env.Data, &out))
			return out
		}()
		assert.Equal(t, int64(9999), created.Amount.Cents)
	}
}
