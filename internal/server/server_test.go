package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/storage/localstore"
)

const testToken = "test-token"

// fakeBackend stands in for the portfolio REST API.
type fakeBackend struct {
	mu           sync.Mutex
	unauthorized bool
	portfolio    models.Portfolio
	added        []models.NewInvestment
	periods      []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{portfolio: models.Portfolio{
		Investments: []models.Investment{
			{ID: "1", Symbol: "AAPL", Name: "Apple", Type: models.AssetStock, Quantity: 10, PurchasePrice: 150, CurrentPrice: 180},
			{ID: "2", Symbol: "BTC", Name: "Bitcoin", Type: models.AssetCrypto, Quantity: 0.5, PurchasePrice: 30000, CurrentPrice: 40000},
		},
		TotalValue:         21800,
		TotalInvestment:    16500,
		TotalGainLoss:      5300,
		GainLossPercentage: 32.12,
	}}
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.unauthorized || r.Header.Get("Authorization") != "Bearer "+testToken {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "UNAUTHORIZED", "message": "bad token"})
		return
	}

	switch {
	case r.URL.Path == "/api/portfolio":
		json.NewEncoder(w).Encode(b.portfolio)
	case r.URL.Path == "/api/portfolio/investments":
		var inv models.NewInvestment
		json.NewDecoder(r.Body).Decode(&inv)
		b.added = append(b.added, inv)
		b.portfolio.Investments = append(b.portfolio.Investments, models.Investment{
			Symbol: inv.Symbol, Name: inv.Name, Type: inv.Type, Quantity: inv.Quantity,
			PurchasePrice: inv.PurchasePrice, CurrentPrice: inv.CurrentPrice,
		})
		json.NewEncoder(w).Encode(b.portfolio)
	case r.URL.Path == "/api/portfolio/update-prices":
		json.NewEncoder(w).Encode(b.portfolio)
	case r.URL.Path == "/api/market/quotes":
		json.NewEncoder(w).Encode([]models.Quote{
			{Symbol: "AAPL", CurrentPrice: 190, Open: 185, DayHigh: 191, DayLow: 184, Volume: 1200000, Change: 5, ChangePercent: 2.7},
			{Symbol: "BTC", CurrentPrice: 42000, Change: -100, ChangePercent: -0.2},
		})
	case strings.HasPrefix(r.URL.Path, "/api/market/historical/"):
		b.periods = append(b.periods, r.URL.Query().Get("period"))
		today := time.Now().UTC().Truncate(24 * time.Hour)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"date": today.AddDate(0, 0, -2).Format(time.RFC3339), "close": 100},
			{"date": today.AddDate(0, 0, -1).Format(time.RFC3339), "close": 110},
			{"date": today.Format(time.RFC3339), "close": 120},
		})
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) setUnauthorized(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unauthorized = v
}

func (b *fakeBackend) seenPeriods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.periods...)
}

type testEnv struct {
	srv     *Server
	store   *localstore.MemoryStore
	backend *fakeBackend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := newFakeBackend()
	api := httptest.NewServer(backend)
	t.Cleanup(api.Close)

	cfg := common.NewDefaultConfig()
	cfg.API.BaseURL = api.URL
	cfg.API.RateLimit = 1000
	cfg.Charts.Width = 300
	cfg.Charts.Height = 200

	store := localstore.NewMemoryStore()
	a, err := app.NewAppFromConfig(cfg, common.NewSilentLogger(), app.Options{Store: store})
	require.NoError(t, err)

	srv := NewServer(a)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return &testEnv{srv: srv, store: store, backend: backend}
}

func (e *testEnv) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/login", url.Values{"token": {testToken}, "name": {"Ada"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	rec = env.do(t, http.MethodPost, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleVersion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, common.GetVersion(), body["version"])
}

func TestLanding(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Track Your Investments with Confidence")
	assert.Contains(t, body, "Smart Analytics")
	assert.Contains(t, body, `href="/login"`)

	rec = env.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/dashboard", "/dashboard/charts", "/dashboard/widgets", "/dashboard/assets/AAPL", "/dashboard/charts/distribution.png"} {
		rec := env.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, target)
		assert.Equal(t, "/login", rec.Header().Get("Location"), target)
	}
}

func TestLogin_RequiresName(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/login", url.Values{"token": {testToken}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter your name.")

	_, ok, err := env.store.GetItem("token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogin_ThenDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodGet, "/login", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = env.do(t, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Welcome, Ada")
	assert.Contains(t, body, "Portfolio Overview")
	assert.Contains(t, body, "AAPL")
	assert.Contains(t, body, `href="/dashboard/assets/BTC"`)
	assert.Contains(t, body, `name="purchasePrice"`)
}

func TestLogout_ClearsSessionAndRedirects(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodGet, "/logout", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = env.do(t, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	_, ok, _ := env.store.GetItem("token")
	assert.False(t, ok)
	_, ok, _ = env.store.GetItem("user")
	assert.False(t, ok)

	rec = env.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestDashboard_UnauthorizedSignsOut(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.backend.setUnauthorized(true)

	rec := env.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	_, ok, _ := env.store.GetItem("token")
	assert.False(t, ok)
}

func TestAddInvestment_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodPost, "/dashboard/investments", url.Values{
		"name":     {"Tesla"},
		"type":     {"Stock"},
		"quantity": {"abc"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "symbol: required")
	assert.Contains(t, body, "quantity: must be a number")
	assert.Contains(t, body, `value="Tesla"`)
	assert.Empty(t, env.backend.added)
}

func TestAddInvestment_Success(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodPost, "/dashboard/investments", url.Values{
		"symbol":        {"tsla"},
		"name":          {"Tesla"},
		"type":          {"Stock"},
		"quantity":      {"3"},
		"purchasePrice": {"200"},
		"currentPrice":  {"210"},
		"purchaseDate":  {"2024-01-15"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	env.backend.mu.Lock()
	defer env.backend.mu.Unlock()
	require.Len(t, env.backend.added, 1)
	assert.Equal(t, "TSLA", env.backend.added[0].Symbol)
	assert.Equal(t, 3.0, env.backend.added[0].Quantity)
}

func TestUpdatePrices(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodPost, "/dashboard/update-prices", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestCharts_TimeframeSelection(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodGet, "/dashboard/charts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Asset Distribution")
	assert.Contains(t, env.backend.seenPeriods(), "5d")

	rec = env.do(t, http.MethodGet, "/dashboard/charts?timeframe=1Y", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Portfolio Performance (1Y)")
	assert.Contains(t, rec.Body.String(), "/dashboard/charts/performance.png?timeframe=1Y")
	assert.Contains(t, env.backend.seenPeriods(), "1y")
}

func TestCharts_PNG(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	for _, target := range []string{"/dashboard/charts/distribution.png", "/dashboard/charts/performance.png?timeframe=1M"} {
		rec := env.do(t, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"), target)
	}
}

func TestWidgets_Toggle(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodGet, "/dashboard/widgets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hide Market Overview")
	assert.Contains(t, rec.Body.String(), "Top Performers")

	rec = env.do(t, http.MethodPost, "/dashboard/widgets/market-overview/toggle", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/widgets", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, "/dashboard/widgets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Show Market Overview")

	rec = env.do(t, http.MethodPost, "/dashboard/widgets/unknown/toggle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAsset_Detail(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodGet, "/dashboard/assets/aapl", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Investment Details")
	assert.Contains(t, body, "/dashboard/assets/AAPL/chart.png")
	assert.Contains(t, env.backend.seenPeriods(), "1mo")

	rec = env.do(t, http.MethodGet, "/dashboard/assets/AAPL/chart.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = env.do(t, http.MethodGet, "/dashboard/assets/AAPL/other", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAsset_DetailReflectsAddedInvestment(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	rec := env.do(t, http.MethodGet, "/dashboard/assets/ETH", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Investment Details")

	rec = env.do(t, http.MethodPost, "/dashboard/investments", url.Values{
		"symbol":        {"ETH"},
		"name":          {"Ether"},
		"type":          {"Crypto"},
		"quantity":      {"2"},
		"purchasePrice": {"1000"},
		"currentPrice":  {"1500"},
		"purchaseDate":  {"2024-01-15"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/dashboard/assets/ETH", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Investment Details")
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPathParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard/assets/AAPL/chart.png", nil)
	assert.Equal(t, "AAPL", PathParam(req, "/dashboard/assets/", "/chart.png"))
	assert.Equal(t, "AAPL", PathParam(req, "/dashboard/assets/", ""))
	assert.Equal(t, "", PathParam(req, "/other/", ""))
}
