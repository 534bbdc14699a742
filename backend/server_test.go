package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagus-labs/agent-portal/backend/config"
	"github.com/wagus-labs/agent-portal/backend/handlers"
	"github.com/wagus-labs/agent-portal/backend/middleware"
	"github.com/wagus-labs/agent-portal/backend/models"
	"github.com/wagus-labs/agent-portal/portal"
	"github.com/wagus-labs/agent-portal/portal/database/repositories"
	"github.com/wagus-labs/agent-portal/portal/economy"
	"github.com/wagus-labs/agent-portal/portal/economy/pricing"
	"github.com/wagus-labs/agent-portal/portal/metrics"
	"github.com/wagus-labs/agent-portal/portal/services"
)

const testWallet = "So11111111111111111111111111111111111111112"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	spotSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("ids")
		fmt.Fprintf(w, `{%q:{"usd":%d}}`, id, len(id))
	}))
	t.Cleanup(spotSrv.Close)

	cfg := portal.DefaultConfig()
	store := pricing.NewPriceStore(repositories.NewMemoryRepository(100), time.Second)
	engine, err := pricing.NewEngine(
		economy.NewState(cfg.Economy.Seed),
		economy.NewEvolver(cfg.Economy.Evolution, nil),
		pricing.NewCalculator(cfg.Economy.Pricing),
		pricing.WithStore(store))
	require.NoError(t, err)

	webApp := &handlers.WebApp{
		Config:    config.NewWebAppConfig(&cfg, false),
		Engine:    engine,
		Store:     store,
		Analyzer:  pricing.NewMarketAnalyzer(engine, store),
		Scheduler: pricing.NewPriceScheduler(engine, time.Minute),
		Spot: services.NewSpotPriceService(spotSrv.URL, time.Second, time.Minute, []services.SpotToken{
			{Symbol: "SOL", ID: "solana", Fallback: 150},
			{Symbol: "USDC", ID: "usd-coin", Fallback: 1},
		}),
		Metrics: metrics.New(),
		Version: "test",
	}
	return NewApp(webApp, middleware.NewRateLimiter(0.001, 1))
}

func doRequest(t *testing.T, app *fiber.App, method, target, wallet string) (int, models.APIResponse) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if wallet != "" {
		req.Header.Set(middleware.WalletHeader, wallet)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out models.APIResponse
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.Unmarshal(body, &out), string(body))
	}
	return resp.StatusCode, out
}

func TestRoutes(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name       string
		method     string
		target     string
		wallet     string
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"token requires wallet", http.MethodGet, "/api/token/", "", http.StatusUnauthorized},
		{"token rejects short key", http.MethodGet, "/api/token/", "abc", http.StatusUnauthorized},
		{"token rejects bad base58", http.MethodGet, "/api/token/", "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", http.StatusUnauthorized},
		{"token", http.MethodGet, "/api/token/", testWallet, http.StatusOK},
		{"breakdown", http.MethodGet, "/api/token/breakdown", testWallet, http.StatusOK},
		{"breakdown requires wallet", http.MethodGet, "/api/token/breakdown", "", http.StatusUnauthorized},
		{"refresh requires wallet", http.MethodPost, "/api/token/refresh", "", http.StatusUnauthorized},
		{"history defaults", http.MethodGet, "/api/token/history", "", http.StatusOK},
		{"history bad hours", http.MethodGet, "/api/token/history?hours=abc", "", http.StatusBadRequest},
		{"history hours out of range", http.MethodGet, "/api/token/history?hours=500", "", http.StatusBadRequest},
		{"history limit out of range", http.MethodGet, "/api/token/history?limit=0", "", http.StatusBadRequest},
		{"market health", http.MethodGet, "/api/token/health", "", http.StatusOK},
		{"spot", http.MethodGet, "/api/spot/", "", http.StatusOK},
		{"spot search", http.MethodGet, "/api/spot/search?q=sol", "", http.StatusOK},
		{"spot by symbol", http.MethodGet, "/api/spot/sol", "", http.StatusOK},
		{"spot unknown symbol", http.MethodGet, "/api/spot/doge", "", http.StatusNotFound},
		{"spot search needs query", http.MethodGet, "/api/spot/search", "", http.StatusBadRequest},
		{"spot search no match", http.MethodGet, "/api/spot/search?q=xyz", "", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, tt.method, tt.target, tt.wallet)
			if status != tt.wantStatus {
				t.Errorf("%s %s got = %v, want %v (%+v)", tt.method, tt.target, status, tt.wantStatus, body.Error)
			}
			assert.Equal(t, status < 400, body.Success)
		})
	}
}

func TestTokenSnapshot(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/api/token/", testWallet)
	require.Equal(t, http.StatusOK, status)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, testWallet, data["wallet"])
	assert.InDelta(t, 0.011165, data["price"], 1e-6)
	assert.Equal(t, false, data["stale"])
}

func TestTokenRefresh_RateLimited(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodPost, "/api/token/refresh", testWallet)
	require.Equal(t, http.StatusOK, status)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["cycle"])

	status, body = doRequest(t, app, http.MethodPost, "/api/token/refresh", testWallet)
	assert.Equal(t, http.StatusTooManyRequests, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body.Error.Code)

	// Another wallet has its own bucket
	status, _ = doRequest(t, app, http.MethodPost, "/api/token/refresh", "11111111111111111111111111111111")
	assert.Equal(t, http.StatusOK, status)
}

func TestTokenHistory_AfterRefresh(t *testing.T) {
	app := newTestApp(t)

	status, _ := doRequest(t, app, http.MethodPost, "/api/token/refresh", testWallet)
	require.Equal(t, http.StatusOK, status)

	status, body := doRequest(t, app, http.MethodGet, "/api/token/history?hours=1&limit=10", "")
	require.Equal(t, http.StatusOK, status)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
	assert.Equal(t, float64(1), data["hours"])
	assert.Equal(t, float64(10), data["limit"])
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	doRequest(t, app, http.MethodGet, "/health", "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "wagus_token_price_usd")
}
