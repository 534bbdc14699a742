package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokens = []SpotToken{
	{Symbol: "SOL", ID: "solana", Fallback: 150},
	{Symbol: "USDC", ID: "usd-coin", Fallback: 1},
}

func newSpotServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func priceHandler(prices map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("ids")
		w.Header().Set("Content-Type", "application/json")
		if body, ok := prices[id]; ok {
			fmt.Fprint(w, body)
			return
		}
		fmt.Fprint(w, "{}")
	}
}

func TestSpotPriceService_GetPrices(t *testing.T) {
	srv, _ := newSpotServer(t, priceHandler(map[string]string{
		"solana":   `{"solana":{"usd":172.35}}`,
		"usd-coin": `{"usd-coin":{"usd":0.9998}}`,
	}))

	svc := NewSpotPriceService(srv.URL, time.Second, time.Minute, testTokens)
	got := svc.GetPrices(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, "SOL", got[0].Symbol)
	assert.Equal(t, 172.35, got[0].PriceUSD)
	assert.Equal(t, SourceLive, got[0].Source)
	assert.Equal(t, "USDC", got[1].Symbol)
	assert.Equal(t, 0.9998, got[1].PriceUSD)
}

func TestSpotPriceService_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"solana":`)
			},
		},
		{
			name:    "missing token",
			handler: priceHandler(nil),
		},
		{
			name:    "string price",
			handler: priceHandler(map[string]string{"solana": `{"solana":{"usd":"172"}}`}),
		},
		{
			name:    "zero price",
			handler: priceHandler(map[string]string{"solana": `{"solana":{"usd":0}}`}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newSpotServer(t, tt.handler)
			svc := NewSpotPriceService(srv.URL, time.Second, time.Minute, testTokens)

			got, ok := svc.GetPrice(context.Background(), "sol")
			require.True(t, ok)
			if got.PriceUSD != 150 || got.Source != SourceFallback {
				t.Errorf("GetPrice() got = %v/%s, want %v/%s", got.PriceUSD, got.Source, 150.0, SourceFallback)
			}
		})
	}
}

func TestSpotPriceService_Cache(t *testing.T) {
	srv, hits := newSpotServer(t, priceHandler(map[string]string{
		"solana": `{"solana":{"usd":172.35}}`,
	}))
	svc := NewSpotPriceService(srv.URL, time.Second, time.Minute, testTokens)

	first, _ := svc.GetPrice(context.Background(), "SOL")
	second, _ := svc.GetPrice(context.Background(), "SOL")

	assert.Equal(t, SourceLive, first.Source)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.PriceUSD, second.PriceUSD)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSpotPriceService_FallbackIsNotCached(t *testing.T) {
	srv, hits := newSpotServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	svc := NewSpotPriceService(srv.URL, time.Second, time.Minute, testTokens)

	svc.GetPrice(context.Background(), "SOL")
	svc.GetPrice(context.Background(), "SOL")
	assert.Equal(t, int32(2), hits.Load())
}

func TestSpotPriceService_GetPriceUnknown(t *testing.T) {
	svc := NewSpotPriceService("http://127.0.0.1:0", time.Second, time.Minute, testTokens)
	_, ok := svc.GetPrice(context.Background(), "DOGE")
	assert.False(t, ok)
}

func TestSpotPriceService_Search(t *testing.T) {
	srv, _ := newSpotServer(t, priceHandler(map[string]string{
		"solana":   `{"solana":{"usd":172.35}}`,
		"usd-coin": `{"usd-coin":{"usd":1}}`,
	}))
	svc := NewSpotPriceService(srv.URL, time.Second, time.Minute, testTokens)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"exact symbol", "SOL", []string{"SOL"}},
		{"partial id", "usdcoin", []string{"USDC"}},
		{"blank", "   ", nil},
		{"no match", "xyz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range svc.Search(context.Background(), tt.query) {
				got = append(got, p.Symbol)
			}
			if !assert.Equal(t, tt.want, got) {
				t.Errorf("Search() got = %v, want %v", got, tt.want)
			}
		})
	}
}
