package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sahilm/fuzzy"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

const (
	SourceLive     = "live"
	SourceCache    = "cache"
	SourceFallback = "fallback"

	maxConcurrentFetches = 4
)

// SpotToken identifies an external token and its hardcoded fallback price
type SpotToken struct {
	Symbol   string
	ID       string
	Fallback float64
}

type SpotPrice struct {
	Symbol    string    `json:"symbol"`
	ID        string    `json:"id"`
	PriceUSD  float64   `json:"price_usd"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// SpotPriceService fetches real-world prices shown next to the WAGUS price.
// Fetch failures never surface to callers; the fallback price is used instead.
type SpotPriceService struct {
	endpoint string
	client   *http.Client
	ttl      time.Duration
	tokens   []SpotToken
	cache    *xsync.MapOf[string, SpotPrice]
}

func NewSpotPriceService(endpoint string, timeout, ttl time.Duration, tokens []SpotToken) *SpotPriceService {
	return &SpotPriceService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		ttl:      ttl,
		tokens:   tokens,
		cache:    xsync.NewMapOf[string, SpotPrice](),
	}
}

// GetPrices returns one price per configured token, in configuration order
func (s *SpotPriceService) GetPrices(ctx context.Context) []SpotPrice {
	prices := make([]SpotPrice, len(s.tokens))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, token := range s.tokens {
		g.Go(func() error {
			prices[i] = s.getPrice(gctx, token)
			return nil
		})
	}
	_ = g.Wait()

	return prices
}

// GetPrice looks a token up by symbol, case-insensitively
func (s *SpotPriceService) GetPrice(ctx context.Context, symbol string) (SpotPrice, bool) {
	for _, token := range s.tokens {
		if strings.EqualFold(token.Symbol, symbol) {
			return s.getPrice(ctx, token), true
		}
	}
	return SpotPrice{}, false
}

// Search fuzzy-matches the query against token symbols and ids, best match first
func (s *SpotPriceService) Search(ctx context.Context, query string) []SpotPrice {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, spotTokenSource(s.tokens))
	results := make([]SpotPrice, 0, len(matches))
	for _, match := range matches {
		results = append(results, s.getPrice(ctx, s.tokens[match.Index]))
	}
	return results
}

func (s *SpotPriceService) getPrice(ctx context.Context, token SpotToken) SpotPrice {
	if cached, ok := s.cache.Load(token.ID); ok && time.Since(cached.FetchedAt) < s.ttl {
		cached.Source = SourceCache
		return cached
	}

	price, err := s.fetch(ctx, token.ID)
	if err != nil {
		slog.Warn("Spot price fetch failed, using fallback",
			slog.String("type", "api"),
			slog.String("symbol", token.Symbol),
			slog.Float64("fallback", token.Fallback),
			slog.Any("error", err))
		return SpotPrice{
			Symbol:    token.Symbol,
			ID:        token.ID,
			PriceUSD:  token.Fallback,
			Source:    SourceFallback,
			FetchedAt: time.Now(),
		}
	}

	sp := SpotPrice{
		Symbol:    token.Symbol,
		ID:        token.ID,
		PriceUSD:  price,
		Source:    SourceLive,
		FetchedAt: time.Now(),
	}
	s.cache.Store(token.ID, sp)
	return sp
}

// fetch reads {"<id>":{"usd":<price>}} from a simple-price endpoint
func (s *SpotPriceService) fetch(ctx context.Context, id string) (float64, error) {
	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("invalid JSON response")
	}

	result := gjson.GetBytes(body, gjson.Escape(id)+".usd")
	if !result.Exists() || result.Type != gjson.Number {
		return 0, fmt.Errorf("no usd price for %s", id)
	}
	price := result.Float()
	if price <= 0 {
		return 0, fmt.Errorf("non-positive price %g for %s", price, id)
	}
	return price, nil
}

type spotTokenSource []SpotToken

func (s spotTokenSource) String(i int) string {
	return strings.ToLower(s[i].Symbol + " " + s[i].ID)
}

func (s spotTokenSource) Len() int {
	return len(s)
}
