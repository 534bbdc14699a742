package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/wagus-labs/agent-portal/portal/economy/utils"
)

const (
	analysisWindow  = 24 * time.Hour
	analysisSamples = 1440
)

// MarketStats summarizes recent price behaviour and economic headroom
type MarketStats struct {
	MinPrice24h          float64   `json:"min_price_24h"`
	MaxPrice24h          float64   `json:"max_price_24h"`
	AvgPrice24h          float64   `json:"avg_price_24h"`
	PriceChangePercent   float64   `json:"price_change_percent"`
	Volatility           float64   `json:"volatility"`
	Samples              int       `json:"samples"`
	EffectiveSupplyRatio float64   `json:"effective_supply_ratio"`
	HealthScore          float64   `json:"health_score"`
	NeedsAttention       bool      `json:"needs_attention"`
	Reasons              []string  `json:"reasons,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
}

// MarketAnalyzer handles market statistics and analysis
type MarketAnalyzer struct {
	engine *Engine
	store  *PriceStore
	window time.Duration
}

// NewMarketAnalyzer creates a new market analyzer
func NewMarketAnalyzer(engine *Engine, store *PriceStore) *MarketAnalyzer {
	return &MarketAnalyzer{
		engine: engine,
		store:  store,
		window: analysisWindow,
	}
}

// Analyze combines the live snapshot with the recent price ledger
func (ma *MarketAnalyzer) Analyze(ctx context.Context) (MarketStats, error) {
	snap := ma.engine.Snapshot()

	points, err := ma.store.GetPriceHistory(ctx, time.Now().Add(-ma.window), analysisSamples)
	if err != nil {
		return MarketStats{}, fmt.Errorf("failed to load price history: %w", err)
	}

	stats := MarketStats{
		Samples:   len(points),
		Timestamp: time.Now(),
	}
	if snap.CirculatingSupply > 0 {
		stats.EffectiveSupplyRatio = snap.EffectiveSupply / snap.CirculatingSupply
	}

	if len(points) > 0 {
		stats.MinPrice24h = math.Inf(1)
		var sum float64
		for _, p := range points {
			stats.MinPrice24h = math.Min(stats.MinPrice24h, p.Price)
			stats.MaxPrice24h = math.Max(stats.MaxPrice24h, p.Price)
			sum += p.Price
		}
		stats.AvgPrice24h = sum / float64(len(points))
		stats.PriceChangePercent = calculatePercentageChange(points[0].Price, points[len(points)-1].Price)
		stats.Volatility = calculateVolatility(points)
	}

	stats.HealthScore = calculateHealthScore(stats, snap)

	if stats.EffectiveSupplyRatio < utils.LowEffectiveSupplyRatio {
		stats.Reasons = append(stats.Reasons, "effective supply nearly exhausted")
	}
	if stats.Volatility > utils.HighVolatility {
		stats.Reasons = append(stats.Reasons, "high price volatility")
	}
	if snap.Stale {
		stats.Reasons = append(stats.Reasons, "last price cycle failed")
	}
	if snap.Price >= ma.engine.calculator.Config().MaxPrice {
		stats.Reasons = append(stats.Reasons, "price pinned at ceiling")
	}
	stats.NeedsAttention = len(stats.Reasons) > 0

	return stats, nil
}

// StartMonitor logs a warning whenever the economy needs attention
func (ma *MarketAnalyzer) StartMonitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats, err := ma.Analyze(ctx)
				if err != nil {
					slog.Error("Failed to run market analysis",
						slog.String("type", "eco"),
						slog.Any("error", err))
					continue
				}
				if stats.NeedsAttention {
					slog.Warn("Token economy needs attention",
						slog.String("type", "eco"),
						slog.Float64("health_score", stats.HealthScore),
						slog.Float64("effective_supply_ratio", stats.EffectiveSupplyRatio),
						slog.Float64("volatility", stats.Volatility),
						slog.Any("reasons", stats.Reasons))
				}
			}
		}
	}()
}

// calculateHealthScore weighs supply headroom, stability and activity (0-100)
func calculateHealthScore(stats MarketStats, snap Snapshot) float64 {
	const (
		supplyWeight    = 0.40
		stabilityWeight = 0.30
		activityWeight  = 0.30
	)

	supplyScore := math.Min(1.0, stats.EffectiveSupplyRatio/0.5) * 100
	stabilityScore := (1 - math.Min(1.0, stats.Volatility)) * 100
	activityScore := math.Min(1.0, snap.DailyVolume/utils.DemandVolumeBase) * 100

	score := supplyScore*supplyWeight + stabilityScore*stabilityWeight + activityScore*activityWeight
	if snap.Stale {
		score *= 0.5
	}
	return math.Max(0, math.Min(100, score))
}

// calculateVolatility is the standard deviation of tick-to-tick relative moves
func calculateVolatility(points []PricePoint) float64 {
	if len(points) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Price
		if prev == 0 {
			continue
		}
		returns = append(returns, (points[i].Price-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance)
}

func calculatePercentageChange(old, new float64) float64 {
	if old == 0 {
		return 0
	}
	return ((new - old) / old) * 100
}
