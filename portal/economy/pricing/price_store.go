package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/wagus-labs/agent-portal/portal/database/models"
	"github.com/wagus-labs/agent-portal/portal/database/repositories"
	"github.com/wagus-labs/agent-portal/portal/economy"
)

const (
	cacheSize          = 256 // Limit cache size
	defaultHistoryRows = 100
	maxHistoryRows     = 1440
)

// PricePoint represents a point in time price data
type PricePoint struct {
	Price           float64   `json:"price"`
	EffectiveSupply float64   `json:"effective_supply"`
	DailyVolume     float64   `json:"daily_volume"`
	PriceChange     float64   `json:"price_change"`
	CycleID         string    `json:"cycle_id"`
	Timestamp       time.Time `json:"timestamp"`
}

// cachedHistory represents a cached history query
type cachedHistory struct {
	points    []PricePoint
	timestamp time.Time
}

// PriceStore handles state persistence, the price ledger and history caching
type PriceStore struct {
	repo        repositories.EconomyRepository
	cache       *lru.Cache
	cacheExpiry time.Duration
}

// NewPriceStore creates a new price store
func NewPriceStore(repo repositories.EconomyRepository, cacheExpiry time.Duration) *PriceStore {
	cache, _ := lru.New(cacheSize)
	return &PriceStore{
		repo:        repo,
		cache:       cache,
		cacheExpiry: cacheExpiry,
	}
}

// Restore loads the most recently persisted state. It returns nil without an
// error when nothing has been stored yet.
func (ps *PriceStore) Restore(ctx context.Context) (*economy.EconomicState, error) {
	snapshot, err := ps.repo.GetLatestSnapshot(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNoSnapshot) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to restore economic state: %w", err)
	}

	lastUpdate := snapshot.LastUpdate
	state := economy.EconomicState{
		TreasuryValueUSD:  snapshot.TreasuryValueUSD,
		CirculatingSupply: snapshot.CirculatingSupply,
		TotalStaked:       snapshot.TotalStaked,
		BurnedTokens:      snapshot.BurnedTokens,
		DailyVolume:       snapshot.DailyVolume,
		DemandMultiplier:  snapshot.DemandMultiplier,
		LastPrice:         snapshot.LastPrice,
		LastUpdate:        &lastUpdate,
	}
	return &state, nil
}

// Save persists the snapshot and appends it to the price ledger
func (ps *PriceStore) Save(ctx context.Context, snap Snapshot) error {
	ts := time.Now()
	if snap.LastUpdate != nil {
		ts = *snap.LastUpdate
	}

	err := ps.repo.SaveSnapshot(ctx, &models.EconomicSnapshot{
		CycleID:           snap.CycleID,
		TreasuryValueUSD:  snap.TreasuryValueUSD,
		CirculatingSupply: snap.CirculatingSupply,
		TotalStaked:       snap.TotalStaked,
		BurnedTokens:      snap.BurnedTokens,
		DailyVolume:       snap.DailyVolume,
		DemandMultiplier:  snap.DemandMultiplier,
		LastPrice:         snap.Price,
		LastUpdate:        ts,
	})
	if err != nil {
		return err
	}

	err = ps.repo.RecordPrice(ctx, &models.TokenPriceHistory{
		CycleID:            snap.CycleID,
		Price:              snap.Price,
		EffectiveSupply:    snap.EffectiveSupply,
		DailyVolume:        snap.DailyVolume,
		DemandMultiplier:   snap.DemandMultiplier,
		PriceChangePercent: snap.ChangePercent(),
		Timestamp:          ts,
	})
	if err != nil {
		return err
	}

	ps.cache.Purge()
	return nil
}

// GetPriceHistory retrieves the ledger since the given time, oldest first
func (ps *PriceStore) GetPriceHistory(ctx context.Context, since time.Time, limit int) ([]PricePoint, error) {
	if limit <= 0 {
		limit = defaultHistoryRows
	}
	limit = min(limit, maxHistoryRows)

	cacheKey := fmt.Sprintf("history:%d:%d", since.Truncate(time.Minute).Unix(), limit)
	if cached, ok := ps.cache.Get(cacheKey); ok {
		if c, ok := cached.(cachedHistory); ok && time.Since(c.timestamp) < ps.cacheExpiry {
			return c.points, nil
		}
	}

	histories, err := ps.repo.GetPriceHistory(ctx, since, limit)
	if err != nil {
		return nil, err
	}

	points := make([]PricePoint, 0, len(histories))
	for _, h := range histories {
		points = append(points, PricePoint{
			Price:           h.Price,
			EffectiveSupply: h.EffectiveSupply,
			DailyVolume:     h.DailyVolume,
			PriceChange:     h.PriceChangePercent,
			CycleID:         h.CycleID,
			Timestamp:       h.Timestamp,
		})
	}

	ps.cache.Add(cacheKey, cachedHistory{
		points:    points,
		timestamp: time.Now(),
	})

	return points, nil
}
