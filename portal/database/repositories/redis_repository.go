package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/wagus-labs/agent-portal/portal/database/models"
)

type redisRepository struct {
	client   *redis.Client
	prefix   string
	capacity int64
}

// NewRedisRepository keeps the latest snapshot as a JSON string and the
// price ledger in a sorted set scored by unix milliseconds.
func NewRedisRepository(client *redis.Client, prefix string, capacity int) EconomyRepository {
	if capacity <= 0 {
		capacity = defaultMemoryHistory
	}
	return &redisRepository{
		client:   client,
		prefix:   prefix,
		capacity: int64(capacity),
	}
}

func (r *redisRepository) snapshotKey() string {
	return r.prefix + "economy:snapshot:latest"
}

func (r *redisRepository) historyKey() string {
	return r.prefix + "economy:price_history"
}

func (r *redisRepository) SaveSnapshot(ctx context.Context, snapshot *models.EconomicSnapshot) error {
	snapshot.CreatedAt = time.Now()
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal economic snapshot: %w", err)
	}

	if err := r.client.Set(ctx, r.snapshotKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store economic snapshot: %w", err)
	}
	return nil
}

func (r *redisRepository) GetLatestSnapshot(ctx context.Context) (*models.EconomicSnapshot, error) {
	data, err := r.client.Get(ctx, r.snapshotKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	snapshot := new(models.EconomicSnapshot)
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode latest snapshot: %w", err)
	}
	return snapshot, nil
}

func (r *redisRepository) RecordPrice(ctx context.Context, record *models.TokenPriceHistory) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal price history: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, r.historyKey(), &redis.Z{
		Score:  float64(record.Timestamp.UnixMilli()),
		Member: data,
	})
	// Keep only the newest capacity entries
	pipe.ZRemRangeByRank(ctx, r.historyKey(), 0, -(r.capacity + 1))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add price history: %w", err)
	}
	return nil
}

func (r *redisRepository) GetPriceHistory(ctx context.Context, since time.Time, limit int) ([]*models.TokenPriceHistory, error) {
	if limit <= 0 {
		return []*models.TokenPriceHistory{}, nil
	}

	members, err := r.client.ZRevRangeByScore(ctx, r.historyKey(), &redis.ZRangeBy{
		Min:   strconv.FormatInt(since.UnixMilli(), 10),
		Max:   "+inf",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}

	history := make([]*models.TokenPriceHistory, 0, len(members))
	for _, m := range members {
		record := new(models.TokenPriceHistory)
		if err := json.Unmarshal([]byte(m), record); err != nil {
			return nil, fmt.Errorf("failed to decode price history entry: %w", err)
		}
		history = append(history, record)
	}

	reverse(history)
	return history, nil
}
