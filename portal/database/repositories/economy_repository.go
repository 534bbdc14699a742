package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/wagus-labs/agent-portal/portal/database/models"
)

// ErrNoSnapshot is returned when no economic snapshot has been stored yet.
var ErrNoSnapshot = errors.New("no economic snapshot stored")

// EconomyRepository persists economy snapshots and the token price ledger.
// GetPriceHistory returns at most limit records newer than since, oldest first.
type EconomyRepository interface {
	SaveSnapshot(ctx context.Context, snapshot *models.EconomicSnapshot) error
	GetLatestSnapshot(ctx context.Context) (*models.EconomicSnapshot, error)
	RecordPrice(ctx context.Context, record *models.TokenPriceHistory) error
	GetPriceHistory(ctx context.Context, since time.Time, limit int) ([]*models.TokenPriceHistory, error)
}

type economyRepository struct {
	db *bun.DB
}

func NewEconomyRepository(db *bun.DB) EconomyRepository {
	return &economyRepository{db: db}
}

func (r *economyRepository) SaveSnapshot(ctx context.Context, snapshot *models.EconomicSnapshot) error {
	snapshot.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(snapshot).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert economic snapshot: %w", err)
	}
	return nil
}

func (r *economyRepository) GetLatestSnapshot(ctx context.Context) (*models.EconomicSnapshot, error) {
	snapshot := new(models.EconomicSnapshot)
	err := r.db.NewSelect().
		Model(snapshot).
		Order("created_at DESC", "id DESC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		slog.Error("Failed to load latest economic snapshot",
			slog.String("type", "db"),
			slog.String("operation", "GetLatestSnapshot"),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return snapshot, nil
}

func (r *economyRepository) RecordPrice(ctx context.Context, record *models.TokenPriceHistory) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	_, err := r.db.NewInsert().Model(record).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert price history: %w", err)
	}
	return nil
}

func (r *economyRepository) GetPriceHistory(ctx context.Context, since time.Time, limit int) ([]*models.TokenPriceHistory, error) {
	if limit <= 0 {
		return []*models.TokenPriceHistory{}, nil
	}

	var history []*models.TokenPriceHistory
	err := r.db.NewSelect().
		Model(&history).
		Where("timestamp >= ?", since).
		Order("timestamp DESC").
		Limit(limit).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*models.TokenPriceHistory{}, nil
		}
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}

	reverse(history)
	return history, nil
}

func reverse(history []*models.TokenPriceHistory) {
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
}
