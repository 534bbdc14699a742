package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/wagus-labs/agent-portal/portal/database/models"
)

const defaultMemoryHistory = 1440 // one day of 60s ticks

type memoryRepository struct {
	mu       sync.RWMutex
	latest   *models.EconomicSnapshot
	history  []*models.TokenPriceHistory
	capacity int
	nextID   int64
}

// NewMemoryRepository keeps everything in process memory. State is lost on
// restart; only the newest capacity price records are retained.
func NewMemoryRepository(capacity int) EconomyRepository {
	if capacity <= 0 {
		capacity = defaultMemoryHistory
	}
	return &memoryRepository{capacity: capacity}
}

func (r *memoryRepository) SaveSnapshot(_ context.Context, snapshot *models.EconomicSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	snapshot.ID = r.nextID
	snapshot.CreatedAt = time.Now()

	stored := *snapshot
	r.latest = &stored
	return nil
}

func (r *memoryRepository) GetLatestSnapshot(_ context.Context) (*models.EconomicSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.latest == nil {
		return nil, ErrNoSnapshot
	}
	out := *r.latest
	return &out, nil
}

func (r *memoryRepository) RecordPrice(_ context.Context, record *models.TokenPriceHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	r.nextID++
	record.ID = r.nextID

	stored := *record
	r.history = append(r.history, &stored)
	if over := len(r.history) - r.capacity; over > 0 {
		r.history = append([]*models.TokenPriceHistory(nil), r.history[over:]...)
	}
	return nil
}

func (r *memoryRepository) GetPriceHistory(_ context.Context, since time.Time, limit int) ([]*models.TokenPriceHistory, error) {
	if limit <= 0 {
		return []*models.TokenPriceHistory{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.TokenPriceHistory, 0, min(limit, len(r.history)))
	for i := len(r.history) - 1; i >= 0 && len(out) < limit; i-- {
		h := r.history[i]
		if h.Timestamp.Before(since) {
			break
		}
		c := *h
		out = append(out, &c)
	}

	reverse(out)
	return out, nil
}
