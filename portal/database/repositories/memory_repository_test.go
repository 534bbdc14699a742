package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagus-labs/agent-portal/portal/database/models"
)

func TestMemoryRepository_Snapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(0)

	_, err := repo.GetLatestSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	first := &models.EconomicSnapshot{CycleID: "a", LastPrice: 0.01}
	require.NoError(t, repo.SaveSnapshot(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	require.NoError(t, repo.SaveSnapshot(ctx, &models.EconomicSnapshot{CycleID: "b", LastPrice: 0.02}))

	got, err := repo.GetLatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", got.CycleID)

	// Callers get a copy
	got.LastPrice = 99
	again, _ := repo.GetLatestSnapshot(ctx)
	assert.Equal(t, 0.02, again.LastPrice)
}

func TestMemoryRepository_GetPriceHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(3)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.RecordPrice(ctx, &models.TokenPriceHistory{
			CycleID:   string(rune('a' + i)),
			Price:     float64(i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	tests := []struct {
		name  string
		since time.Time
		limit int
		want  []string
	}{
		{"capacity trims oldest", base.Add(-time.Minute), 10, []string{"c", "d", "e"}},
		{"limit keeps newest", base.Add(-time.Minute), 2, []string{"d", "e"}},
		{"since is inclusive", base.Add(3 * time.Minute), 10, []string{"d", "e"}},
		{"nothing recent", time.Now(), 10, []string{}},
		{"zero limit", base, 0, []string{}},
		{"negative limit", base, -5, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetPriceHistory(ctx, tt.since, tt.limit)
			require.NoError(t, err)

			ids := []string{}
			for _, h := range got {
				ids = append(ids, h.CycleID)
			}
			if !assert.Equal(t, tt.want, ids) {
				t.Errorf("GetPriceHistory() got = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestMemoryRepository_RecordPriceStampsTime(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(10)

	rec := &models.TokenPriceHistory{CycleID: "a", Price: 0.01}
	require.NoError(t, repo.RecordPrice(ctx, rec))
	assert.False(t, rec.Timestamp.IsZero())

	got, err := repo.GetPriceHistory(ctx, time.Now().Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].CycleID)
}
