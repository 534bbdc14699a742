package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagus-labs/agent-portal/portal/database/models"
	"github.com/wagus-labs/agent-portal/portal/database/repositories"
	"github.com/wagus-labs/agent-portal/portal/database/repositories/mock"
	"go.uber.org/mock/gomock"
)

func snapshotAt(cycle uint64, price float64, ts time.Time) Snapshot {
	s := newSnapshot(seedState())
	s.Price = price
	s.Cycle = cycle
	s.CycleID = "cycle-" + string(rune('a'+cycle))
	s.LastUpdate = &ts
	return s
}

func TestPriceStore_RestoreEmpty(t *testing.T) {
	store := NewPriceStore(repositories.NewMemoryRepository(10), time.Minute)

	got, err := store.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPriceStore_RestoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockEconomyRepository(ctrl)
	repo.EXPECT().GetLatestSnapshot(gomock.Any()).Return(nil, errors.New("connection refused"))

	store := NewPriceStore(repo, time.Minute)
	got, err := store.Restore(context.Background())
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestPriceStore_SaveRestore(t *testing.T) {
	ctx := context.Background()
	store := NewPriceStore(repositories.NewMemoryRepository(10), time.Minute)

	now := time.Now().UTC().Truncate(time.Second)
	snap := snapshotAt(1, 0.0125, now)
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	want := snap.State()
	assert.Equal(t, want.TreasuryValueUSD, got.TreasuryValueUSD)
	assert.Equal(t, want.TotalStaked, got.TotalStaked)
	assert.Equal(t, want.BurnedTokens, got.BurnedTokens)
	assert.Equal(t, 0.0125, got.LastPrice)
	require.NotNil(t, got.LastUpdate)
	assert.True(t, now.Equal(*got.LastUpdate))
}

func TestPriceStore_GetPriceHistory(t *testing.T) {
	ctx := context.Background()
	store := NewPriceStore(repositories.NewMemoryRepository(10), time.Minute)

	base := time.Now().Add(-time.Hour)
	prices := []float64{0.010, 0.011, 0.012, 0.013}
	for i, p := range prices {
		require.NoError(t, store.Save(ctx, snapshotAt(uint64(i+1), p, base.Add(time.Duration(i)*time.Minute))))
	}

	tests := []struct {
		name  string
		since time.Time
		limit int
		want  []float64
	}{
		{
			name:  "everything oldest first",
			since: base.Add(-time.Minute),
			limit: 10,
			want:  prices,
		},
		{
			name:  "limit keeps the newest",
			since: base.Add(-time.Minute),
			limit: 2,
			want:  []float64{0.012, 0.013},
		},
		{
			name:  "since filters old points",
			since: base.Add(90 * time.Second),
			limit: 10,
			want:  []float64{0.012, 0.013},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.GetPriceHistory(ctx, tt.since, tt.limit)
			require.NoError(t, err)

			var gotPrices []float64
			for _, p := range got {
				gotPrices = append(gotPrices, p.Price)
			}
			if !assert.Equal(t, tt.want, gotPrices) {
				t.Errorf("GetPriceHistory() got = %v, want %v", gotPrices, tt.want)
			}
		})
	}
}

func TestPriceStore_HistoryCache(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := mock.NewMockEconomyRepository(ctrl)

	since := time.Now().Add(-time.Hour)
	rows := []*models.TokenPriceHistory{{CycleID: "a", Price: 0.01, Timestamp: time.Now()}}

	repo.EXPECT().GetPriceHistory(gomock.Any(), since, 100).Return(rows, nil).Times(2)
	repo.EXPECT().SaveSnapshot(gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().RecordPrice(gomock.Any(), gomock.Any()).Return(nil)

	store := NewPriceStore(repo, time.Minute)

	// Second read is served from cache
	for i := 0; i < 2; i++ {
		got, err := store.GetPriceHistory(ctx, since, 0)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}

	// Save invalidates the cache
	require.NoError(t, store.Save(ctx, snapshotAt(1, 0.02, time.Now())))
	_, err := store.GetPriceHistory(ctx, since, 0)
	require.NoError(t, err)
}

func TestPriceStore_HistoryLimitCapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockEconomyRepository(ctrl)
	repo.EXPECT().GetPriceHistory(gomock.Any(), gomock.Any(), maxHistoryRows).Return(nil, nil)

	store := NewPriceStore(repo, time.Minute)
	got, err := store.GetPriceHistory(context.Background(), time.Now(), 100000)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPriceStore_SaveStopsOnSnapshotError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockEconomyRepository(ctrl)
	repo.EXPECT().SaveSnapshot(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	store := NewPriceStore(repo, time.Minute)
	assert.Error(t, store.Save(context.Background(), snapshotAt(1, 0.01, time.Now())))
}
