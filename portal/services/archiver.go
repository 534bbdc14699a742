package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wagus-labs/agent-portal/portal/economy/pricing"
)

type SnapshotSource interface {
	Snapshot() pricing.Snapshot
}

type ObjectWriter interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
}

// SnapshotArchiver uploads the current snapshot as JSON on a cron schedule
type SnapshotArchiver struct {
	source SnapshotSource
	writer ObjectWriter
	cron   *cron.Cron

	mu           sync.Mutex
	lastArchived string
}

func NewSnapshotArchiver(source SnapshotSource, writer ObjectWriter) *SnapshotArchiver {
	return &SnapshotArchiver{
		source: source,
		writer: writer,
		cron:   cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start registers the archive job and starts the cron runner
func (a *SnapshotArchiver) Start(schedule string) error {
	_, err := a.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := a.Archive(ctx); err != nil {
			slog.Error("Failed to archive economic snapshot",
				slog.String("type", "eco"),
				slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid archive schedule %q: %w", schedule, err)
	}

	a.cron.Start()
	slog.Info("Snapshot archiver started",
		slog.String("type", "sys"),
		slog.String("schedule", schedule))
	return nil
}

// Stop waits for a running archive job to finish
func (a *SnapshotArchiver) Stop() {
	<-a.cron.Stop().Done()
}

// Archive uploads the current snapshot. A cycle that was already archived is
// skipped and reported with an empty key.
func (a *SnapshotArchiver) Archive(ctx context.Context) (string, error) {
	snap := a.source.Snapshot()

	a.mu.Lock()
	defer a.mu.Unlock()

	if snap.CycleID != "" && snap.CycleID == a.lastArchived {
		return "", nil
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	ts := time.Now().UTC()
	if snap.LastUpdate != nil {
		ts = snap.LastUpdate.UTC()
	}
	key := fmt.Sprintf("%s/%s.json", ts.Format("2006/01/02"), ts.Format("150405"))
	if snap.CycleID != "" {
		key = fmt.Sprintf("%s/%s-%s.json", ts.Format("2006/01/02"), ts.Format("150405"), snap.CycleID)
	}

	if err := a.writer.PutObject(ctx, key, body, "application/json"); err != nil {
		return "", err
	}
	a.lastArchived = snap.CycleID

	slog.Debug("Economic snapshot archived",
		slog.String("type", "eco"),
		slog.String("key", key),
		slog.Uint64("cycle", snap.Cycle))
	return key, nil
}
