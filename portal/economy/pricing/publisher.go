package pricing

import (
	"context"
	"time"
)

// Publisher receives every successfully computed snapshot.
type Publisher interface {
	Publish(ctx context.Context, snapshot Snapshot) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, snapshot Snapshot) error

func (f PublisherFunc) Publish(ctx context.Context, snapshot Snapshot) error {
	return f(ctx, snapshot)
}

// CycleObserver is told about every cycle, failed ones included.
type CycleObserver interface {
	ObserveCycle(snapshot Snapshot, took time.Duration, err error)
}
