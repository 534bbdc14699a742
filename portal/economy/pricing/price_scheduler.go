package pricing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wagus-labs/agent-portal/portal/economy/utils"
)

var ErrSchedulerRunning = errors.New("price scheduler already running")

// PriceScheduler runs engine cycles on a fixed interval. Ticks that arrive
// while a cycle is still running are dropped by the ticker.
type PriceScheduler struct {
	engine         *Engine
	updateInterval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool

	ticks    atomic.Uint64
	failures atomic.Uint64
}

// NewPriceScheduler creates a new price scheduler
func NewPriceScheduler(engine *Engine, updateInterval time.Duration) *PriceScheduler {
	if updateInterval <= 0 {
		updateInterval = utils.DefaultUpdateInterval
	}
	return &PriceScheduler{
		engine:         engine,
		updateInterval: updateInterval,
	}
}

// Start launches the background update loop. The loop ends when ctx is
// cancelled or Stop is called.
func (ps *PriceScheduler) Start(ctx context.Context) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.running {
		return ErrSchedulerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	ps.cancel = cancel
	ps.done = make(chan struct{})
	ps.running = true

	go ps.loop(ctx, ps.done)

	slog.Info("Price scheduler started",
		slog.String("type", "eco"),
		slog.Duration("interval", ps.updateInterval))
	return nil
}

func (ps *PriceScheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(ps.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A stop request that raced with this tick wins
			if ctx.Err() != nil {
				return
			}
			ps.ticks.Add(1)
			if _, err := ps.engine.RunCycle(ctx); err != nil {
				ps.failures.Add(1)
			}
		}
	}
}

// Stop halts the loop and waits for an in-flight cycle to finish. It is
// safe to call more than once.
func (ps *PriceScheduler) Stop() {
	ps.mu.Lock()
	if !ps.running {
		ps.mu.Unlock()
		return
	}
	cancel, done := ps.cancel, ps.done
	ps.running = false
	ps.mu.Unlock()

	cancel()
	<-done

	slog.Info("Price scheduler stopped",
		slog.String("type", "eco"),
		slog.Uint64("ticks", ps.ticks.Load()),
		slog.Uint64("failures", ps.failures.Load()))
}

func (ps *PriceScheduler) Running() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.running
}

func (ps *PriceScheduler) Interval() time.Duration {
	return ps.updateInterval
}

// Ticks reports how many cycles the scheduler has started.
func (ps *PriceScheduler) Ticks() uint64 {
	return ps.ticks.Load()
}

func (ps *PriceScheduler) Failures() uint64 {
	return ps.failures.Load()
}
