package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wagus-labs/agent-portal/portal/economy"
	"github.com/wagus-labs/agent-portal/portal/economy/utils"
	"golang.org/x/sync/semaphore"
)

// Engine owns the economic state. Cycles are serialized; snapshot reads
// never wait on persistence or publishing.
type Engine struct {
	cycleMu sync.Mutex // serializes RunCycle end to end
	mu      sync.RWMutex
	state   economy.EconomicState

	evolver    *economy.Evolver
	calculator *Calculator
	store      *PriceStore

	stale     bool
	lastErr   error
	cycle     uint64
	cycleID   string
	prevPrice float64

	subMu      sync.RWMutex
	publishers []Publisher
	observers  []CycleObserver
	sem        *semaphore.Weighted

	now func() time.Time
}

type EngineOption func(*Engine)

// WithStore persists every successful cycle.
func WithStore(store *PriceStore) EngineOption {
	return func(e *Engine) {
		e.store = store
	}
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func WithObserver(observer CycleObserver) EngineOption {
	return func(e *Engine) {
		e.observers = append(e.observers, observer)
	}
}

// NewEngine prices the initial state once so that LastPrice is valid before
// the first cycle. A state that cannot be priced is rejected.
func NewEngine(state economy.EconomicState, evolver *economy.Evolver, calculator *Calculator, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		evolver:    evolver,
		calculator: calculator,
		sem:        semaphore.NewWeighted(utils.MaxConcurrentPublish),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	price, err := calculator.Price(state)
	if err != nil {
		return nil, fmt.Errorf("initial economic state cannot be priced: %w", err)
	}

	e.state = state.Clone()
	e.state.LastPrice = price
	if e.state.LastUpdate == nil {
		ts := e.now()
		e.state.LastUpdate = &ts
	}
	e.prevPrice = price

	return e, nil
}

// Subscribe registers a publisher for future successful cycles.
func (e *Engine) Subscribe(p Publisher) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	e.publishers = append(e.publishers, p)
}

// Snapshot returns the current read model.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

// State returns a copy of the current economic state.
func (e *Engine) State() economy.EconomicState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Breakdown recomputes the price factors for the current state.
func (e *Engine) Breakdown() (PriceBreakdown, error) {
	e.mu.RLock()
	state := e.state.Clone()
	e.mu.RUnlock()
	return e.calculator.Breakdown(state)
}

// RunCycle evolves the economy by one tick, prices it and publishes the
// result. On failure the previous state and price are kept and the snapshot
// is flagged stale.
func (e *Engine) RunCycle(ctx context.Context) (Snapshot, error) {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	start := time.Now()
	cycleID := uuid.NewString()

	e.mu.Lock()
	next := e.evolver.Evolve(e.state)
	price, err := e.calculator.Price(next)
	if err != nil {
		e.stale = true
		e.lastErr = err
		snap := e.snapshotLocked()
		e.mu.Unlock()

		slog.Error("Price cycle failed, keeping last good price",
			slog.String("type", "eco"),
			slog.String("cycle_id", cycleID),
			slog.Float64("last_price", snap.Price),
			slog.Any("error", err))

		e.observe(snap, time.Since(start), err)
		return snap, fmt.Errorf("price cycle %s: %w", cycleID, err)
	}

	ts := e.now()
	next.LastPrice = price
	next.LastUpdate = &ts

	e.prevPrice = e.state.LastPrice
	e.state = next
	e.stale = false
	e.lastErr = nil
	e.cycle++
	e.cycleID = cycleID
	snap := e.snapshotLocked()
	e.mu.Unlock()

	slog.Debug("Price cycle completed",
		slog.String("type", "eco"),
		slog.String("cycle_id", cycleID),
		slog.Uint64("cycle", snap.Cycle),
		slog.Float64("price", snap.Price),
		slog.Float64("effective_supply", snap.EffectiveSupply),
		slog.Duration("took", time.Since(start)))

	// Persistence and publishing outlive a cancelled scheduler context so a
	// committed cycle is always recorded.
	detached := context.WithoutCancel(ctx)
	e.persist(detached, snap)
	e.publish(detached, snap)
	e.observe(snap, time.Since(start), nil)

	return snap, nil
}

func (e *Engine) snapshotLocked() Snapshot {
	s := newSnapshot(e.state)
	s.Stale = e.stale
	if e.lastErr != nil {
		s.LastError = e.lastErr.Error()
	}
	s.Cycle = e.cycle
	s.CycleID = e.cycleID
	s.PreviousPrice = e.prevPrice
	return s
}

func (e *Engine) persist(ctx context.Context, snap Snapshot) {
	if e.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, utils.PersistTimeout)
	defer cancel()

	if err := e.store.Save(ctx, snap); err != nil {
		slog.Warn("Failed to persist economic snapshot",
			slog.String("type", "db"),
			slog.String("cycle_id", snap.CycleID),
			slog.Any("error", err))
	}
}

func (e *Engine) publish(ctx context.Context, snap Snapshot) {
	e.subMu.RLock()
	publishers := append([]Publisher(nil), e.publishers...)
	e.subMu.RUnlock()

	if len(publishers) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, utils.PublishTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, p := range publishers {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			slog.Warn("Skipping price publisher",
				slog.String("type", "eco"),
				slog.Any("error", err))
			break
		}

		wg.Add(1)
		go func(p Publisher) {
			defer wg.Done()
			defer e.sem.Release(1)

			if err := p.Publish(ctx, snap); err != nil {
				slog.Warn("Price publisher failed",
					slog.String("type", "eco"),
					slog.String("cycle_id", snap.CycleID),
					slog.Any("error", err))
			}
		}(p)
	}
	wg.Wait()
}

func (e *Engine) observe(snap Snapshot, took time.Duration, err error) {
	for _, o := range e.observers {
		o.ObserveCycle(snap, took, err)
	}
}
