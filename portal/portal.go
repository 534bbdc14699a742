package portal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/wagus-labs/agent-portal/portal/database"
	"github.com/wagus-labs/agent-portal/portal/database/repositories"
	"github.com/wagus-labs/agent-portal/portal/economy"
	"github.com/wagus-labs/agent-portal/portal/economy/pricing"
	"github.com/wagus-labs/agent-portal/portal/metrics"
	"github.com/wagus-labs/agent-portal/portal/services"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func New(cfg Config, version string, commit string) *Portal {
	return &Portal{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

// Portal holds every long-lived component of the service
type Portal struct {
	Cfg     Config
	Version string
	Commit  string

	DB         *database.DB
	Repository repositories.EconomyRepository
	Store      *pricing.PriceStore
	Engine     *pricing.Engine
	Scheduler  *pricing.PriceScheduler
	Analyzer   *pricing.MarketAnalyzer
	Spot       *services.SpotPriceService
	Metrics    *metrics.Metrics
	Notifier   *services.PriceNotifier
	Archiver   *services.SnapshotArchiver

	closers []func(ctx context.Context)
}

// Setup connects the configured persistence backend, restores the last
// state and builds the engine and its collaborators.
func (p *Portal) Setup(ctx context.Context) error {
	repo, err := p.openRepository(ctx)
	if err != nil {
		return err
	}
	p.Repository = repo
	p.Store = pricing.NewPriceStore(repo, p.Cfg.Economy.CacheExpiry.Duration)

	state := economy.NewState(p.Cfg.Economy.Seed)
	restored, err := p.Store.Restore(ctx)
	if err != nil {
		return err
	}
	if restored != nil {
		if verr := restored.Validate(); verr != nil {
			slog.Warn("Stored economic state is invalid, starting from seed",
				slog.String("type", "eco"),
				slog.Any("error", verr))
		} else {
			state = *restored
			slog.Info("Economic state restored",
				slog.String("type", "eco"),
				slog.String("persistence", p.Cfg.Economy.Persistence),
				slog.Float64("last_price", state.LastPrice))
		}
	}

	p.Metrics = metrics.New()

	evolver := economy.NewEvolver(p.Cfg.Economy.Evolution, nil)
	calc := pricing.NewCalculator(p.Cfg.Economy.Pricing)
	p.Engine, err = pricing.NewEngine(state, evolver, calc,
		pricing.WithStore(p.Store),
		pricing.WithObserver(p.Metrics),
	)
	if err != nil {
		return err
	}

	p.Scheduler = pricing.NewPriceScheduler(p.Engine, p.Cfg.Economy.UpdateInterval.Duration)
	p.Analyzer = pricing.NewMarketAnalyzer(p.Engine, p.Store)

	tokens := make([]services.SpotToken, 0, len(p.Cfg.Spot.Tokens))
	for _, t := range p.Cfg.Spot.Tokens {
		tokens = append(tokens, services.SpotToken{Symbol: t.Symbol, ID: t.ID, Fallback: t.Fallback})
	}
	p.Spot = services.NewSpotPriceService(p.Cfg.Spot.Endpoint, p.Cfg.Spot.Timeout.Duration, p.Cfg.Spot.CacheTTL.Duration, tokens)

	if p.Cfg.Webhook.ID != 0 && p.Cfg.Webhook.Token != "" {
		p.Notifier = services.NewPriceNotifier(p.Cfg.Webhook.ID, p.Cfg.Webhook.Token, p.Cfg.Webhook.MinChange)
		p.Engine.Subscribe(p.Notifier)
		p.closers = append(p.closers, p.Notifier.Close)
	}

	if p.Cfg.Spaces.Bucket != "" {
		spaces, err := services.NewSpacesService(ctx,
			p.Cfg.Spaces.Key,
			p.Cfg.Spaces.Secret,
			p.Cfg.Spaces.Region,
			p.Cfg.Spaces.Bucket,
			p.Cfg.Spaces.Root,
		)
		if err != nil {
			return err
		}
		p.Archiver = services.NewSnapshotArchiver(p.Engine, spaces)
	}

	return nil
}

func (p *Portal) openRepository(ctx context.Context) (repositories.EconomyRepository, error) {
	switch p.Cfg.Economy.Persistence {
	case PersistencePostgres:
		start := time.Now()
		db, err := database.New(ctx, p.Cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := db.InitializeSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database schema: %w", err)
		}
		p.DB = db
		p.closers = append(p.closers, func(context.Context) { db.Close() })
		slog.Info("Database connected successfully",
			slog.String("type", "db"),
			slog.String("database", p.Cfg.DB.Database),
			slog.Duration("took", time.Since(start)))
		return repositories.NewEconomyRepository(db.BunDB()), nil

	case PersistenceMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(p.Cfg.Mongo.URI))
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo ping failed: %w", err)
		}
		p.closers = append(p.closers, func(ctx context.Context) { _ = client.Disconnect(ctx) })
		return repositories.NewMongoRepository(ctx, client.Database(p.Cfg.Mongo.Database))

	case PersistenceRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     p.Cfg.Redis.Addr,
			Password: p.Cfg.Redis.Password,
			DB:       p.Cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		p.closers = append(p.closers, func(context.Context) { _ = client.Close() })
		prefix := p.Cfg.Redis.KeyPrefix
		if prefix != "" && !strings.HasSuffix(prefix, ":") {
			prefix += ":"
		}
		return repositories.NewRedisRepository(client, prefix, p.Cfg.Economy.HistorySize), nil

	default:
		slog.Warn("Using in-memory persistence, state resets on restart",
			slog.String("type", "sys"))
		return repositories.NewMemoryRepository(p.Cfg.Economy.HistorySize), nil
	}
}

// Start launches the scheduler and the optional background jobs
func (p *Portal) Start(ctx context.Context) error {
	if err := p.Scheduler.Start(ctx); err != nil {
		return err
	}
	if p.Cfg.Economy.MonitorInterval.Duration > 0 {
		p.Analyzer.StartMonitor(ctx, p.Cfg.Economy.MonitorInterval.Duration)
	}
	if p.Archiver != nil {
		if err := p.Archiver.Start(p.Cfg.Spaces.ArchiveSchedule); err != nil {
			return err
		}
	}
	return nil
}

// Close stops background work first, then releases connections
func (p *Portal) Close(ctx context.Context) {
	if p.Scheduler != nil {
		p.Scheduler.Stop()
	}
	if p.Archiver != nil {
		p.Archiver.Stop()
	}
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i](ctx)
	}
}
