package portal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/wagus-labs/agent-portal/portal/database"
	"github.com/wagus-labs/agent-portal/portal/economy"
	"github.com/wagus-labs/agent-portal/portal/economy/pricing"
	"github.com/wagus-labs/agent-portal/portal/economy/utils"
)

// LoadConfig reads a TOML file over DefaultConfig, so omitted keys keep
// their defaults.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	DB      database.DBConfig `toml:"db"`
	Mongo   MongoConfig       `toml:"mongo"`
	Redis   RedisConfig       `toml:"redis"`
	Economy EconomyConfig     `toml:"economy"`
	Spot    SpotConfig        `toml:"spot"`
	Spaces  SpacesConfig      `toml:"spaces"`
	Webhook WebhookConfig     `toml:"webhook"`
	Web     WebConfig         `toml:"web"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

// Persistence backends for the economy repository.
const (
	PersistenceMemory   = "memory"
	PersistencePostgres = "postgres"
	PersistenceMongo    = "mongo"
	PersistenceRedis    = "redis"
)

type EconomyConfig struct {
	Seed           economy.Seed            `toml:"seed"`
	Pricing        pricing.PricingConfig   `toml:"pricing"`
	Evolution      economy.EvolutionConfig `toml:"evolution"`
	UpdateInterval Duration                `toml:"update_interval"`
	Persistence    string                  `toml:"persistence"`
	HistorySize    int                     `toml:"history_size"`
	CacheExpiry    Duration                `toml:"cache_expiry"`
	// MonitorInterval of zero disables the health monitor.
	MonitorInterval Duration `toml:"monitor_interval"`
}

type SpotToken struct {
	Symbol   string  `toml:"symbol"`
	ID       string  `toml:"id"`
	Fallback float64 `toml:"fallback"`
}

type SpotConfig struct {
	Endpoint string      `toml:"endpoint"`
	Timeout  Duration    `toml:"timeout"`
	CacheTTL Duration    `toml:"cache_ttl"`
	Tokens   []SpotToken `toml:"tokens"`
}

type SpacesConfig struct {
	Key             string `toml:"key"`
	Secret          string `toml:"secret"`
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	Root            string `toml:"root"`
	ArchiveSchedule string `toml:"archive_schedule"`
}

type WebhookConfig struct {
	ID        snowflake.ID `toml:"id"`
	Token     string       `toml:"token"`
	MinChange float64      `toml:"min_change"` // percent
}

type WebConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RefreshRate    float64  `toml:"refresh_rate"` // refreshes per second per wallet
	RefreshBurst   int      `toml:"refresh_burst"`
}

func (c WebConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Duration reads TOML strings such as "60s" or "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  slog.LevelInfo,
			Format: "text",
		},
		DB: database.DBConfig{
			Host:     "localhost",
			Port:     5432,
			PoolSize: 10,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "wagus",
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "wagus",
		},
		Economy: EconomyConfig{
			Seed:            economy.DefaultSeed(),
			Pricing:         pricing.DefaultPricingConfig(),
			Evolution:       economy.DefaultEvolutionConfig(),
			UpdateInterval:  Duration{utils.DefaultUpdateInterval},
			Persistence:     PersistenceMemory,
			HistorySize:     1440,
			CacheExpiry:     Duration{30 * time.Second},
			MonitorInterval: Duration{15 * time.Minute},
		},
		Spot: SpotConfig{
			Endpoint: "https://api.coingecko.com/api/v3/simple/price",
			Timeout:  Duration{5 * time.Second},
			CacheTTL: Duration{5 * time.Minute},
			Tokens: []SpotToken{
				{Symbol: "SOL", ID: "solana", Fallback: 150},
				{Symbol: "USDC", ID: "usd-coin", Fallback: 1},
			},
		},
		Spaces: SpacesConfig{
			Root:            "wagus/snapshots",
			ArchiveSchedule: "@hourly",
		},
		Webhook: WebhookConfig{
			MinChange: 5,
		},
		Web: WebConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
			RefreshRate:    0.1,
			RefreshBurst:   1,
		},
	}
}

// Validate rejects configurations the engine could not start from.
func (c Config) Validate() error {
	var errs []error

	if err := c.Economy.Pricing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("economy.pricing: %w", err))
	}
	if err := c.Economy.Evolution.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("economy.evolution: %w", err))
	}
	if err := economy.NewState(c.Economy.Seed).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("economy.seed: %w", err))
	}
	if c.Economy.UpdateInterval.Duration <= 0 {
		errs = append(errs, errors.New("economy.update_interval must be positive"))
	}

	switch c.Economy.Persistence {
	case PersistenceMemory, PersistencePostgres, PersistenceMongo, PersistenceRedis:
	default:
		errs = append(errs, fmt.Errorf("economy.persistence: unknown backend %q", c.Economy.Persistence))
	}

	for i, t := range c.Spot.Tokens {
		if t.Symbol == "" || t.ID == "" {
			errs = append(errs, fmt.Errorf("spot.tokens[%d]: symbol and id are required", i))
		}
	}

	if c.Web.RefreshRate <= 0 || c.Web.RefreshBurst <= 0 {
		errs = append(errs, errors.New("web.refresh_rate and web.refresh_burst must be positive"))
	}

	return errors.Join(errs...)
}
