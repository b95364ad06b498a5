package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=5000"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	JWTTTL    time.Duration `env:"JWT_TTL,   default=168h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:5173"`

	// AuthRateLimit requests per AuthRateWindow are allowed per client on /api/auth.
	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT,  default=10"`
	AuthRateWindow time.Duration `env:"AUTH_RATE_WINDOW, default=15m"`

	Mongo MongoConfig
	Redis RedisConfig
	Views ViewConfig
	Feed  FeedConfig
	Graph GraphConfig
}

type MongoConfig struct {
	URI            string        `env:"MONGO_URI,             default=mongodb://localhost:27017"`
	Database       string        `env:"MONGO_DB,              default=projectlink"`
	Transactions   bool          `env:"MONGO_TRANSACTIONS,    default=false"`
	ConnectRetries int           `env:"MONGO_CONNECT_RETRIES, default=5"`
	RetryDelay     time.Duration `env:"MONGO_RETRY_DELAY,     default=5s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type ViewConfig struct {
	// Backend is "memory" or "redis".
	Backend       string        `env:"VIEW_CACHE_BACKEND, default=memory"`
	Cooldown      time.Duration `env:"VIEW_COOLDOWN,      default=24h"`
	SweepInterval time.Duration `env:"VIEW_SWEEP_INTERVAL, default=1h"`
}

type FeedConfig struct {
	NotificationWindow int `env:"NOTIFICATION_WINDOW, default=5"`
}

type GraphConfig struct {
	RepairWorkers     int           `env:"REPAIR_WORKERS,     default=4"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL, default=1h"`
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Views.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("VIEW_CACHE_BACKEND must be memory or redis, got %q", c.Views.Backend)
	}
	if c.Views.Cooldown <= 0 {
		return fmt.Errorf("VIEW_COOLDOWN must be positive")
	}
	if c.Views.SweepInterval <= 0 {
		return fmt.Errorf("VIEW_SWEEP_INTERVAL must be positive")
	}
	if c.Graph.ReconcileInterval < 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must not be negative")
	}
	if c.Feed.NotificationWindow < 1 || c.Feed.NotificationWindow > 100 {
		return fmt.Errorf("NOTIFICATION_WINDOW must be between 1 and 100, got %d", c.Feed.NotificationWindow)
	}
	if c.Mongo.ConnectRetries < 1 {
		return fmt.Errorf("MONGO_CONNECT_RETRIES must be at least 1")
	}
	if c.AuthRateLimit < 1 || c.AuthRateWindow <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be positive")
	}
	return nil
}
