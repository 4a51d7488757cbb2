package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Token store backends.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Console ConsoleConfig
	API     APIConfig
	Store   StoreConfig
	Redis   RedisConfig
	Stub    StubConfig
	Mongo   MongoConfig
}

type ConsoleConfig struct {
	Addr string `env:"CONSOLE_ADDR, default=:3000"`
}

// APIConfig points the client at the backend REST API.
type APIConfig struct {
	BaseURL       string        `env:"API_BASE_URL,   default=http://localhost:8080/api"`
	Timeout       time.Duration `env:"API_TIMEOUT,    default=15s"`
	RedirectDelay time.Duration `env:"REDIRECT_DELAY, default=100ms"`
}

type StoreConfig struct {
	Backend string `env:"TOKEN_STORE,     default=file"`
	Dir     string `env:"TOKEN_STORE_DIR"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// StubConfig configures the development stub backend.
type StubConfig struct {
	Port      string        `env:"STUB_PORT,  default=8080"`
	JWTSecret string        `env:"JWT_SECRET, default=dev-secret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	// UserStore is "memory" or "mongo".
	UserStore string `env:"STUB_USER_STORE, default=memory"`
	// Seed creates the demo admin, seller and user accounts at startup.
	Seed bool `env:"STUB_SEED, default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

// Development reports whether human-friendly logging should be used.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from an arbitrary lookuper (tests use
// envconfig.MapLookuper).
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	switch cfg.Store.Backend {
	case StoreFile, StoreMemory, StoreRedis:
	default:
		return nil, fmt.Errorf("config: unknown TOKEN_STORE %q", cfg.Store.Backend)
	}
	switch cfg.Stub.UserStore {
	case "memory", "mongo":
	default:
		return nil, fmt.Errorf("config: unknown STUB_USER_STORE %q", cfg.Stub.UserStore)
	}
	if cfg.API.RedirectDelay < 0 {
		return nil, fmt.Errorf("config: REDIRECT_DELAY must not be negative")
	}

	return &cfg, nil
}
