package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port         string `env:"PORT,          default=8080"`
	Env          string `env:"ENV,           default=development"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	ClientOrigin string `env:"CLIENT_ORIGIN, default=http://localhost:3000"`

	Auth       AuthConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Pagination PaginationConfig
}

type AuthConfig struct {
	Secret     string        `env:"ACCESS_TOKEN_SECRET, required"`
	TokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL,    default=720h"`
	SaltRounds int           `env:"SALT_ROUNDS,         default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=stem-bound"`
}

// RedisConfig is optional: an empty Addr disables the location cache.
type RedisConfig struct {
	Addr        string        `env:"REDIS_ADDR"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB,           default=0"`
	LocationTTL time.Duration `env:"LOCATION_CACHE_TTL, default=24h"`
}

type PaginationConfig struct {
	DefaultLimit int `env:"PAGE_DEFAULT_LIMIT, default=20"`
	MaxLimit     int `env:"PAGE_MAX_LIMIT,     default=20"`
	GeoMaxLimit  int `env:"GEO_MAX_LIMIT,      default=50"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	p := c.Pagination
	if p.DefaultLimit <= 0 || p.MaxLimit <= 0 || p.GeoMaxLimit <= 0 {
		return fmt.Errorf("pagination limits must be positive")
	}
	if p.DefaultLimit > p.MaxLimit {
		return fmt.Errorf("PAGE_DEFAULT_LIMIT (%d) exceeds PAGE_MAX_LIMIT (%d)", p.DefaultLimit, p.MaxLimit)
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
