package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every server environment variable.
const EnvPrefix = "TYPER"

// Pool store backends.
const (
	PoolStoreMemory = "memory"
	PoolStoreSQLite = "sqlite"
)

// ServerConfig configures `typer serve`.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	GeminiAPIKey string        `mapstructure:"gemini-api-key"`
	Models       []string      `mapstructure:"models"`
	PoolStore    string        `mapstructure:"pool-store"`
	PoolDB       string        `mapstructure:"pool-db"`
	PoolKeys     int           `mapstructure:"pool-keys"`
	Retention    time.Duration `mapstructure:"retention"`
	Janitor      time.Duration `mapstructure:"janitor"`
	RateLimit    float64       `mapstructure:"rate-limit"`
	Burst        int           `mapstructure:"burst"`
	LogLevel     string        `mapstructure:"log-level"`
	LogFormat    string        `mapstructure:"log-format"`
	LogFile      string        `mapstructure:"log-file"`
}

// RegisterServerFlags declares serve flags with their defaults.
func RegisterServerFlags(fs *pflag.FlagSet) {
	fs.String("addr", "127.0.0.1:8787", "listen address")
	fs.String("gemini-api-key", "", "Gemini API key (env TYPER_GEMINI_API_KEY or GEMINI_API_KEY)")
	fs.StringSlice("models", []string{"gemma-3-27b-it", "gemma-3-12b-it"}, "models tried in order")
	fs.String("pool-store", PoolStoreMemory, "pool storage: memory or sqlite")
	fs.String("pool-db", DefaultPoolDBPath(), "sqlite path for --pool-store=sqlite")
	fs.Int("pool-keys", 256, "max pool keys kept in memory")
	fs.Duration("retention", 24*time.Hour, "how long pooled passages are kept")
	fs.Duration("janitor", 10*time.Minute, "expired passage sweep interval")
	fs.Float64("rate-limit", 2, "generation requests per second (0 disables)")
	fs.Int("burst", 4, "generation request burst")
	fs.String("log-level", "info", "log level")
	fs.String("log-format", "console", "log format: console or json")
	fs.String("log-file", "", "also log JSON to this rotated file")
}

// LoadServerConfig resolves flags, TYPER_* environment variables and
// GEMINI_API_KEY into a ServerConfig.
func LoadServerConfig(fs *pflag.FlagSet) (ServerConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return ServerConfig{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("failed to decode server config: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// Validate rejects unusable values.
func (c ServerConfig) Validate() error {
	switch c.PoolStore {
	case PoolStoreMemory, PoolStoreSQLite:
	default:
		return fmt.Errorf("--pool-store must be %q or %q", PoolStoreMemory, PoolStoreSQLite)
	}
	if c.Retention <= 0 {
		return fmt.Errorf("--retention must be > 0")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("--rate-limit must be >= 0")
	}
	if c.Addr == "" {
		return fmt.Errorf("--addr must not be empty")
	}
	return nil
}
