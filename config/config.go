package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Market   MarketConfig   `mapstructure:"market"`
	Game     GameConfig     `mapstructure:"game"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// MarketConfig configures the CoinGecko client and the fetch pipeline.
type MarketConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RequestSpacing time.Duration `mapstructure:"request_spacing"` // minimum gap between two requests
	MarketRetries  int           `mapstructure:"market_retries"`
	ChartRetries   int           `mapstructure:"chart_retries"`
}

type GameConfig struct {
	StateKey        string        `mapstructure:"state_key"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	QuestTick       time.Duration `mapstructure:"quest_tick"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StorageConfig selects the state store: "memory" or "postgres".
type StorageConfig struct {
	Driver   string `mapstructure:"driver"`
	CreateDB bool   `mapstructure:"create_db"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("market.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("market.timeout", 15*time.Second)
	v.SetDefault("market.request_spacing", time.Millisecond)
	v.SetDefault("market.market_retries", 3)
	v.SetDefault("market.chart_retries", 1)

	v.SetDefault("game.state_key", "AppState")
	v.SetDefault("game.refresh_interval", 5*time.Minute)
	v.SetDefault("game.quest_tick", 10*time.Second)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("storage.driver", "memory")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.dbname", "cryptogod")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
	v.SetDefault("postgres.ssm.host", "CRYPTOGOD_DB_HOST")
	v.SetDefault("postgres.ssm.user", "CRYPTOGOD_DB_USER")
	v.SetDefault("postgres.ssm.password", "CRYPTOGOD_DB_PASSWORD")
}

// Load reads application configuration using Viper. An explicit path is read as is;
// otherwise config.yaml is searched next to the binary and in ./config. A missing
// file is not an error, defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")
		if ex, err := os.Executable(); err == nil && !strings.Contains(ex, "go-build") {
			v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
		}
		v.AddConfigPath("config")
		v.AddConfigPath(".")
	}

	// Support environment variables with dot notation (e.g., MARKET_BASE_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
