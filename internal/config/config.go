package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the console binary needs. Values come from an
// optional config.yaml, overridden by CONSOLE_* environment variables,
// with a .env file loaded first when present.
type Config struct {
	BackendURL     string        `mapstructure:"backend_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PageSize       int           `mapstructure:"page_size"`
	DirectoryLimit int           `mapstructure:"directory_limit"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	StubAddr       string        `mapstructure:"stub_addr"`
}

func Load() (*Config, error) {
	// Load .env; absence is fine, OS env still applies.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("console")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend_url", "http://localhost:8080")
	v.SetDefault("request_timeout", 15*time.Second)
	v.SetDefault("page_size", 10)
	v.SetDefault("directory_limit", 1000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("stub_addr", ":8080")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.BackendURL == "" {
		return fmt.Errorf("backend_url must be set")
	}
	if cfg.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1, got %d", cfg.PageSize)
	}
	if cfg.DirectoryLimit < 1 {
		return fmt.Errorf("directory_limit must be at least 1, got %d", cfg.DirectoryLimit)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", cfg.RequestTimeout)
	}
	return nil
}
