package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files, environment variables and flags.
type Config struct {
	AppName  string `mapstructure:"app_name" validate:"required"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`

	APIBaseURL            string        `mapstructure:"api_base_url" validate:"required,url"`
	ProductListPath       string        `mapstructure:"product_list_path" validate:"required,startswith=/"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds" validate:"gt=0"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	CurrentPage int  `mapstructure:"current_page" validate:"gte=1"`
	PageSize    int  `mapstructure:"page_size" validate:"gte=1"`
	FetchAll    bool `mapstructure:"fetch_all"`
	Cached      bool `mapstructure:"cached"`

	PollIntervalSeconds int64         `mapstructure:"poll_interval" validate:"gte=0"`
	PollInterval        time.Duration `mapstructure:"-"`

	NotifiersFile string `mapstructure:"notifiers_file"`

	StorageType            string        `mapstructure:"storage_type" validate:"oneof=none disabled bbolt"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds" validate:"gt=0"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds" validate:"gt=0"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags is Load with command-line flags taking precedence over env and defaults.
// Flag names use dashes; they are bound to the underscore config keys.
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "streamer-sales-catalog")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base_url", "http://localhost:8000")
	v.SetDefault("product_list_path", "/products/list")
	v.SetDefault("request_timeout_seconds", 10)
	v.SetDefault("current_page", 1)
	v.SetDefault("page_size", 10)
	v.SetDefault("fetch_all", false)
	v.SetDefault("cached", false)
	v.SetDefault("poll_interval", 0) // seconds, 0 runs once
	v.SetDefault("notifiers_file", "")
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/products.db")
	v.SetDefault("storage_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))

	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if bindErr != nil {
				return
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.StorageType = strings.ToLower(strings.TrimSpace(cfg.StorageType))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.StorageType == "bbolt" && strings.TrimSpace(cfg.BBoltPath) == "" {
		return nil, fmt.Errorf("invalid config: bbolt_path is required for bbolt storage")
	}

	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	cfg.PollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// ProductListURL joins the base URL and the product list path.
func (c *Config) ProductListURL() string {
	return c.APIBaseURL + c.ProductListPath
}
