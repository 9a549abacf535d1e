package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/mataroo/mataroo/internal/shared/config"
)

type Config struct {
	Server  sharedConfig.ServerConfig  `mapstructure:"server"`
	API     sharedConfig.APIConfig     `mapstructure:"api"`
	Auth    sharedConfig.AuthConfig    `mapstructure:"auth"`
	Payment sharedConfig.PaymentConfig `mapstructure:"payment"`
	Cache   sharedConfig.CacheConfig   `mapstructure:"cache"`
	Content sharedConfig.ContentConfig `mapstructure:"content"`
	Logger  sharedConfig.LoggerConfig  `mapstructure:"logger"`
	Redis   sharedConfig.RedisConfig   `mapstructure:"redis"`
	Biz     sharedConfig.BizConfig     `mapstructure:"biz"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from an optional config file and environment variables.
// A missing config file is not an error: defaults plus MATAROO_* variables are enough
// to run the client.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("$HOME/.mataroo")
	}

	v.SetEnvPrefix("MATAROO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Local dashboard
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Backend API
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout_seconds", 30)

	// Auth provider
	v.SetDefault("auth.supabase_url", "")
	v.SetDefault("auth.supabase_anon_key", "")
	v.SetDefault("auth.session_file", "$HOME/.mataroo/session.yaml")
	v.SetDefault("auth.refresh_leeway_seconds", 60)

	// Payment gateway checkout
	v.SetDefault("payment.checkout_script_url", "https://checkout.razorpay.com/v1/checkout.js")
	v.SetDefault("payment.merchant_name", "Mataroo")
	v.SetDefault("payment.description", "Mataroo Pro Subscription - Monthly")
	v.SetDefault("payment.theme_color", "#6366f1")

	// Query cache
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.key_prefix", "mataroo:query:")
	v.SetDefault("cache.connections_stale_minutes", 5)
	v.SetDefault("cache.subscription_stale_minutes", 1)

	// Content
	v.SetDefault("content.default_platform", "twitter")
	v.SetDefault("content.history_limit", 50)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stderr")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("biz.timezone", "UTC")
}
