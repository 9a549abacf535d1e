package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
	// AllowedOrigins may call the dashboard API from a browser.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GetBaseURL returns the externally reachable URL of the local dashboard.
func (s *ServerConfig) GetBaseURL() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	host := s.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, s.Port)
}

// APIConfig points at the content-generation backend.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (a *APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

type AuthConfig struct {
	SupabaseURL         string `mapstructure:"supabase_url"`
	SupabaseAnonKey     string `mapstructure:"supabase_anon_key"`
	SessionFile         string `mapstructure:"session_file"`
	RefreshLeewaySecond int    `mapstructure:"refresh_leeway_seconds"`
}

func (a *AuthConfig) RefreshLeeway() time.Duration {
	return time.Duration(a.RefreshLeewaySecond) * time.Second
}

type PaymentConfig struct {
	CheckoutScriptURL string `mapstructure:"checkout_script_url"`
	MerchantName      string `mapstructure:"merchant_name"`
	Description       string `mapstructure:"description"`
	ThemeColor        string `mapstructure:"theme_color"`
}

type CacheConfig struct {
	Driver                   string `mapstructure:"driver"`
	KeyPrefix                string `mapstructure:"key_prefix"`
	ConnectionsStaleMinutes  int    `mapstructure:"connections_stale_minutes"`
	SubscriptionStaleMinutes int    `mapstructure:"subscription_stale_minutes"`
}

func (c *CacheConfig) ConnectionsStaleTime() time.Duration {
	return time.Duration(c.ConnectionsStaleMinutes) * time.Minute
}

func (c *CacheConfig) SubscriptionStaleTime() time.Duration {
	return time.Duration(c.SubscriptionStaleMinutes) * time.Minute
}

type ContentConfig struct {
	DefaultPlatform string `mapstructure:"default_platform"`
	HistoryLimit    int    `mapstructure:"history_limit"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// BizConfig holds the timezone used when presenting billing periods.
type BizConfig struct {
	Timezone string `mapstructure:"timezone"`
}
