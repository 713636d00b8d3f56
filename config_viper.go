package authclient

import (
	"time"

	"github.com/spf13/viper"
)

// FromViper builds a Config from an already-loaded viper instance, falling
// back to the package defaults for every unset key. Recognized keys:
//
//	transport.base_url          string
//	transport.base_url_env_key  string
//	transport.request_timeout   duration
//	transport.max_retries       int
//	transport.retry_base_delay  duration
//	transport.cache_busting     bool
//	transport.auth_paths        []string
//	session.local_expiry_check  bool
//	routes.home                 string
//	routes.public_paths         []string
//	events.enabled              bool
//	events.buffer_size          int
//	events.drop_if_full         bool
//	metrics.enabled             bool
//	metrics.latency_histograms  bool
func FromViper(v *viper.Viper) (Config, error) {
	cfg := defaultConfig()
	if v == nil {
		return cfg, nil
	}

	v.SetDefault("transport.request_timeout", cfg.Transport.RequestTimeout)
	v.SetDefault("transport.max_retries", cfg.Transport.MaxRetries)
	v.SetDefault("transport.retry_base_delay", cfg.Transport.RetryBaseDelay)
	v.SetDefault("transport.cache_busting", cfg.Transport.CacheBusting)
	v.SetDefault("transport.auth_paths", cfg.Transport.AuthPaths)
	v.SetDefault("session.local_expiry_check", cfg.Session.LocalExpiryCheck)
	v.SetDefault("routes.home", cfg.Routes.Home)
	v.SetDefault("routes.public_paths", cfg.Routes.PublicPaths)
	v.SetDefault("events.enabled", cfg.Events.Enabled)
	v.SetDefault("events.buffer_size", cfg.Events.BufferSize)
	v.SetDefault("events.drop_if_full", cfg.Events.DropIfFull)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.latency_histograms", cfg.Metrics.EnableLatencyHistograms)

	cfg.Transport.BaseURL = v.GetString("transport.base_url")
	cfg.Transport.BaseURLEnvKey = v.GetString("transport.base_url_env_key")
	cfg.Transport.RequestTimeout = v.GetDuration("transport.request_timeout")
	cfg.Transport.MaxRetries = v.GetInt("transport.max_retries")
	cfg.Transport.RetryBaseDelay = v.GetDuration("transport.retry_base_delay")
	cfg.Transport.CacheBusting = v.GetBool("transport.cache_busting")
	cfg.Transport.AuthPaths = v.GetStringSlice("transport.auth_paths")
	cfg.Session.LocalExpiryCheck = v.GetBool("session.local_expiry_check")
	cfg.Routes.Home = v.GetString("routes.home")
	cfg.Routes.PublicPaths = v.GetStringSlice("routes.public_paths")
	cfg.Events.Enabled = v.GetBool("events.enabled")
	cfg.Events.BufferSize = v.GetInt("events.buffer_size")
	cfg.Events.DropIfFull = v.GetBool("events.drop_if_full")
	cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	cfg.Metrics.EnableLatencyHistograms = v.GetBool("metrics.latency_histograms")

	if cfg.Transport.RequestTimeout <= 0 {
		cfg.Transport.RequestTimeout = 15 * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
