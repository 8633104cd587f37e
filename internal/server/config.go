package server

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.dev_mode", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "./data/fleetpulse.db")

	// Upstream device registry (canonical records).
	v.SetDefault("registry.base_url", "http://localhost:9090")
	v.SetDefault("registry.api_key", "")
	v.SetDefault("registry.timeout", "15s")
	v.SetDefault("registry.page_limit", 100)

	// IoT cloud (live connectivity).
	v.SetDefault("cloud.base_url", "https://iot.fleetpulse.dev")
	v.SetDefault("cloud.access_token", "")
	v.SetDefault("cloud.product_id", "fp1drrqbkvmd0dlo")
	v.SetDefault("cloud.timeout", "10s")
	v.SetDefault("cloud.probe_rps", 10.0)
	v.SetDefault("cloud.probe_burst", 20)
	// Known dev-board hardware names mapped to their production device names.
	v.SetDefault("cloud.device_aliases", map[string]string{
		"esp32-devkit-fp": "companion-v1-prod",
	})
	v.SetDefault("cloud.lan_fallback.enabled", false)
	v.SetDefault("cloud.lan_fallback.ping_timeout", "2s")

	// Status engine.
	v.SetDefault("status.refresh_interval", "30s")
	v.SetDefault("status.probe_cooldown", "30s")
	v.SetDefault("status.probe_timeout", "10s")
	v.SetDefault("status.owner", "")
	v.SetDefault("status.contacts", []string{})

	v.SetDefault("history.retention_period", "720h")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password_hash", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("fleetpulse")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/fleetpulse")
	}

	// Environment variable support: FP_SERVER_PORT=9090
	v.SetEnvPrefix("FP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
