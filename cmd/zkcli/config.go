package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// zkcli config.toml key mapping to connection settings.
type fileConfig struct {
	Servers          string `toml:"servers"`
	SessionTimeoutMS int    `toml:"session_timeout_ms"`
	LogLevel         string `toml:"log_level"`
}

type cliConfig struct {
	Servers        string
	SessionTimeout time.Duration
	LogLevel       string
}

func defaultConfig() cliConfig {
	return cliConfig{
		Servers:        "127.0.0.1:2181",
		SessionTimeout: 10 * time.Second,
		LogLevel:       "info",
	}
}

// loadConfig overlays a TOML file, if given, onto the defaults.
func loadConfig(path string) (cliConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return cliConfig{}, fmt.Errorf("load zkcli config: %w", err)
	}
	if raw.Servers != "" {
		cfg.Servers = raw.Servers
	}
	if raw.SessionTimeoutMS > 0 {
		cfg.SessionTimeout = time.Duration(raw.SessionTimeoutMS) * time.Millisecond
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	return cfg, nil
}
