package config

import (
	"fmt"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}

	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	if cfg.Extract.RefreshConcurrency < 1 {
		return fmt.Errorf("extract.refresh_concurrency must be >= 1, got %d", cfg.Extract.RefreshConcurrency)
	}
	for _, c := range cfg.Extract.Candidates {
		if c.Selector == "" {
			return fmt.Errorf("extract.candidates entries must have a selector")
		}
		if c.Type != "" && c.Type != "css" && c.Type != "xpath" {
			return fmt.Errorf("extract.candidates type must be 'css' or 'xpath', got %q", c.Type)
		}
	}

	switch cfg.Storage.Backend {
	case "file":
		if cfg.Storage.DataDir == "" {
			return fmt.Errorf("storage.data_dir must not be empty")
		}
	case "mongo":
		if cfg.Storage.Mongo.URI == "" {
			return fmt.Errorf("storage.mongo.uri is required for the mongo backend")
		}
		if cfg.Storage.Mongo.Database == "" {
			return fmt.Errorf("storage.mongo.database must not be empty")
		}
	default:
		return fmt.Errorf("storage.backend must be 'file' or 'mongo', got %q", cfg.Storage.Backend)
	}

	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}
