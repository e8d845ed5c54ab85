package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for pricegrab.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"    yaml:"auth"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Address      string        `mapstructure:"address"       yaml:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"  yaml:"idle_timeout"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"       yaml:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"    yaml:"user_agent"`
	MaxBodySize int64         `mapstructure:"max_body_size" yaml:"max_body_size"`
	TLSInsecure bool          `mapstructure:"tls_insecure"  yaml:"tls_insecure"`
}

// ExtractConfig controls price extraction.
type ExtractConfig struct {
	// Candidates overrides the built-in selector list when non-empty.
	// Order is precedence: the first candidate that yields price-looking
	// text wins.
	Candidates []CandidateConfig `mapstructure:"candidates" yaml:"candidates"`

	// RefreshConcurrency bounds how many stored prices are re-scraped in
	// parallel by POST /refresh-prices.
	RefreshConcurrency int `mapstructure:"refresh_concurrency" yaml:"refresh_concurrency"`
}

// CandidateConfig defines a single selector candidate.
type CandidateConfig struct {
	Selector  string `mapstructure:"selector"  yaml:"selector"`
	Type      string `mapstructure:"type"      yaml:"type"` // css (default), xpath
	Attribute string `mapstructure:"attribute" yaml:"attribute"`
}

// StorageConfig controls where records live.
type StorageConfig struct {
	Backend string      `mapstructure:"backend" yaml:"backend"` // file, mongo
	DataDir string      `mapstructure:"data_dir" yaml:"data_dir"`
	Mongo   MongoConfig `mapstructure:"mongo"   yaml:"mongo"`
}

// MongoConfig controls the optional MongoDB backend.
type MongoConfig struct {
	URI      string `mapstructure:"uri"      yaml:"uri"`
	Database string `mapstructure:"database" yaml:"database"`
}

// AuthConfig controls token issuance.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"  yaml:"token_ttl"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Fetcher: FetcherConfig{
			Timeout:     10 * time.Second,
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			MaxBodySize: 10 * 1024 * 1024, // 10MB
		},
		Extract: ExtractConfig{
			RefreshConcurrency: 4,
		},
		Storage: StorageConfig{
			Backend: "file",
			DataDir: "./data",
			Mongo: MongoConfig{
				Database: "shopfront",
			},
		},
		Auth: AuthConfig{
			TokenTTL: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
