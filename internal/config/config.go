package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "TRACKER_"
	envFileVar = "TRACKER_CONFIG"
)

type Config struct {
	// Server
	Port           int           `koanf:"port"`
	Env            string        `koanf:"env"`
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// CORS, comma separated
	Origins        string   `koanf:"allowed_origins"`
	AllowedOrigins []string `koanf:"-"`

	// Storage
	PostgresURL     string        `koanf:"postgres_url"`
	RedisURL        string        `koanf:"redis_url"`
	ScoringCacheTTL time.Duration `koanf:"scoring_cache_ttl"`

	// Auth: sha256 hex of the admin bearer token
	AdminTokenHash string `koanf:"admin_token_hash"`

	// LLM
	AnthropicAPIKey string `koanf:"anthropic_api_key"`
	ExtractionModel string `koanf:"extraction_model"`
	ChatModel       string `koanf:"chat_model"`

	// Identity resolution
	FuzzyThreshold   float64 `koanf:"fuzzy_threshold"`
	NoCandidateFloor float64 `koanf:"no_candidate_floor"`

	// Scraping
	ScrapeTimeout time.Duration `koanf:"scrape_timeout"`
	ChromePath    string        `koanf:"chrome_path"`

	// Async extraction jobs
	ExtractWorkers      int           `koanf:"extract_workers"`
	ExtractQueueSize    int           `koanf:"extract_queue_size"`
	ExtractJobTimeout   time.Duration `koanf:"extract_job_timeout"`
	ExtractJobRetention time.Duration `koanf:"extract_job_retention"`
}

// Defaults returns the configuration used when nothing overrides a key
func Defaults() *Config {
	return &Config{
		Port:             8080,
		Env:              "development",
		RequestTimeout:   60 * time.Second,
		Origins:          "http://localhost:3000",
		ScoringCacheTTL:  5 * time.Minute,
		ExtractionModel:  "claude-haiku-4-5-20251001",
		ChatModel:        "claude-sonnet-4-6",
		FuzzyThreshold:   85,
		NoCandidateFloor: 50,
		ScrapeTimeout:    30 * time.Second,

		ExtractWorkers:      2,
		ExtractQueueSize:    32,
		ExtractJobTimeout:   3 * time.Minute,
		ExtractJobRetention: time.Hour,
	}
}

// Load layers defaults, the YAML file named by TRACKER_CONFIG (if any) and
// TRACKER_* environment variables, in that order of precedence.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// TRACKER_POSTGRES_URL -> postgres_url
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	for _, o := range strings.Split(cfg.Origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	for key, value := range map[string]string{
		"postgres_url":     cfg.PostgresURL,
		"redis_url":        cfg.RedisURL,
		"admin_token_hash": cfg.AdminTokenHash,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("missing required configuration: %s (env %s%s)", key, envPrefix, strings.ToUpper(key))
		}
	}

	if cfg.NoCandidateFloor > cfg.FuzzyThreshold {
		return nil, fmt.Errorf("no_candidate_floor (%v) must not exceed fuzzy_threshold (%v)", cfg.NoCandidateFloor, cfg.FuzzyThreshold)
	}

	return cfg, nil
}

// IsDevelopment reports whether development logging should be used
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
