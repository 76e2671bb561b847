package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// ProviderConfig holds the credentials and limits for one enrichment provider.
type ProviderConfig struct {
	Enabled   bool
	APIKey    string
	RateLimit int
	Timeout   time.Duration
}

// ScoringWeights are the configured multipliers applied to each sub-score.
type ScoringWeights struct {
	Engagement   float64 `json:"engagement"`
	Demographic  float64 `json:"demographic"`
	Firmographic float64 `json:"firmographic"`
	Behavioral   float64 `json:"behavioral"`
}

// ScoringThresholds define the hot/warm/cold category boundaries.
type ScoringThresholds struct {
	Hot  float64
	Warm float64
	Cold float64
}

// ScoringConfig aggregates the scoring model configuration.
type ScoringConfig struct {
	ModelVersion string
	Weights      ScoringWeights
	Thresholds   ScoringThresholds
}

// RedisConfig holds cache connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// WebhookConfig controls inbound webhook verification.
type WebhookConfig struct {
	Secret             string
	SignatureHeader    string
	TimestampHeader    string
	TimestampTolerance time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL       string
	Redis             RedisConfig
	JWTSecret         string
	Port              string
	TokenTTL          time.Duration
	RateLimitBulk     RateLimitConfig
	Scoring           ScoringConfig
	Providers         map[string]ProviderConfig
	ProviderOrder     []string
	Webhook           WebhookConfig
	AutomationBaseURL string
}

// providerNames is the closed set of supported enrichment providers, in the
// order they are attempted when no preference is given.
var providerNames = []string{"clearbit", "hunter", "fullcontact"}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       parseIntEnv("REDIS_DB", 0),
		},
		JWTSecret: getEnv("JWT_SECRET", "dev-secret"),
		Port:      getEnv("PORT", "8080"),
		TokenTTL:  parseDuration(getEnv("JWT_TTL", "24h")),
		Scoring: ScoringConfig{
			ModelVersion: getEnv("SCORING_MODEL_VERSION", "v1.2.0"),
			Weights: ScoringWeights{
				Engagement:   parseFloatEnv("SCORING_WEIGHT_ENGAGEMENT", 0.25),
				Demographic:  parseFloatEnv("SCORING_WEIGHT_DEMOGRAPHIC", 0.25),
				Firmographic: parseFloatEnv("SCORING_WEIGHT_FIRMOGRAPHIC", 0.25),
				Behavioral:   parseFloatEnv("SCORING_WEIGHT_BEHAVIORAL", 0.25),
			},
			Thresholds: ScoringThresholds{
				Hot:  parseFloatEnv("SCORING_THRESHOLD_HOT", 80),
				Warm: parseFloatEnv("SCORING_THRESHOLD_WARM", 50),
				Cold: parseFloatEnv("SCORING_THRESHOLD_COLD", 0),
			},
		},
		Webhook: WebhookConfig{
			Secret:             os.Getenv("WEBHOOK_SECRET"),
			SignatureHeader:    getEnv("WEBHOOK_SIGNATURE_HEADER", "X-Webhook-Signature"),
			TimestampHeader:    getEnv("WEBHOOK_TIMESTAMP_HEADER", "X-Webhook-Timestamp"),
			TimestampTolerance: parseDuration(getEnv("WEBHOOK_TIMESTAMP_TOLERANCE", "5m")),
		},
		AutomationBaseURL: os.Getenv("AUTOMATION_BASE_URL"),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_BULK", "10/sec"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BULK value: %w", err)
	}
	cfg.RateLimitBulk = rl

	cfg.Providers = make(map[string]ProviderConfig, len(providerNames))
	for _, name := range providerNames {
		pc, err := loadProvider(name)
		if err != nil {
			return nil, err
		}
		cfg.Providers[name] = pc
		if pc.Enabled {
			cfg.ProviderOrder = append(cfg.ProviderOrder, name)
		}
	}

	return cfg, nil
}

func loadProvider(name string) (ProviderConfig, error) {
	prefix := strings.ToUpper(name)
	key := os.Getenv(prefix + "_KEY")

	enabled := key != ""
	if raw, ok := os.LookupEnv(prefix + "_ENABLED"); ok {
		parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return ProviderConfig{}, fmt.Errorf("invalid %s_ENABLED value: %q", prefix, raw)
		}
		enabled = parsed
	}

	return ProviderConfig{
		Enabled:   enabled,
		APIKey:    key,
		RateLimit: parseIntEnv(prefix+"_RATE_LIMIT", 60),
		Timeout:   parseDuration(getEnv(prefix+"_TIMEOUT", "10s")),
	}, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func parseIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func parseFloatEnv(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return value
}
