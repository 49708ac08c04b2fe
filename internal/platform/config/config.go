package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	JWTSecret  string
	SessionTTL time.Duration

	EnableElectionScheduler bool
	EnableOutboxRelay       bool
	WorkerPollInterval      time.Duration
	OutboxBatchSize         int
}

// fileConfig is the optional YAML overlay pointed at by UNIONHUB_CONFIG.
// Environment variables win over file values.
type fileConfig struct {
	ServiceName string `yaml:"service_name"`
	HTTPPort    string `yaml:"http_port"`
	PostgresDSN string `yaml:"postgres_dsn"`
	JWTSecret   string `yaml:"jwt_secret"`
	SessionTTL  string `yaml:"session_ttl"`
}

func Load() (Config, error) {
	// Missing .env is fine; explicit environment always applies.
	_ = godotenv.Load()

	overlay, err := loadFile(os.Getenv("UNIONHUB_CONFIG"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ServiceName: firstNonEmpty(os.Getenv("SERVICE_NAME"), overlay.ServiceName, "unionhub"),
		HTTPPort:    firstNonEmpty(os.Getenv("HTTP_PORT"), overlay.HTTPPort, "8080"),
		PostgresDSN: firstNonEmpty(os.Getenv("POSTGRES_DSN"), overlay.PostgresDSN),
		JWTSecret:   firstNonEmpty(os.Getenv("JWT_SECRET"), overlay.JWTSecret, "dev-only-secret"),
		SessionTTL:  24 * time.Hour,

		EnableElectionScheduler: envBool("ENABLE_ELECTION_SCHEDULER", true),
		EnableOutboxRelay:       envBool("ENABLE_OUTBOX_RELAY", true),
		WorkerPollInterval:      envDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		OutboxBatchSize:         envInt("OUTBOX_BATCH_SIZE", 100),
	}

	if raw := firstNonEmpty(os.Getenv("SESSION_TTL"), overlay.SessionTTL); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}
	return cfg, nil
}

func loadFile(path string) (fileConfig, error) {
	var overlay fileConfig
	if strings.TrimSpace(path) == "" {
		return overlay, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return overlay, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return overlay, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return overlay, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
