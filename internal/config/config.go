package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr       string
	BackendBaseURL string
	BackendTimeout time.Duration

	NATSUrl      string
	NATSUsername string
	NATSPassword string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SessionFile is the JSONL fallback store used when redis is not
	// configured; empty means purely in-memory markers.
	SessionFile string

	UserID    string
	GroupID   string
	SessionID string

	SettleDelay    time.Duration
	MarkerCooldown time.Duration

	AuditFile string
}

func Load() (*Config, error) {
	backendURL := os.Getenv("BACKEND_BASE_URL")
	if backendURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL environment variable is required")
	}

	userID := os.Getenv("USER_ID")
	if userID == "" {
		return nil, fmt.Errorf("USER_ID environment variable is required")
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB_NUMBER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("REDIS_DB_NUMBER must be an integer: %w", err)
		}
		redisDB = n
	}

	return &Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		BackendBaseURL: backendURL,
		BackendTimeout: durationOr("BACKEND_TIMEOUT", 10*time.Second),
		NATSUrl:        envOr("NATS_URL", "nats://localhost:4222"),
		NATSUsername:   os.Getenv("NATS_USERNAME"),
		NATSPassword:   os.Getenv("NATS_PASSWORD"),
		RedisAddr:      os.Getenv("REDIS_ADDRESS"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		SessionFile:    os.Getenv("SESSION_FILE"),
		UserID:         userID,
		GroupID:        os.Getenv("GROUP_ID"),
		SessionID:      envOr("SESSION_ID", userID),
		SettleDelay:    durationOr("SETTLE_DELAY", 1200*time.Millisecond),
		MarkerCooldown: durationOr("MARKER_COOLDOWN", 5*time.Minute),
		AuditFile:      envOr("AUDIT_FILE", "./out/audit.jsonl"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
