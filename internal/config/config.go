// Package config loads application configuration from environment variables.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment
// variables.
type Config struct {
	BackendURL      string
	ListenAddr      string
	DBPath          string
	CredentialKey   []byte // nil disables credential persistence
	MonitorInterval time.Duration
	PageSize        int
}

// Load reads configuration from the environment, after best-effort loading
// of a local .env file. COPRO_CREDENTIAL_KEY is optional; without it the
// session credential is held in memory only. Optional variables with
// defaults: COPRO_BACKEND_URL (http://127.0.0.1:8081), COPRO_LISTEN_ADDR
// (127.0.0.1:8080), COPRO_DB_PATH (coproconnect.db),
// COPRO_MONITOR_INTERVAL (60s), COPRO_PAGE_SIZE (10).
func Load() (*Config, error) {
	_ = godotenv.Load()

	backendURL := "http://127.0.0.1:8081"
	if v, ok := os.LookupEnv("COPRO_BACKEND_URL"); ok && v != "" {
		backendURL = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("COPRO_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	dbPath := "coproconnect.db"
	if v, ok := os.LookupEnv("COPRO_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	var key []byte
	if v, ok := os.LookupEnv("COPRO_CREDENTIAL_KEY"); ok && v != "" {
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("COPRO_CREDENTIAL_KEY is not valid base64: %w", err)
		}
		if len(decoded) != 32 {
			return nil, fmt.Errorf("COPRO_CREDENTIAL_KEY must decode to 32 bytes, got %d", len(decoded))
		}
		key = decoded
	}

	monitorInterval := 60 * time.Second
	if v, ok := os.LookupEnv("COPRO_MONITOR_INTERVAL"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("COPRO_MONITOR_INTERVAL has invalid duration %q: %w", v, err)
		}
		monitorInterval = parsed
	}

	pageSize := 10
	if v, ok := os.LookupEnv("COPRO_PAGE_SIZE"); ok && v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("COPRO_PAGE_SIZE must be a positive integer, got %q", v)
		}
		pageSize = parsed
	}

	return &Config{
		BackendURL:      backendURL,
		ListenAddr:      listenAddr,
		DBPath:          dbPath,
		CredentialKey:   key,
		MonitorInterval: monitorInterval,
		PageSize:        pageSize,
	}, nil
}
