// Package config provides configuration management for the Studio Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort           = 8790
	DefaultLogLevel       = "info"
	DefaultDataDir        = ".studio-agent"
	DefaultBackendBaseURL = "http://localhost:8000"
	DefaultUserID         = "local"

	// Environment variable names
	EnvPort           = "STUDIO_PORT"
	EnvLogLevel       = "STUDIO_LOG_LEVEL"
	EnvDataDir        = "STUDIO_DATA_DIR"
	EnvBackendBaseURL = "STUDIO_BACKEND_URL"
	EnvBackendToken   = "STUDIO_BACKEND_TOKEN"
	EnvUserID         = "STUDIO_USER_ID"
	EnvPollInterval   = "STUDIO_POLL_INTERVAL_SECONDS"
	EnvPollAttempts   = "STUDIO_POLL_MAX_ATTEMPTS"
	EnvAdminPassword  = "STUDIO_ADMIN_PASSWORD"

	// Database filename
	DBFilename = "studio.db"

	// Poll defaults; the attempt budget bounds a stuck job to five minutes.
	DefaultPollIntervalSeconds = 2
	DefaultPollMaxAttempts     = 150
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	BackendBaseURL() string
	BackendToken() string
	UserID() string
	PollInterval() time.Duration
	PollMaxAttempts() int
	AdminPassword() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port            int
	logLevel        string
	dataDir         string
	backendBaseURL  string
	backendToken    string
	userID          string
	pollIntervalSec int
	pollMaxAttempts int
	adminPassword   string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		backendBaseURL:  DefaultBackendBaseURL,
		userID:          DefaultUserID,
		pollIntervalSec: DefaultPollIntervalSeconds,
		pollMaxAttempts: DefaultPollMaxAttempts,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if bu := os.Getenv(EnvBackendBaseURL); bu != "" {
		cfg.backendBaseURL = bu
	}

	cfg.backendToken = os.Getenv(EnvBackendToken)

	if uid := os.Getenv(EnvUserID); uid != "" {
		cfg.userID = uid
	}

	if pi := os.Getenv(EnvPollInterval); pi != "" {
		sec, err := strconv.Atoi(pi)
		if err != nil || sec < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvPollInterval)
		}
		cfg.pollIntervalSec = sec
	}

	if pa := os.Getenv(EnvPollAttempts); pa != "" {
		n, err := strconv.Atoi(pa)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvPollAttempts)
		}
		cfg.pollMaxAttempts = n
	}

	cfg.adminPassword = os.Getenv(EnvAdminPassword)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// BackendBaseURL returns the studio backend base URL
func (c *EnvConfig) BackendBaseURL() string {
	return c.backendBaseURL
}

// BackendToken returns the bearer token for backend requests, if any
func (c *EnvConfig) BackendToken() string {
	return c.backendToken
}

// UserID identifies this workstation to the backend director
func (c *EnvConfig) UserID() string {
	return c.userID
}

// PollInterval returns the delay between progress checks
func (c *EnvConfig) PollInterval() time.Duration {
	return time.Duration(c.pollIntervalSec) * time.Second
}

// PollMaxAttempts returns the progress-check attempt budget
func (c *EnvConfig) PollMaxAttempts() int {
	return c.pollMaxAttempts
}

// AdminPassword returns the admin gate password. Empty disables the
// login endpoint.
func (c *EnvConfig) AdminPassword() string {
	return c.adminPassword
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
