// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ericfisherdev/graduates/internal/logging"
)

const minAdminTokenLen = 16

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr  string
	DBPath      string
	BaseURL     string
	InstallSalt string
	AdminToken  string
	LogLevel    slog.Level
	LogFormat   string
	Location    *time.Location
}

// Load reads configuration from environment variables and returns a validated Config.
// Every variable is optional:
// GRADUATES_LISTEN_ADDR (127.0.0.1:8080), GRADUATES_DB_PATH (graduates.db),
// GRADUATES_BASE_URL (http://localhost:8080), GRADUATES_INSTALL_SALT (generated
// per database when empty), GRADUATES_LOG_LEVEL (info), GRADUATES_LOG_FORMAT
// (json), GRADUATES_TIMEZONE (UTC), GRADUATES_ADMIN_TOKEN (admin screens
// disabled when empty).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("GRADUATES_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "graduates.db"
	if v, ok := os.LookupEnv("GRADUATES_DB_PATH"); ok {
		dbPath = v
	}

	baseURL := "http://localhost:8080"
	if v, ok := os.LookupEnv("GRADUATES_BASE_URL"); ok && v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("GRADUATES_BASE_URL must be an absolute URL, got %q", v)
		}
		baseURL = strings.TrimRight(v, "/")
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("GRADUATES_LOG_LEVEL"); ok && v != "" {
		parsed, err := logging.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("GRADUATES_LOG_LEVEL: %w", err)
		}
		logLevel = parsed
	}

	logFormat := "json"
	if v, ok := os.LookupEnv("GRADUATES_LOG_FORMAT"); ok && v != "" {
		logFormat = strings.ToLower(strings.TrimSpace(v))
		if logFormat != "json" && logFormat != "text" {
			return nil, fmt.Errorf("GRADUATES_LOG_FORMAT must be json or text, got %q", v)
		}
	}

	adminToken := os.Getenv("GRADUATES_ADMIN_TOKEN")
	if adminToken != "" && len(adminToken) < minAdminTokenLen {
		return nil, fmt.Errorf("GRADUATES_ADMIN_TOKEN must be at least %d characters", minAdminTokenLen)
	}

	location := time.UTC
	if v, ok := os.LookupEnv("GRADUATES_TIMEZONE"); ok && v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("GRADUATES_TIMEZONE has invalid zone %q: %w", v, err)
		}
		location = loc
	}

	return &Config{
		ListenAddr:  listenAddr,
		DBPath:      dbPath,
		BaseURL:     baseURL,
		InstallSalt: os.Getenv("GRADUATES_INSTALL_SALT"),
		AdminToken:  adminToken,
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		Location:    location,
	}, nil
}
