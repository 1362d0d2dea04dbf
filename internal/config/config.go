package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAddr         = ":8080"
	defaultDatabaseURL  = "recipebox.db"
	defaultJWTSecret    = "change-me-jwt-secret"
	defaultJWTAccessTTL = "24h"
	defaultMediaRoot    = "./media"
	defaultMediaURLBase = "/media"
	defaultPageSize     = "6"
)

type Config struct {
	AppEnv       string
	Addr         string
	DatabaseURL  string
	JWTSecret    string
	JWTAccessTTL time.Duration
	MediaRoot    string
	MediaURLBase string
	PageSize     int
}

func Load() (*Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}

	cfg := &Config{
		AppEnv:       strings.ToLower(appEnv),
		Addr:         getEnv("ADDR", defaultAddr),
		DatabaseURL:  getEnv("DATABASE_URL", defaultDatabaseURL),
		JWTSecret:    strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),
		MediaRoot:    getEnv("MEDIA_ROOT", defaultMediaRoot),
		MediaURLBase: strings.TrimRight(getEnv("MEDIA_URL_BASE", defaultMediaURLBase), "/"),
	}

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}

	cfg.PageSize, err = parseIntEnv("PAGE_SIZE", defaultPageSize)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be > 0")
	}
	if isProdLike(cfg.AppEnv) && cfg.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", name, value)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", name, value)
	}
	return n, nil
}
