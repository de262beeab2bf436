package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultJWTAccessTTL  = "24h"
	defaultChargeTimeout = "15s"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultPageLimit     = "20"
	defaultMaxPageLimit  = "100"
	defaultCurrency      = "usd"
	defaultListenAddr    = ":8080"
)

type Config struct {
	AppEnv      string
	ListenAddr  string
	DatabaseURL string

	JWTSecret    string
	JWTAccessTTL time.Duration

	OmisePublicKey string
	OmiseSecretKey string
	ChargeTimeout  time.Duration
	Currency       string

	DefaultPageLimit int
	MaxPageLimit     int
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = strings.TrimSpace(getEnv("LISTEN_ADDR", defaultListenAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", "equiherds.db"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.OmisePublicKey = strings.TrimSpace(os.Getenv("OMISE_PUBLIC_KEY"))
	cfg.OmiseSecretKey = strings.TrimSpace(os.Getenv("OMISE_SECRET_KEY"))
	cfg.Currency = strings.ToLower(strings.TrimSpace(getEnv("PAYMENT_CURRENCY", defaultCurrency)))

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}

	cfg.ChargeTimeout, err = parseDurationEnv("PAYMENT_CHARGE_TIMEOUT", defaultChargeTimeout)
	if err != nil {
		return nil, err
	}

	cfg.DefaultPageLimit, err = parseIntEnv("PAGE_LIMIT_DEFAULT", defaultPageLimit)
	if err != nil {
		return nil, err
	}
	cfg.MaxPageLimit, err = parseIntEnv("PAGE_LIMIT_MAX", defaultMaxPageLimit)
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
	if cfg.ChargeTimeout <= 0 {
		return fmt.Errorf("PAYMENT_CHARGE_TIMEOUT must be > 0")
	}
	if cfg.DefaultPageLimit <= 0 || cfg.MaxPageLimit < cfg.DefaultPageLimit {
		return fmt.Errorf("page limits must satisfy 0 < PAGE_LIMIT_DEFAULT <= PAGE_LIMIT_MAX")
	}
	if cfg.Currency == "" {
		return fmt.Errorf("PAYMENT_CURRENCY must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.OmisePublicKey == "" || cfg.OmiseSecretKey == "" {
			return fmt.Errorf("in prod/release OMISE_PUBLIC_KEY and OMISE_SECRET_KEY must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
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
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}
