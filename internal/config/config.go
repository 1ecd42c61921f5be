package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "paypal.db"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultJWTTTL          = "24h"
	defaultWWWRoot         = "http://localhost:8080"
	defaultSiteName        = "Moodle"
	defaultSupportEmail    = "noreply@localhost"
	defaultPayPalSandbox   = "true"
	defaultVerifyTimeout   = "30s"
	defaultNotifyQueueSize = "256"

	payPalLiveHost    = "www.paypal.com"
	payPalSandboxHost = "www.sandbox.paypal.com"
)

type Config struct {
	AppEnv              string
	HTTPAddr            string
	DatabaseURL         string
	JWTSecret           string
	JWTTTL              time.Duration
	WWWRoot             string
	LoginURL            string
	SiteName            string
	SupportEmail        string
	PayPalSandbox       bool
	PayPalVerifyTimeout time.Duration
	NotifyQueueSize     int
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

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.WWWRoot = strings.TrimRight(strings.TrimSpace(getEnv("WWW_ROOT", defaultWWWRoot)), "/")
	cfg.LoginURL = strings.TrimSpace(getEnv("LOGIN_URL", cfg.WWWRoot+"/login/index.php"))
	cfg.SiteName = strings.TrimSpace(getEnv("SITE_NAME", defaultSiteName))
	cfg.SupportEmail = strings.TrimSpace(getEnv("SUPPORT_EMAIL", defaultSupportEmail))
	cfg.PayPalSandbox = parseBoolEnv("PAYPAL_SANDBOX", defaultPayPalSandbox)

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.PayPalVerifyTimeout, err = parseDurationEnv("PAYPAL_VERIFY_TIMEOUT", defaultVerifyTimeout)
	if err != nil {
		return nil, err
	}

	cfg.NotifyQueueSize, err = parseIntEnv("NOTIFY_QUEUE_SIZE", defaultNotifyQueueSize)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("paypal config: env=%s sandbox=%t verify_timeout=%s wwwroot=%s", cfg.AppEnv, cfg.PayPalSandbox, cfg.PayPalVerifyTimeout, cfg.WWWRoot)

	return cfg, nil
}

// PayPalHost returns the PayPal host selected by PAYPAL_SANDBOX.
func (c *Config) PayPalHost() string {
	if c.PayPalSandbox {
		return payPalSandboxHost
	}
	return payPalLiveHost
}

// PayPalURL is both the checkout form action and the IPN verification endpoint.
func (c *Config) PayPalURL() string {
	return "https://" + c.PayPalHost() + "/cgi-bin/webscr"
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.PayPalVerifyTimeout <= 0 {
		return fmt.Errorf("PAYPAL_VERIFY_TIMEOUT must be > 0")
	}
	if cfg.NotifyQueueSize <= 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must be > 0")
	}
	if !strings.HasPrefix(cfg.WWWRoot, "http://") && !strings.HasPrefix(cfg.WWWRoot, "https://") {
		return fmt.Errorf("WWW_ROOT must be an absolute http(s) URL")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.WWWRoot, defaultWWWRoot) {
			return fmt.Errorf("in prod/release WWW_ROOT must be set and not default")
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

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
