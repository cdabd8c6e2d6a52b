package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type Config struct {
	APIBaseURL      string
	APIAuthToken    string
	HTTPPort        string
	PageSize        int
	ScrollThreshold float64
	AppEnv          string
	LogLevel        string
	SessionTTL      time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	// .env опционален, переменные окружения главнее
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:   strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000/api"), "/"),
		APIAuthToken: getEnv("API_AUTH_TOKEN", ""),
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		AppEnv:       strings.ToLower(getEnv("APP_ENV", EnvProduction)),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "booking_events"),
	}

	var err error
	if cfg.PageSize, err = getInt("PAGE_SIZE", 5); err != nil {
		return nil, err
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}

	if cfg.ScrollThreshold, err = getFloat("SCROLL_THRESHOLD", 150); err != nil {
		return nil, err
	}
	if cfg.ScrollThreshold < 0 {
		return nil, fmt.Errorf("SCROLL_THRESHOLD must not be negative")
	}

	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	if cfg.AppEnv != EnvProduction && cfg.AppEnv != EnvDevelopment {
		return nil, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvProduction, EnvDevelopment, cfg.AppEnv)
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("API_BASE_URL must be an absolute url, got %q", cfg.APIBaseURL)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.AppEnv == EnvDevelopment
}

// KafkaEnabled - публикация событий включается заданием KAFKA_BROKERS.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// NewLogger: в development текст, в production JSON.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(lvl)
	if c.IsDev() {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger, nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
