package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend modes: the hosted REST gateway or a direct Postgres connection.
const (
	ModeREST     = "rest"
	ModePostgres = "postgres"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	HTTPPort int `env:"HTTP_PORT" default:"8080"`

	// Hosted backend
	BackendURL       string `env:"BACKEND_URL" required:"true"`
	BackendAnonKey   string `env:"BACKEND_ANON_KEY" required:"true"`
	BackendJWTSecret string `env:"BACKEND_JWT_SECRET"`
	BackendMode      string `env:"BACKEND_MODE" default:"rest"`
	DatabaseURL      string `env:"DATABASE_URL"`

	// Call policy
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" default:"30s"`
	RetryMax       int           `env:"RETRY_MAX" default:"3"`
	RetryDelay     time.Duration `env:"RETRY_DELAY" default:"1s"`
	RateLimit      float64       `env:"RATE_LIMIT" default:"20"`
	RateBurst      int           `env:"RATE_BURST" default:"40"`

	// Sessions (API server)
	RedisURL      string        `env:"REDIS_URL"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	SessionTTL    time.Duration `env:"SESSION_TTL" default:"168h"`

	// Monitoring
	PrometheusEnabled bool `env:"PROMETHEUS_ENABLED" default:"false"`

	// Development
	LogLevel    string   `env:"LOG_LEVEL" default:"info"`
	LogFormat   string   `env:"LOG_FORMAT" default:"text"`
	CORSOrigins []string `env:"CORS_ORIGINS" default:"http://localhost:3000"`

	// Uploads
	UploadMaxSize string `env:"UPLOAD_MAX_SIZE" default:"2MB"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional; system env vars still apply
	_ = godotenv.Load(".env")

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}

	// Backend
	if err := loadEnvStringRequired(&config.BackendURL, "BACKEND_URL"); err != nil {
		return nil, err
	}
	if err := loadEnvStringRequired(&config.BackendAnonKey, "BACKEND_ANON_KEY"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.BackendJWTSecret, "BACKEND_JWT_SECRET", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.BackendMode, "BACKEND_MODE", ModeREST); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.DatabaseURL, "DATABASE_URL", ""); err != nil {
		return nil, err
	}

	// Call policy
	if err := loadEnvDuration(&config.RequestTimeout, "REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.RetryMax, "RETRY_MAX", 3); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.RetryDelay, "RETRY_DELAY", time.Second); err != nil {
		return nil, err
	}
	if err := loadEnvFloat(&config.RateLimit, "RATE_LIMIT", 20); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.RateBurst, "RATE_BURST", 40); err != nil {
		return nil, err
	}

	// Sessions
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", ""); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.SessionTTL, "SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}

	// Monitoring
	if err := loadEnvBool(&config.PrometheusEnabled, "PROMETHEUS_ENABLED", false); err != nil {
		return nil, err
	}

	// Development
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}
	if err := loadEnvStringSlice(&config.CORSOrigins, "CORS_ORIGINS", []string{"http://localhost:3000"}); err != nil {
		return nil, err
	}

	if err := loadEnvString(&config.UploadMaxSize, "UPLOAD_MAX_SIZE", "2MB"); err != nil {
		return nil, err
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) error {
	if value := os.Getenv(key); value != "" {
		*target = strings.Split(value, ",")
		for i, v := range *target {
			(*target)[i] = strings.TrimSpace(v)
		}
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		errors = append(errors, "BACKEND_URL must be an http(s) URL")
	}

	validModes := []string{ModeREST, ModePostgres}
	if !contains(validModes, c.BackendMode) {
		errors = append(errors, fmt.Sprintf("BACKEND_MODE must be one of: %s", strings.Join(validModes, ", ")))
	}
	if c.BackendMode == ModePostgres && c.DatabaseURL == "" {
		errors = append(errors, "DATABASE_URL is required when BACKEND_MODE=postgres")
	}
	if c.BackendMode == ModePostgres && c.BackendJWTSecret == "" {
		errors = append(errors, "BACKEND_JWT_SECRET is required when BACKEND_MODE=postgres")
	}

	if c.RequestTimeout <= 0 {
		errors = append(errors, "REQUEST_TIMEOUT must be positive")
	}
	if c.RetryMax < 1 {
		errors = append(errors, "RETRY_MAX must be at least 1")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if _, err := ParseSize(c.UploadMaxSize); err != nil {
		errors = append(errors, "UPLOAD_MAX_SIZE "+err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// UploadLimit is UPLOAD_MAX_SIZE in bytes.
func (c *Config) UploadLimit() int64 {
	n, err := ParseSize(c.UploadMaxSize)
	if err != nil {
		return 2 << 20
	}
	return n
}

// ParseSize reads sizes like "2MB", "512KB" or a plain byte count.
func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	mult := int64(1)
	for _, unit := range []struct {
		suffix string
		mult   int64
	}{{"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10}, {"B", 1}} {
		if strings.HasSuffix(s, unit.suffix) {
			s = strings.TrimSuffix(s, unit.suffix)
			mult = unit.mult
			break
		}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive size such as 2MB")
	}
	return n * mult, nil
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
