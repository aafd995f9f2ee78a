package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read through this package.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// NAV data provider
	Provider ProviderConfig

	// Monitor / notifications
	Monitor MonitorConfig
	Mail    MailConfig

	// Simulation defaults
	Simulation SimulationConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ProviderConfig holds the fund NAV provider endpoints.
type ProviderConfig struct {
	EstimateBaseURL string // live estimated NAV (JSONP)
	HistoryBaseURL  string // historical NAV pages
	RequestsPerSec  float64
	Timeout         time.Duration
}

// MonitorConfig holds the scheduled monitor configuration.
type MonitorConfig struct {
	Schedule string // cron expression (with seconds field)
	Enabled  bool
}

// MailConfig holds SMTP notification configuration.
type MailConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	To       string
	Enabled  bool
}

// SimulationConfig holds default backtest parameters.
type SimulationConfig struct {
	RiskFreeRate   float64
	CommissionRate float64
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Provider: ProviderConfig{
			EstimateBaseURL: getEnv("PROVIDER_ESTIMATE_URL", "http://fundgz.1234567.com.cn/js"),
			HistoryBaseURL:  getEnv("PROVIDER_HISTORY_URL", "http://fund.eastmoney.com/f10/F10DataApi.aspx"),
			RequestsPerSec:  getEnvAsFloat("PROVIDER_RPS", 5),
			Timeout:         getEnvAsDuration("PROVIDER_TIMEOUT", "10s"),
		},

		Monitor: MonitorConfig{
			Schedule: getEnv("MONITOR_SCHEDULE", "0 0 14 * * MON-FRI"),
			Enabled:  getEnvAsBool("MONITOR_ENABLED", true),
		},

		Mail: MailConfig{
			Host:     getEnv("MAIL_HOST", ""),
			Port:     getEnv("MAIL_PORT", "587"),
			User:     getEnv("MAIL_USER", ""),
			Password: getEnv("MAIL_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", ""),
			To:       getEnv("MAIL_TO", ""),
			Enabled:  getEnvAsBool("MAIL_ENABLED", false),
		},

		Simulation: SimulationConfig{
			RiskFreeRate:   getEnvAsFloat("SIM_RISK_FREE_RATE", 0.03),
			CommissionRate: getEnvAsFloat("SIM_COMMISSION_RATE", 0),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Provider.RequestsPerSec <= 0 {
		return fmt.Errorf("PROVIDER_RPS must be > 0")
	}

	if c.Mail.Enabled {
		if c.Mail.Host == "" || c.Mail.From == "" || c.Mail.To == "" {
			return fmt.Errorf("MAIL_HOST, MAIL_FROM and MAIL_TO are required when MAIL_ENABLED=true")
		}
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
