package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Analysis engine
	Analysis AnalysisConfig

	// Sentiment collector
	Collector CollectorConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// AnalysisConfig holds the tunable parameters of the indicator engine.
// Defaults match the daily-equity profile: SMA 20/50, Bollinger 2σ, RSI 14.
type AnalysisConfig struct {
	ShortWindow       int     // SMA short window (close)
	LongWindow        int     // SMA long window (close)
	VolumeWindow      int     // volume SMA window
	VolumeTrendWindow int     // short volume SMA used for the trend term
	BollingerK        float64 // band width in standard deviations
	RSIPeriod         int
	MomentumPeriod    int // sentiment momentum divisor / minimum lookback
	PatternLookback   int // points consulted behind a double top/bottom pivot
	OutputPeriods     int // trailing rows emitted per symbol
	SampleStdDev      bool
	Workers           int

	// When true, rows without a defined volume SMA are labeled Normal
	// instead of carrying no volume label.
	MissingVolumeAsNormal bool
}

// CollectorConfig holds the news sentiment collector configuration
type CollectorConfig struct {
	BaseURL        string
	RequestsPerSec float64
	Timeout        time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: this is the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Analysis engine
		Analysis: AnalysisConfig{
			ShortWindow:           getEnvAsInt("ANALYSIS_SHORT_WINDOW", 20),
			LongWindow:            getEnvAsInt("ANALYSIS_LONG_WINDOW", 50),
			VolumeWindow:          getEnvAsInt("ANALYSIS_VOLUME_WINDOW", 20),
			VolumeTrendWindow:     getEnvAsInt("ANALYSIS_VOLUME_TREND_WINDOW", 5),
			BollingerK:            getEnvAsFloat("ANALYSIS_BOLLINGER_K", 2.0),
			RSIPeriod:             getEnvAsInt("ANALYSIS_RSI_PERIOD", 14),
			MomentumPeriod:        getEnvAsInt("ANALYSIS_MOMENTUM_PERIOD", 3),
			PatternLookback:       getEnvAsInt("ANALYSIS_PATTERN_LOOKBACK", 4),
			OutputPeriods:         getEnvAsInt("ANALYSIS_OUTPUT_PERIODS", 30),
			SampleStdDev:          getEnvAsBool("ANALYSIS_SAMPLE_STDDEV", false),
			Workers:               getEnvAsInt("ANALYSIS_WORKERS", 4),
			MissingVolumeAsNormal: getEnvAsBool("ANALYSIS_MISSING_VOLUME_AS_NORMAL", false),
		},

		// Sentiment collector
		Collector: CollectorConfig{
			BaseURL:        getEnv("COLLECTOR_BASE_URL", "https://finance.naver.com"),
			RequestsPerSec: getEnvAsFloat("COLLECTOR_REQUESTS_PER_SEC", 2.0),
			Timeout:        getEnvAsDuration("COLLECTOR_TIMEOUT", "30s"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	return c.Analysis.Validate()
}

// Validate rejects analysis parameters before any symbol is processed.
// A bad window size is a configuration error, not a per-row condition.
func (a *AnalysisConfig) Validate() error {
	windows := map[string]int{
		"ANALYSIS_SHORT_WINDOW":        a.ShortWindow,
		"ANALYSIS_LONG_WINDOW":         a.LongWindow,
		"ANALYSIS_VOLUME_WINDOW":       a.VolumeWindow,
		"ANALYSIS_VOLUME_TREND_WINDOW": a.VolumeTrendWindow,
		"ANALYSIS_RSI_PERIOD":          a.RSIPeriod,
		"ANALYSIS_MOMENTUM_PERIOD":     a.MomentumPeriod,
		"ANALYSIS_OUTPUT_PERIODS":      a.OutputPeriods,
	}
	for name, v := range windows {
		if v < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", name, v)
		}
	}

	if a.BollingerK <= 0 {
		return fmt.Errorf("ANALYSIS_BOLLINGER_K must be > 0, got %v", a.BollingerK)
	}

	// Double top/bottom classification consults three points behind the
	// pivot plus the pivot itself, so anything shorter cannot work.
	if a.PatternLookback < 4 {
		return fmt.Errorf("ANALYSIS_PATTERN_LOOKBACK must be >= 4, got %d", a.PatternLookback)
	}

	if a.Workers < 1 {
		return fmt.Errorf("ANALYSIS_WORKERS must be >= 1, got %d", a.Workers)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
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
			filepath.Join(exeDir, "..", "..", ".env"),
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
