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
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Pipeline
	Pipeline PipelineConfig

	// Scheduler
	Scheduler SchedulerConfig

	// API
	API APIConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	BadgeTTL time.Duration // 배지 캐시 TTL
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

// PipelineConfig points at the YAML pipeline parameters
type PipelineConfig struct {
	ConfigPath string // 비어 있으면 기본값 사용
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Timezone string
}

// APIConfig holds read API limits
type APIConfig struct {
	ComputeRatePerSec float64 // POST /api/badges/compute
	ComputeBurst      int
	MaxBatchIDs       int // GET /api/badges?ids=

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration // 시장 단위 재계산을 기다릴 만큼 길게
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
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
			BadgeTTL: getEnvAsDuration("REDIS_BADGE_TTL", "6h"),
		},

		Pipeline: PipelineConfig{
			ConfigPath: getEnv("PIPELINE_CONFIG", ""),
		},

		Scheduler: SchedulerConfig{
			Timezone: getEnv("SCHEDULER_TIMEZONE", "Asia/Seoul"),
		},

		API: APIConfig{
			ComputeRatePerSec: getEnvAsFloat("API_COMPUTE_RATE", 0.2),
			ComputeBurst:      getEnvAsInt("API_COMPUTE_BURST", 1),
			MaxBatchIDs:       getEnvAsInt("API_MAX_BATCH_IDS", 200),
			ReadTimeout:       getEnvAsDuration("API_READ_TIMEOUT", "15s"),
			WriteTimeout:      getEnvAsDuration("API_WRITE_TIMEOUT", "5m"),
			IdleTimeout:       getEnvAsDuration("API_IDLE_TIMEOUT", "60s"),
			ShutdownTimeout:   getEnvAsDuration("API_SHUTDOWN_TIMEOUT", "30s"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

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

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE %q: %w", c.Scheduler.Timezone, err)
	}

	if c.API.ComputeRatePerSec <= 0 || c.API.ComputeBurst <= 0 {
		return fmt.Errorf("API_COMPUTE_RATE and API_COMPUTE_BURST must be positive")
	}

	if c.API.ShutdownTimeout <= 0 {
		return fmt.Errorf("API_SHUTDOWN_TIMEOUT must be positive")
	}

	return nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

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
