package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Broker     BrokerConfig
	PostgreSQL PostgreSQLConfig
	Redis      RedisConfig
	Session    SessionConfig
	Search     SearchConfig
	Ranking    RankingConfig
	Logging    LoggingConfig
	Maps       MapsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// BrokerConfig holds the external broker backend configuration
type BrokerConfig struct {
	APIBaseURL           string
	UseMock              bool
	Timeout              time.Duration
	DistributionCacheTTL time.Duration
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, wins over the individual fields
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	Enabled            bool
}

// RedisConfig holds Redis configuration for the shared session store
type RedisConfig struct {
	URL       string
	KeyPrefix string
	Enabled   bool
}

// SessionConfig controls how long chat state is retained
type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// SearchConfig holds listing match configuration
type SearchConfig struct {
	DefaultLimit       int
	MaxLimit           int
	EmbeddingDimension int
}

// RankingConfig holds ranking weights configuration
type RankingConfig struct {
	WeightCriteria float64
	WeightPrice    float64
	WeightRecency  float64
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	FilePath string
	IsProd   bool
}

// MapsConfig holds the maps key handed to clients for places autocomplete
type MapsConfig struct {
	GoogleMapsAPIKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Broker: BrokerConfig{
			// NEXT_PUBLIC_* names are shared with the web front end's .env
			APIBaseURL: strings.TrimRight(getEnv("BROKER_API_BASE_URL", getEnv("NEXT_PUBLIC_API_BASE_URL", "http://localhost:8000")), "/"),
			UseMock:    getEnvAsBool("BROKER_USE_MOCK_API", getEnvAsBool("NEXT_PUBLIC_USE_MOCK_API", false)),
			Timeout:    time.Duration(getEnvAsInt("BROKER_TIMEOUT", 30)) * time.Second,

			DistributionCacheTTL: time.Duration(getEnvAsInt("DISTRIBUTION_CACHE_MINUTES", 10)) * time.Minute,
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", ""),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "property_intake"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "intake:chat:"),
		},
		Session: SessionConfig{
			TTL:             time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
			CleanupInterval: time.Duration(getEnvAsInt("SESSION_CLEANUP_MINUTES", 10)) * time.Minute,
		},
		Search: SearchConfig{
			DefaultLimit: getEnvAsInt("SEARCH_DEFAULT_LIMIT", 20),
			MaxLimit:     getEnvAsInt("SEARCH_MAX_LIMIT", 100),

			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 1536),
		},
		Ranking: RankingConfig{
			WeightCriteria: getEnvAsFloat("RANK_WEIGHT_CRITERIA", 0.5),
			WeightPrice:    getEnvAsFloat("RANK_WEIGHT_PRICE", 0.3),
			WeightRecency:  getEnvAsFloat("RANK_WEIGHT_RECENCY", 0.2),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			FilePath: getEnv("LOG_FILE", "logs/property-intake.log"),
			IsProd:   getEnv("GIN_MODE", "release") == "release",
		},
		Maps: MapsConfig{
			GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", getEnv("NEXT_PUBLIC_GOOGLE_MAPS_API_KEY", "")),
		},
	}

	cfg.PostgreSQL.Enabled = cfg.PostgreSQL.DSN != "" || cfg.PostgreSQL.Host != ""
	cfg.Redis.Enabled = cfg.Redis.URL != ""

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
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
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
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
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
