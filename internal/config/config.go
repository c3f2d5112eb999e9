package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Auth modes
const (
	AuthModeFirebase = "firebase"
	AuthModeLocal    = "local"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Auth      AuthConfig
	Reports   ReportsConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// SQLitePath is used when Driver is "sqlite"
	SQLitePath string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration. When disabled, nearby search reads
// the database and idempotency keys are not enforced.
type RedisConfig struct {
	Enabled  bool
	URL      string
	Password string
	GeoKey   string
}

// NATSConfig holds NATS configuration. An empty URL disables the NATS sink.
type NATSConfig struct {
	URL           string
	ClientName    string
	SubjectPrefix string
}

// AuthConfig holds identity configuration
type AuthConfig struct {
	Mode              string
	FirebaseProjectID string
	JWTSecret         string
	JWTIssuer         string
	JWTExpiry         time.Duration
}

// ReportsConfig holds report lifecycle settings
type ReportsConfig struct {
	CoinsPerReport           int64
	NearbyRadiusKm           float64
	CompleteRequiresClaimant bool
}

// RateLimitConfig holds per-user limits for claim requests
type RateLimitConfig struct {
	ClaimsPerMinute int
	Burst           int
}

// JobsConfig holds background job settings
type JobsConfig struct {
	ReconcileSchedule  string
	ReconcileBatchSize int
	ReconcileEnabled   bool
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvAsInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "greencoin"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "greencoin.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			GeoKey:   getEnv("REDIS_GEO_KEY", "reports:open:geo"),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			ClientName:    getEnv("NATS_CLIENT_NAME", "greencoin-backend"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "greencoin"),
		},
		Auth: AuthConfig{
			Mode:              strings.ToLower(getEnv("AUTH_MODE", AuthModeFirebase)),
			FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
			JWTSecret:         getEnv("JWT_SECRET", "change-this-in-production"),
			JWTIssuer:         getEnv("JWT_ISSUER", "greencoin-local"),
			JWTExpiry:         getEnvAsDuration("JWT_EXPIRY", time.Hour),
		},
		Reports: ReportsConfig{
			CoinsPerReport:           int64(getEnvAsInt("REPORTS_COINS_PER_REPORT", 10)),
			NearbyRadiusKm:           getEnvAsFloat("REPORTS_NEARBY_RADIUS_KM", 10),
			CompleteRequiresClaimant: getEnvAsBool("REPORTS_COMPLETE_REQUIRES_CLAIMANT", true),
		},
		RateLimit: RateLimitConfig{
			ClaimsPerMinute: getEnvAsInt("RATE_LIMIT_CLAIMS_PER_MINUTE", 30),
			Burst:           getEnvAsInt("RATE_LIMIT_CLAIMS_BURST", 5),
		},
		Jobs: JobsConfig{
			ReconcileSchedule:  getEnv("JOBS_RECONCILE_SCHEDULE", "@every 15m"),
			ReconcileBatchSize: getEnvAsInt("JOBS_RECONCILE_BATCH_SIZE", 500),
			ReconcileEnabled:   getEnvAsBool("JOBS_RECONCILE_ENABLED", true),
		},
	}
}

// Validate checks settings that would otherwise fail at first use
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Auth.Mode {
	case AuthModeFirebase:
		if c.Auth.FirebaseProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when AUTH_MODE=firebase")
		}
	case AuthModeLocal:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=local")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.Auth.Mode)
	}

	if c.Reports.CoinsPerReport <= 0 {
		return fmt.Errorf("REPORTS_COINS_PER_REPORT must be positive")
	}
	if c.Reports.NearbyRadiusKm <= 0 {
		return fmt.Errorf("REPORTS_NEARBY_RADIUS_KM must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
