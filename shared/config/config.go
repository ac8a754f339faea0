package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort  string
	FrontendURL string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret      string
	JWTExpireHours string

	// Password hashing
	BcryptCost int

	// Platform Admin bootstrap
	PlatformAdminEmail    string
	PlatformAdminPassword string
	PlatformAdminName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// Login Rate Limiting
	LoginRateLimitMaxAttempts   string
	LoginRateLimitWindowSeconds string
	LoginRateLimitBlockMinutes  string
}

// Load reads the .env file (if present) and environment variables into an
// immutable Config value. Built once in main and passed into every component.
func Load() *Config {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := &Config{
		// Server
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "taskforge"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-this"),
		JWTExpireHours: getEnv("JWT_EXPIRE_HOURS", "24"),

		// Password hashing
		BcryptCost: getEnvAsInt("BCRYPT_COST", 10),

		// Platform Admin bootstrap
		PlatformAdminEmail:    getEnv("PLATFORM_ADMIN_EMAIL", "admin@platform.com"),
		PlatformAdminPassword: getEnv("PLATFORM_ADMIN_PASSWORD", "password123"),
		PlatformAdminName:     getEnv("PLATFORM_ADMIN_NAME", "Platform Administrator"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		// Login Rate Limiting
		LoginRateLimitMaxAttempts:   getEnv("LOGIN_RATE_LIMIT_MAX_ATTEMPTS", "5"),
		LoginRateLimitWindowSeconds: getEnv("LOGIN_RATE_LIMIT_WINDOW_SECONDS", "300"),
		LoginRateLimitBlockMinutes:  getEnv("LOGIN_RATE_LIMIT_BLOCK_MINUTES", "30"),
	}

	log.Println("✅ Configuration loaded successfully")
	return cfg
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBPort,
		c.DBSSLMode,
	)
}

// RedisAddr returns the host:port address of the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// RedisDBNumber returns the Redis database index.
func (c *Config) RedisDBNumber() int {
	if value, err := strconv.Atoi(c.RedisDB); err == nil {
		return value
	}
	return 0
}

// JWTExpireDuration returns the configured token lifetime.
func (c *Config) JWTExpireDuration() time.Duration {
	hours, err := strconv.Atoi(c.JWTExpireHours)
	if err != nil {
		return 24 * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

// GetLoginRateLimitMaxAttempts returns the allowed login attempts per window.
func (c *Config) GetLoginRateLimitMaxAttempts() int {
	if value, err := strconv.Atoi(c.LoginRateLimitMaxAttempts); err == nil {
		return value
	}
	return 5
}

// GetLoginRateLimitWindow returns the login attempt counting window.
func (c *Config) GetLoginRateLimitWindow() time.Duration {
	if value, err := strconv.Atoi(c.LoginRateLimitWindowSeconds); err == nil {
		return time.Duration(value) * time.Second
	}
	return 5 * time.Minute
}

// GetLoginRateLimitBlock returns the block duration after too many failures.
func (c *Config) GetLoginRateLimitBlock() time.Duration {
	if value, err := strconv.Atoi(c.LoginRateLimitBlockMinutes); err == nil {
		return time.Duration(value) * time.Minute
	}
	return 30 * time.Minute
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
