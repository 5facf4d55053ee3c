package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	GinMode           string
	DBDriver          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBPath            string
	SessionStore      string
	RedisHost         string
	RedisPort         string
	SessionSecret     string
	JWTSecret         string
	JWTTTL            time.Duration
	Timezone          string
	AppBaseURL        string
	AWSRegion         string
	SESFromEmail      string
	SESFromName       string
	AuthRatePerMinute int
	LogLevel          string
	LogFormat         string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		DBDriver:          getEnv("DB_DRIVER", "mysql"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBUser:            getEnv("DB_USER", "familyuser"),
		DBPassword:        getEnv("DB_PASSWORD", "familypassword"),
		DBName:            getEnv("DB_NAME", "family_chores"),
		DBPath:            getEnv("DB_PATH", "./family_chores.db"),
		SessionStore:      getEnv("SESSION_STORE", "redis"),
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		SessionSecret:     getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		JWTSecret:         getEnv("JWT_SECRET", "default-jwt-secret-change-me"),
		JWTTTL:            getDuration("JWT_TTL", 7*24*time.Hour),
		Timezone:          getEnv("APP_TIMEZONE", "Local"),
		AppBaseURL:        getEnv("APP_BASE_URL", "http://localhost:3000"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Family Chores"),
		AuthRatePerMinute: getInt("AUTH_RATE_PER_MINUTE", 20),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}
}

// Location resolves the configured timezone used for "today" boundaries.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
