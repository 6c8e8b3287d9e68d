package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For cache TTL durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string        // Application port
	DBUser     string        // Database user
	DBPassword string        // Database password
	DBHost     string        // Database host
	DBPort     string        // Database port
	DBName     string        // Database name
	JWTSecret  string        // JWT signing secret
	RedisAddr  string        // Redis server address
	RedisPass  string        // Redis password
	RedisDB    int           // Redis database number
	ImageTTL   time.Duration // Image cache time-to-live
	UserTTL    time.Duration // User cache time-to-live
	CaptionTTL time.Duration // Caption cache time-to-live
	IsProd     bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:    os.Getenv("APP_PORT"),                       // Application port
		DBUser:     os.Getenv("DB_USER"),                        // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),                    // Database password
		DBHost:     os.Getenv("DB_HOST"),                        // Database host
		DBPort:     os.Getenv("DB_PORT"),                        // Database port
		DBName:     os.Getenv("DB_NAME"),                        // Database name
		JWTSecret:  os.Getenv("JWT_SECRET"),                     // JWT signing secret
		RedisAddr:  os.Getenv("REDIS_ADDR"),                     // Redis server address
		RedisPass:  os.Getenv("REDIS_PASS"),                     // Redis password
		RedisDB:    redisDB,                                     // Redis database number
		ImageTTL:   ttlFromEnv("IMAGE_CACHE_TTL", 900),          // Image cache TTL, 15 minutes by default
		UserTTL:    ttlFromEnv("USER_CACHE_TTL", 900),           // User cache TTL, 15 minutes by default
		CaptionTTL: ttlFromEnv("CAPTION_CACHE_TTL", 1800),       // Caption cache TTL, 30 minutes by default
		IsProd:     os.Getenv("IS_PROD") == "true",              // Is production environment
	}
}

// ttlFromEnv reads a TTL in seconds from the environment, falling back to a default
func ttlFromEnv(key string, defSeconds int) time.Duration {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return time.Duration(v) * time.Second // Use configured value
	}
	return time.Duration(defSeconds) * time.Second // Fall back to default
}
