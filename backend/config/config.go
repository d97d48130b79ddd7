package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the incident reporting client
type Config struct {
	// Session store configuration
	StoreBackend string // memory, file, mysql or redis
	StorePath    string
	RedisURL     string
	RedisPrefix  string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Report workflow
	SubmitDelay    time.Duration
	ExtractTimeout time.Duration
	PhotoGPS       string // exif, mock or none
	MockGPSDelay   time.Duration

	// Geolocation
	DeviceLocation  string // "lat, lon[, accuracy]"; empty means unsupported
	LocationTimeout time.Duration
	LocationMaxAge  time.Duration
	LocationPolicy  string // last_writer_wins or prefer_device

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables. A .env file in the
// working directory, when present, is applied first without overriding the
// process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to read .env file: %v", err)
	}

	config := &Config{
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "file")),
		StorePath:    getEnv("STORE_PATH", "mangrovewatch.json"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:  getEnv("REDIS_PREFIX", "mangrovewatch:"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "mangrovewatch"),

		SubmitDelay:    getDurationEnv("SUBMIT_DELAY", 1500*time.Millisecond),
		ExtractTimeout: getDurationEnv("EXTRACT_TIMEOUT", 5*time.Second),
		PhotoGPS:       strings.ToLower(getEnv("PHOTO_GPS", "exif")),
		MockGPSDelay:   getDurationEnv("MOCK_GPS_DELAY", time.Second),

		DeviceLocation:  getEnv("DEVICE_LOCATION", ""),
		LocationTimeout: getDurationEnv("LOCATION_TIMEOUT", 10*time.Second),
		LocationMaxAge:  getDurationEnv("LOCATION_MAX_AGE", 60*time.Second),
		LocationPolicy:  strings.ToLower(getEnv("LOCATION_POLICY", "last_writer_wins")),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv accepts Go duration strings ("1.5s") or plain milliseconds ("1500").
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms := getIntEnv(key, -1); ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	log.Warnf("Invalid duration %q for %s, using %v", value, key, defaultValue)
	return defaultValue
}
