package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port            string        `validate:"required,port"`
	AdminAddr       string        // optional listener for /health and /metrics, disabled when empty
	ShutdownTimeout time.Duration `validate:"gt=0"`

	// Page selection
	TargetCountry string `validate:"len=2,alpha"` // ISO-3166 alpha-2 code that gets the target page

	// Geolocation lookup
	LookupProvider string        `validate:"oneof=ipinfo csv mysql redis mmdb"`
	LookupTimeout  time.Duration `validate:"gt=0"`

	// ipinfo.io
	IPInfoBaseURL string `validate:"omitempty,url"`
	IPInfoToken   string

	// Local datasets
	DatasetPath  string `validate:"required_if=LookupProvider csv"` // CSV file: ip,country
	DatasetWatch bool   // reload the CSV dataset when it changes on disk
	MMDBPath     string `validate:"required_if=LookupProvider mmdb"`

	// MySQL configuration
	MySQLDSN string `validate:"required_if=LookupProvider mysql"`

	// Redis configuration
	RedisAddr     string `validate:"required_if=LookupProvider redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0,lte=15"`

	// Logging
	LogLevel  string `validate:"oneof=trace debug info warn error"`
	LogPretty bool
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	// In production/Docker, environment variables are set directly
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port:            getEnv("PORT", "10000"),
		AdminAddr:       getEnv("ADMIN_ADDR", ""),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		TargetCountry: strings.ToUpper(getEnv("TARGET_COUNTRY", "IR")),

		LookupProvider: strings.ToLower(getEnv("LOOKUP_PROVIDER", "ipinfo")),
		LookupTimeout:  getEnvAsDuration("LOOKUP_TIMEOUT", 3*time.Second),

		IPInfoBaseURL: getEnv("IPINFO_BASE_URL", "https://ipinfo.io"),
		IPInfoToken:   getEnv("IPINFO_TOKEN", ""),

		DatasetPath:  getEnv("DATASET_PATH", "./data/ip_country.csv"),
		DatasetWatch: getEnvAsBool("DATASET_WATCH", false),
		MMDBPath:     getEnv("MMDB_PATH", ""),

		MySQLDSN: getEnv("MYSQL_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
	}
}

// Validate checks the loaded values against the struct tags above
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
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

// getEnvAsBool accepts anything strconv.ParseBool does ("1", "true", "FALSE", ...)
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

// getEnvAsDuration reads a Go duration string ("3s", "500ms").
// A bare integer is taken as seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
