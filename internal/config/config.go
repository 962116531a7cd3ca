package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBDriver   string // "postgres" or "sqlite"
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	DBPath     string // sqlite only

	// Dispatch pacing
	MinSendDelay    time.Duration
	MaxSendDelay    time.Duration
	QuietHoursStart string
	QuietHoursEnd   string
	QuietPause      time.Duration

	// Content variation default; a submission may override it
	VariationEnabled bool

	// Scheduled batch promotion
	PromoteInterval  time.Duration
	PromoteBatchSize int
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "wasender"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "wasender"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "./wasender.db"),

		MinSendDelay:    getDuration("MIN_SEND_DELAY", 50*time.Second),
		MaxSendDelay:    getDuration("MAX_SEND_DELAY", 100*time.Second),
		QuietHoursStart: getEnv("QUIET_HOURS_START", "23:00"),
		QuietHoursEnd:   getEnv("QUIET_HOURS_END", "08:30"),
		QuietPause:      getDuration("QUIET_PAUSE", 5*time.Minute),

		VariationEnabled: getBool("VARIATION_ENABLED", true),

		PromoteInterval:  getDuration("PROMOTE_INTERVAL", time.Minute),
		PromoteBatchSize: getInt("PROMOTE_BATCH_SIZE", 10),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration for %s, using default", key)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid integer for %s, using default", key)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: invalid boolean for %s, using default", key)
	}
	return fallback
}
