// Package config centralises environment and runtime configuration.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port   int
	DBPath string

	SevenShiftsAPIKey     string
	SevenShiftsCompanyID  string
	SevenShiftsLocationID *int64 // default location filter, optional

	BusinessHourStart int
	BusinessHourEnd   int
}

// Load reads .env (if present) and the environment, validating required
// variables. Missing required vars are fatal.
func Load() *Config {
	// .env is a dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 intEnvOrDefault("PORT", 8080),
		DBPath:               getEnvOrDefault("DB_PATH", "labor.db"),
		SevenShiftsAPIKey:    getEnvOrFail("SEVEN_SHIFTS_API_KEY"),
		SevenShiftsCompanyID: getEnvOrFail("SEVEN_SHIFTS_COMPANY_ID"),
		BusinessHourStart:    intEnvOrDefault("BUSINESS_HOUR_START", 7),
		BusinessHourEnd:      intEnvOrDefault("BUSINESS_HOUR_END", 22),
	}

	if raw := os.Getenv("SEVEN_SHIFTS_LOCATION_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Fatalf("SEVEN_SHIFTS_LOCATION_ID must be numeric, got %q", raw)
		}
		cfg.SevenShiftsLocationID = &id
	}

	return cfg
}

func getEnvOrFail(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("environment variable %s is required but not set", key)
	}
	return val
}

func getEnvOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func intEnvOrDefault(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("environment variable %s must be numeric, got %q", key, raw)
	}
	return val
}
