// Package config loads runtime configuration from environment
// variables.  Required variables are enforced at startup; a missing
// one is a fatal error, never a silent default.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field maps to
// one environment variable.
type Config struct {
	Env       string // application environment (dev/test/prod)
	Port      string // HTTP port to listen on
	DBUser    string
	DBPass    string // optional, empty allowed
	DBHost    string
	DBPort    string
	DBName    string
	JWTSecret string

	AccessTTLMin   int // access token lifetime in minutes
	RefreshTTLDays int // refresh token lifetime in days
	BcryptCost     int

	// Warehouse coordinates anchor the delivery-fee distance
	// calculation.  Delivery is priced from here to the customer's
	// postcode centroid.
	WarehouseLat float64
	WarehouseLng float64

	SessionTTLMin int // wizard session lifetime in minutes

	AMQPURL string // optional, empty disables event publishing
}

// Load reads the configuration from the environment.  Missing required
// variables abort the process with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		WarehouseLat:   mustFloat("WAREHOUSE_LAT"),
		WarehouseLng:   mustFloat("WAREHOUSE_LNG"),
		SessionTTLMin:  mustInt("WIZARD_SESSION_TTL_MIN"),
		AMQPURL:        os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func mustFloat(key string) float64 {
	s := must(key)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Fatalf("invalid float for %s: %q", key, s)
	}
	return f
}
