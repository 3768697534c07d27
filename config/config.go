package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mtofleet/fleet-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Config holds application configuration values
type Config struct {
	ServerPort        string
	JWTSecret         string
	JWTExpiration     time.Duration
	RefreshExpiration time.Duration
	DatabaseDir       string
	DatabaseFile      string
	CORSOrigin        string

	// Global rate limit applied to every /api request, on top of any
	// per-endpoint policy from the route table.
	RateLimitWindow time.Duration
	RateLimitMax    int
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	port := getEnv("SERVER_PORT", ":8080")
	jwtSecret := getEnv("JWT_SECRET", "")
	jwtExpHoursStr := getEnv("JWT_EXPIRATION_HOURS", "24")
	refreshExpHoursStr := getEnv("REFRESH_EXPIRATION_HOURS", "720")
	dbDir := getEnv("DATABASE_DIRECTORY", "data")
	dbFile := getEnv("DATABASE_FILE", "fleet.db")
	corsOrigin := getEnv("CORS_ORIGIN", "http://localhost:3000")
	rateWindowSecStr := getEnv("RATE_LIMIT_WINDOW_SECONDS", "900")
	rateMaxStr := getEnv("RATE_LIMIT_MAX", "100")

	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable must be set")
	}

	jwtExpHours, err := strconv.Atoi(jwtExpHoursStr)
	if err != nil || jwtExpHours <= 0 {
		customLog.Warnf("Invalid JWT_EXPIRATION_HOURS '%s'. Using default 24h. Error: %v", jwtExpHoursStr, err)
		jwtExpHours = 24
	}

	refreshExpHours, err := strconv.Atoi(refreshExpHoursStr)
	if err != nil || refreshExpHours <= 0 {
		customLog.Warnf("Invalid REFRESH_EXPIRATION_HOURS '%s'. Using default 720h. Error: %v", refreshExpHoursStr, err)
		refreshExpHours = 720
	}

	rateWindowSec, err := strconv.Atoi(rateWindowSecStr)
	if err != nil || rateWindowSec <= 0 {
		customLog.Warnf("Invalid RATE_LIMIT_WINDOW_SECONDS '%s'. Using default 900s. Error: %v", rateWindowSecStr, err)
		rateWindowSec = 900
	}

	rateMax, err := strconv.Atoi(rateMaxStr)
	if err != nil || rateMax <= 0 {
		customLog.Warnf("Invalid RATE_LIMIT_MAX '%s'. Using default 100. Error: %v", rateMaxStr, err)
		rateMax = 100
	}

	cfg := &Config{
		ServerPort:        port,
		JWTSecret:         jwtSecret,
		JWTExpiration:     time.Hour * time.Duration(jwtExpHours),
		RefreshExpiration: time.Hour * time.Duration(refreshExpHours),
		DatabaseDir:       dbDir,
		DatabaseFile:      dbFile,
		CORSOrigin:        corsOrigin,
		RateLimitWindow:   time.Second * time.Duration(rateWindowSec),
		RateLimitMax:      rateMax,
	}

	customLog.Printf("Configuration loaded successfully. Port: %s, JWT Exp: %v", cfg.ServerPort, cfg.JWTExpiration)
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
