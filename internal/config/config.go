// Package config loads client settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store kinds.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	APIBaseURL string
	HTTP       HTTPConfig
	State      StateConfig
	Login      LoginConfig
	UI         UIConfig
	LogLevel   string
}

type HTTPConfig struct {
	Timeout time.Duration
	// RateLimit is requests per second; 0 disables pacing.
	RateLimit float64
	RateBurst int
}

type StateConfig struct {
	Store         string
	Dir           string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Namespace     string
	// Passphrase enables encryption at rest when set.
	Passphrase string
}

type LoginConfig struct {
	MaxFails int
	Window   time.Duration
	BlockFor time.Duration
}

type UIConfig struct {
	NoticeDuration         time.Duration
	DefaultSessionDuration int
}

// Load reads .env files and then the environment. With no files given the
// default .env is optional; files named explicitly must exist.
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (Config, error) {
	err := godotenv.Load(envFiles...)
	if err != nil && (len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist)) {
		return Config{}, fmt.Errorf("load env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the process environment only.
func FromEnv() Config {
	return Config{
		APIBaseURL: strings.TrimRight(getenv("ATTENDANCE_API_URL", "http://localhost:8080/api"), "/"),
		HTTP: HTTPConfig{
			Timeout:   getenvDuration("HTTP_TIMEOUT", 30*time.Second),
			RateLimit: getenvFloat("HTTP_RATE_LIMIT", 0),
			RateBurst: getenvInt("HTTP_RATE_BURST", 5),
		},
		State: StateConfig{
			Store:         strings.ToLower(getenv("ATTENDANCE_STORE", StoreFile)),
			Dir:           os.Getenv("ATTENDANCE_STATE_DIR"),
			DatabaseURL:   os.Getenv("DATABASE_URL"),
			RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getenvInt("REDIS_DB", 0),
			Namespace:     getenv("ATTENDANCE_STATE_NAMESPACE", "default"),
			Passphrase:    os.Getenv("ATTENDANCE_STATE_PASSPHRASE"),
		},
		Login: LoginConfig{
			MaxFails: getenvInt("LOGIN_MAX_FAILS", 5),
			Window:   getenvDuration("LOGIN_WINDOW", 15*time.Minute),
			BlockFor: getenvDuration("LOGIN_BLOCK_FOR", 15*time.Minute),
		},
		UI: UIConfig{
			NoticeDuration:         getenvDuration("NOTICE_DURATION", 4*time.Second),
			DefaultSessionDuration: getenvInt("DEFAULT_SESSION_DURATION_MINUTES", 60),
		},
		LogLevel: getenv("LOG_LEVEL", "warn"),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
