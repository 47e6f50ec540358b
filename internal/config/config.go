package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	LogLevel slog.Level

	RefreshInterval time.Duration
	CountdownStep   time.Duration
	ClearScreen     bool
	MaxCycles       int

	MaxPromptAttempts int

	SeedFile   string
	RandomSeed uint64
}

// Load reads the environment. Callers apply overrides and then call Validate.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel: getLogLevelEnv("LOG_LEVEL", slog.LevelInfo),

		RefreshInterval: getDurationEnv("REFRESH_INTERVAL", time.Minute),
		CountdownStep:   getDurationEnv("COUNTDOWN_STEP", time.Second),
		ClearScreen:     getBoolEnv("CLEAR_SCREEN", true),
		MaxCycles:       getIntEnv("MAX_CYCLES", 0),

		MaxPromptAttempts: getIntEnv("MAX_PROMPT_ATTEMPTS", 0),

		SeedFile:   getEnv("SEED_FILE", ""),
		RandomSeed: getUint64Env("SEED_RANDOM", 0),
	}
	return cfg, nil
}

// CountdownSteps is the number of countdown steps per refresh.
func (c *Config) CountdownSteps() int {
	return int(c.RefreshInterval / c.CountdownStep)
}

func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("REFRESH_INTERVAL must be positive")
	}
	if c.CountdownStep <= 0 {
		return errors.New("COUNTDOWN_STEP must be positive")
	}
	if c.CountdownStep > c.RefreshInterval {
		return fmt.Errorf("COUNTDOWN_STEP (%s) must not exceed REFRESH_INTERVAL (%s)", c.CountdownStep, c.RefreshInterval)
	}
	if c.RefreshInterval%c.CountdownStep != 0 {
		return fmt.Errorf("REFRESH_INTERVAL (%s) must be a multiple of COUNTDOWN_STEP (%s)", c.RefreshInterval, c.CountdownStep)
	}
	if c.MaxCycles < 0 {
		return errors.New("MAX_CYCLES must not be negative")
	}
	if c.MaxPromptAttempts < 0 {
		return errors.New("MAX_PROMPT_ATTEMPTS must not be negative")
	}
	return nil
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(v string) (slog.Level, bool) {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getUint64Env(key string, defaultVal uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseUint(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getLogLevelEnv(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if level, ok := ParseLogLevel(v); ok {
		return level
	}
	return defaultVal
}
