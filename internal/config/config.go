// Package config reads application configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/metcalfc/aloud/internal/text"
	"github.com/metcalfc/aloud/internal/tts"
)

// Playback modes.
const (
	ModeLive = "live" // incremental synthesis, word-level resume
	ModeClip = "clip" // pre-rendered clips, seconds-level resume
)

// Config holds all application configuration.
type Config struct {
	// TTS settings
	PiperPath    string
	PiperModel   string
	DefaultVoice string
	Rate         float64

	// Playback settings
	Mode        string
	MinChunkLen int

	// Control API settings; the server is disabled when APIAddr is empty.
	APIAddr     string
	BearerToken string

	// Logging settings
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		PiperPath:    getEnvString("PIPER_PATH", "piper"),
		PiperModel:   os.Getenv("PIPER_MODEL"),
		DefaultVoice: os.Getenv("ALOUD_VOICE"),
		Rate:         getEnvFloat("ALOUD_RATE", 1.0),

		Mode:        getEnvString("ALOUD_MODE", ModeLive),
		MinChunkLen: getEnvInt("ALOUD_MIN_CHUNK", text.DefaultMinChunkLen),

		APIAddr:     os.Getenv("ALOUD_API_ADDR"),
		BearerToken: os.Getenv("ALOUD_API_TOKEN"),

		LogLevel:  getEnvString("LOG_LEVEL", "info"),
		LogFormat: getEnvString("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AuthDisabled returns true if bearer token authentication is disabled.
func (c *Config) AuthDisabled() bool {
	return c.BearerToken == ""
}

// Validate checks configuration values.
func (c *Config) Validate() error {
	if c.Mode != ModeLive && c.Mode != ModeClip {
		return errors.New("ALOUD_MODE must be one of: live, clip")
	}

	if c.Rate < tts.MinRate || c.Rate > tts.MaxRate {
		return errors.New("ALOUD_RATE must be between 0.5 and 2.0")
	}

	if c.MinChunkLen < 1 {
		return errors.New("ALOUD_MIN_CHUNK must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.LogFormat] {
		return errors.New("LOG_FORMAT must be one of: text, json")
	}

	return nil
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns the environment variable as a float or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
