// Package config reads the client's settings from the environment once at
// startup.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults
const (
	DefaultServerURL       = "http://localhost:8000"
	DefaultRefreshInterval = 30 * time.Second
	DefaultTickInterval    = time.Second
	DefaultPhraseInterval  = 12 * time.Second
)

// Config holds everything the engine needs from the outside world.
type Config struct {
	ServerURL string // base URL of the pet record/chat API
	Token     string // opaque bearer token; account management is not ours
	DataDir   string // where the cooldown map and cached aggregate live

	RefreshInterval time.Duration // poll period for passive stat decay
	TickInterval    time.Duration // cooldown countdown redraw period
	PhraseInterval  time.Duration // idle phrase rotation period
}

// FromEnv builds a Config from PETMATE_* variables, falling back to
// defaults. Unset values are never an error.
func FromEnv() Config {
	cfg := Config{
		ServerURL:       envOr("PETMATE_SERVER_URL", DefaultServerURL),
		Token:           os.Getenv("PETMATE_TOKEN"),
		DataDir:         os.Getenv("PETMATE_DATA_DIR"),
		RefreshInterval: envDuration("PETMATE_REFRESH_SECONDS", DefaultRefreshInterval),
		TickInterval:    envDuration("PETMATE_TICK_SECONDS", DefaultTickInterval),
		PhraseInterval:  envDuration("PETMATE_PHRASE_SECONDS", DefaultPhraseInterval),
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Printf("config: no home directory (%v), state will not persist", err)
		} else {
			cfg.DataDir = filepath.Join(home, ".config", "petmate")
		}
	}
	return cfg
}

// CooldownPath is the persisted cooldown map file, or "" when persistence is
// unavailable.
func (c Config) CooldownPath() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, "cooldowns.json")
}

// CachePath is the cached last-known pet aggregate file, or "".
func (c Config) CachePath() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, "pet.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		log.Printf("config: ignoring %s=%q", key, v)
		return fallback
	}
	return time.Duration(secs) * time.Second
}
