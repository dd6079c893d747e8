// Package config loads service configuration: an optional YAML file for
// draft defaults, with environment variables taking precedence for
// deployment-specific settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full draftd configuration.
type Config struct {
	Port    string `yaml:"port"`
	NATSURL string `yaml:"nats_url"`

	Draft struct {
		Rounds         int `yaml:"rounds"`
		TimePerPickSec int `yaml:"time_per_pick_sec"`
	} `yaml:"draft"`

	Scheduler struct {
		BatchSize  int32 `yaml:"batch_size"`
		NumWorkers int   `yaml:"num_workers"`
	} `yaml:"scheduler"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.Port = "8080"
	cfg.NATSURL = "nats://localhost:4222"
	cfg.Draft.Rounds = 10
	cfg.Draft.TimePerPickSec = 45
	cfg.Scheduler.BatchSize = 16
	cfg.Scheduler.NumWorkers = 10
	return cfg
}

// Load builds the configuration: defaults, then the YAML file at path (if
// it exists), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.NATSURL = getEnv("NATS_URL", cfg.NATSURL)
	cfg.Draft.Rounds = getEnvAsInt("DRAFT_ROUNDS", cfg.Draft.Rounds)
	cfg.Draft.TimePerPickSec = getEnvAsInt("DRAFT_TIME_PER_PICK_SEC", cfg.Draft.TimePerPickSec)

	if cfg.Draft.Rounds <= 0 {
		return cfg, fmt.Errorf("draft rounds must be positive, got %d", cfg.Draft.Rounds)
	}
	if cfg.Draft.TimePerPickSec <= 0 {
		return cfg, fmt.Errorf("time per pick must be positive, got %d", cfg.Draft.TimePerPickSec)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
