package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the structure of config.yml used by the dashboard.
// Every knob has a working default so a missing or partial file never blocks
// rendering.
type Config struct {
	Dashboard struct {
		DefaultTargetOAE  float64 `yaml:"default_target_oae"`
		TrendWeeks        int     `yaml:"trend_weeks"`
		MonthlyWeeks      int     `yaml:"monthly_weeks"`
		DailyFallbackTail int     `yaml:"daily_fallback_tail"`
	} `yaml:"dashboard"`
	Data struct {
		Dir string `yaml:"dir"`
	} `yaml:"data"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var c Config
	c.Dashboard.DefaultTargetOAE = 85.0
	c.Dashboard.TrendWeeks = 12
	c.Dashboard.MonthlyWeeks = 4
	c.Dashboard.DailyFallbackTail = 5
	c.Data.Dir = "data"
	return &c
}

// Load parses the YAML configuration file at path, layered over the defaults.
// A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info(fmt.Sprintf("No config at %s, using defaults", path))
			return c, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("Loaded config: %s", path))
	return c, nil
}

// Path resolves the config file location from CONFIG_PATH, defaulting to
// ./config.yml like the rest of the tooling expects.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config.yml"
}
