// Package config loads engine configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the runtime configuration shared by the engine binaries.
type Config struct {
	// DBPath locates the SQLite profile database.
	DBPath string `env:"LIFEQUEST_DB" envDefault:"lifequest.db"`
	// ClassifierURL points at the remote activity classifier. Empty keeps
	// classification on the keyword fallback.
	ClassifierURL string `env:"LIFEQUEST_CLASSIFIER_URL"`
	// PerkCatalogPath optionally overrides the built-in perk catalog.
	PerkCatalogPath string `env:"LIFEQUEST_PERK_CATALOG"`
	// QuarterlyDays and AnnualDays override the active-day requirements
	// for the periodic awards; 0 keeps the defaults.
	QuarterlyDays int `env:"LIFEQUEST_QUARTERLY_DAYS" envDefault:"0"`
	AnnualDays    int `env:"LIFEQUEST_ANNUAL_DAYS" envDefault:"0"`
	// RecalWindowDays bounds the recalibration observation window.
	RecalWindowDays int `env:"LIFEQUEST_RECAL_WINDOW_DAYS" envDefault:"14"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
