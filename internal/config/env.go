package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the settings that can come from the environment.
type envOverrides struct {
	LogLevel       string `env:"MIDGARD_AR_LOG_LEVEL"`
	LogFile        string `env:"MIDGARD_AR_LOG_FILE"`
	ReferenceSpace string `env:"MIDGARD_AR_REFERENCE_SPACE"`
	MetricsAddr    string `env:"MIDGARD_AR_METRICS_ADDR"`
	Scenario       string `env:"MIDGARD_AR_SCENARIO"`
}

// applyEnv applies environment overrides to the config.
func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if o.ReferenceSpace != "" {
		cfg.Session.ReferenceSpace = o.ReferenceSpace
	}
	if o.MetricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = o.MetricsAddr
	}
	if o.Scenario != "" {
		cfg.Sim.Scenario = o.Scenario
	}
	return nil
}
