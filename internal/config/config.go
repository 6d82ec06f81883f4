// Package config handles application configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all settings for the placement app.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog"`
	Session  SessionConfig  `yaml:"session"`
	Reticle  ReticleConfig  `yaml:"reticle"`
	Lighting LightingConfig `yaml:"lighting"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Sim      SimConfig      `yaml:"sim"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ModelConfig is one placeable catalog entry.
type ModelConfig struct {
	Source string  `yaml:"source"`
	Scale  float32 `yaml:"scale"`
}

// CatalogConfig lists the furniture models in palette order.
type CatalogConfig struct {
	Models []ModelConfig `yaml:"models"`
}

// SessionConfig holds AR session settings.
type SessionConfig struct {
	ReferenceSpace   string   `yaml:"reference_space"`
	RequiredFeatures []string `yaml:"required_features"`
	OptionalFeatures []string `yaml:"optional_features"`
	// OwnsSurface releases the rendering surface when the session ends.
	OwnsSurface bool `yaml:"owns_surface"`
}

// ReticleConfig holds reticle ring geometry.
type ReticleConfig struct {
	InnerRadius float32 `yaml:"inner_radius"`
	OuterRadius float32 `yaml:"outer_radius"`
	Segments    int     `yaml:"segments"`
}

// LightingConfig holds the default hemisphere light.
type LightingConfig struct {
	SkyColor    uint32     `yaml:"sky_color"`
	GroundColor uint32     `yaml:"ground_color"`
	Intensity   float32    `yaml:"intensity"`
	Position    [3]float32 `yaml:"position"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// SimConfig holds settings for the scripted headless runtime.
type SimConfig struct {
	Scenario string `yaml:"scenario"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock six-piece furniture catalog.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Models: []ModelConfig{
				{Source: "./1.glb", Scale: 0.01},
				{Source: "./2.glb", Scale: 0.01},
				{Source: "./3.glb", Scale: 0.005},
				{Source: "./4.glb", Scale: 0.4},
				{Source: "./5.glb", Scale: 0.3},
				{Source: "./6.glb", Scale: 0.01},
			},
		},
		Session: SessionConfig{
			ReferenceSpace:   "viewer",
			RequiredFeatures: []string{"hit-test"},
			OptionalFeatures: []string{"dom-overlay", "light-estimation"},
			OwnsSurface:      true,
		},
		Reticle: ReticleConfig{
			InnerRadius: 0.15,
			OuterRadius: 0.2,
			Segments:    32,
		},
		Lighting: LightingConfig{
			SkyColor:    0xffffff,
			GroundColor: 0xbbbbff,
			Intensity:   1,
			Position:    [3]float32{0.5, 1, 0.25},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ErrInvalid marks configuration values the app cannot run with.
var ErrInvalid = errors.New("invalid config")

// Validate checks the catalog and reticle settings.
func (c *Config) Validate() error {
	if len(c.Catalog.Models) == 0 {
		return fmt.Errorf("%w: catalog has no models", ErrInvalid)
	}
	for i, m := range c.Catalog.Models {
		if m.Source == "" {
			return fmt.Errorf("%w: catalog model %d has no source", ErrInvalid, i)
		}
		if m.Scale <= 0 {
			return fmt.Errorf("%w: catalog model %d has non-positive scale %v", ErrInvalid, i, m.Scale)
		}
	}
	if c.Reticle.InnerRadius < 0 || c.Reticle.OuterRadius <= c.Reticle.InnerRadius {
		return fmt.Errorf("%w: reticle radii %v..%v", ErrInvalid, c.Reticle.InnerRadius, c.Reticle.OuterRadius)
	}
	if c.Reticle.Segments < 3 {
		return fmt.Errorf("%w: reticle needs at least 3 segments, got %d", ErrInvalid, c.Reticle.Segments)
	}
	if c.Session.ReferenceSpace == "" {
		return fmt.Errorf("%w: empty reference space", ErrInvalid)
	}
	return nil
}
