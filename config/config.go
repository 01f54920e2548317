// Package config loads the lineplan configuration from a YAML or JSON file
// with LP_ environment overrides (LP_SMOOTHING__MAX_TRANSFERS=8).
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/lineplan/connectors"
	"github.com/kilianp07/lineplan/core/forecast"
	"github.com/kilianp07/lineplan/core/metrics"
	"github.com/kilianp07/lineplan/core/personnel"
	"github.com/kilianp07/lineplan/core/smoothing"
	"github.com/kilianp07/lineplan/infra/kpi"
	"github.com/kilianp07/lineplan/infra/mqtt"
)

// EnvPrefix marks environment variables overriding file values. A double
// underscore separates nested keys.
const EnvPrefix = "LP_"

type Config struct {
	Smoothing smoothing.Config  `json:"smoothing"`
	Personnel personnel.Config  `json:"personnel"`
	Forecast  forecast.Config   `json:"forecast"`
	History   connectors.Config `json:"history"`
	Logging   LoggingConfig     `json:"logging"`
	Metrics   metrics.Config    `json:"metrics"`
	MQTT      mqtt.Config       `json:"mqtt"`
	KPI       kpi.Config        `json:"kpi"`
	API       APIConfig         `json:"api"`
	Sentry    SentryConfig      `json:"sentry"`
}

// Load reads path and applies environment overrides. An empty path yields
// the defaults plus overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills unset values of every section.
func (c *Config) SetDefaults() {
	c.Smoothing.SetDefaults()
	c.Forecast.SetDefaults()
	c.History.SetDefaults()
	c.Logging.SetDefaults()
	c.MQTT.SetDefaults()
	c.KPI.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section and prefixes errors with the section name.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"smoothing", c.Smoothing.Validate},
		{"personnel", c.Personnel.Validate},
		{"forecast", c.Forecast.Validate},
		{"history", c.History.Validate},
		{"logging", c.Logging.Validate},
		{"metrics", c.Metrics.Validate},
		{"mqtt", c.MQTT.Validate},
		{"api", c.API.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.name, err)
		}
	}
	return nil
}
