// Package connectors defines where production history comes from. Clients
// live in connectors/clients and are selected by connectors/factory.
package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/lineplan/auth"
	"github.com/kilianp07/lineplan/core/model"
)

// HistorySource returns historical plan rows dated within [start, end].
// A zero bound is open.
type HistorySource interface {
	Fetch(ctx context.Context, start, end time.Time) ([]model.Row, error)
}

// Config selects and configures a history source.
type Config struct {
	// Type is "csv" or "erp".
	Type string `json:"type"`
	// Path is the CSV file read by the csv source.
	Path string `json:"path"`
	// URL is the ERP export endpoint returning CSV.
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout"`
	Auth    auth.Conf     `json:"auth"`
}

// SetDefaults selects the csv source and a 30 s request timeout.
func (c *Config) SetDefaults() {
	if c.Type == "" {
		c.Type = "csv"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate checks the settings required by the selected type.
func (c Config) Validate() error {
	switch c.Type {
	case "csv":
	case "erp":
		if c.URL == "" {
			return fmt.Errorf("history: url is required for erp source")
		}
		return c.Auth.Validate()
	default:
		return fmt.Errorf("history: unknown source type %s", c.Type)
	}
	return nil
}

// InRange reports whether d lies within the optional bounds.
func InRange(d, start, end time.Time) bool {
	if !start.IsZero() && d.Before(model.Day(start)) {
		return false
	}
	if !end.IsZero() && d.After(model.Day(end)) {
		return false
	}
	return true
}
