// Package runlog persists the outcome of smoothing runs so planners can
// audit which hours were moved and why.
package runlog

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/lineplan/core/model"
)

// RunRecord captures one optimizer run.
type RunRecord struct {
	ID           string                  `json:"id"`
	Timestamp    time.Time               `json:"timestamp"`
	Week         string                  `json:"week"`
	MaxTransfers int                     `json:"max_transfers"`
	Stop         string                  `json:"stop"`
	Iterations   int                     `json:"iterations"`
	Rejected     int                     `json:"rejected"`
	Transfers    []model.AppliedTransfer `json:"transfers"`
	Improvement  model.Improvement       `json:"improvement"`
}

// LogQuery defines filters for retrieving records. Zero values match everything.
type LogQuery struct {
	Start time.Time
	End   time.Time
	Week  string
	// Line keeps runs that moved hours of this line.
	Line string
}

// Matches reports whether rec passes every filter of q.
func (q LogQuery) Matches(rec RunRecord) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.Week != "" && rec.Week != q.Week {
		return false
	}
	if q.Line == "" {
		return true
	}
	for _, t := range rec.Transfers {
		if t.Line == q.Line {
			return true
		}
	}
	return false
}

// LogStore persists RunRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q LogQuery) ([]RunRecord, error)
	Close() error
}

// Config selects the store backend.
type Config struct {
	// Backend is "jsonl", "rotating" or "sqlite".
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "runs.jsonl"
	}
	if c.Backend == "rotating" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "jsonl", "rotating", "sqlite":
	default:
		return fmt.Errorf("unknown run log backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("run log path is required")
	}
	return nil
}

// Open builds the store selected by cfg.
func Open(cfg Config) (LogStore, error) {
	switch cfg.Backend {
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown run log backend %s", cfg.Backend)
	}
}
