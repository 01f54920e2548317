package config

import (
	"fmt"

	"github.com/kilianp07/lineplan/core/runlog"
)

// LoggingConfig sets the log level and the run log storage.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level"`
	// Backend selects the run log store: "jsonl", "rotating" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the run log.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	rl := c.RunLog()
	rl.SetDefaults()
	c.Backend, c.Path, c.MaxSizeMB = rl.Backend, rl.Path, rl.MaxSizeMB
}

// Validate checks the level and the run log settings.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %s", c.Level)
	}
	return c.RunLog().Validate()
}

// RunLog returns the run log store configuration.
func (c LoggingConfig) RunLog() runlog.Config {
	return runlog.Config{
		Backend:    c.Backend,
		Path:       c.Path,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	}
}
