package smoothing

import "fmt"

// Config defines smoothing-related settings.
type Config struct {
	// MaxTransfers bounds the number of optimizer iterations.
	MaxTransfers int `json:"max_transfers"`
	// CapacityHours is the maximum hours a line may run on one date.
	CapacityHours float64 `json:"capacity_hours"`
	// IdleThresholdHours marks a line as idle below this value.
	IdleThresholdHours float64 `json:"idle_threshold_hours"`
	// MaxPersonnelLines is the number of personnel-intensive lines allowed per date.
	MaxPersonnelLines int `json:"max_personnel_lines"`
	// PeakSigma scales the standard deviation used to classify peaks and valleys.
	PeakSigma float64 `json:"peak_sigma"`
	// MinDonorHours is the strict lower bound for a line to donate hours.
	MinDonorHours float64 `json:"min_donor_hours"`
	// TransferFraction is the share of the donor hours proposed for a move.
	TransferFraction float64 `json:"transfer_fraction"`
	// MaxTransferHours caps a single move.
	MaxTransferHours float64 `json:"max_transfer_hours"`
	// RetryRejected lets the generator re-propose reverted candidates.
	RetryRejected bool `json:"retry_rejected"`
	// RequireImprovement reverts commits that do not lower daily-total variance.
	RequireImprovement bool `json:"require_improvement"`
	// AllowMultiWeek accepts input grids spanning several ISO weeks.
	AllowMultiWeek bool `json:"allow_multi_week"`
}

// DefaultConfig returns the operational defaults of the planning team.
func DefaultConfig() Config {
	c := Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.MaxTransfers == 0 {
		c.MaxTransfers = 5
	}
	if c.CapacityHours == 0 {
		c.CapacityHours = 24
	}
	if c.IdleThresholdHours == 0 {
		c.IdleThresholdHours = 1
	}
	if c.MaxPersonnelLines == 0 {
		c.MaxPersonnelLines = 1
	}
	if c.PeakSigma == 0 {
		c.PeakSigma = 0.5
	}
	if c.MinDonorHours == 0 {
		c.MinDonorHours = 4
	}
	if c.TransferFraction == 0 {
		c.TransferFraction = 0.3
	}
	if c.MaxTransferHours == 0 {
		c.MaxTransferHours = 6
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MaxTransfers < 0 {
		return fmt.Errorf("max_transfers must not be negative")
	}
	if c.CapacityHours <= 0 || c.CapacityHours > 24 {
		return fmt.Errorf("capacity_hours must be in (0, 24]")
	}
	if c.IdleThresholdHours < 0 || c.IdleThresholdHours >= c.CapacityHours {
		return fmt.Errorf("idle_threshold_hours must be in [0, capacity_hours)")
	}
	if c.MaxPersonnelLines < 0 {
		return fmt.Errorf("max_personnel_lines must not be negative")
	}
	if c.PeakSigma < 0 {
		return fmt.Errorf("peak_sigma must not be negative")
	}
	if c.TransferFraction <= 0 || c.TransferFraction > 1 {
		return fmt.Errorf("transfer_fraction must be in (0, 1]")
	}
	if c.MaxTransferHours <= 0 {
		return fmt.Errorf("max_transfer_hours must be positive")
	}
	if c.MinDonorHours < 0 {
		return fmt.Errorf("min_donor_hours must not be negative")
	}
	return nil
}

// Rules extracts the constraint rules.
func (c Config) Rules() Rules {
	return Rules{
		CapacityHours:      c.CapacityHours,
		IdleThresholdHours: c.IdleThresholdHours,
		MaxPersonnelLines:  c.MaxPersonnelLines,
	}
}

// Params extracts the generator parameters.
func (c Config) Params() Params {
	return Params{
		PeakSigma:        c.PeakSigma,
		MinDonorHours:    c.MinDonorHours,
		TransferFraction: c.TransferFraction,
		MaxTransferHours: c.MaxTransferHours,
	}
}

// Options extracts the loop options.
func (c Config) Options() Options {
	return Options{RetryRejected: c.RetryRejected, RequireImprovement: c.RequireImprovement}
}
