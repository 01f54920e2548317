// Package scenarios replays planning weeks described in YAML through the
// optimizer and checks the outcome.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/smoothing"
)

// LineDef lists the hours of one line from Monday to Friday.
type LineDef struct {
	Name      string    `yaml:"name"`
	Hours     []float64 `yaml:"hours"`
	Personnel []bool    `yaml:"personnel,omitempty"`
}

// Settings overrides optimizer defaults. Zero values keep the default.
type Settings struct {
	CapacityHours      float64 `yaml:"capacity_hours,omitempty"`
	IdleThresholdHours float64 `yaml:"idle_threshold_hours,omitempty"`
	MaxPersonnelLines  int     `yaml:"max_personnel_lines,omitempty"`
	PeakSigma          float64 `yaml:"peak_sigma,omitempty"`
	MinDonorHours      float64 `yaml:"min_donor_hours,omitempty"`
	TransferFraction   float64 `yaml:"transfer_fraction,omitempty"`
	MaxTransferHours   float64 `yaml:"max_transfer_hours,omitempty"`
	RetryRejected      bool    `yaml:"retry_rejected,omitempty"`
	RequireImprovement bool    `yaml:"require_improvement,omitempty"`
}

// TransferDef is an expected committed transfer.
type TransferDef struct {
	Line   string  `yaml:"line"`
	Peak   string  `yaml:"peak"`
	Valley string  `yaml:"valley"`
	Hours  float64 `yaml:"hours"`
}

// Expected holds the checks of a scenario. Nil fields are not checked.
type Expected struct {
	Applied               *int          `yaml:"applied,omitempty"`
	Rejected              *int          `yaml:"rejected,omitempty"`
	Iterations            *int          `yaml:"iterations,omitempty"`
	Stop                  string        `yaml:"stop,omitempty"`
	MaxSmoothedViolations *int          `yaml:"max_smoothed_violations,omitempty"`
	VarianceReduced       *bool         `yaml:"variance_reduced,omitempty"`
	Transfers             []TransferDef `yaml:"transfers,omitempty"`
}

type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	WeekStart   string    `yaml:"week_start"`
	Budget      int       `yaml:"budget"`
	Settings    Settings  `yaml:"settings,omitempty"`
	Lines       []LineDef `yaml:"lines"`
	Expected    Expected  `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Rows expands the line definitions into plan rows.
func (s *Scenario) Rows() ([]model.Row, error) {
	start, err := time.Parse(time.DateOnly, s.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("week_start: %w", err)
	}
	var rows []model.Row
	for _, l := range s.Lines {
		if len(l.Personnel) > 0 && len(l.Personnel) != len(l.Hours) {
			return nil, fmt.Errorf("line %s: %d personnel flags for %d days", l.Name, len(l.Personnel), len(l.Hours))
		}
		for i, h := range l.Hours {
			r := model.Row{Date: start.AddDate(0, 0, i), Line: l.Name, Hours: h}
			if len(l.Personnel) > 0 {
				r.PersonnelIntensive = l.Personnel[i]
			}
			rows = append(rows, r)
		}
	}
	return rows, nil
}

// Config returns the optimizer configuration with the scenario overrides.
func (s *Scenario) Config() smoothing.Config {
	st := s.Settings
	cfg := smoothing.Config{
		MaxTransfers:       s.Budget,
		CapacityHours:      st.CapacityHours,
		IdleThresholdHours: st.IdleThresholdHours,
		MaxPersonnelLines:  st.MaxPersonnelLines,
		PeakSigma:          st.PeakSigma,
		MinDonorHours:      st.MinDonorHours,
		TransferFraction:   st.TransferFraction,
		MaxTransferHours:   st.MaxTransferHours,
		RetryRejected:      st.RetryRejected,
		RequireImprovement: st.RequireImprovement,
	}
	cfg.SetDefaults()
	return cfg
}
