package smoothing

import (
	"time"

	"github.com/kilianp07/lineplan/core/model"
)

// Rules holds the three operational constraints checked per date.
type Rules struct {
	CapacityHours      float64
	IdleThresholdHours float64
	MaxPersonnelLines  int
}

// DefaultRules returns capacity 24h, idle below 1h and one personnel-intensive line.
func DefaultRules() Rules {
	return DefaultConfig().Rules()
}

// Check evaluates the rules for one date against the current grid:
//   - capacity: no line exceeds CapacityHours
//   - idle: at least one line runs below IdleThresholdHours
//   - personnel: at most MaxPersonnelLines lines are personnel-intensive
func (r Rules) Check(g *model.Grid, date time.Time) model.ConstraintResult {
	var res model.ConstraintResult
	for i, e := range g.Day(date) {
		if i == 0 || e.Hours > res.MaxLineHours {
			res.MaxLineHours = e.Hours
		}
		if e.Hours < r.IdleThresholdHours {
			res.IdleLineCount++
		}
		if e.PersonnelIntensive {
			res.PersonnelIntensiveCount++
		}
	}
	res.CapacityOK = res.MaxLineHours <= r.CapacityHours
	res.IdleOK = res.IdleLineCount >= 1
	res.PersonnelOK = res.PersonnelIntensiveCount <= r.MaxPersonnelLines
	res.AllOK = res.CapacityOK && res.IdleOK && res.PersonnelOK
	return res
}

// Violations counts the dates of g failing at least one rule.
func (r Rules) Violations(g *model.Grid) int {
	n := 0
	for _, d := range g.Dates() {
		if !r.Check(g, d).AllOK {
			n++
		}
	}
	return n
}
