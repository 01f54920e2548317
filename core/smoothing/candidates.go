package smoothing

import (
	"math"
	"sort"
	"time"

	"github.com/kilianp07/lineplan/core/model"
)

// stdEpsilon treats near-zero deviations left by float summation as a uniform grid.
const stdEpsilon = 1e-9

// Params tunes peak/valley detection and transfer sizing.
type Params struct {
	PeakSigma        float64
	MinDonorHours    float64
	TransferFraction float64
	MaxTransferHours float64
}

// DefaultParams returns sigma 0.5, donors above 4h, 30% moves capped at 6h.
func DefaultParams() Params {
	return DefaultConfig().Params()
}

// Generator proposes peak-to-valley transfers for the current grid state.
type Generator struct {
	Rules  Rules
	Params Params
}

// NewGenerator builds a Generator.
func NewGenerator(r Rules, p Params) Generator {
	return Generator{Rules: r, Params: p}
}

// Generate returns every feasible candidate, largest transfer first. Ties are
// broken by peak date, valley date and line so that runs are reproducible.
func (gen Generator) Generate(g *model.Grid) []model.TransferCandidate {
	summaries := Summarize(g)
	mean, std := DailyStats(summaries)
	if std <= stdEpsilon {
		return nil
	}
	peakThreshold := mean + gen.Params.PeakSigma*std
	valleyThreshold := mean - gen.Params.PeakSigma*std

	var peaks, valleys []model.DailySummary
	for _, s := range summaries {
		switch {
		case s.TotalHours > peakThreshold:
			peaks = append(peaks, s)
		case s.TotalHours < valleyThreshold:
			valleys = append(valleys, s)
		}
	}

	var out []model.TransferCandidate
	for _, peak := range peaks {
		donors := gen.donors(g, peak.Date)
		for _, valley := range valleys {
			if peak.Weekday == valley.Weekday {
				continue
			}
			for _, d := range donors {
				if c, ok := gen.propose(g, d, valley.Date); ok {
					out = append(out, c)
				}
			}
		}
	}
	SortCandidates(out)
	return out
}

// donors lists the lines of date able to give hours. Lines without the
// personnel-intensive flag are preferred; flagged lines are used only when no
// other line qualifies.
func (gen Generator) donors(g *model.Grid, date time.Time) []model.ScheduleEntry {
	var regular, personnel []model.ScheduleEntry
	for _, e := range g.Day(date) {
		if e.Hours <= gen.Params.MinDonorHours {
			continue
		}
		if e.PersonnelIntensive {
			personnel = append(personnel, e)
		} else {
			regular = append(regular, e)
		}
	}
	if len(regular) > 0 {
		return regular
	}
	return personnel
}

func (gen Generator) propose(g *model.Grid, donor model.ScheduleEntry, valleyDate time.Time) (model.TransferCandidate, bool) {
	target, ok := g.Cell(valleyDate, donor.Line)
	if !ok {
		return model.TransferCandidate{}, false
	}
	hours := math.Min(donor.Hours*gen.Params.TransferFraction, gen.Params.MaxTransferHours)
	valleyAfter := target.Hours + hours
	peakAfter := donor.Hours - hours
	if valleyAfter > gen.Rules.CapacityHours || peakAfter < gen.Rules.IdleThresholdHours {
		return model.TransferCandidate{}, false
	}
	return model.TransferCandidate{
		PeakDate:           donor.Date,
		ValleyDate:         target.Date,
		Line:               donor.Line,
		HoursToTransfer:    hours,
		PeakBefore:         donor.Hours,
		PeakAfter:          peakAfter,
		ValleyBefore:       target.Hours,
		ValleyAfter:        valleyAfter,
		PersonnelIntensive: donor.PersonnelIntensive,
	}, true
}

// SortCandidates orders candidates by hours descending, then peak date,
// valley date and line.
func SortCandidates(cs []model.TransferCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.HoursToTransfer != b.HoursToTransfer {
			return a.HoursToTransfer > b.HoursToTransfer
		}
		if !a.PeakDate.Equal(b.PeakDate) {
			return a.PeakDate.Before(b.PeakDate)
		}
		if !a.ValleyDate.Equal(b.ValleyDate) {
			return a.ValleyDate.Before(b.ValleyDate)
		}
		return a.Line < b.Line
	})
}
