package smoothing

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/lineplan/core/model"
)

// Summarize reduces the grid to one DailySummary per date, ordered by date.
// It reads the current grid state on every call.
func Summarize(g *model.Grid) []model.DailySummary {
	dates := g.Dates()
	out := make([]model.DailySummary, 0, len(dates))
	for _, d := range dates {
		wd, _ := model.WeekdayOf(d)
		s := model.DailySummary{Date: d, Weekday: wd}
		for i, e := range g.Day(d) {
			s.TotalHours += e.Hours
			if e.Hours > 0 {
				s.ActiveLineCount++
			}
			if i == 0 || e.Hours > s.MaxLineHours {
				s.MaxLineHours = e.Hours
			}
			if e.PersonnelIntensive {
				s.PersonnelIntensiveCount++
			}
		}
		out = append(out, s)
	}
	return out
}

// Totals extracts the daily totals in date order.
func Totals(summaries []model.DailySummary) []float64 {
	out := make([]float64, len(summaries))
	for i, s := range summaries {
		out[i] = s.TotalHours
	}
	return out
}

// DailyStats returns the mean and sample standard deviation of the daily
// totals. With fewer than two dates the deviation is zero.
func DailyStats(summaries []model.DailySummary) (mean, std float64) {
	totals := Totals(summaries)
	if len(totals) == 0 {
		return 0, 0
	}
	if len(totals) < 2 {
		return totals[0], 0
	}
	mean, std = stat.MeanStdDev(totals, nil)
	return mean, std
}

// variance is the sample variance of the daily totals, zero below two dates.
func variance(totals []float64) float64 {
	if len(totals) < 2 {
		return 0
	}
	return stat.Variance(totals, nil)
}

func spread(totals []float64) float64 {
	if len(totals) == 0 {
		return 0
	}
	return floats.Max(totals) - floats.Min(totals)
}
