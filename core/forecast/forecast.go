// Package forecast produces a weekday-average baseline plan from history.
//
// For every (weekday, line) pair the historical hours are averaged and the
// share of personnel-intensive days is recorded. Future business days get
// the average of their weekday; the personnel flag is set when the share
// exceeds a threshold.
package forecast

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/lineplan/core/model"
)

// HighConfidenceDays is the number of observations above which an average
// is reported with high confidence.
const HighConfidenceDays = 3

// Config controls forecast generation.
type Config struct {
	Weeks              int     `json:"weeks"`
	PersonnelThreshold float64 `json:"personnel_threshold"`
}

// SetDefaults applies four weeks and a 50% personnel threshold.
func (c *Config) SetDefaults() {
	if c.Weeks == 0 {
		c.Weeks = 4
	}
	if c.PersonnelThreshold == 0 {
		c.PersonnelThreshold = 0.5
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Weeks < 1 {
		return fmt.Errorf("forecast: weeks must be positive")
	}
	if c.PersonnelThreshold < 0 || c.PersonnelThreshold > 1 {
		return fmt.Errorf("forecast: personnel_threshold must be in [0, 1]")
	}
	return nil
}

// WeekdayAverage aggregates the history of one line on one weekday.
type WeekdayAverage struct {
	Weekday       model.Weekday `json:"weekday"`
	Line          string        `json:"line"`
	AvgHours      float64       `json:"avg_hours"`
	StdHours      float64       `json:"std_hours"`
	Count         int           `json:"count_days"`
	PersonnelRate float64       `json:"personnel_intensive_rate"`
	MinHours      float64       `json:"min_hours"`
	MaxHours      float64       `json:"max_hours"`
}

// Confidence is "high" with at least HighConfidenceDays observations.
func (a WeekdayAverage) Confidence() string {
	if a.Count >= HighConfidenceDays {
		return "high"
	}
	return "low"
}

type groupKey struct {
	wd   model.Weekday
	line string
}

// Averages groups history by weekday and line, ordered Mon..Fri then line.
// Rows on weekends are ignored. The deviation is the sample deviation, zero
// for a single observation.
func Averages(history []model.Row) []WeekdayAverage {
	hours := make(map[groupKey][]float64)
	flags := make(map[groupKey]int)
	for _, r := range history {
		wd, ok := model.WeekdayOf(r.Date)
		if !ok {
			continue
		}
		k := groupKey{wd: wd, line: r.Line}
		hours[k] = append(hours[k], r.Hours)
		if r.PersonnelIntensive {
			flags[k]++
		}
	}
	out := make([]WeekdayAverage, 0, len(hours))
	for k, hs := range hours {
		a := WeekdayAverage{
			Weekday:       k.wd,
			Line:          k.line,
			AvgHours:      stat.Mean(hs, nil),
			Count:         len(hs),
			PersonnelRate: float64(flags[k]) / float64(len(hs)),
			MinHours:      floats.Min(hs),
			MaxHours:      floats.Max(hs),
		}
		if len(hs) > 1 {
			a.StdHours = stat.StdDev(hs, nil)
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weekday != out[j].Weekday {
			return out[i].Weekday.Index() < out[j].Weekday.Index()
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// StartOfWeek returns the Monday on or after t.
func StartOfWeek(t time.Time) time.Time {
	d := model.Day(t)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// Generate emits one row per business day and line for the given number of
// weeks, starting on the Monday on or after start.
func Generate(averages []WeekdayAverage, start time.Time, weeks int, threshold float64) []model.Row {
	byDay := make(map[model.Weekday][]WeekdayAverage)
	for _, a := range averages {
		byDay[a.Weekday] = append(byDay[a.Weekday], a)
	}
	first := StartOfWeek(start)
	var out []model.Row
	for w := 0; w < weeks; w++ {
		for i, wd := range model.BusinessWeek {
			d := first.AddDate(0, 0, 7*w+i)
			for _, a := range byDay[wd] {
				out = append(out, model.Row{
					Date:               d,
					Weekday:            wd,
					Line:               a.Line,
					Hours:              a.AvgHours,
					PersonnelIntensive: a.PersonnelRate > threshold,
				})
			}
		}
	}
	return out
}

// SplitWeeks groups rows by ISO week in chronological order so that each
// week can be smoothed on its own.
func SplitWeeks(rows []model.Row) [][]model.Row {
	idx := make(map[string]int)
	var labels []string
	var out [][]model.Row
	for _, r := range rows {
		l := model.WeekLabel(r.Date)
		i, ok := idx[l]
		if !ok {
			i = len(out)
			idx[l] = i
			labels = append(labels, l)
			out = append(out, nil)
		}
		out[i] = append(out[i], r)
	}
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return labels[order[a]] < labels[order[b]] })
	sorted := make([][]model.Row, len(out))
	for i, o := range order {
		sorted[i] = out[o]
	}
	return sorted
}
