package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalidGrid is returned when the input rows cannot form a schedule grid.
var ErrInvalidGrid = errors.New("invalid input grid")

// GridError describes the row that made the grid invalid.
type GridError struct {
	Row    int // zero-based input index, -1 when not tied to a row
	Field  string
	Reason string
}

func (e *GridError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidGrid, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: row %d: %s: %s", ErrInvalidGrid, e.Row, e.Field, e.Reason)
}

func (e *GridError) Unwrap() error { return ErrInvalidGrid }

// Row is the flat record exchanged with the forecast and reporting side.
type Row struct {
	Date               time.Time `json:"date"`
	Weekday            Weekday   `json:"weekday"`
	Line               string    `json:"line"`
	Hours              float64   `json:"hours"`
	PersonnelIntensive bool      `json:"personnel_intensive"`
	// Product is only used during ingestion to resolve the personnel flag.
	Product string `json:"product,omitempty"`
}

// ScheduleEntry is one (date, line) cell of the grid.
type ScheduleEntry struct {
	Date               time.Time
	Line               string
	Hours              float64
	PersonnelIntensive bool
}

// GridOptions relaxes input validation.
type GridOptions struct {
	// AllowMultiWeek accepts dates spanning several ISO weeks.
	AllowMultiWeek bool
}

type cellKey struct {
	day  int64
	line string
}

type cell struct {
	hours     float64
	personnel bool
}

// Grid stores hours per (date, line). It is not safe for concurrent use; a
// smoothing run owns its grid exclusively.
type Grid struct {
	dates []time.Time
	lines []string
	cells map[cellKey]cell
}

// NewGrid validates rows and builds a grid. Missing (date, line) pairs are
// filled with idle zero-hour cells.
//
//gocyclo:ignore
func NewGrid(rows []Row, opts GridOptions) (*Grid, error) {
	if len(rows) == 0 {
		return nil, &GridError{Row: -1, Field: "rows", Reason: "no rows"}
	}
	g := &Grid{cells: make(map[cellKey]cell, len(rows))}
	seenDates := make(map[int64]struct{})
	seenLines := make(map[string]struct{})
	week := ""
	for i, r := range rows {
		if r.Date.IsZero() {
			return nil, &GridError{Row: i, Field: "date", Reason: "missing"}
		}
		d := Day(r.Date)
		wd, ok := WeekdayOf(d)
		if !ok {
			return nil, &GridError{Row: i, Field: "date", Reason: fmt.Sprintf("%s is not a business day", d.Format(time.DateOnly))}
		}
		if r.Weekday != "" && r.Weekday != wd {
			return nil, &GridError{Row: i, Field: "weekday", Reason: fmt.Sprintf("label %q does not match %s (%s)", r.Weekday, d.Format(time.DateOnly), wd)}
		}
		if r.Line == "" {
			return nil, &GridError{Row: i, Field: "line", Reason: "missing"}
		}
		if math.IsNaN(r.Hours) || math.IsInf(r.Hours, 0) || r.Hours < 0 {
			return nil, &GridError{Row: i, Field: "hours", Reason: fmt.Sprintf("%v is not a non-negative number", r.Hours)}
		}
		if !opts.AllowMultiWeek {
			wl := WeekLabel(d)
			if week == "" {
				week = wl
			} else if wl != week {
				return nil, &GridError{Row: i, Field: "date", Reason: fmt.Sprintf("week %s differs from %s", wl, week)}
			}
		}
		k := cellKey{day: d.Unix(), line: r.Line}
		if _, dup := g.cells[k]; dup {
			return nil, &GridError{Row: i, Field: "line", Reason: fmt.Sprintf("duplicate cell %s/%s", d.Format(time.DateOnly), r.Line)}
		}
		g.cells[k] = cell{hours: r.Hours, personnel: r.PersonnelIntensive}
		if _, ok := seenDates[k.day]; !ok {
			seenDates[k.day] = struct{}{}
			g.dates = append(g.dates, d)
		}
		if _, ok := seenLines[r.Line]; !ok {
			seenLines[r.Line] = struct{}{}
			g.lines = append(g.lines, r.Line)
		}
	}
	sort.Slice(g.dates, func(i, j int) bool { return g.dates[i].Before(g.dates[j]) })
	sort.Strings(g.lines)
	for _, d := range g.dates {
		for _, l := range g.lines {
			k := cellKey{day: d.Unix(), line: l}
			if _, ok := g.cells[k]; !ok {
				g.cells[k] = cell{}
			}
		}
	}
	return g, nil
}

// Dates returns the grid dates in ascending order.
func (g *Grid) Dates() []time.Time { return append([]time.Time(nil), g.dates...) }

// Lines returns the line identifiers in lexical order.
func (g *Grid) Lines() []string { return append([]string(nil), g.lines...) }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Hours returns the hours of a cell, zero when the cell does not exist.
func (g *Grid) Hours(date time.Time, line string) float64 {
	return g.cells[cellKey{day: Day(date).Unix(), line: line}].hours
}

// Cell returns the entry for (date, line).
func (g *Grid) Cell(date time.Time, line string) (ScheduleEntry, bool) {
	d := Day(date)
	c, ok := g.cells[cellKey{day: d.Unix(), line: line}]
	if !ok {
		return ScheduleEntry{}, false
	}
	return ScheduleEntry{Date: d, Line: line, Hours: c.hours, PersonnelIntensive: c.personnel}, true
}

// Set overwrites the hours of an existing cell. The personnel flag is kept.
func (g *Grid) Set(date time.Time, line string, hours float64) error {
	k := cellKey{day: Day(date).Unix(), line: line}
	c, ok := g.cells[k]
	if !ok {
		return fmt.Errorf("no cell %s/%s", Day(date).Format(time.DateOnly), line)
	}
	c.hours = hours
	g.cells[k] = c
	return nil
}

// Day returns the entries of one date ordered by line.
func (g *Grid) Day(date time.Time) []ScheduleEntry {
	d := Day(date)
	out := make([]ScheduleEntry, 0, len(g.lines))
	for _, l := range g.lines {
		c, ok := g.cells[cellKey{day: d.Unix(), line: l}]
		if !ok {
			continue
		}
		out = append(out, ScheduleEntry{Date: d, Line: l, Hours: c.hours, PersonnelIntensive: c.personnel})
	}
	return out
}

// TotalHours sums every cell of the grid.
func (g *Grid) TotalHours() float64 {
	var sum float64
	for _, c := range g.cells {
		sum += c.hours
	}
	return sum
}

// Rows flattens the grid into the external row shape, ordered by date then line.
func (g *Grid) Rows() []Row {
	out := make([]Row, 0, len(g.cells))
	for _, d := range g.dates {
		wd, _ := WeekdayOf(d)
		for _, l := range g.lines {
			c := g.cells[cellKey{day: d.Unix(), line: l}]
			out = append(out, Row{Date: d, Weekday: wd, Line: l, Hours: c.hours, PersonnelIntensive: c.personnel})
		}
	}
	return out
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	cp := &Grid{
		dates: append([]time.Time(nil), g.dates...),
		lines: append([]string(nil), g.lines...),
		cells: make(map[cellKey]cell, len(g.cells)),
	}
	for k, v := range g.cells {
		cp.cells[k] = v
	}
	return cp
}

// Week returns the ISO week label of the first date.
func (g *Grid) Week() string {
	if len(g.dates) == 0 {
		return ""
	}
	return WeekLabel(g.dates[0])
}
