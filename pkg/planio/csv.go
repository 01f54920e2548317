// Package planio reads and writes weekly plans as CSV and smoothing reports
// as JSON.
package planio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/core/personnel"
)

// ErrMissingColumn is returned when a required CSV column is absent.
var ErrMissingColumn = errors.New("planio: missing column")

// Accepted header names per logical column, matched case-insensitively.
var columnAliases = map[string][]string{
	"date":      {"date", "datum", "tag", "day"},
	"weekday":   {"weekday", "wochentag"},
	"line":      {"line", "linie", "anlage"},
	"hours":     {"hours", "predicted_hours", "total_hours"},
	"personnel": {"personnel_intensive", "personnel_intensive_pred", "personnel_intensive_flag"},
	"product":   {"product", "produkt", "rezeptur", "sorte"},
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, time.DateTime, "02.01.2006"}

func detectColumns(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	out := make(map[string]int)
	for logical, names := range columnAliases {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				out[logical] = i
				break
			}
		}
	}
	return out
}

// ReadRows parses a CSV plan. The date, line and hours columns are required.
// When the personnel column is absent or empty and a product column exists,
// the flag is resolved from the product name with r (which may be nil).
func ReadRows(in io.Reader, r *personnel.Resolver) ([]model.Row, error) {
	cr := csv.NewReader(in)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("planio: read header: %w", err)
	}
	cols := detectColumns(header)
	for _, c := range []string{"date", "line", "hours"} {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	var rows []model.Row
	for n := 2; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("planio: line %d: %w", n, err)
		}
		row, err := parseRecord(rec, cols, r)
		if err != nil {
			return nil, fmt.Errorf("planio: line %d: %w", n, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func field(rec []string, cols map[string]int, name string) (string, bool) {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return "", false
	}
	return strings.TrimSpace(rec[i]), true
}

func parseRecord(rec []string, cols map[string]int, r *personnel.Resolver) (model.Row, error) {
	var row model.Row
	ds, _ := field(rec, cols, "date")
	d, err := ParseDate(ds)
	if err != nil {
		return row, err
	}
	row.Date = d
	row.Line, _ = field(rec, cols, "line")
	hs, _ := field(rec, cols, "hours")
	if row.Hours, err = strconv.ParseFloat(hs, 64); err != nil {
		return row, fmt.Errorf("hours %q: %w", hs, err)
	}
	if wd, ok := field(rec, cols, "weekday"); ok && wd != "" {
		if row.Weekday, err = model.ParseWeekday(wd); err != nil {
			return row, err
		}
	}
	row.Product, _ = field(rec, cols, "product")
	ps, _ := field(rec, cols, "personnel")
	if ps != "" {
		if row.PersonnelIntensive, err = parseBool(ps); err != nil {
			return row, err
		}
	} else {
		row.PersonnelIntensive = r.IsPersonnelIntensive(row.Product)
	}
	return row, nil
}

// ParseDate accepts ISO dates, RFC 3339 timestamps and German dd.mm.yyyy.
func ParseDate(s string) (time.Time, error) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q: unsupported format", s)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "ja", "x":
		return true, nil
	case "0", "false", "no", "n", "nein":
		return false, nil
	}
	return false, fmt.Errorf("personnel flag %q: not a boolean", s)
}

// WriteRows writes the plan with hours rounded to two decimals.
func WriteRows(w io.Writer, rows []model.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "weekday", "line", "hours", "personnel_intensive"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Date.Format(time.DateOnly),
			string(r.Weekday),
			r.Line,
			formatHours(r.Hours),
			strconv.FormatBool(r.PersonnelIntensive),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTransfers writes the transfer log in commit order.
func WriteTransfers(w io.Writer, ts []model.AppliedTransfer) error {
	cw := csv.NewWriter(w)
	header := []string{"iteration", "peak_date", "valley_date", "line", "hours_to_transfer",
		"peak_before", "peak_after", "valley_before", "valley_after", "personnel_intensive"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range ts {
		rec := []string{
			strconv.Itoa(t.Iteration),
			t.PeakDate.Format(time.DateOnly),
			t.ValleyDate.Format(time.DateOnly),
			t.Line,
			formatHours(t.HoursToTransfer),
			formatHours(t.PeakBefore),
			formatHours(t.PeakAfter),
			formatHours(t.ValleyBefore),
			formatHours(t.ValleyAfter),
			strconv.FormatBool(t.PersonnelIntensive),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatHours(h float64) string {
	return strconv.FormatFloat(Round2(h), 'f', -1, 64)
}
