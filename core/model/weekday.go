package model

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is the short label of a business day ("Mon".."Fri").
type Weekday string

const (
	Monday    Weekday = "Mon"
	Tuesday   Weekday = "Tue"
	Wednesday Weekday = "Wed"
	Thursday  Weekday = "Thu"
	Friday    Weekday = "Fri"
)

// BusinessWeek lists the weekday labels in calendar order.
var BusinessWeek = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// WeekdayOf returns the label of t. ok is false for Saturday and Sunday.
func WeekdayOf(t time.Time) (Weekday, bool) {
	switch t.Weekday() {
	case time.Monday:
		return Monday, true
	case time.Tuesday:
		return Tuesday, true
	case time.Wednesday:
		return Wednesday, true
	case time.Thursday:
		return Thursday, true
	case time.Friday:
		return Friday, true
	default:
		return "", false
	}
}

// ParseWeekday accepts short and long English labels in any case.
func ParseWeekday(s string) (Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if len(v) >= 3 {
		switch v[:3] {
		case "mon":
			return Monday, nil
		case "tue":
			return Tuesday, nil
		case "wed":
			return Wednesday, nil
		case "thu":
			return Thursday, nil
		case "fri":
			return Friday, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

// Index returns the position of the label in BusinessWeek or -1.
func (w Weekday) Index() int {
	for i, d := range BusinessWeek {
		if d == w {
			return i
		}
	}
	return -1
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekLabel formats the ISO week of t as "2025-W07".
func WeekLabel(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}
