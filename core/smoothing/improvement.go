package smoothing

import (
	"github.com/kilianp07/lineplan/core/model"
)

// Compare measures how much final improved over original. Both grids are
// judged with r.
func (r Rules) Compare(original, final *model.Grid) model.Improvement {
	before := Summarize(original)
	after := Summarize(final)
	bt, at := Totals(before), Totals(after)

	imp := model.Improvement{
		OriginalVariance:   variance(bt),
		SmoothedVariance:   variance(at),
		OriginalRange:      spread(bt),
		SmoothedRange:      spread(at),
		OriginalViolations: r.Violations(original),
		SmoothedViolations: r.Violations(final),
	}
	imp.VarianceReductionPct = reductionPct(imp.OriginalVariance, imp.SmoothedVariance)
	imp.RangeReduction = imp.OriginalRange - imp.SmoothedRange
	imp.RangeReductionPct = reductionPct(imp.OriginalRange, imp.SmoothedRange)
	imp.Weekdays = compareWeekdays(before, after)
	return imp
}

// Compare uses the default rules.
func Compare(original, final *model.Grid) model.Improvement {
	return DefaultRules().Compare(original, final)
}

func reductionPct(before, after float64) float64 {
	if before == 0 {
		return 0
	}
	return (before - after) / before * 100
}

func weekdayAverages(summaries []model.DailySummary) map[model.Weekday]float64 {
	sums := make(map[model.Weekday]float64)
	counts := make(map[model.Weekday]int)
	for _, s := range summaries {
		sums[s.Weekday] += s.TotalHours
		counts[s.Weekday]++
	}
	out := make(map[model.Weekday]float64, len(sums))
	for wd, sum := range sums {
		out[wd] = sum / float64(counts[wd])
	}
	return out
}

// compareWeekdays lists Mon..Fri labels present in both summaries.
func compareWeekdays(before, after []model.DailySummary) []model.WeekdayComparison {
	ba, aa := weekdayAverages(before), weekdayAverages(after)
	var out []model.WeekdayComparison
	for _, wd := range model.BusinessWeek {
		o, ok1 := ba[wd]
		s, ok2 := aa[wd]
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, model.WeekdayComparison{Weekday: wd, OriginalAvg: o, SmoothedAvg: s, Change: s - o})
	}
	return out
}
