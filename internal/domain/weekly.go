package domain

import "time"

// WeeklyChange compares new cases in the week before the anchor with the
// week before that.
type WeeklyChange struct {
	LastWeekCases  int64
	PriorWeekCases int64
	Diff           Metric
}

// WeeklyChanges sums new cases per series over [anchor-7d, anchor) and
// [anchor-14d, anchor-7d). Series without observations in both windows are
// omitted. Diff is missing when the prior week sums to zero.
func WeeklyChanges(series []CountySeries, anchor time.Time) map[SeriesID]WeeklyChange {
	lastStart := anchor.AddDate(0, 0, -7)
	priorStart := anchor.AddDate(0, 0, -14)

	out := make(map[SeriesID]WeeklyChange)
	for _, s := range series {
		var last, prior int64
		var inLast, inPrior bool
		for _, r := range s.Rows {
			switch {
			case !r.Date.Before(lastStart) && r.Date.Before(anchor):
				last += r.NewCases
				inLast = true
			case !r.Date.Before(priorStart) && r.Date.Before(lastStart):
				prior += r.NewCases
				inPrior = true
			}
		}
		if !inLast || !inPrior {
			continue
		}
		out[s.ID] = WeeklyChange{
			LastWeekCases:  last,
			PriorWeekCases: prior,
			Diff:           Ratio(float64(last-prior), float64(prior)),
		}
	}
	return out
}
