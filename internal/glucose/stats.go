package glucose

import (
	"sort"
	"time"
)

// EstimateA1C converts an average glucose value in mg/dL to an estimated A1C
// percentage using the ADAG regression.
func EstimateA1C(averageMgdl float64) float64 {
	if averageMgdl <= 0 {
		return 0
	}
	return (averageMgdl + 46.7) / 28.7
}

// ComputeRuns folds readings into streaks of consecutive calendar days (UTC),
// newest streak first. Input order does not matter.
func ComputeRuns(readings []Reading) []Run {
	if len(readings) == 0 {
		return nil
	}

	type dayStats struct {
		sum   int
		count int
	}

	days := make(map[time.Time]*dayStats)
	for _, r := range readings {
		day := r.TakenAt.UTC().Truncate(24 * time.Hour)
		stats, ok := days[day]
		if !ok {
			stats = &dayStats{}
			days[day] = stats
		}
		stats.sum += r.ValueMgdl
		stats.count++
	}

	ordered := make([]time.Time, 0, len(days))
	for day := range days {
		ordered = append(ordered, day)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	var runs []Run
	var current *Run
	var sum, count int

	flush := func() {
		if current != nil {
			current.Average = float64(sum) / float64(count)
			runs = append(runs, *current)
		}
		current = nil
		sum, count = 0, 0
	}

	for _, day := range ordered {
		stats := days[day]
		if current != nil && day.Sub(current.End) == 24*time.Hour {
			current.End = day
			current.Days++
		} else {
			flush()
			current = &Run{Start: day, End: day, Days: 1}
		}
		sum += stats.sum
		count += stats.count
	}
	flush()

	// Newest first.
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}

	return runs
}
