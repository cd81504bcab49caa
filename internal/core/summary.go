package core

import (
	"sort"
	"strings"
	"time"

	"truetime.service/internal/core/model"
)

// ExpectedMinutes is the nominal length of a shift in minutes. An end
// time at or before the start time marks an overnight shift spanning
// midnight, so a day is added to the end.
func ExpectedMinutes(shift *model.Shift) int {
	start := shift.StartTime.Minutes()
	end := shift.EndTime.Minutes()
	if end <= start {
		end += 24 * 60
	}
	return end - start
}

// ComputeDay derives the attendance summary for one employee and one
// calendar day from the raw punches and the shift resolved for that
// day (nil when none applies).
//
// Punches are normalized to UTC and walked in ascending order keeping
// an open-in cursor: an "in"-prefixed punch opens (or re-opens) a
// session, an "out"-prefixed punch closes it and accumulates worked
// minutes. Any other direction value only moves last_out and never
// closes a session; the source system behaved this way and downstream
// reports depend on it.
func ComputeDay(punches []*model.PunchEvent, shift *model.Shift, day model.Date) *model.DailySummary {
	sorted := make([]*model.PunchEvent, len(punches))
	copy(sorted, punches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PunchedAt.Before(sorted[j].PunchedAt)
	})

	var (
		totalMinutes int
		openIn       *time.Time
		firstIn      *time.Time
		lastOut      *time.Time
	)

	for _, punch := range sorted {
		ts := punch.PunchedAt.UTC()
		direction := strings.ToLower(punch.Direction)
		switch {
		case strings.HasPrefix(direction, "in"):
			if firstIn == nil {
				firstIn = &ts
			}
			openIn = &ts
		case strings.HasPrefix(direction, "out"):
			lastOut = &ts
			if openIn != nil {
				totalMinutes += int(ts.Sub(*openIn) / time.Minute)
				openIn = nil
			}
		default:
			lastOut = &ts
		}
	}

	if lastOut == nil && len(sorted) > 0 {
		ts := sorted[len(sorted)-1].PunchedAt.UTC()
		lastOut = &ts
	}

	summary := &model.DailySummary{
		Date:         day,
		Shift:        shift,
		FirstIn:      firstIn,
		LastOut:      lastOut,
		TotalMinutes: totalMinutes,
	}

	switch {
	case len(sorted) == 0:
		summary.Status = model.StatusAbsent
	case openIn != nil || firstIn == nil || lastOut == nil:
		summary.Status = model.StatusIncomplete
	case shift != nil:
		expected := ExpectedMinutes(shift)
		summary.ExpectedMinutes = &expected

		shiftStart := shift.StartTime.At(day)
		grace := time.Duration(shift.GraceMinutes) * time.Minute
		if firstIn.After(shiftStart.Add(grace)) {
			late := int(firstIn.Sub(shiftStart) / time.Minute)
			summary.Status = model.StatusLate
			summary.LateMinutes = &late
		} else {
			zero := 0
			summary.Status = model.StatusPresent
			summary.LateMinutes = &zero
		}
	default:
		summary.Status = model.StatusPresent
	}

	return summary
}
