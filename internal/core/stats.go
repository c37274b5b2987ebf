package core

import "time"

// Summary holds whole-collection totals and counts, independent of any
// timeframe filtering: it always reflects exactly the slice it was given.
type Summary struct {
	ColdPlungeMinutes  int
	MeditationMinutes  int
	CombinedMinutes    int
	ColdPlungeSessions int
	MeditationSessions int
	TotalSessions      int
}

// DailyBucket is one calendar day of aggregated minutes, used to build
// unbroken chart series.
type DailyBucket struct {
	Day               time.Time
	ColdPlungeMinutes int
	MeditationMinutes int
	TotalMinutes      int
}

// ComputeSummary partitions activities by kind and sums durations.
// Untracked names contribute to TotalSessions only; CombinedMinutes is the
// sum over the two tracked kinds. Pure function, safe for concurrent use.
func ComputeSummary(activities []Activity) Summary {
	s := Summary{TotalSessions: len(activities)}
	for _, a := range activities {
		switch KindOf(a.Name) {
		case KindColdPlunge:
			s.ColdPlungeMinutes += a.Duration
			s.ColdPlungeSessions++
		case KindMeditation:
			s.MeditationMinutes += a.Duration
			s.MeditationSessions++
		}
	}
	s.CombinedMinutes = s.ColdPlungeMinutes + s.MeditationMinutes
	return s
}

// DailySeries filters activities by tf and buckets them into one entry per
// calendar day of the resolved range, ascending, with zero-valued buckets
// for empty days. The range is:
//
//	week:  Monday..Sunday of now's ISO week
//	month: first..last day of now's month
//	all:   [earliest, latest] activity day, or [now-30d, now] when empty
//
// The result is a closed, finite slice: length equals the day count of the
// range, minimum 1. Calling twice with identical inputs (including now)
// yields identical output.
func DailySeries(activities []Activity, tf Timeframe, now time.Time) []DailyBucket {
	filtered := FilterByTimeframe(activities, tf, now)

	var start, end time.Time
	switch tf {
	case TimeframeWeek:
		start = WeekStart(now)
		end = start.AddDate(0, 0, 6)
	case TimeframeMonth:
		start = MonthStart(now)
		end = MonthEnd(now)
	default:
		if len(filtered) == 0 {
			end = dayOf(now)
			start = end.AddDate(0, 0, -30)
			break
		}
		start = filtered[0].Day()
		end = start
		for _, a := range filtered[1:] {
			d := a.Day()
			if d.Before(start) {
				start = d
			}
			if d.After(end) {
				end = d
			}
		}
	}

	var buckets []DailyBucket
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		b := DailyBucket{Day: day}
		for _, a := range filtered {
			if !sameDay(a.Date, day) {
				continue
			}
			switch KindOf(a.Name) {
			case KindColdPlunge:
				b.ColdPlungeMinutes += a.Duration
			case KindMeditation:
				b.MeditationMinutes += a.Duration
			}
		}
		b.TotalMinutes = b.ColdPlungeMinutes + b.MeditationMinutes
		buckets = append(buckets, b)
	}
	return buckets
}
