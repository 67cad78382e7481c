package timewindow

import "time"

// IsActive reports whether the instant lies inside the window of some
// occurrence of the settings record. The record must have passed
// Validate; given that, IsActive is total and never fails.
//
// An occurrence starting at occ covers the half-open interval
// [occ, occ+(End-Start)). Instants before Start are never active.
func IsActive(s *Settings, t time.Time) bool {
	if t.Before(s.Start) {
		return false
	}
	if s.Recurrence == nil {
		return t.Before(s.End)
	}

	prev, index := previousOccurrence(s, t)

	switch s.Recurrence.Range.Type {
	case EndDate:
		if dateBefore(s.Recurrence.Range.EndDate, prev) {
			return false
		}
	case Numbered:
		if index >= s.Recurrence.Range.NumberOfOccurrences {
			return false
		}
	}

	return t.Sub(prev) < s.End.Sub(s.Start)
}

// previousOccurrence returns the greatest occurrence start that is not
// after t, together with its 0-based index in the series (start is
// index 0). Both start and t are aligned into the recurrence time zone
// before any calendar arithmetic; the result carries that zone.
//
// Callers guarantee t >= start, so a previous occurrence always
// exists.
func previousOccurrence(s *Settings, t time.Time) (time.Time, int) {
	tz := recurrenceLocation(s)
	start := s.Start.In(tz)
	aligned := t.In(tz)

	p := s.Recurrence.Pattern
	if p.Interval < 1 {
		p.Interval = 1
	}

	switch p.Type {
	case Weekly:
		return previousWeekly(start, aligned, p)
	case AbsoluteMonthly:
		return previousAbsoluteMonthly(start, aligned, p.Interval)
	case RelativeMonthly:
		return previousRelativeMonthly(start, aligned, p)
	case AbsoluteYearly:
		return previousAbsoluteYearly(start, aligned, p.Interval)
	case RelativeYearly:
		return previousRelativeYearly(start, aligned, p)
	default:
		return previousDaily(start, aligned, p.Interval)
	}
}

// recurrenceLocation resolves the zone all calendar arithmetic runs
// in: the recurrence time zone when set, else the offset of Start.
func recurrenceLocation(s *Settings) *time.Location {
	if s.Recurrence != nil && s.Recurrence.Range.TimeZone != "" {
		if loc, err := parseTimeZone(s.Recurrence.Range.TimeZone); err == nil {
			return loc
		}
	}
	return s.Start.Location()
}

func previousDaily(start, t time.Time, interval int) (time.Time, int) {
	step := time.Duration(interval) * dayDuration
	if step <= 0 {
		return start, 0
	}
	n := int(t.Sub(start) / step)
	return start.Add(time.Duration(n) * step), n
}

// previousWeekly locates the last weekday occurrence not after t.
//
// The first interval runs from start to the midnight of the next
// FirstDayOfWeek, plus interval-1 idle weeks. Every following interval
// starts at a FirstDayOfWeek midnight and holds one occurrence per
// selected weekday inside its opening week, at start's time of day.
// At most two week-length scans are needed: the week t falls in, and
// one week back when t precedes that week's first occurrence.
func previousWeekly(start, t time.Time, p Pattern) (time.Time, int) {
	tod := timeOfDay(start)
	r := daysUntil(start.Weekday(), p.FirstDayOfWeek)
	cycle := time.Duration(p.Interval*daysPerWeek) * dayDuration
	if cycle <= 0 {
		return start, 0
	}
	boundary := startOfDay(start).Add(time.Duration(r+(p.Interval-1)*daysPerWeek) * dayDuration)

	if t.Before(boundary) {
		prev, k := start, 0
		for i := 1; i < r; i++ {
			occ := start.Add(time.Duration(i) * dayDuration)
			if occ.After(t) {
				break
			}
			if containsWeekday(p.DaysOfWeek, occ.Weekday()) {
				prev, k = occ, k+1
			}
		}
		return prev, k
	}

	n := int(t.Sub(boundary) / cycle)
	weekStart := boundary.Add(time.Duration(n) * cycle)

	// Occurrences inside the first interval, not counting start itself.
	firstWeek := 0
	for i := 1; i < r; i++ {
		if containsWeekday(p.DaysOfWeek, start.Add(time.Duration(i)*dayDuration).Weekday()) {
			firstWeek++
		}
	}

	k := n*countWeekdays(p.DaysOfWeek) + firstWeek
	var prev time.Time
	found := false
	for i := 0; i < daysPerWeek; i++ {
		day := weekStart.Add(time.Duration(i) * dayDuration)
		if !containsWeekday(p.DaysOfWeek, day.Weekday()) {
			continue
		}
		occ := day.Add(tod)
		if occ.After(t) {
			break
		}
		prev, found = occ, true
		k++
	}
	if found {
		return prev, k
	}

	// t falls before this week's first occurrence; the previous
	// occurrence is the last one of the preceding interval.
	if n > 0 {
		lastWeek := weekStart.Add(-cycle)
		for i := daysPerWeek - 1; i >= 0; i-- {
			day := lastWeek.Add(time.Duration(i) * dayDuration)
			if containsWeekday(p.DaysOfWeek, day.Weekday()) {
				return day.Add(tod), k
			}
		}
	}
	prev = start
	for i := 1; i < r; i++ {
		occ := start.Add(time.Duration(i) * dayDuration)
		if containsWeekday(p.DaysOfWeek, occ.Weekday()) {
			prev = occ
		}
	}
	return prev, k
}

func previousAbsoluteMonthly(start, t time.Time, interval int) (time.Time, int) {
	gap := monthGap(start, t)
	if t.Day() < start.Day() || (t.Day() == start.Day() && timeOfDay(t) < timeOfDay(start)) {
		gap--
	}
	n := gap / interval
	return addMonths(start, n*interval), n
}

func previousRelativeMonthly(start, t time.Time, p Pattern) (time.Time, int) {
	tod := timeOfDay(start)
	gap := monthGap(start, t)
	if !nthWeekdayPassed(t, p, t.Year(), t.Month(), tod) {
		gap--
	}
	n := gap / p.Interval
	target := addMonths(start, n*p.Interval)
	return earliestNthWeekday(target.Year(), target.Month(), p, start.Location(), tod), n
}

func previousAbsoluteYearly(start, t time.Time, interval int) (time.Time, int) {
	gap := t.Year() - start.Year()
	if t.YearDay() < start.YearDay() || (t.YearDay() == start.YearDay() && timeOfDay(t) < timeOfDay(start)) {
		gap--
	}
	n := gap / interval
	return addYears(start, n*interval), n
}

func previousRelativeYearly(start, t time.Time, p Pattern) (time.Time, int) {
	tod := timeOfDay(start)
	gap := t.Year() - start.Year()
	if t.Month() < start.Month() ||
		(t.Month() == start.Month() && !nthWeekdayPassed(t, p, t.Year(), t.Month(), tod)) {
		gap--
	}
	n := gap / p.Interval
	year := start.Year() + n*p.Interval
	return earliestNthWeekday(year, start.Month(), p, start.Location(), tod), n
}

func monthGap(start, t time.Time) int {
	return 12*(t.Year()-start.Year()) + int(t.Month()) - int(start.Month())
}

// nthWeekdayPassed reports whether any selected nth-weekday occurrence
// of the given month has started by t.
func nthWeekdayPassed(t time.Time, p Pattern, year int, month time.Month, tod time.Duration) bool {
	for _, d := range p.DaysOfWeek {
		occ := nthWeekdayOfMonth(year, month, p.Index, d, t.Location()).Add(tod)
		if !occ.After(t) {
			return true
		}
	}
	return false
}

// earliestNthWeekday returns the earliest nth-weekday date of the
// month among the selected weekdays, at the anchor's time of day. The
// pattern fires once per interval, on that date; later candidates in
// the same month are not additional occurrences.
func earliestNthWeekday(year int, month time.Month, p Pattern, loc *time.Location, tod time.Duration) time.Time {
	var best time.Time
	for _, d := range p.DaysOfWeek {
		day := nthWeekdayOfMonth(year, month, p.Index, d, loc)
		if best.IsZero() || day.Before(best) {
			best = day
		}
	}
	return best.Add(tod)
}
