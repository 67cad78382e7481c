package timewindow

import "time"

// Validate checks every structural invariant of the settings record
// and reports the first violation. A record that passes may be handed
// to IsActive for any timestamp.
func Validate(s *Settings) error {
	if s == nil || s.Start.IsZero() {
		return &ValidationError{Field: "start", Reason: ReasonRequired}
	}
	if s.End.IsZero() {
		return &ValidationError{Field: "end", Reason: ReasonRequired}
	}
	if !s.End.After(s.Start) {
		return &ValidationError{Field: "end", Reason: ReasonOutOfRange}
	}
	if s.Recurrence == nil {
		return nil
	}

	tz := s.Start.Location()
	if zone := s.Recurrence.Range.TimeZone; zone != "" {
		loc, err := parseTimeZone(zone)
		if err != nil {
			return &ValidationError{Field: "recurrence.range.recurrence_time_zone", Reason: ReasonUnrecognizable}
		}
		tz = loc
	}

	if err := validatePattern(s, tz); err != nil {
		return err
	}
	return validateRange(s, tz)
}

func validatePattern(s *Settings, tz *time.Location) error {
	p := s.Recurrence.Pattern
	if p.Interval < 1 {
		return &ValidationError{Field: "recurrence.pattern.interval", Reason: ReasonOutOfRange}
	}

	duration := s.End.Sub(s.Start)
	start := s.Start.In(tz)

	switch p.Type {
	case Daily:
		if duration > time.Duration(p.Interval)*dayDuration {
			return &ValidationError{Field: "end", Reason: ReasonOutOfRange}
		}

	case Weekly:
		if err := validateDaysOfWeek(p.DaysOfWeek); err != nil {
			return err
		}
		if p.FirstDayOfWeek < time.Sunday || p.FirstDayOfWeek > time.Saturday {
			return &ValidationError{Field: "recurrence.pattern.first_day_of_week", Reason: ReasonOutOfRange}
		}
		if duration > time.Duration(p.Interval*daysPerWeek)*dayDuration {
			return &ValidationError{Field: "end", Reason: ReasonOutOfRange}
		}
		if !containsWeekday(p.DaysOfWeek, start.Weekday()) {
			return &ValidationError{Field: "start", Reason: ReasonNotMatched}
		}
		// With several selected weekdays, occurrences must not overlap:
		// the window has to fit inside the shortest day gap.
		if duration > time.Duration(minWeekdayGap(p.DaysOfWeek, p.FirstDayOfWeek, p.Interval))*dayDuration {
			return &ValidationError{Field: "end", Reason: ReasonOutOfRange}
		}

	case AbsoluteMonthly:
		if p.DayOfMonth < 1 || p.DayOfMonth > 31 {
			return &ValidationError{Field: "recurrence.pattern.day_of_month", Reason: ReasonOutOfRange}
		}
		if duration > time.Duration(p.Interval*28)*dayDuration {
			return &ValidationError{Field: "end", Reason: ReasonOutOfRange}
		}
		if start.Day() != p.DayOfMonth {
			return &ValidationError{Field: "start", Reason: ReasonNotMatched}
		}

	case RelativeMonthly:
		if err := validateDaysOfWeek(p.DaysOfWeek); err != nil {
			return err
		}
		if err := validateIndex(p.Index); err != nil {
			return err
		}
		if duration > time.Duration(p.Interval*28)*dayDuration {
			return &ValidationError{Field: "end", Reason: ReasonOutOfRange}
		}
		if !startsOnEarliestNthWeekday(start, p) {
			return &ValidationError{Field: "start", Reason: ReasonNotMatched}
		}

	case AbsoluteYearly:
		if p.Month < time.January || p.Month > time.December {
			return &ValidationError{Field: "recurrence.pattern.month", Reason: ReasonOutOfRange}
		}
		if p.DayOfMonth < 1 || p.DayOfMonth > 31 {
			return &ValidationError{Field: "recurrence.pattern.day_of_month", Reason: ReasonOutOfRange}
		}
		if duration > time.Duration(p.Interval*365)*dayDuration {
			return &ValidationError{Field: "end", Reason: ReasonOutOfRange}
		}
		if start.Month() != p.Month || start.Day() != p.DayOfMonth {
			return &ValidationError{Field: "start", Reason: ReasonNotMatched}
		}

	case RelativeYearly:
		if p.Month < time.January || p.Month > time.December {
			return &ValidationError{Field: "recurrence.pattern.month", Reason: ReasonOutOfRange}
		}
		if err := validateDaysOfWeek(p.DaysOfWeek); err != nil {
			return err
		}
		if err := validateIndex(p.Index); err != nil {
			return err
		}
		if duration > time.Duration(p.Interval*365)*dayDuration {
			return &ValidationError{Field: "end", Reason: ReasonOutOfRange}
		}
		if start.Month() != p.Month || !startsOnEarliestNthWeekday(start, p) {
			return &ValidationError{Field: "start", Reason: ReasonNotMatched}
		}

	default:
		return &ValidationError{Field: "recurrence.pattern.type", Reason: ReasonUnrecognizable}
	}
	return nil
}

func validateRange(s *Settings, tz *time.Location) error {
	r := s.Recurrence.Range
	switch r.Type {
	case NoEnd:

	case EndDate:
		if r.EndDate.IsZero() {
			return &ValidationError{Field: "recurrence.range.end_date", Reason: ReasonRequired}
		}
		if dateBefore(r.EndDate, s.Start.In(tz)) {
			return &ValidationError{Field: "recurrence.range.end_date", Reason: ReasonOutOfRange}
		}

	case Numbered:
		if r.NumberOfOccurrences < 1 {
			return &ValidationError{Field: "recurrence.range.number_of_occurrences", Reason: ReasonOutOfRange}
		}

	default:
		return &ValidationError{Field: "recurrence.range.type", Reason: ReasonUnrecognizable}
	}
	return nil
}

func validateDaysOfWeek(days []time.Weekday) error {
	if len(days) == 0 {
		return &ValidationError{Field: "recurrence.pattern.days_of_week", Reason: ReasonRequired}
	}
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return &ValidationError{Field: "recurrence.pattern.days_of_week", Reason: ReasonOutOfRange}
		}
	}
	return nil
}

func validateIndex(index WeekIndex) error {
	if index < First || index > Last {
		return &ValidationError{Field: "recurrence.pattern.index", Reason: ReasonUnrecognizable}
	}
	return nil
}

// startsOnEarliestNthWeekday reports whether the aligned start is the
// earliest nth-weekday occurrence of its month among the selected
// weekdays. The engine fires once per interval on that earliest date,
// so a later candidate cannot anchor the series.
func startsOnEarliestNthWeekday(start time.Time, p Pattern) bool {
	earliest := earliestNthWeekday(start.Year(), start.Month(), p, start.Location(), timeOfDay(start))
	return earliest.Equal(start)
}
