package timewindow

import "time"

const daysPerWeek = 7

// Recurrence time zones are fixed offsets, so a calendar day is always
// exactly 24 hours of elapsed time once an instant is aligned.
const dayDuration = 24 * time.Hour

// Last day of every month, ignoring leap years.
var monthEndDay = map[time.Month]int{
	time.January:   31,
	time.February:  28,
	time.March:     31,
	time.April:     30,
	time.May:       31,
	time.June:      30,
	time.July:      31,
	time.August:    31,
	time.September: 30,
	time.October:   31,
	time.November:  30,
	time.December:  31,
}

// isLeapYear returns true if the given year is a leap year
func isLeapYear(year int) bool {
	if year%400 == 0 {
		return true
	} else if year%100 == 0 {
		return false
	} else if year%4 == 0 {
		return true
	}
	return false
}

// daysInMonth returns the last day of the month,
// for the given month and year
func daysInMonth(m time.Month, y int) int {
	if m == time.February && isLeapYear(y) {
		return 29
	}
	return monthEndDay[m]
}

// addMonths advances a wall clock by the given number of months,
// keeping the time of day and clamping the day to the length of the
// target month (Jan 31 + 1 month = Feb 28/29). time.AddDate rolls
// overflow days into the next month, which is never wanted here.
func addMonths(t time.Time, months int) time.Time {
	total := int(t.Month()) - 1 + months
	year := t.Year() + total/12
	month := time.Month(total%12 + 1)
	day := t.Day()
	if last := daysInMonth(month, year); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// addYears behaves like addMonths for whole years (Feb 29 clamps to
// Feb 28 in non-leap years).
func addYears(t time.Time, years int) time.Time {
	return addMonths(t, years*12)
}

// nthWeekdayOfMonth returns midnight of the index-th occurrence of the
// weekday within the month. When Last is requested and the month holds
// only four such weekdays, the fourth is returned.
func nthWeekdayOfMonth(year int, month time.Month, index WeekIndex, weekday time.Weekday, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	day := 1 + int(weekday-first.Weekday()+daysPerWeek)%daysPerWeek
	day += int(index) * daysPerWeek
	if day > daysInMonth(month, year) {
		day -= daysPerWeek
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// daysUntil returns the number of days from one weekday forward to the
// next occurrence of another, in 1..7.
func daysUntil(from, to time.Weekday) int {
	d := int(to-from+daysPerWeek) % daysPerWeek
	if d == 0 {
		d = daysPerWeek
	}
	return d
}

func containsWeekday(days []time.Weekday, d time.Weekday) bool {
	for _, day := range days {
		if day == d {
			return true
		}
	}
	return false
}

// countWeekdays returns the number of distinct weekdays in the set.
func countWeekdays(days []time.Weekday) int {
	var seen [daysPerWeek]bool
	n := 0
	for _, d := range days {
		if d < 0 || d >= daysPerWeek || seen[d] {
			continue
		}
		seen[d] = true
		n++
	}
	return n
}

// weekdayOffsets returns the offsets (0..6) of the selected weekdays
// from the first day of week, ascending and deduplicated.
func weekdayOffsets(days []time.Weekday, firstDay time.Weekday) []int {
	var seen [daysPerWeek]bool
	for _, d := range days {
		seen[int(d-firstDay+daysPerWeek)%daysPerWeek] = true
	}
	offsets := make([]int, 0, daysPerWeek)
	for i := 0; i < daysPerWeek; i++ {
		if seen[i] {
			offsets = append(offsets, i)
		}
	}
	return offsets
}

// minWeekdayGap returns the smallest number of days between two
// consecutive occurrences of a weekly pattern across one interval
// cycle. For a single selected weekday this is interval*7.
func minWeekdayGap(days []time.Weekday, firstDay time.Weekday, interval int) int {
	offsets := weekdayOffsets(days, firstDay)
	min := interval*daysPerWeek - offsets[len(offsets)-1] + offsets[0]
	for i := 1; i < len(offsets); i++ {
		if gap := offsets[i] - offsets[i-1]; gap < min {
			min = gap
		}
	}
	return min
}

// startOfDay returns midnight of t's calendar day in t's location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// timeOfDay returns the elapsed time since midnight of t's day.
func timeOfDay(t time.Time) time.Duration {
	return t.Sub(startOfDay(t))
}

// dateBefore reports whether the calendar date of a precedes that of
// b, ignoring the time of day and any offset difference.
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
