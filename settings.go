package timewindow

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Settings describes a time window, optionally recurring. Start and
// End carry their own fixed UTC offsets; all instant comparisons are
// offset-aware. A record must not be mutated after it has been handed
// to Validate or IsActive.
type Settings struct {
	Start      time.Time   `json:"start"`
	End        time.Time   `json:"end"`
	Recurrence *Recurrence `json:"recurrence,omitempty"`
}

// Recurrence pairs the repetition pattern with the range that bounds it.
type Recurrence struct {
	Pattern Pattern `json:"pattern"`
	Range   Range   `json:"range"`
}

// PatternType enumerates the supported recurrence patterns.
type PatternType int

const (
	Daily PatternType = iota
	Weekly
	AbsoluteMonthly
	RelativeMonthly
	AbsoluteYearly
	RelativeYearly
)

var patternTypeNames = [...]string{
	"Daily",
	"Weekly",
	"AbsoluteMonthly",
	"RelativeMonthly",
	"AbsoluteYearly",
	"RelativeYearly",
}

func (p PatternType) String() string {
	if p >= 0 && int(p) < len(patternTypeNames) {
		return patternTypeNames[p]
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (p PatternType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names are matched
// case-insensitively.
func (p *PatternType) UnmarshalText(text []byte) error {
	for i, name := range patternTypeNames {
		if strings.EqualFold(string(text), name) {
			*p = PatternType(i)
			return nil
		}
	}
	return errors.Errorf("unrecognized recurrence pattern type %q", string(text))
}

// WeekIndex selects which occurrence of a weekday within a month a
// relative pattern refers to.
type WeekIndex int

const (
	First WeekIndex = iota
	Second
	Third
	Fourth
	Last
)

var weekIndexNames = [...]string{"First", "Second", "Third", "Fourth", "Last"}

func (w WeekIndex) String() string {
	if w >= 0 && int(w) < len(weekIndexNames) {
		return weekIndexNames[w]
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (w WeekIndex) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WeekIndex) UnmarshalText(text []byte) error {
	for i, name := range weekIndexNames {
		if strings.EqualFold(string(text), name) {
			*w = WeekIndex(i)
			return nil
		}
	}
	return errors.Errorf("unrecognized week index %q", string(text))
}

// Pattern describes how a window repeats. Only the fields relevant to
// Type are consulted; the rest are ignored.
type Pattern struct {
	Type PatternType

	// Interval is the number of pattern units between occurrences
	// (every Interval days, weeks, months or years). At least 1.
	Interval int

	// DaysOfWeek selects the matching weekdays for Weekly,
	// RelativeMonthly and RelativeYearly patterns.
	DaysOfWeek []time.Weekday

	// FirstDayOfWeek is the weekday at which a new weekly interval
	// begins. It determines interval boundaries, not which weekdays
	// match. Defaults to Sunday.
	FirstDayOfWeek time.Weekday

	// DayOfMonth anchors AbsoluteMonthly and AbsoluteYearly patterns,
	// 1 to 31.
	DayOfMonth int

	// Index selects the nth weekday of the month for relative patterns.
	Index WeekIndex

	// Month anchors AbsoluteYearly and RelativeYearly patterns.
	Month time.Month
}

type patternJSON struct {
	Type           PatternType `json:"type"`
	Interval       *int        `json:"interval,omitempty"`
	DaysOfWeek     []string    `json:"days_of_week,omitempty"`
	FirstDayOfWeek string      `json:"first_day_of_week,omitempty"`
	DayOfMonth     int         `json:"day_of_month,omitempty"`
	Index          WeekIndex   `json:"index,omitempty"`
	Month          int         `json:"month,omitempty"`
}

// MarshalJSON implements json.Marshaler using the external string
// forms for enumerations and weekday names.
func (p Pattern) MarshalJSON() ([]byte, error) {
	interval := p.Interval
	aux := patternJSON{
		Type:       p.Type,
		Interval:   &interval,
		DayOfMonth: p.DayOfMonth,
		Index:      p.Index,
		Month:      int(p.Month),
	}
	for _, d := range p.DaysOfWeek {
		aux.DaysOfWeek = append(aux.DaysOfWeek, d.String())
	}
	if len(p.DaysOfWeek) > 0 {
		aux.FirstDayOfWeek = p.FirstDayOfWeek.String()
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler. An absent interval
// defaults to 1; absent first_day_of_week defaults to Sunday.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	var aux patternJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Pattern{
		Type:       aux.Type,
		Interval:   1,
		DayOfMonth: aux.DayOfMonth,
		Index:      aux.Index,
		Month:      time.Month(aux.Month),
	}
	if aux.Interval != nil {
		p.Interval = *aux.Interval
	}
	for _, name := range aux.DaysOfWeek {
		d, err := parseWeekdayName(name)
		if err != nil {
			return err
		}
		p.DaysOfWeek = append(p.DaysOfWeek, d)
	}
	if aux.FirstDayOfWeek != "" {
		d, err := parseWeekdayName(aux.FirstDayOfWeek)
		if err != nil {
			return err
		}
		p.FirstDayOfWeek = d
	}
	return nil
}

// RangeType enumerates how a recurrence is bounded.
type RangeType int

const (
	NoEnd RangeType = iota
	EndDate
	Numbered
)

var rangeTypeNames = [...]string{"NoEnd", "EndDate", "Numbered"}

func (r RangeType) String() string {
	if r >= 0 && int(r) < len(rangeTypeNames) {
		return rangeTypeNames[r]
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (r RangeType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RangeType) UnmarshalText(text []byte) error {
	for i, name := range rangeTypeNames {
		if strings.EqualFold(string(text), name) {
			*r = RangeType(i)
			return nil
		}
	}
	return errors.Errorf("unrecognized recurrence range type %q", string(text))
}

// Range bounds a recurrence: not at all, by a final calendar date, or
// by a number of occurrences.
type Range struct {
	Type RangeType

	// EndDate is the last calendar date, in the recurrence time zone,
	// on which an occurrence may start. Only its year, month and day
	// are consulted.
	EndDate time.Time

	// NumberOfOccurrences caps the series for Numbered ranges. The
	// occurrence count includes the start occurrence, so a value of N
	// admits exactly the first N occurrences.
	NumberOfOccurrences int

	// TimeZone is the recurrence time zone in the form "UTC+HH:MM" or
	// "UTC-HH:MM". When empty, the offset of Start is used.
	TimeZone string
}

const endDateLayout = "2006-01-02"

type rangeJSON struct {
	Type                RangeType `json:"type"`
	EndDate             string    `json:"end_date,omitempty"`
	NumberOfOccurrences int       `json:"number_of_occurrences,omitempty"`
	TimeZone            string    `json:"recurrence_time_zone,omitempty"`
}

// MarshalJSON implements json.Marshaler; the end date serializes as a
// plain calendar date.
func (r Range) MarshalJSON() ([]byte, error) {
	aux := rangeJSON{
		Type:                r.Type,
		NumberOfOccurrences: r.NumberOfOccurrences,
		TimeZone:            r.TimeZone,
	}
	if !r.EndDate.IsZero() {
		aux.EndDate = r.EndDate.Format(endDateLayout)
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Range) UnmarshalJSON(data []byte) error {
	var aux rangeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Range{
		Type:                aux.Type,
		NumberOfOccurrences: aux.NumberOfOccurrences,
		TimeZone:            aux.TimeZone,
	}
	if aux.EndDate != "" {
		d, err := time.Parse(endDateLayout, aux.EndDate)
		if err != nil {
			return errors.Wrapf(err, "unrecognized end date %q", aux.EndDate)
		}
		r.EndDate = d
	}
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdayName(name string) (time.Weekday, error) {
	if d, ok := weekdayNames[strings.ToLower(name)]; ok {
		return d, nil
	}
	return 0, errors.Errorf("unrecognized day of week %q", name)
}
