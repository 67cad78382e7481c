package timewindow

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Crontab is a five-field crontab expression (minute, hour,
// day-of-month, month, day-of-week) compiled to bit sets: bit N of a
// field is set when the field accepts the value N. Day-of-week is
// stored canonically on 0..6 with Sunday at 0.
type Crontab struct {
	Minute, Hour, Dom, Month, Dow uint64
}

// bounds provides a range of acceptable values (plus a map of name to value).
type bounds struct {
	name     string
	min, max uint
	names    map[string]uint
}

// The bounds for each field. Day-of-week parses over 0..7 with both 0
// and 7 meaning Sunday; bit 7 is folded into bit 0 after parsing.
var (
	minutes = bounds{"minute", 0, 59, nil}
	hours   = bounds{"hour", 0, 23, nil}
	dom     = bounds{"day_of_month", 1, 31, nil}
	months  = bounds{"month", 1, 12, map[string]uint{
		"jan": 1,
		"feb": 2,
		"mar": 3,
		"apr": 4,
		"may": 5,
		"jun": 6,
		"jul": 7,
		"aug": 8,
		"sep": 9,
		"oct": 10,
		"nov": 11,
		"dec": 12,
	}}
	dow = bounds{"day_of_week", 0, 7, map[string]uint{
		"sun": 0,
		"mon": 1,
		"tue": 2,
		"wed": 3,
		"thu": 4,
		"fri": 5,
		"sat": 6,
	}}
)

// ParseCrontab compiles a crontab expression. It accepts
//   - full five-field specs, e.g. "*/15 9-17 * * mon-fri"
//   - descriptors, e.g. "@daily"
//
// Each field is a comma-separated list of ranges over the field's
// domain: "*", a single value, "A-B", or any of those with a "/step"
// suffix. Extra whitespace between fields is ignored.
func ParseCrontab(expr string) (*Crontab, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "@") {
		return parseDescriptor(expr)
	}

	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, &ParseError{Reason: fmt.Sprintf("expected 5 fields, found %d", len(fields))}
	}

	var c Crontab
	targets := [5]*uint64{&c.Minute, &c.Hour, &c.Dom, &c.Month, &c.Dow}
	boundsList := [5]bounds{minutes, hours, dom, months, dow}
	for i, b := range boundsList {
		bits, err := getField(fields[i], b)
		if err != nil {
			return nil, &ParseError{Field: b.name, Position: i + 1, Reason: err.Error()}
		}
		*targets[i] = bits
	}

	foldSunday(&c)
	return &c, nil
}

// Matches reports whether the wall clock of t satisfies all five
// fields. The caller decides which wall clock to test; no time zone
// conversion happens here.
func (c *Crontab) Matches(t time.Time) bool {
	return 1<<uint(t.Minute())&c.Minute > 0 &&
		1<<uint(t.Hour())&c.Hour > 0 &&
		1<<uint(t.Day())&c.Dom > 0 &&
		1<<uint(t.Month())&c.Month > 0 &&
		1<<uint(t.Weekday())&c.Dow > 0
}

// String renders the expression in a normalized five-field form: "*"
// for a full domain, otherwise comma-joined values and A-B runs.
// Parsing the result yields an equal Crontab.
func (c *Crontab) String() string {
	return strings.Join([]string{
		fieldString(c.Minute, minutes.min, minutes.max),
		fieldString(c.Hour, hours.min, hours.max),
		fieldString(c.Dom, dom.min, dom.max),
		fieldString(c.Month, months.min, months.max),
		fieldString(c.Dow, 0, 6),
	}, " ")
}

// 0 and 7 both mean Sunday.
func foldSunday(c *Crontab) {
	if c.Dow&(1|1<<7) > 0 {
		c.Dow = (c.Dow | 1) &^ (1 << 7)
	}
}

// getField returns an Int with the bits set representing all of the
// times that the field represents. A "field" is a comma-separated
// list of "ranges".
func getField(field string, r bounds) (uint64, error) {
	var bits uint64
	for _, expr := range strings.Split(field, ",") {
		if expr == "" {
			return 0, errors.Errorf("empty segment in '%s'", field)
		}
		computed, err := getRange(expr, r)
		if err != nil {
			return 0, err
		}
		bits |= computed
	}
	return bits, nil
}

// getRange returns the bits indicated by the given expression:
//   "*" | number | number "-" number [ "/" number ]
func getRange(expr string, r bounds) (uint64, error) {
	var (
		start, end, step uint
		rangeAndStep     = strings.Split(expr, "/")
		lowAndHigh       = strings.Split(rangeAndStep[0], "-")
		singleValue      = len(lowAndHigh) == 1
	)

	if lowAndHigh[0] == "*" {
		start = r.min
		end = r.max
	} else {
		var err error
		start, err = parseIntOrName(lowAndHigh[0], r.names)
		if err != nil {
			return 0, errors.Wrap(err, "failed to parse range start")
		}

		switch len(lowAndHigh) {
		case 1:
			end = start
		case 2:
			end, err = parseIntOrName(lowAndHigh[1], r.names)
			if err != nil {
				return 0, errors.Wrap(err, "failed to parse range end")
			}
		default:
			return 0, errors.Errorf("too many hyphens: '%s'", expr)
		}
	}

	switch len(rangeAndStep) {
	case 1:
		step = 1
	case 2:
		var err error
		step, err = mustParseInt(rangeAndStep[1])
		if err != nil {
			return 0, errors.Wrap(err, "failed to parse step")
		}
		if step == 0 {
			return 0, errors.Errorf("step should be a positive number: '%s'", expr)
		}

		// Special handling: "N/step" means "N-max/step".
		if singleValue {
			end = r.max
		}
	default:
		return 0, errors.Errorf("too many slashes: '%s'", expr)
	}

	if start < r.min {
		return 0, errors.Errorf("beginning of range (%d) below minimum (%d): '%s'", start, r.min, expr)
	}
	if end > r.max {
		return 0, errors.Errorf("end of range (%d) above maximum (%d): '%s'", end, r.max, expr)
	}
	if start > end {
		return 0, errors.Errorf("beginning of range (%d) beyond end of range (%d): '%s'", start, end, expr)
	}

	return getBits(start, end, step), nil
}

// parseIntOrName returns the (possibly-named) integer contained in expr.
func parseIntOrName(expr string, names map[string]uint) (uint, error) {
	if names != nil {
		if namedInt, ok := names[strings.ToLower(expr)]; ok {
			return namedInt, nil
		}
	}
	return mustParseInt(expr)
}

// mustParseInt parses the given expression as an int
func mustParseInt(expr string) (uint, error) {
	num, err := strconv.Atoi(expr)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse int from '%s'", expr)
	}
	if num < 0 {
		return 0, errors.Errorf("negative number (%d) not allowed", num)
	}

	return uint(num), nil
}

// getBits sets all bits in the range [min, max], modulo the given step size.
func getBits(min, max, step uint) uint64 {
	var bits uint64

	// If step is 1, use shifts.
	if step == 1 {
		return ^(math.MaxUint64 << (max + 1)) & (math.MaxUint64 << min)
	}

	// Else, use a simple loop.
	for i := min; i <= max; i += step {
		bits |= 1 << i
	}
	return bits
}

// all returns all bits within the given bounds.
func all(r bounds) uint64 {
	return getBits(r.min, r.max, 1)
}

// parseDescriptor returns a pre-defined expression.
func parseDescriptor(expr string) (*Crontab, error) {
	c := &Crontab{
		Minute: 1 << minutes.min,
		Hour:   1 << hours.min,
		Dom:    1 << dom.min,
		Month:  1 << months.min,
		Dow:    1,
	}
	switch expr {
	case "@yearly", "@annually":
		c.Dow = all(dow)
	case "@monthly":
		c.Month = all(months)
		c.Dow = all(dow)
	case "@weekly":
		c.Dom = all(dom)
		c.Month = all(months)
	case "@daily", "@midnight":
		c.Dom = all(dom)
		c.Month = all(months)
		c.Dow = all(dow)
	case "@hourly":
		c.Hour = all(hours)
		c.Dom = all(dom)
		c.Month = all(months)
		c.Dow = all(dow)
	default:
		return nil, &ParseError{Reason: fmt.Sprintf("unrecognized descriptor: %s", expr)}
	}
	foldSunday(c)
	return c, nil
}

// fieldString renders one field's bit set in normalized form.
func fieldString(bits uint64, min, max uint) string {
	if bits == getBits(min, max, 1) {
		return "*"
	}
	var parts []string
	for v := min; v <= max; v++ {
		if bits&(1<<v) == 0 {
			continue
		}
		run := v
		for run < max && bits&(1<<(run+1)) != 0 {
			run++
		}
		if run > v {
			parts = append(parts, fmt.Sprintf("%d-%d", v, run))
		} else {
			parts = append(parts, strconv.Itoa(int(v)))
		}
		v = run
	}
	return strings.Join(parts, ",")
}
