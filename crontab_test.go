package timewindow

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	tests := []struct {
		expr     string
		min, max uint
		expected uint64
		err      string
	}{
		{"5", 0, 7, 1 << 5, ""},
		{"0", 0, 7, 1 << 0, ""},
		{"7", 0, 7, 1 << 7, ""},

		{"5-5", 0, 7, 1 << 5, ""},
		{"5-6", 0, 7, 1<<5 | 1<<6, ""},
		{"5-7", 0, 7, 1<<5 | 1<<6 | 1<<7, ""},

		{"5-6/2", 0, 7, 1 << 5, ""},
		{"5-7/2", 0, 7, 1<<5 | 1<<7, ""},
		{"5-7/1", 0, 7, 1<<5 | 1<<6 | 1<<7, ""},

		{"*", 1, 3, 1<<1 | 1<<2 | 1<<3, ""},
		{"*/2", 1, 3, 1<<1 | 1<<3, ""},

		// "N/step" means "N-max/step".
		{"5/15", 0, 59, 1<<5 | 1<<20 | 1<<35 | 1<<50, ""},

		{"5--5", 0, 0, 0, "too many hyphens"},
		{"jan-x", 0, 0, 0, "failed to parse int from"},
		{"2-x", 1, 5, 0, "failed to parse int from"},
		{"*/-12", 0, 0, 0, "negative number"},
		{"*//2", 0, 0, 0, "too many slashes"},
		{"1", 3, 5, 0, "below minimum"},
		{"6", 3, 5, 0, "above maximum"},
		{"5-3", 3, 5, 0, "beyond end of range"},
		{"*/0", 0, 0, 0, "should be a positive number"},
	}

	for _, c := range tests {
		actual, err := getRange(c.expr, bounds{"test", c.min, c.max, nil})
		if len(c.err) != 0 && (err == nil || !strings.Contains(err.Error(), c.err)) {
			t.Errorf("%s => expected %v, got %v", c.expr, c.err, err)
		}
		if len(c.err) == 0 && err != nil {
			t.Errorf("%s => unexpected error %v", c.expr, err)
		}
		if actual != c.expected {
			t.Errorf("%s => expected %d, got %d", c.expr, c.expected, actual)
		}
	}
}

func TestField(t *testing.T) {
	tests := []struct {
		expr     string
		min, max uint
		expected uint64
		err      string
	}{
		{"5", 1, 7, 1 << 5, ""},
		{"5,6", 1, 7, 1<<5 | 1<<6, ""},
		{"5,6,7", 1, 7, 1<<5 | 1<<6 | 1<<7, ""},
		{"1,5-7/2,3", 1, 7, 1<<1 | 1<<5 | 1<<7 | 1<<3, ""},
		{"5,", 1, 7, 0, "empty segment"},
		{",5", 1, 7, 0, "empty segment"},
	}

	for _, c := range tests {
		actual, err := getField(c.expr, bounds{"test", c.min, c.max, nil})
		if len(c.err) != 0 && (err == nil || !strings.Contains(err.Error(), c.err)) {
			t.Errorf("%s => expected %v, got %v", c.expr, c.err, err)
		}
		if len(c.err) == 0 && err != nil {
			t.Errorf("%s => unexpected error %v", c.expr, err)
		}
		if actual != c.expected {
			t.Errorf("%s => expected %d, got %d", c.expr, c.expected, actual)
		}
	}
}

func TestBits(t *testing.T) {
	tests := []struct {
		min, max, step uint
		expected       uint64
	}{
		{0, 0, 1, 0x1},
		{1, 1, 1, 0x2},
		{1, 5, 2, 0x2a}, // 101010
		{1, 4, 2, 0xa},  // 1010
		{0, 59, 1, 0xfffffffffffffff},
	}

	for _, c := range tests {
		if actual := getBits(c.min, c.max, c.step); actual != c.expected {
			t.Errorf("%d-%d/%d => expected %d, got %d", c.min, c.max, c.step, c.expected, actual)
		}
	}
}

func TestParseCrontabErrors(t *testing.T) {
	tests := []struct {
		expr     string
		field    string
		position int
		reason   string
	}{
		{"* * * *", "", 0, "expected 5 fields, found 4"},
		{"* * * * * *", "", 0, "expected 5 fields, found 6"},
		{"", "", 0, "expected 5 fields, found 0"},
		{"60 * * * *", "minute", 1, "above maximum"},
		{"* 24 * * *", "hour", 2, "above maximum"},
		{"* * 0 * *", "day_of_month", 3, "below minimum"},
		{"* * 32 * *", "day_of_month", 3, "above maximum"},
		{"* * * 13 *", "month", 4, "above maximum"},
		{"* * * * 8", "day_of_week", 5, "above maximum"},
		{"x * * * *", "minute", 1, "failed to parse int"},
		{"*/0 * * * *", "minute", 1, "should be a positive number"},
		{"1,,2 * * * *", "minute", 1, "empty segment"},
		{"@never", "", 0, "unrecognized descriptor"},
	}

	for _, c := range tests {
		_, err := ParseCrontab(c.expr)
		if err == nil {
			t.Errorf("%s => expected error, got none", c.expr)
			continue
		}
		perr, ok := err.(*ParseError)
		if !ok {
			t.Errorf("%s => expected *ParseError, got %T", c.expr, err)
			continue
		}
		if perr.Field != c.field || perr.Position != c.position || !strings.Contains(perr.Reason, c.reason) {
			t.Errorf("%s => expected {%q %d %q}, got {%q %d %q}",
				c.expr, c.field, c.position, c.reason, perr.Field, perr.Position, perr.Reason)
		}
	}
}

func TestCrontabMatches(t *testing.T) {
	tests := []struct {
		time     time.Time
		expr     string
		expected bool
	}{
		// Every fifteen minutes.
		{time.Date(2023, time.September, 5, 10, 30, 0, 0, time.UTC), "*/15 * * * *", true},
		{time.Date(2023, time.September, 5, 10, 31, 0, 0, time.UTC), "*/15 * * * *", false},
		{time.Date(2023, time.September, 5, 10, 0, 0, 0, time.UTC), "*/15 * * * *", true},

		// Business hours, Monday through Friday.
		{time.Date(2023, time.September, 5, 10, 0, 0, 0, time.UTC), "0 9-17 * * 1-5", true},  // Tuesday
		{time.Date(2023, time.September, 9, 10, 0, 0, 0, time.UTC), "0 9-17 * * 1-5", false}, // Saturday
		{time.Date(2023, time.September, 5, 10, 30, 0, 0, time.UTC), "0 9-17 * * 1-5", false},
		{time.Date(2023, time.September, 5, 8, 0, 0, 0, time.UTC), "0 9-17 * * 1-5", false},
		{time.Date(2023, time.September, 8, 17, 0, 0, 0, time.UTC), "0 9-17 * * mon-fri", true}, // Friday

		// Named months.
		{time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), "0 0 29 feb *", true},
		{time.Date(2024, time.March, 29, 0, 0, 0, 0, time.UTC), "0 0 29 feb *", false},

		// 0 and 7 both mean Sunday.
		{time.Date(2023, time.September, 3, 12, 0, 0, 0, time.UTC), "0 12 * * 7", true},
		{time.Date(2023, time.September, 3, 12, 0, 0, 0, time.UTC), "0 12 * * 0", true},
		{time.Date(2023, time.September, 4, 12, 0, 0, 0, time.UTC), "0 12 * * 7", false},

		// All five fields must accept.
		{time.Date(2023, time.September, 3, 0, 0, 0, 0, time.UTC), "* * 1,15 * 0", false}, // Sunday the 3rd
		{time.Date(2023, time.September, 15, 0, 0, 0, 0, time.UTC), "* * 1,15 * 5", true}, // Friday the 15th

		// Descriptors.
		{time.Date(2023, time.September, 5, 15, 0, 0, 0, time.UTC), "@hourly", true},
		{time.Date(2023, time.September, 5, 15, 4, 0, 0, time.UTC), "@hourly", false},
		{time.Date(2023, time.September, 5, 0, 0, 0, 0, time.UTC), "@daily", true},
		{time.Date(2023, time.September, 5, 15, 0, 0, 0, time.UTC), "@daily", false},
		{time.Date(2023, time.September, 3, 0, 0, 0, 0, time.UTC), "@weekly", true}, // Sunday
		{time.Date(2023, time.September, 4, 0, 0, 0, 0, time.UTC), "@weekly", false},
		{time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC), "@monthly", true},
		{time.Date(2023, time.September, 2, 0, 0, 0, 0, time.UTC), "@monthly", false},
		{time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "@yearly", true},
		{time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), "@yearly", false},
	}

	for _, c := range tests {
		expr, err := ParseCrontab(c.expr)
		if err != nil {
			t.Errorf("%s => unexpected error %v", c.expr, err)
			continue
		}
		if actual := expr.Matches(c.time); actual != c.expected {
			t.Errorf("%s on %v => expected %v, got %v", c.expr, c.time, c.expected, actual)
		}
	}
}

// An all-star expression accepts every instant.
func TestCrontabEveryMinute(t *testing.T) {
	expr, err := ParseCrontab("* * * * *")
	require.NoError(t, err)

	instant := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 1000; i++ {
		if !expr.Matches(instant) {
			t.Fatalf("expected %v to match", instant)
		}
		instant = instant.Add(17*time.Minute + 13*time.Hour)
	}
}

func TestCrontabString(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"* * * * *", "* * * * *"},
		{"*/15 * * * *", "0,15,30,45 * * * *"},
		{"0 9-17 * * 1-5", "0 9-17 * * 1-5"},
		{"30 4 1,15 * *", "30 4 1,15 * *"},
		{"0 0 1 jan sun", "0 0 1 1 0"},
		{"* * * * 7", "* * * * 0"},
		{"* * * * 5-7", "* * * * 0,5-6"},
		{"@daily", "0 0 * * *"},
		{"@weekly", "0 0 * * 0"},
	}

	for _, c := range tests {
		expr, err := ParseCrontab(c.expr)
		require.NoError(t, err, c.expr)
		assert.Equal(t, c.expected, expr.String(), c.expr)

		// The normalized form parses back to the same expression.
		again, err := ParseCrontab(expr.String())
		require.NoError(t, err, expr.String())
		assert.Equal(t, expr, again, c.expr)
	}
}
