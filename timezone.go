package timewindow

import (
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Recurrence time zones are fixed UTC offsets of the form UTC+HH:MM or
// UTC-HH:MM, with an hour part from 00 to 14 either side.
var timeZonePattern = regexp.MustCompile(`^UTC([+-])(0\d|1[0-4]):([0-5]\d)$`)

// parseTimeZone resolves a recurrence time zone string into a
// fixed-offset location.
func parseTimeZone(s string) (*time.Location, error) {
	m := timeZonePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, errors.Errorf("malformed time zone %q", s)
	}
	hours, _ := strconv.Atoi(m[2])
	mins, _ := strconv.Atoi(m[3])
	offset := (hours*60 + mins) * 60
	if m[1] == "-" {
		offset = -offset
	}
	return time.FixedZone(s, offset), nil
}
