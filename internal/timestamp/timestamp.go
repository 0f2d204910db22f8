// Package timestamp parses and formats single outline-markup timestamps such as
// "[2024-03-01 Fri 18:30]" or "<2024-03-01 Fri>".
package timestamp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// pattern matches one inactive or active timestamp.
// Group 1 is the date, group 2 the optional time (HH:MM or HH:MM:SS).
const pattern = `[\[<](\d{4}-\d{2}-\d{2})(?:\s+[^\s\]>\d]+)?(?:\s+(\d{1,2}:\d{2}(?::\d{2})?))?[\]>]`

var exactRe = regexp.MustCompile(`^\s*` + pattern + `\s*$`)

// Parse converts a single timestamp token into a time.Time in UTC.
// Surrounding whitespace is accepted; anything else is an error.
func Parse(s string) (time.Time, error) {
	m := exactRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("timestamp: malformed %q", s)
	}
	return build(m[1], m[2], s)
}

func build(date, clock, raw string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp: invalid date in %q: %w", raw, err)
	}
	if clock == "" {
		return d, nil
	}

	var h, m, sec int
	parts := strings.Split(clock, ":")
	if h, err = strconv.Atoi(parts[0]); err != nil || h > 23 {
		return time.Time{}, fmt.Errorf("timestamp: invalid hour in %q", raw)
	}
	if m, err = strconv.Atoi(parts[1]); err != nil || m > 59 {
		return time.Time{}, fmt.Errorf("timestamp: invalid minute in %q", raw)
	}
	if len(parts) == 3 {
		if sec, err = strconv.Atoi(parts[2]); err != nil || sec > 59 {
			return time.Time{}, fmt.Errorf("timestamp: invalid second in %q", raw)
		}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, sec, 0, time.UTC), nil
}

// Format renders t as an inactive timestamp with minute precision,
// or second precision when t carries seconds.
func Format(t time.Time) string {
	if t.Second() != 0 {
		return t.Format("[2006-01-02 Mon 15:04:05]")
	}
	return t.Format("[2006-01-02 Mon 15:04]")
}
