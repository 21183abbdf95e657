package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// dateLayout is the wire format for booking dates.
const dateLayout = "2006-01-02"

// Clock is a wall-clock time of day at second granularity.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock parses an "HH:MM" or "HH:MM:SS" string.
func ParseClock(raw string) (Clock, error) {
	m := clockRe.FindStringSubmatch(raw)
	if m == nil {
		return Clock{}, fmt.Errorf("unable to parse clock time: %q", raw)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second := 0
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}

	if hour > 23 || minute > 59 || second > 59 {
		return Clock{}, fmt.Errorf("clock time out of range: %q", raw)
	}
	return Clock{Hour: hour, Minute: minute, Second: second}, nil
}

// String renders the canonical "HH:MM:SS" wire form.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Before reports whether c is earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	if c.Hour != other.Hour {
		return c.Hour < other.Hour
	}
	if c.Minute != other.Minute {
		return c.Minute < other.Minute
	}
	return c.Second < other.Second
}

// Format12h renders a wire clock string in 12-hour display form,
// e.g. "07:30:00" becomes "7:30 AM". Invalid input is returned as-is.
func Format12h(raw string) string {
	c, err := ParseClock(raw)
	if err != nil {
		return raw
	}
	period := "AM"
	if c.Hour >= 12 {
		period = "PM"
	}
	display := c.Hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, c.Minute, period)
}

// ParseDate validates a "YYYY-MM-DD" booking date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %q", raw)
	}
	return t, nil
}

// Today returns the current date in wire form.
func Today() string {
	return time.Now().Format(dateLayout)
}
