package application

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// minuteOfDay is a normalized time of day in minutes since midnight.
type minuteOfDay int

// anchor places the time of day onto the calendar date of ref, in ref's
// location.
func (m minuteOfDay) anchor(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), int(m)/60, int(m)%60, 0, 0, ref.Location())
}

// parseTimeOfDay parses a clock time in either 24-hour ("19:30") or
// 12-hour-with-meridiem ("7:30 PM", "7:30pm") form.
func parseTimeOfDay(value string) (minuteOfDay, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("empty time of day")
	}

	meridiem := ""
	upper := strings.ToUpper(raw)
	for _, suffix := range []string{"AM", "PM", "A.M.", "P.M."} {
		if strings.HasSuffix(upper, suffix) {
			meridiem = suffix[:1]
			raw = strings.TrimSpace(raw[:len(raw)-len(suffix)])
			break
		}
	}

	parts := strings.SplitN(raw, ":", 2)
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute := 0
	if len(parts) == 2 {
		minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, fmt.Errorf("invalid minute in %q", value)
		}
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("minute out of range in %q", value)
	}

	switch meridiem {
	case "A":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("hour out of range in %q", value)
		}
		if hour == 12 {
			hour = 0
		}
	case "P":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("hour out of range in %q", value)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return 0, fmt.Errorf("hour out of range in %q", value)
		}
	}

	return minuteOfDay(hour*60 + minute), nil
}

// timeWindow is a parsed daily class window. End is optional: a window such
// as "10:00 AM" gates only the start.
type timeWindow struct {
	start  minuteOfDay
	end    minuteOfDay
	hasEnd bool
}

// parseTimeWindow parses a "start-end" window string such as
// "10:00 AM-11:00 AM" or "19:30 - 20:30". The end segment may be absent.
func parseTimeWindow(value string) (timeWindow, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return timeWindow{}, fmt.Errorf("empty window")
	}

	startPart, endPart, found := strings.Cut(raw, "-")
	start, err := parseTimeOfDay(startPart)
	if err != nil {
		return timeWindow{}, err
	}

	window := timeWindow{start: start}
	if found && strings.TrimSpace(endPart) != "" {
		end, err := parseTimeOfDay(endPart)
		if err != nil {
			return timeWindow{}, err
		}
		window.end = end
		window.hasEnd = true
	}
	return window, nil
}
