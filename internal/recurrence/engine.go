// Package recurrence expands a batch's weekly class pattern into concrete
// occurrences, used to project upcoming class slots for calendar views.
package recurrence

import (
	"errors"
	"time"
)

// Rule describes the weekly pattern of a batch.
type Rule struct {
	BatchID  string
	Weekdays []time.Weekday
	// StartMinute and EndMinute bound the daily class window in minutes
	// from midnight. When EndMinute does not exceed StartMinute the rule
	// is treated as date-only and occurrences carry a zero-length window.
	StartMinute int
	EndMinute   int
	StartsOn    *time.Time
	EndsOn      *time.Time
}

// Window bounds an expansion request.
type Window struct {
	From  time.Time
	Until time.Time
}

// Occurrence is one concrete class slot generated from a rule.
type Occurrence struct {
	BatchID string
	Start   time.Time
	End     time.Time
}

// ErrInvalidWindow indicates the expansion window is empty or inverted.
var ErrInvalidWindow = errors.New("recurrence: window end must be after its start")

// maxOccurrences caps a single expansion so a wide window cannot produce
// unbounded output.
const maxOccurrences = 370

// Engine expands rules into occurrences.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that normalizes results to the provided
// location. If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

// Expand generates the rule's occurrences inside the window, in order. Days
// outside the rule's own start/end bounds are excluded; an empty weekday set
// yields no occurrences.
func (e *Engine) Expand(rule Rule, window Window) ([]Occurrence, error) {
	loc := e.location
	if loc == nil {
		loc = time.UTC
	}

	from := window.From.In(loc)
	until := window.Until.In(loc)
	if !until.After(from) {
		return nil, ErrInvalidWindow
	}

	lower := from
	if rule.StartsOn != nil && rule.StartsOn.In(loc).After(lower) {
		lower = rule.StartsOn.In(loc)
	}
	upper := until
	if rule.EndsOn != nil {
		// The rule's end date is inclusive: the whole final day counts.
		endOfDay := startOfDay(rule.EndsOn.In(loc), loc).Add(24 * time.Hour)
		if endOfDay.Before(upper) {
			upper = endOfDay
		}
	}
	if !upper.After(lower) {
		return nil, nil
	}

	weekdaySet := make(map[time.Weekday]struct{}, len(rule.Weekdays))
	for _, day := range rule.Weekdays {
		weekdaySet[day] = struct{}{}
	}
	if len(weekdaySet) == 0 {
		return nil, nil
	}

	var occurrences []Occurrence
	for day := startOfDay(lower, loc); day.Before(upper); day = day.Add(24 * time.Hour) {
		if _, ok := weekdaySet[day.Weekday()]; !ok {
			continue
		}

		start := day.Add(time.Duration(rule.StartMinute) * time.Minute)
		if start.Before(lower) || !start.Before(upper) {
			continue
		}
		end := start
		if rule.EndMinute > rule.StartMinute {
			end = day.Add(time.Duration(rule.EndMinute) * time.Minute)
		}

		occurrences = append(occurrences, Occurrence{
			BatchID: rule.BatchID,
			Start:   start,
			End:     end,
		})
		if len(occurrences) >= maxOccurrences {
			break
		}
	}

	return occurrences, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
