package application

import (
	"strings"
	"time"
)

// earlyJoinGrace is how long before the nominal window start an admission is
// already allowed.
const earlyJoinGrace = 15 * time.Minute

// Admission denial reasons surfaced verbatim to callers.
const (
	reasonCompleted      = "already completed"
	reasonInactive       = "inactive"
	reasonNotStarted     = "not started yet"
	reasonEnded          = "ended"
	reasonNotScheduled   = "not a scheduled day"
	reasonBeforeWindow   = "class has not started yet"
	reasonAfterWindow    = "class is over for today"
	reasonMeetingMissing = "instructor has not started the class yet"
)

// EvaluateSchedule decides whether an admission attempt at now falls inside
// the batch's permitted access window. It returns nil when admitted and a
// *PolicyDeniedError otherwise. The function is pure: same (batch, now),
// same outcome.
//
// A batch without strict scheduling admits unconditionally. Otherwise the
// checks run in a fixed order and short-circuit on the first failure:
// lifecycle status, calendar bounds, recurring weekday, daily time window.
func EvaluateSchedule(batch Batch, now time.Time) error {
	if !batch.StrictSchedule {
		return nil
	}

	switch batch.Status {
	case BatchCompleted:
		return policyDenied(reasonCompleted)
	case BatchInactive:
		return policyDenied(reasonInactive)
	}

	if batch.StartDate != nil && now.Before(startOfDay(*batch.StartDate, now.Location())) {
		return policyDenied(reasonNotStarted)
	}
	if batch.EndDate != nil && !now.Before(startOfDay(*batch.EndDate, now.Location()).AddDate(0, 0, 1)) {
		return policyDenied(reasonEnded)
	}

	if !containsWeekday(batch.RecurringDays, now.Weekday()) {
		return policyDenied(reasonNotScheduled)
	}

	if batch.BatchTime != "" {
		// A malformed window is advisory only; gating falls back to the
		// day-level checks above.
		window, err := parseTimeWindow(batch.BatchTime)
		if err == nil {
			if now.Before(window.start.anchor(now).Add(-earlyJoinGrace)) {
				return policyDenied(reasonBeforeWindow)
			}
			if window.hasEnd && now.After(window.end.anchor(now)) {
				return policyDenied(reasonAfterWindow)
			}
		}
	}

	return nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func containsWeekday(days []string, weekday time.Weekday) bool {
	name := weekday.String()
	for _, day := range days {
		if strings.EqualFold(strings.TrimSpace(day), name) {
			return true
		}
	}
	return false
}
