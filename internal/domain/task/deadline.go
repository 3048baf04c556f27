package task

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// DaysRemaining returns ceil((due - now) / 1 day). A deadline later today
// counts as 1, one that passed earlier today as 0.
func DaysRemaining(due, now time.Time) int {
	return int(math.Ceil(float64(due.Sub(now)) / float64(day)))
}

// DaysRemaining returns the day count to the due date, false without one
func (t Task) DaysRemaining(now time.Time) (int, bool) {
	if t.DueDate == nil {
		return 0, false
	}
	return DaysRemaining(*t.DueDate, now), true
}

// IsOverdue reports the derived overdue condition: the deadline has passed
// and the task is neither completed nor cancelled.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Status == StatusOverdue {
		return true
	}
	days, ok := t.DaysRemaining(now)
	if !ok {
		return false
	}
	return days < 0 && !t.Status.IsClosed()
}
