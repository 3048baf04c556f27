package task

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds the derived board metrics
type Summary struct {
	Total          int
	Counts         [StatusCount]int
	Overdue        int
	CompletionRate int
}

// Count returns the number of tasks in status s
func (s Summary) Count(status Status) int {
	if i, ok := status.Index(); ok {
		return s.Counts[i]
	}
	return 0
}

// Summarize computes metrics over tasks at instant now. Tasks with an
// unrecognised status count toward the total only.
func Summarize(tasks []Task, now time.Time) Summary {
	var s Summary
	s.Total = len(tasks)
	for _, t := range tasks {
		if i, ok := t.Status.Index(); ok {
			s.Counts[i]++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	s.CompletionRate = CompletionRate(s.Count(StatusCompleted), s.Total)
	return s
}

// CompletionRate returns round(100 * completed / total), rounding half away
// from zero, and 0 when total is 0.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(completed) * 100).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	return int(rate.IntPart())
}
