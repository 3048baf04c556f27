package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/taskboard/taskboard/internal/domain/task"
)

const descriptionPreview = 60

// dueLabel describes the deadline of t at now. The second result is true when
// the task is overdue.
func dueLabel(t task.Task, now time.Time) (string, bool) {
	days, ok := t.DaysRemaining(now)
	if !ok {
		return "", false
	}

	date := t.DueDate.Format(dateLayout)
	if t.IsOverdue(now) {
		return fmt.Sprintf("Due %s (%s late)", date, plural(-days, "day")), true
	}
	if t.Status.IsClosed() || days < 0 {
		return "Due " + date, false
	}
	switch days {
	case 0:
		return "Due " + date + " (today)", false
	default:
		return fmt.Sprintf("Due %s (%s left)", date, plural(days, "day")), false
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// renderCard draws a single task card
func renderCard(t task.Task, now time.Time, width int, focused bool) string {
	lines := []string{cardTitleStyle.Render(t.Title)}

	if t.Description != nil {
		desc := strings.ReplaceAll(*t.Description, "\n", " ")
		lines = append(lines, statusStyle.Render(truncate(desc, descriptionPreview)))
	}

	if label, overdue := dueLabel(t, now); label != "" {
		if overdue {
			lines = append(lines, overdueBadge.Render("OVERDUE")+" "+errorStyle.Render(label))
		} else {
			lines = append(lines, statusStyle.Render(label))
		}
	}

	style := cardStyle
	if focused {
		style = focusedCardStyle
	}
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
