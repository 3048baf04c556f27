package board

import (
	"time"

	"github.com/taskboard/taskboard/internal/domain/task"
)

// Buckets holds one slice per persistable status, indexed by Status.Index
type Buckets [task.StatusCount][]task.Task

// Group distributes tasks over the status columns, keeping their order.
// Tasks whose status is not in the table are skipped.
func Group(tasks []task.Task) Buckets {
	var b Buckets
	for _, t := range tasks {
		if i, ok := t.Status.Index(); ok {
			b[i] = append(b[i], t)
		}
	}
	return b
}

// FilterKind selects which tasks the board shows
type FilterKind int

const (
	// FilterAll shows every status column
	FilterAll FilterKind = iota
	// FilterByStatus shows the single column of Filter.Status
	FilterByStatus
	// FilterOverdue shows tasks whose deadline has passed
	FilterOverdue
)

// Filter is the active board view
type Filter struct {
	Kind   FilterKind
	Status task.Status
}

// AllFilter returns the unfiltered view
func AllFilter() Filter {
	return Filter{Kind: FilterAll}
}

// StatusFilter returns the single-status view
func StatusFilter(s task.Status) Filter {
	return Filter{Kind: FilterByStatus, Status: s}
}

// OverdueFilter returns the derived overdue view
func OverdueFilter() Filter {
	return Filter{Kind: FilterOverdue}
}

// Next cycles All, each status in column order, Overdue, then back to All
func (f Filter) Next() Filter {
	switch f.Kind {
	case FilterAll:
		return StatusFilter(task.Statuses[0])
	case FilterByStatus:
		i, ok := f.Status.Index()
		if ok && i+1 < task.StatusCount {
			return StatusFilter(task.Statuses[i+1])
		}
		return OverdueFilter()
	default:
		return AllFilter()
	}
}

// Label names the view for the header
func (f Filter) Label() string {
	switch f.Kind {
	case FilterByStatus:
		return f.Status.Label()
	case FilterOverdue:
		return "Overdue"
	default:
		return "All"
	}
}

// Column is one rendered board column. Status is empty for the overdue view.
type Column struct {
	Title  string
	Status task.Status
	Tasks  []task.Task
}

// Columns lays tasks out for filter f at instant now
func Columns(tasks []task.Task, f Filter, now time.Time) []Column {
	switch f.Kind {
	case FilterByStatus:
		i, ok := f.Status.Index()
		if !ok {
			return nil
		}
		return []Column{{Title: f.Status.Label(), Status: f.Status, Tasks: Group(tasks)[i]}}
	case FilterOverdue:
		var overdue []task.Task
		for _, t := range tasks {
			if t.IsOverdue(now) {
				overdue = append(overdue, t)
			}
		}
		return []Column{{Title: "Overdue", Tasks: overdue}}
	default:
		buckets := Group(tasks)
		cols := make([]Column, task.StatusCount)
		for i, s := range task.Statuses {
			cols[i] = Column{Title: s.Label(), Status: s, Tasks: buckets[i]}
		}
		return cols
	}
}

// Metrics computes the header metrics for tasks
func Metrics(tasks []task.Task, now time.Time) task.Summary {
	return task.Summarize(tasks, now)
}

// Neighbour returns the status left (delta -1) or right (delta +1) of s in
// column order, and false at either edge
func Neighbour(s task.Status, delta int) (task.Status, bool) {
	i, ok := s.Index()
	if !ok {
		return "", false
	}
	j := i + delta
	if j < 0 || j >= task.StatusCount {
		return "", false
	}
	return task.Statuses[j], true
}
