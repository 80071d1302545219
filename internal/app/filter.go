package app

import (
	"strings"
	"time"

	"github.com/hylla/taskboard/internal/domain"
)

// DateRange selects tasks by due date relative to now.
type DateRange string

const (
	DateRangeNone    DateRange = ""
	DateRangeToday   DateRange = "today"
	DateRangeWeek    DateRange = "week"
	DateRangeMonth   DateRange = "month"
	DateRangeOverdue DateRange = "overdue"
)

var dateRanges = []DateRange{DateRangeNone, DateRangeToday, DateRangeWeek, DateRangeMonth, DateRangeOverdue}

// DateRanges returns every range in cycling order, starting with none.
func DateRanges() []DateRange {
	return append([]DateRange(nil), dateRanges...)
}

// ParseDateRange normalizes raw input into a DateRange.
func ParseDateRange(raw string) (DateRange, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none", "all":
		return DateRangeNone, nil
	case "today":
		return DateRangeToday, nil
	case "week", "this-week", "this_week":
		return DateRangeWeek, nil
	case "month", "this-month", "this_month":
		return DateRangeMonth, nil
	case "overdue":
		return DateRangeOverdue, nil
	default:
		return "", domain.ErrInvalidDateRange
	}
}

// Filters holds the user-selected task filter criteria.
type Filters struct {
	Priority  domain.Priority
	DateRange DateRange
	Query     string
}

// Active reports whether any criterion narrows the task list.
func (f Filters) Active() bool {
	return f.Priority != "" || f.DateRange != DateRangeNone || strings.TrimSpace(f.Query) != ""
}

// TaskPredicate reports whether one task passes a filter criterion.
type TaskPredicate func(domain.Task) bool

// Predicates returns one predicate per active criterion. They are independent,
// so applying them in any order yields the same subset.
func Predicates(projectID string, f Filters, now time.Time) []TaskPredicate {
	out := make([]TaskPredicate, 0, 4)
	if projectID = strings.TrimSpace(projectID); projectID != "" {
		out = append(out, func(t domain.Task) bool {
			return t.ProjectID == projectID
		})
	}
	if f.Priority != "" {
		priority := f.Priority
		out = append(out, func(t domain.Task) bool {
			return t.Priority == priority
		})
	}
	if f.DateRange != DateRangeNone {
		dateRange := f.DateRange
		out = append(out, func(t domain.Task) bool {
			return matchesDateRange(t, dateRange, now)
		})
	}
	if query := strings.ToLower(strings.TrimSpace(f.Query)); query != "" {
		out = append(out, func(t domain.Task) bool {
			return strings.Contains(strings.ToLower(t.Title), query) ||
				strings.Contains(strings.ToLower(t.Description), query)
		})
	}
	return out
}

// ApplyPredicates keeps tasks passing every predicate, preserving input order.
func ApplyPredicates(tasks []domain.Task, predicates []TaskPredicate) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		keep := true
		for _, pred := range predicates {
			if !pred(task) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, task)
		}
	}
	return out
}

// FilterTasks derives the visible subset of all for the selected project and filters.
// An empty selectedProjectID keeps tasks from every project.
func FilterTasks(all []domain.Task, selectedProjectID string, f Filters, now time.Time) []domain.Task {
	return ApplyPredicates(all, Predicates(selectedProjectID, f, now))
}

// matchesDateRange evaluates the range against calendar boundaries in now's location.
func matchesDateRange(t domain.Task, dateRange DateRange, now time.Time) bool {
	if t.DueAt == nil {
		return false
	}
	due := t.DueAt.In(now.Location())
	switch dateRange {
	case DateRangeToday:
		return sameDay(due, now)
	case DateRangeWeek:
		start := startOfWeek(now)
		end := start.AddDate(0, 0, 7)
		return !due.Before(start) && due.Before(end)
	case DateRangeMonth:
		return due.Year() == now.Year() && due.Month() == now.Month()
	case DateRangeOverdue:
		return t.IsOverdue(now)
	default:
		return true
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// startOfWeek returns local midnight of the Sunday on or before t.
func startOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}
