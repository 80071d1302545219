package app

import (
	"slices"
	"testing"
	"time"

	"github.com/hylla/taskboard/internal/domain"
)

func mustTask(t *testing.T, in domain.TaskInput, now time.Time) domain.Task {
	t.Helper()
	task, err := domain.NewTask(in, now)
	if err != nil {
		t.Fatalf("NewTask(%q) error = %v", in.ID, err)
	}
	return task
}

func timePtr(ts time.Time) *time.Time {
	return &ts
}

func taskIDs(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

// Wednesday 2026-02-18 15:00 UTC; the week runs Sunday 02-15 through Saturday 02-21.
func filterFixture(t *testing.T) ([]domain.Task, time.Time) {
	t.Helper()
	now := time.Date(2026, 2, 18, 15, 0, 0, 0, time.UTC)
	created := now.Add(-72 * time.Hour)
	return []domain.Task{
		mustTask(t, domain.TaskInput{ID: "a", ProjectID: "p1", Title: "Write spec", Priority: domain.PriorityHigh, DueAt: timePtr(now.Add(-24 * time.Hour))}, created),
		mustTask(t, domain.TaskInput{ID: "b", ProjectID: "p1", Title: "Deploy", Description: "Ship the SPEC build", Priority: domain.PriorityLow, DueAt: timePtr(now.Add(2 * time.Hour))}, created),
		mustTask(t, domain.TaskInput{ID: "c", ProjectID: "p2", Title: "Retro", Priority: domain.PriorityHigh, DueAt: timePtr(time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC))}, created),
		mustTask(t, domain.TaskInput{ID: "d", ProjectID: "p1", Title: "Archive logs", Priority: domain.PriorityHigh}, created),
		mustTask(t, domain.TaskInput{ID: "e", ProjectID: "p1", Title: "Old done", Status: domain.StatusDone, DueAt: timePtr(now.Add(-48 * time.Hour))}, created),
		mustTask(t, domain.TaskInput{ID: "f", ProjectID: "p2", Title: "Next month", DueAt: timePtr(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))}, created),
	}, now
}

func TestFilterTasksCriteria(t *testing.T) {
	tasks, now := filterFixture(t)

	cases := []struct {
		name      string
		projectID string
		filters   Filters
		want      []string
	}{
		{name: "no filters", want: []string{"a", "b", "c", "d", "e", "f"}},
		{name: "project", projectID: "p1", want: []string{"a", "b", "d", "e"}},
		{name: "priority", filters: Filters{Priority: domain.PriorityHigh}, want: []string{"a", "c", "d"}},
		{name: "today", filters: Filters{DateRange: DateRangeToday}, want: []string{"b"}},
		{name: "week", filters: Filters{DateRange: DateRangeWeek}, want: []string{"a", "b", "e"}},
		{name: "month", filters: Filters{DateRange: DateRangeMonth}, want: []string{"a", "b", "c", "e"}},
		{name: "overdue excludes done", filters: Filters{DateRange: DateRangeOverdue}, want: []string{"a"}},
		{name: "search title or description", filters: Filters{Query: "  spec "}, want: []string{"a", "b"}},
		{name: "combined", projectID: "p1", filters: Filters{Priority: domain.PriorityHigh, DateRange: DateRangeOverdue, Query: "write"}, want: []string{"a"}},
		{name: "unknown project", projectID: "p9", want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := taskIDs(FilterTasks(tasks, tc.projectID, tc.filters, now))
			if !slices.Equal(got, tc.want) {
				t.Fatalf("FilterTasks() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterTasksIsIdempotent(t *testing.T) {
	tasks, now := filterFixture(t)
	filters := Filters{Priority: domain.PriorityHigh, DateRange: DateRangeMonth, Query: "r"}

	once := FilterTasks(tasks, "p1", filters, now)
	twice := FilterTasks(once, "p1", filters, now)
	if !slices.Equal(taskIDs(once), taskIDs(twice)) {
		t.Fatalf("expected idempotent filter, got %v then %v", taskIDs(once), taskIDs(twice))
	}
}

func TestFilterPredicatesCommute(t *testing.T) {
	tasks, now := filterFixture(t)
	preds := Predicates("p1", Filters{Priority: domain.PriorityHigh, DateRange: DateRangeWeek, Query: "e"}, now)
	if len(preds) != 4 {
		t.Fatalf("expected 4 predicates, got %d", len(preds))
	}
	want := taskIDs(ApplyPredicates(tasks, preds))

	for _, perm := range permutations(len(preds)) {
		ordered := make([]TaskPredicate, 0, len(perm))
		for _, idx := range perm {
			ordered = append(ordered, preds[idx])
		}
		got := tasks
		for _, pred := range ordered {
			got = ApplyPredicates(got, []TaskPredicate{pred})
		}
		if !slices.Equal(taskIDs(got), want) {
			t.Fatalf("order %v gave %v, want %v", perm, taskIDs(got), want)
		}
	}
}

func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, rest := range permutations(n - 1) {
		for i := 0; i <= len(rest); i++ {
			perm := append(append(append([]int{}, rest[:i]...), n-1), rest[i:]...)
			out = append(out, perm)
		}
	}
	return out
}

func TestFilterDateRangeUsesLocalCalendar(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 2, 18, 22, 0, 0, 0, loc)
	lateEvening := mustTask(t, domain.TaskInput{ID: "late", ProjectID: "p1", Title: "x", DueAt: timePtr(time.Date(2026, 2, 18, 23, 30, 0, 0, loc))}, now)

	got := FilterTasks([]domain.Task{lateEvening}, "", Filters{DateRange: DateRangeToday}, now)
	if len(got) != 1 {
		t.Fatalf("expected due date stored in UTC to still match the local day, got %v", taskIDs(got))
	}
}

func TestFilterWeekStartsOnSunday(t *testing.T) {
	saturday := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	sunday := saturday.Add(24 * time.Hour)
	tasks := []domain.Task{
		mustTask(t, domain.TaskInput{ID: "sun-start", ProjectID: "p1", Title: "x", DueAt: timePtr(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC))}, saturday),
		mustTask(t, domain.TaskInput{ID: "next-sun", ProjectID: "p1", Title: "x", DueAt: timePtr(sunday)}, saturday),
	}
	got := taskIDs(FilterTasks(tasks, "", Filters{DateRange: DateRangeWeek}, saturday))
	if !slices.Equal(got, []string{"sun-start"}) {
		t.Fatalf("unexpected week membership %v", got)
	}
}

func TestParseDateRange(t *testing.T) {
	cases := map[string]DateRange{
		"":          DateRangeNone,
		"all":       DateRangeNone,
		"Today":     DateRangeToday,
		"this-week": DateRangeWeek,
		"month":     DateRangeMonth,
		" overdue ": DateRangeOverdue,
	}
	for raw, want := range cases {
		got, err := ParseDateRange(raw)
		if err != nil {
			t.Fatalf("ParseDateRange(%q) error = %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseDateRange(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParseDateRange("yesterday"); err != domain.ErrInvalidDateRange {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if (Filters{}).Active() {
		t.Fatal("expected zero filters to be inactive")
	}
	if !(Filters{Query: "x"}).Active() {
		t.Fatal("expected query filter to be active")
	}
}
