package domain

import (
	"testing"
	"time"
)

func TestNewProjectDefaultsColor(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	p, err := NewProject("p1", "  Website Redesign  ", "", now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if p.Name != "Website Redesign" {
		t.Fatalf("unexpected name %q", p.Name)
	}
	if p.Color != DefaultProjectColor {
		t.Fatalf("unexpected color %q", p.Color)
	}
}

func TestNewProjectValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewProject("", "ok", "", now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewProject("id", "   ", "", now); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := NewProject("id", "ok", "blue", now); err != ErrInvalidColor {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
}

func TestProjectCompletionRate(t *testing.T) {
	p := Project{}
	if got := p.CompletionRate(); got != 0 {
		t.Fatalf("expected 0 for empty project, got %v", got)
	}
	p.SetCounters(4, 1)
	if got := p.CompletionRate(); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
	p.SetCounters(2, 5)
	if p.CompletedCount != 2 {
		t.Fatalf("expected completed clamped to total, got %d", p.CompletedCount)
	}
	p.SetCounters(-1, -1)
	if p.TaskCount != 0 || p.CompletedCount != 0 {
		t.Fatalf("expected counters clamped to zero, got %d/%d", p.CompletedCount, p.TaskCount)
	}
}

func TestNormalizeColor(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr error
	}{
		{raw: "#ff6b6b", want: "#FF6B6B"},
		{raw: "4ecdc4", want: "#4ECDC4"},
		{raw: "", want: DefaultLabelColor},
		{raw: "#12345", wantErr: ErrInvalidColor},
		{raw: "#GGGGGG", wantErr: ErrInvalidColor},
	}
	for _, tc := range cases {
		got, err := NormalizeColor(tc.raw, DefaultLabelColor)
		if err != tc.wantErr {
			t.Fatalf("NormalizeColor(%q) error = %v, want %v", tc.raw, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("NormalizeColor(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestPalettesAreCopies(t *testing.T) {
	palette := ProjectPalette()
	if len(palette) != 12 || palette[0] != DefaultProjectColor {
		t.Fatalf("unexpected project palette %#v", palette)
	}
	palette[0] = "#000000"
	if ProjectPalette()[0] != DefaultProjectColor {
		t.Fatal("expected palette mutation not to leak")
	}
	if len(LabelPalette()) != 12 {
		t.Fatalf("unexpected label palette size %d", len(LabelPalette()))
	}
}

func TestNewTaskDefaultsAndNormalization(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	due := time.Date(2026, 2, 22, 9, 30, 15, 999, time.FixedZone("x", 3600))
	task, err := NewTask(TaskInput{
		ID:        "t1",
		ProjectID: "p1",
		Title:     "  Fix login bug ",
		DueAt:     &due,
		LabelIDs:  []string{"l2", " l1 ", "l2", ""},
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.Title != "Fix login bug" {
		t.Fatalf("unexpected title %q", task.Title)
	}
	if task.Priority != PriorityMedium || task.Status != StatusTodo {
		t.Fatalf("unexpected defaults %q/%q", task.Priority, task.Status)
	}
	if task.CompletedAt != nil {
		t.Fatal("expected completed_at nil for todo task")
	}
	if len(task.LabelIDs) != 2 || task.LabelIDs[0] != "l2" || task.LabelIDs[1] != "l1" {
		t.Fatalf("unexpected label ids %#v", task.LabelIDs)
	}
	if task.DueAt.Location() != time.UTC || task.DueAt.Nanosecond() != 0 {
		t.Fatalf("expected due date normalized to UTC seconds, got %v", task.DueAt)
	}
}

func TestNewTaskDoneSetsCompletedAt(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	task, err := NewTask(TaskInput{ID: "t1", ProjectID: "p1", Title: "Ship", Status: StatusDone}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(now) {
		t.Fatalf("expected completed_at %v, got %v", now, task.CompletedAt)
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestNewTaskValidation(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		in   TaskInput
		want error
	}{
		{name: "missing id", in: TaskInput{ProjectID: "p1", Title: "x"}, want: ErrInvalidID},
		{name: "missing project", in: TaskInput{ID: "t1", Title: "x"}, want: ErrInvalidID},
		{name: "blank title", in: TaskInput{ID: "t1", ProjectID: "p1", Title: " "}, want: ErrInvalidTitle},
		{name: "negative position", in: TaskInput{ID: "t1", ProjectID: "p1", Title: "x", Position: -1}, want: ErrInvalidPosition},
		{name: "bad priority", in: TaskInput{ID: "t1", ProjectID: "p1", Title: "x", Priority: "urgent"}, want: ErrInvalidPriority},
		{name: "bad status", in: TaskInput{ID: "t1", ProjectID: "p1", Title: "x", Status: "blocked"}, want: ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewTask(tc.in, now); err != tc.want {
				t.Fatalf("NewTask() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTaskSetStatusKeepsCompletedAtInvariant(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	task, err := NewTask(TaskInput{ID: "t1", ProjectID: "p1", Title: "Ship"}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	doneAt := now.Add(time.Hour)
	if err := task.SetStatus(StatusDone, doneAt); err != nil {
		t.Fatalf("SetStatus(done) error = %v", err)
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(doneAt) {
		t.Fatalf("expected completed_at %v, got %v", doneAt, task.CompletedAt)
	}
	if err := task.SetStatus(StatusTodo, doneAt.Add(time.Hour)); err != nil {
		t.Fatalf("SetStatus(todo) error = %v", err)
	}
	if task.CompletedAt != nil {
		t.Fatalf("expected completed_at cleared, got %v", task.CompletedAt)
	}
	if err := task.SetStatus("archived", now); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	task := Task{Status: StatusTodo, DueAt: &yesterday}
	if !task.IsOverdue(now) {
		t.Fatal("expected open task due yesterday to be overdue")
	}
	task.Status = StatusDone
	if task.IsOverdue(now) {
		t.Fatal("expected done task not overdue")
	}
	task.Status = StatusTodo
	task.DueAt = nil
	if task.IsOverdue(now) {
		t.Fatal("expected task without due date not overdue")
	}
}

func TestParseStatusAndPriority(t *testing.T) {
	if s, err := ParseStatus(" In-Progress "); err != nil || s != StatusInProgress {
		t.Fatalf("ParseStatus() = %q, %v", s, err)
	}
	if _, err := ParseStatus("blocked"); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if p, err := ParsePriority("HIGH"); err != nil || p != PriorityHigh {
		t.Fatalf("ParsePriority() = %q, %v", p, err)
	}
	if _, err := ParsePriority("critical"); err != ErrInvalidPriority {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestTaskCloneIsDeep(t *testing.T) {
	now := time.Now()
	task := Task{LabelIDs: []string{"a"}, DueAt: &now}
	clone := task.Clone()
	clone.LabelIDs[0] = "b"
	*clone.DueAt = now.Add(time.Hour)
	if task.LabelIDs[0] != "a" || !task.DueAt.Equal(now) {
		t.Fatal("expected clone mutations not to leak")
	}
}

func TestResolveLabelsDropsDangling(t *testing.T) {
	now := time.Now()
	bug, _ := NewLabel("l1", "bug", "#EF4444", now)
	ui, _ := NewLabel("l2", "ui", "", now)
	got := ResolveLabels([]string{"l2", "missing", "l1"}, []Label{bug, ui})
	if len(got) != 2 || got[0].ID != "l2" || got[1].ID != "l1" {
		t.Fatalf("unexpected resolved labels %#v", got)
	}
	if ui.Color != DefaultLabelColor {
		t.Fatalf("unexpected default label color %q", ui.Color)
	}
}
