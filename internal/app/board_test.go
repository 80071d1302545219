package app

import (
	"errors"
	"testing"
	"time"

	"github.com/hylla/taskboard/internal/domain"
)

func TestBuildBoardPartitionsEveryTaskOnce(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	tasks := []domain.Task{
		mustTask(t, domain.TaskInput{ID: "t1", ProjectID: "p1", Title: "a", Position: 2}, now),
		mustTask(t, domain.TaskInput{ID: "t2", ProjectID: "p1", Title: "b", Status: domain.StatusInProgress}, now),
		mustTask(t, domain.TaskInput{ID: "t3", ProjectID: "p1", Title: "c", Position: 1}, now),
		mustTask(t, domain.TaskInput{ID: "t4", ProjectID: "p1", Title: "d", Status: domain.StatusDone}, now),
		mustTask(t, domain.TaskInput{ID: "t5", ProjectID: "p1", Title: "e", Position: 1}, now),
	}

	board := BuildBoard(tasks)
	if len(board.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(board.Columns))
	}
	wantTitles := []string{"To Do", "In Progress", "Done"}
	seen := map[string]int{}
	for i, col := range board.Columns {
		if col.Title != wantTitles[i] {
			t.Fatalf("column %d title = %q, want %q", i, col.Title, wantTitles[i])
		}
		for _, task := range col.Tasks {
			if task.Status != col.Status {
				t.Fatalf("task %q with status %q landed in %q", task.ID, task.Status, col.Status)
			}
			seen[task.ID]++
		}
	}
	for _, task := range tasks {
		if seen[task.ID] != 1 {
			t.Fatalf("task %q appeared %d times", task.ID, seen[task.ID])
		}
	}

	todo, _ := board.Column(domain.StatusTodo)
	if got := taskIDs(todo.Tasks); len(got) != 3 || got[0] != "t3" || got[1] != "t5" || got[2] != "t1" {
		t.Fatalf("expected stable position order [t3 t5 t1], got %v", got)
	}
	if board.Len() != len(tasks) {
		t.Fatalf("Len() = %d, want %d", board.Len(), len(tasks))
	}
}

func TestBuildBoardEmptyHasThreeEmptyColumns(t *testing.T) {
	board := BuildBoard(nil)
	if len(board.Columns) != 3 || board.Len() != 0 {
		t.Fatalf("unexpected empty board %#v", board)
	}
	for _, col := range board.Columns {
		if col.Tasks == nil {
			t.Fatalf("expected non-nil task slice for %q", col.Status)
		}
	}
}

func TestDragSessionDropLifecycle(t *testing.T) {
	created := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	task := mustTask(t, domain.TaskInput{ID: "t1", ProjectID: "p1", Title: "drag me"}, created)

	var drag DragSession
	if _, _, err := drag.Drop(domain.StatusDone, now); !errors.Is(err, ErrNoActiveDrag) {
		t.Fatalf("expected ErrNoActiveDrag, got %v", err)
	}
	if err := drag.Start(task); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := drag.Start(task); !errors.Is(err, ErrDragInProgress) {
		t.Fatalf("expected ErrDragInProgress, got %v", err)
	}

	drag.Over(domain.StatusInProgress)
	if drag.OverStatus() != domain.StatusInProgress {
		t.Fatalf("unexpected hover target %q", drag.OverStatus())
	}
	if inFlight, _ := drag.Task(); inFlight.Status != domain.StatusTodo {
		t.Fatalf("expected Over not to mutate the task, got %q", inFlight.Status)
	}

	same, emitted, err := drag.Drop(domain.StatusTodo, now)
	if err != nil {
		t.Fatalf("Drop(same) error = %v", err)
	}
	if emitted || !same.UpdatedAt.Equal(created) {
		t.Fatalf("expected no update for same-column drop, got emitted=%t", emitted)
	}

	done, emitted, err := drag.Drop(domain.StatusDone, now)
	if err != nil {
		t.Fatalf("Drop(done) error = %v", err)
	}
	if !emitted || done.Status != domain.StatusDone || done.CompletedAt == nil || !done.CompletedAt.Equal(now) || !done.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected done drop result %#v", done)
	}
	if original, _ := drag.Task(); original.Status != domain.StatusTodo {
		t.Fatal("expected Drop to leave the captured task untouched")
	}

	drag.End()
	if drag.Active() || drag.TaskID() != "" || drag.OverStatus() != "" {
		t.Fatalf("expected cleared drag session, got %#v", drag)
	}
	drag.End()
}

func TestTransitionTaskClearsCompletion(t *testing.T) {
	created := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	task := mustTask(t, domain.TaskInput{ID: "t1", ProjectID: "p1", Title: "x", Status: domain.StatusDone}, created)

	next, moved, err := TransitionTask(task, domain.StatusInProgress, now)
	if err != nil {
		t.Fatalf("TransitionTask() error = %v", err)
	}
	if !moved || next.CompletedAt != nil || next.Status != domain.StatusInProgress {
		t.Fatalf("unexpected transition %#v", next)
	}
	if task.CompletedAt == nil {
		t.Fatal("expected input task to be left untouched")
	}
	if _, _, err := TransitionTask(task, "blocked", now); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestDragSessionRejectsTaskWithoutID(t *testing.T) {
	var drag DragSession
	if err := drag.Start(domain.Task{}); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if drag.Active() {
		t.Fatal("expected inactive session")
	}
}
