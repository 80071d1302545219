package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hylla/taskboard/internal/adapters/storage/fixture"
	"github.com/hylla/taskboard/internal/app"
	"github.com/hylla/taskboard/internal/domain"
)

// newAdapterForTest builds an adapter over an empty in-memory fixture store.
func newAdapterForTest(t *testing.T) *AppServiceAdapter {
	t.Helper()
	now := time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)
	next := 0
	svc := app.NewService(fixture.New(fixture.Seed{}, -1), func() string {
		next++
		return fmt.Sprintf("id-%d", next)
	}, func() time.Time { return now }, app.ServiceConfig{})
	return NewAppServiceAdapter(svc, time.UTC)
}

// TestAppServiceAdapterTaskLifecycle verifies create, filter, move, and delete through transport contracts.
func TestAppServiceAdapterTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	adapter := newAdapterForTest(t)

	project, err := adapter.CreateProject(ctx, CreateProjectRequest{Name: "Roadmap"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if project.Color != domain.DefaultProjectColor {
		t.Fatalf("color = %q, want default", project.Color)
	}

	task, err := adapter.CreateTask(ctx, CreateTaskRequest{
		ProjectID: project.ID,
		Title:     "Write docs",
		Priority:  "high",
		DueDate:   "2026-02-23",
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if !task.Overdue {
		t.Fatalf("expected task due yesterday to be overdue, got %#v", task)
	}
	if task.Status != "todo" {
		t.Fatalf("status = %q, want todo", task.Status)
	}

	if _, err := adapter.CreateTask(ctx, CreateTaskRequest{ProjectID: project.ID, Title: "Low one", Priority: "low"}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	high, err := adapter.ListTasks(ctx, ListTasksRequest{ProjectID: project.ID, Priority: "high"})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(high) != 1 || high[0].ID != task.ID {
		t.Fatalf("unexpected high-priority tasks %#v", high)
	}

	moved, err := adapter.MoveTask(ctx, MoveTaskRequest{ID: task.ID, Status: "done"})
	if err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if !moved.Moved || moved.Task.CompletedAt == nil || moved.Task.Overdue {
		t.Fatalf("unexpected move result %#v", moved)
	}
	again, err := adapter.MoveTask(ctx, MoveTaskRequest{ID: task.ID, Status: "done"})
	if err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if again.Moved {
		t.Fatal("expected repeated move to report moved=false")
	}

	board, err := adapter.Board(ctx, ListTasksRequest{ProjectID: project.ID})
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	if board.Project == nil || board.Project.TaskCount != 2 || board.Project.CompletedCount != 1 {
		t.Fatalf("unexpected board project %#v", board.Project)
	}
	if len(board.Columns) != 3 || board.Total != 2 || len(board.Columns[2].Tasks) != 1 {
		t.Fatalf("unexpected board %#v", board)
	}

	done, err := adapter.ListTasks(ctx, ListTasksRequest{Status: "done"})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(done) != 1 {
		t.Fatalf("expected one done task, got %#v", done)
	}

	if err := adapter.DeleteTask(ctx, DeleteRequest{ID: task.ID}); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	if err := adapter.DeleteTask(ctx, DeleteRequest{ID: task.ID, Confirm: true}); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := adapter.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestAppServiceAdapterUpdateTaskKeepsOmittedPosition verifies edits without a position keep the sort order.
func TestAppServiceAdapterUpdateTaskKeepsOmittedPosition(t *testing.T) {
	ctx := context.Background()
	adapter := newAdapterForTest(t)

	project, err := adapter.CreateProject(ctx, CreateProjectRequest{Name: "Roadmap"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	task, err := adapter.CreateTask(ctx, CreateTaskRequest{ProjectID: project.ID, Title: "Sorted", Position: 4})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	updated, err := adapter.UpdateTask(ctx, UpdateTaskRequest{ID: task.ID, Title: "Sorted v2", Status: "in_progress"})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Position != 4 || updated.Status != "in_progress" {
		t.Fatalf("expected position 4 in in_progress, got %d in %q", updated.Position, updated.Status)
	}

	position := 1
	updated, err = adapter.UpdateTask(ctx, UpdateTaskRequest{ID: task.ID, Title: "Sorted v2", Position: &position})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Position != 1 {
		t.Fatalf("position = %d, want 1", updated.Position)
	}
}

// TestAppServiceAdapterErrorMapping verifies app/domain errors map onto transport sentinels.
func TestAppServiceAdapterErrorMapping(t *testing.T) {
	ctx := context.Background()
	adapter := newAdapterForTest(t)

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "unknown project is invalid input",
			run: func() error {
				_, err := adapter.CreateTask(ctx, CreateTaskRequest{ProjectID: "missing", Title: "x"})
				return err
			},
			want: ErrInvalidRequest,
		},
		{
			name: "bad priority",
			run: func() error {
				_, err := adapter.ListTasks(ctx, ListTasksRequest{Priority: "urgent"})
				return err
			},
			want: ErrInvalidRequest,
		},
		{
			name: "bad date range",
			run: func() error {
				_, err := adapter.Board(ctx, ListTasksRequest{DateRange: "decade"})
				return err
			},
			want: ErrInvalidRequest,
		},
		{
			name: "bad due date",
			run: func() error {
				_, err := adapter.CreateTask(ctx, CreateTaskRequest{ProjectID: "p", Title: "x", DueDate: "soon"})
				return err
			},
			want: ErrInvalidRequest,
		},
		{
			name: "missing project",
			run: func() error {
				_, err := adapter.GetProject(ctx, "missing")
				return err
			},
			want: ErrNotFound,
		},
		{
			name: "bad color",
			run: func() error {
				_, err := adapter.CreateLabel(ctx, CreateLabelRequest{Name: "bug", Color: "red"})
				return err
			},
			want: ErrInvalidRequest,
		},
		{
			name: "move without status",
			run: func() error {
				_, err := adapter.MoveTask(ctx, MoveTaskRequest{ID: "t1"})
				return err
			},
			want: ErrInvalidRequest,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

// TestMapAppErrorBackendFailures verifies backend failures keep their own sentinels.
func TestMapAppErrorBackendFailures(t *testing.T) {
	if err := mapAppError("list", app.ErrBackendUnavailable); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if err := mapAppError("create", app.ErrAmbiguousResult); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mapAppError("noop", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

// TestNilAdapterIsUnavailable verifies an unconfigured adapter fails closed.
func TestNilAdapterIsUnavailable(t *testing.T) {
	var adapter *AppServiceAdapter
	if _, err := adapter.ListProjects(context.Background()); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}
