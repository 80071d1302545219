package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/hylla/taskboard/internal/domain"
)

type fakeStore[T any] struct {
	idOf      func(T) string
	order     []string
	records   map[string]T
	updateErr error
	getErr    error
}

func newFakeStore[T any](idOf func(T) string) *fakeStore[T] {
	return &fakeStore[T]{idOf: idOf, records: map[string]T{}}
}

func (f *fakeStore[T]) put(record T) {
	id := f.idOf(record)
	if _, ok := f.records[id]; !ok {
		f.order = append(f.order, id)
	}
	f.records[id] = record
}

func (f *fakeStore[T]) GetAll(context.Context) ([]T, error) {
	out := make([]T, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.records[id])
	}
	return out, nil
}

func (f *fakeStore[T]) GetByID(_ context.Context, id string) (T, error) {
	var zero T
	if f.getErr != nil {
		return zero, f.getErr
	}
	record, ok := f.records[id]
	if !ok {
		return zero, ErrNotFound
	}
	return record, nil
}

func (f *fakeStore[T]) Create(_ context.Context, record T) (T, error) {
	f.put(record)
	return record, nil
}

func (f *fakeStore[T]) Update(_ context.Context, id string, record T) (T, error) {
	var zero T
	if f.updateErr != nil {
		return zero, f.updateErr
	}
	if _, ok := f.records[id]; !ok {
		return zero, ErrNotFound
	}
	f.records[id] = record
	return record, nil
}

func (f *fakeStore[T]) Delete(_ context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return ErrNotFound
	}
	delete(f.records, id)
	f.order = slices.DeleteFunc(f.order, func(v string) bool { return v == id })
	return nil
}

type fakeTaskStore struct {
	*fakeStore[domain.Task]
}

func (f fakeTaskStore) GetByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	all, _ := f.GetAll(ctx)
	return slices.DeleteFunc(all, func(t domain.Task) bool { return t.ProjectID != projectID }), nil
}

func (f fakeTaskStore) GetByStatus(ctx context.Context, status domain.Status) ([]domain.Task, error) {
	all, _ := f.GetAll(ctx)
	return slices.DeleteFunc(all, func(t domain.Task) bool { return t.Status != status }), nil
}

type fakeRepo struct {
	tasks    *fakeStore[domain.Task]
	projects *fakeStore[domain.Project]
	labels   *fakeStore[domain.Label]
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tasks:    newFakeStore(func(t domain.Task) string { return t.ID }),
		projects: newFakeStore(func(p domain.Project) string { return p.ID }),
		labels:   newFakeStore(func(l domain.Label) string { return l.ID }),
	}
}

func (f *fakeRepo) Tasks() TaskStore       { return fakeTaskStore{f.tasks} }
func (f *fakeRepo) Projects() ProjectStore { return f.projects }
func (f *fakeRepo) Labels() LabelStore     { return f.labels }

func newTestService(repo *fakeRepo, now time.Time, cfg ServiceConfig) *Service {
	idCounter := 0
	return NewService(repo, func() string {
		idCounter++
		return fmt.Sprintf("id-%d", idCounter)
	}, func() time.Time {
		return now
	}, cfg)
}

func seedProject(t *testing.T, repo *fakeRepo, id, name string, now time.Time) domain.Project {
	t.Helper()
	project, err := domain.NewProject(id, name, "", now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	repo.projects.put(project)
	return project
}

func TestCreateTaskBumpsProjectCounters(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	seedProject(t, repo, "p1", "Alpha", now)
	svc := newTestService(repo, now, ServiceConfig{})
	ctx := context.Background()

	open, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: "p1", Title: "Write docs"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if open.Priority != domain.PriorityMedium || open.Status != domain.StatusTodo {
		t.Fatalf("unexpected defaults %#v", open)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: "p1", Title: "Ship", Status: domain.StatusDone}); err != nil {
		t.Fatalf("CreateTask(done) error = %v", err)
	}

	project, err := svc.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if project.TaskCount != 2 || project.CompletedCount != 1 {
		t.Fatalf("expected counters 2/1, got %d/%d", project.TaskCount, project.CompletedCount)
	}
	if project.CompletionRate() != 50 {
		t.Fatalf("expected 50%% completion, got %v", project.CompletionRate())
	}
}

func TestCreateTaskRejectsUnknownProject(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now, ServiceConfig{})

	_, err := svc.CreateTask(context.Background(), CreateTaskInput{ProjectID: "missing", Title: "Orphan"})
	if !errors.Is(err, ErrUnknownProject) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrUnknownProject wrapping ErrNotFound, got %v", err)
	}
	if len(repo.tasks.records) != 0 {
		t.Fatalf("expected no task to be stored, got %d", len(repo.tasks.records))
	}
}

func TestMoveTaskTransitionsAndCounters(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	seedProject(t, repo, "p1", "Alpha", now)
	svc := newTestService(repo, now, ServiceConfig{})
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: "p1", Title: "Review"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	same, moved, err := svc.MoveTask(ctx, task.ID, domain.StatusTodo)
	if err != nil {
		t.Fatalf("MoveTask(same) error = %v", err)
	}
	if moved || !same.UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("expected no-op move, got moved=%t task=%#v", moved, same)
	}

	done, moved, err := svc.MoveTask(ctx, task.ID, domain.StatusDone)
	if err != nil {
		t.Fatalf("MoveTask(done) error = %v", err)
	}
	if !moved || done.CompletedAt == nil || !done.CompletedAt.Equal(now) {
		t.Fatalf("expected done task with completion time, got %#v", done)
	}
	project, _ := svc.GetProject(ctx, "p1")
	if project.CompletedCount != 1 {
		t.Fatalf("expected completed count 1, got %d", project.CompletedCount)
	}

	reopened, moved, err := svc.MoveTask(ctx, task.ID, domain.StatusInProgress)
	if err != nil {
		t.Fatalf("MoveTask(in_progress) error = %v", err)
	}
	if !moved || reopened.CompletedAt != nil {
		t.Fatalf("expected completion cleared, got %#v", reopened)
	}
	project, _ = svc.GetProject(ctx, "p1")
	if project.TaskCount != 1 || project.CompletedCount != 0 {
		t.Fatalf("expected counters 1/0, got %d/%d", project.TaskCount, project.CompletedCount)
	}

	if _, _, err := svc.MoveTask(ctx, task.ID, "archived"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestUpdateTaskReassignAdjustsBothProjects(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	seedProject(t, repo, "p1", "Alpha", now)
	seedProject(t, repo, "p2", "Beta", now)
	svc := newTestService(repo, now, ServiceConfig{})
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: "p1", Title: "Port", Status: domain.StatusDone})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	due := now.Add(48 * time.Hour)
	updated, err := svc.UpdateTask(ctx, UpdateTaskInput{
		TaskID:      task.ID,
		ProjectID:   "p2",
		Title:       "Port to Go",
		Description: "all of it",
		Priority:    domain.PriorityHigh,
		DueAt:       &due,
		LabelIDs:    []string{"l1", "l1"},
	})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.ProjectID != "p2" || updated.Title != "Port to Go" || updated.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected updated task %#v", updated)
	}
	if updated.Status != domain.StatusDone || updated.CompletedAt == nil {
		t.Fatalf("expected status to be kept, got %#v", updated)
	}
	if len(updated.LabelIDs) != 1 {
		t.Fatalf("expected deduped labels, got %#v", updated.LabelIDs)
	}

	p1, _ := svc.GetProject(ctx, "p1")
	p2, _ := svc.GetProject(ctx, "p2")
	if p1.TaskCount != 0 || p1.CompletedCount != 0 {
		t.Fatalf("expected p1 emptied, got %d/%d", p1.TaskCount, p1.CompletedCount)
	}
	if p2.TaskCount != 1 || p2.CompletedCount != 1 {
		t.Fatalf("expected p2 1/1, got %d/%d", p2.TaskCount, p2.CompletedCount)
	}
}

func TestUpdateTaskKeepsPositionUnlessSet(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	seedProject(t, repo, "p1", "Alpha", now)
	svc := newTestService(repo, now, ServiceConfig{})
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: "p1", Title: "Sorted", Position: 4})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	updated, err := svc.UpdateTask(ctx, UpdateTaskInput{TaskID: task.ID, Title: "Sorted v2", Status: domain.StatusInProgress})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Position != 4 {
		t.Fatalf("expected position 4 to be kept, got %d", updated.Position)
	}

	zero := 0
	updated, err = svc.UpdateTask(ctx, UpdateTaskInput{TaskID: task.ID, Title: "Sorted v2", Position: &zero})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Position != 0 {
		t.Fatalf("expected explicit position 0, got %d", updated.Position)
	}

	negative := -1
	if _, err := svc.UpdateTask(ctx, UpdateTaskInput{TaskID: task.ID, Title: "Sorted v2", Position: &negative}); !errors.Is(err, domain.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestDeleteTaskRequiresConfirmation(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	seedProject(t, repo, "p1", "Alpha", now)
	svc := newTestService(repo, now, ServiceConfig{})
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: "p1", Title: "Remove me"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if err := svc.DeleteTask(ctx, task.ID, false); !errors.Is(err, ErrDeleteNotConfirmed) {
		t.Fatalf("expected ErrDeleteNotConfirmed, got %v", err)
	}
	if err := svc.DeleteTask(ctx, task.ID, true); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := svc.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	project, _ := svc.GetProject(ctx, "p1")
	if project.TaskCount != 0 {
		t.Fatalf("expected task count 0, got %d", project.TaskCount)
	}
	if err := svc.DeleteTask(ctx, task.ID, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCounterRefreshFailureIsNonFatal(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	seedProject(t, repo, "p1", "Alpha", now)
	var reported []string
	svc := newTestService(repo, now, ServiceConfig{
		OnCounterRefreshError: func(projectID string, err error) {
			reported = append(reported, projectID+": "+err.Error())
		},
	})
	repo.projects.updateErr = errors.New("disk full")

	task, err := svc.CreateTask(context.Background(), CreateTaskInput{ProjectID: "p1", Title: "Still saved"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, ok := repo.tasks.records[task.ID]; !ok {
		t.Fatal("expected task to be stored despite counter failure")
	}
	if len(reported) != 1 || reported[0] != "p1: disk full" {
		t.Fatalf("unexpected reported failures %#v", reported)
	}
}

func TestDeleteProjectCascadesTasks(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	seedProject(t, repo, "p1", "Alpha", now)
	seedProject(t, repo, "p2", "Beta", now)
	svc := newTestService(repo, now, ServiceConfig{})
	ctx := context.Background()

	if _, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: "p1", Title: "A"}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	keep, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: "p2", Title: "B"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if err := svc.DeleteProject(ctx, "p1", false); !errors.Is(err, ErrDeleteNotConfirmed) {
		t.Fatalf("expected ErrDeleteNotConfirmed, got %v", err)
	}
	if err := svc.DeleteProject(ctx, "p1", true); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	tasks, err := svc.ListTasks(ctx, "", Filters{})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != keep.ID {
		t.Fatalf("expected only p2 task to remain, got %#v", tasks)
	}
}

func TestProjectAndLabelCRUD(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now, ServiceConfig{})
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, CreateProjectInput{Name: "Roadmap"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if project.Color != domain.DefaultProjectColor {
		t.Fatalf("expected default color, got %q", project.Color)
	}
	project, err = svc.UpdateProject(ctx, UpdateProjectInput{ProjectID: project.ID, Name: "Roadmap 2026", Color: "ff6b6b"})
	if err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}
	if project.Name != "Roadmap 2026" || project.Color != "#FF6B6B" {
		t.Fatalf("unexpected project %#v", project)
	}
	if _, err := svc.UpdateProject(ctx, UpdateProjectInput{ProjectID: "nope", Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	label, err := svc.CreateLabel(ctx, CreateLabelInput{Name: "bug"})
	if err != nil {
		t.Fatalf("CreateLabel() error = %v", err)
	}
	if label.Color != domain.DefaultLabelColor {
		t.Fatalf("expected default label color, got %q", label.Color)
	}
	if _, err := svc.UpdateLabel(ctx, UpdateLabelInput{LabelID: label.ID, Name: "bug", Color: "not-a-color"}); !errors.Is(err, domain.ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
	if err := svc.DeleteLabel(ctx, label.ID, true); err != nil {
		t.Fatalf("DeleteLabel() error = %v", err)
	}
	labels, err := svc.ListLabels(ctx)
	if err != nil {
		t.Fatalf("ListLabels() error = %v", err)
	}
	if len(labels) != 0 {
		t.Fatalf("expected no labels, got %#v", labels)
	}
}

func TestListTasksByStatusAndBoard(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	seedProject(t, repo, "p1", "Alpha", now)
	svc := newTestService(repo, now, ServiceConfig{})
	ctx := context.Background()

	for i, status := range []domain.Status{domain.StatusTodo, domain.StatusInProgress, domain.StatusDone, domain.StatusTodo} {
		if _, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: "p1", Title: fmt.Sprintf("T%d", i), Status: status}); err != nil {
			t.Fatalf("CreateTask(%d) error = %v", i, err)
		}
	}

	todo, err := svc.ListTasksByStatus(ctx, domain.StatusTodo)
	if err != nil {
		t.Fatalf("ListTasksByStatus() error = %v", err)
	}
	if len(todo) != 2 {
		t.Fatalf("expected 2 todo tasks, got %d", len(todo))
	}
	byProject, err := svc.ListProjectTasks(ctx, "p1")
	if err != nil {
		t.Fatalf("ListProjectTasks() error = %v", err)
	}
	if len(byProject) != 4 {
		t.Fatalf("expected 4 project tasks, got %d", len(byProject))
	}

	board, err := svc.Board(ctx, "p1", Filters{})
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	if board.Len() != 4 || len(board.Columns) != 3 {
		t.Fatalf("unexpected board %#v", board)
	}
	done, _ := board.Column(domain.StatusDone)
	if len(done.Tasks) != 1 || done.Title != "Done" {
		t.Fatalf("unexpected done column %#v", done)
	}
}

func TestReconcileProjectCountersRepairsDrift(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	stale := seedProject(t, repo, "p1", "Alpha", now)
	stale.SetCounters(9, 9)
	repo.projects.put(stale)
	task, _ := domain.NewTask(domain.TaskInput{ID: "t1", ProjectID: "p1", Title: "Only", Status: domain.StatusDone}, now)
	repo.tasks.put(task)
	svc := newTestService(repo, now, ServiceConfig{})

	projects, err := svc.ReconcileProjectCounters(context.Background())
	if err != nil {
		t.Fatalf("ReconcileProjectCounters() error = %v", err)
	}
	if len(projects) != 1 || projects[0].TaskCount != 1 || projects[0].CompletedCount != 1 {
		t.Fatalf("unexpected reconciled projects %#v", projects)
	}
	stored := repo.projects.records["p1"]
	if stored.TaskCount != 1 {
		t.Fatalf("expected stored counters repaired, got %d", stored.TaskCount)
	}
}
