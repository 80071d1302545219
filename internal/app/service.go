package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/taskboard/internal/domain"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	// OnCounterRefreshError is called when a task write succeeded but the
	// owning project's cached counters could not be persisted.
	OnCounterRefreshError func(projectID string, err error)
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service composes the record stores into the board's use cases.
type Service struct {
	repo           Repository
	idGen          IDGenerator
	clock          Clock
	onCounterError func(string, error)
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	onCounterError := cfg.OnCounterRefreshError
	if onCounterError == nil {
		onCounterError = func(string, error) {}
	}
	return &Service{
		repo:           repo,
		idGen:          idGen,
		clock:          clock,
		onCounterError: onCounterError,
	}
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock()
}

// ListProjects lists projects in backend order.
func (s *Service) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.repo.Projects().GetAll(ctx)
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, projectID string) (domain.Project, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return domain.Project{}, domain.ErrInvalidID
	}
	return s.repo.Projects().GetByID(ctx, projectID)
}

// CreateProjectInput holds input values for create project operations.
type CreateProjectInput struct {
	Name  string
	Color string
}

// CreateProject creates project.
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (domain.Project, error) {
	project, err := domain.NewProject(s.idGen(), in.Name, in.Color, s.clock())
	if err != nil {
		return domain.Project{}, err
	}
	return s.repo.Projects().Create(ctx, project)
}

// UpdateProjectInput holds input values for update project operations.
type UpdateProjectInput struct {
	ProjectID string
	Name      string
	Color     string
}

// UpdateProject updates a project's name and color. Counters are left alone.
func (s *Service) UpdateProject(ctx context.Context, in UpdateProjectInput) (domain.Project, error) {
	project, err := s.GetProject(ctx, in.ProjectID)
	if err != nil {
		return domain.Project{}, err
	}
	if err := project.UpdateDetails(in.Name, in.Color, s.clock()); err != nil {
		return domain.Project{}, err
	}
	return s.repo.Projects().Update(ctx, project.ID, project)
}

// DeleteProject deletes a project and every task that belongs to it.
func (s *Service) DeleteProject(ctx context.Context, projectID string, confirmed bool) error {
	if !confirmed {
		return ErrDeleteNotConfirmed
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return domain.ErrInvalidID
	}
	tasks, err := s.repo.Tasks().GetByProject(ctx, projectID)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if err := s.repo.Tasks().Delete(ctx, task.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete project task %q: %w", task.ID, err)
		}
	}
	return s.repo.Projects().Delete(ctx, projectID)
}

// ListLabels lists labels in backend order.
func (s *Service) ListLabels(ctx context.Context) ([]domain.Label, error) {
	return s.repo.Labels().GetAll(ctx)
}

// CreateLabelInput holds input values for create label operations.
type CreateLabelInput struct {
	Name  string
	Color string
}

// CreateLabel creates label.
func (s *Service) CreateLabel(ctx context.Context, in CreateLabelInput) (domain.Label, error) {
	label, err := domain.NewLabel(s.idGen(), in.Name, in.Color, s.clock())
	if err != nil {
		return domain.Label{}, err
	}
	return s.repo.Labels().Create(ctx, label)
}

// UpdateLabelInput holds input values for update label operations.
type UpdateLabelInput struct {
	LabelID string
	Name    string
	Color   string
}

// UpdateLabel updates label.
func (s *Service) UpdateLabel(ctx context.Context, in UpdateLabelInput) (domain.Label, error) {
	labelID := strings.TrimSpace(in.LabelID)
	if labelID == "" {
		return domain.Label{}, domain.ErrInvalidID
	}
	label, err := s.repo.Labels().GetByID(ctx, labelID)
	if err != nil {
		return domain.Label{}, err
	}
	if err := label.UpdateDetails(in.Name, in.Color, s.clock()); err != nil {
		return domain.Label{}, err
	}
	return s.repo.Labels().Update(ctx, label.ID, label)
}

// DeleteLabel deletes a label. Tasks keep the dangling id until they are next saved.
func (s *Service) DeleteLabel(ctx context.Context, labelID string, confirmed bool) error {
	if !confirmed {
		return ErrDeleteNotConfirmed
	}
	labelID = strings.TrimSpace(labelID)
	if labelID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.Labels().Delete(ctx, labelID)
}

// ListTasks returns every task visible under projectID and filters.
func (s *Service) ListTasks(ctx context.Context, projectID string, filters Filters) ([]domain.Task, error) {
	tasks, err := s.repo.Tasks().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterTasks(tasks, projectID, filters, s.clock()), nil
}

// GetTask returns one task.
func (s *Service) GetTask(ctx context.Context, taskID string) (domain.Task, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return domain.Task{}, domain.ErrInvalidID
	}
	return s.repo.Tasks().GetByID(ctx, taskID)
}

// ListProjectTasks returns the project's tasks through the store's equality query.
func (s *Service) ListProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.Tasks().GetByProject(ctx, projectID)
}

// ListTasksByStatus returns tasks in one column across every project.
func (s *Service) ListTasksByStatus(ctx context.Context, status domain.Status) ([]domain.Task, error) {
	status, err := domain.ParseStatus(string(status))
	if err != nil {
		return nil, err
	}
	return s.repo.Tasks().GetByStatus(ctx, status)
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	DueAt       *time.Time
	LabelIDs    []string
	Position    int
}

// CreateTask creates task and bumps the owning project's counters.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	if err := s.ensureProject(ctx, in.ProjectID); err != nil {
		return domain.Task{}, err
	}
	task, err := domain.NewTask(domain.TaskInput{
		ID:          s.idGen(),
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueAt:       in.DueAt,
		LabelIDs:    in.LabelIDs,
		Position:    in.Position,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	created, err := s.repo.Tasks().Create(ctx, task)
	if err != nil {
		return domain.Task{}, err
	}
	s.refreshCounters(ctx, TaskCounterDeltas(nil, &created))
	return created, nil
}

// UpdateTaskInput holds input values for update task operations.
// ProjectID, Status, and Priority are optional; empty keeps the current value.
// A nil Position keeps the current sort order.
type UpdateTaskInput struct {
	TaskID      string
	ProjectID   string
	Title       string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	DueAt       *time.Time
	LabelIDs    []string
	Position    *int
}

// UpdateTask updates task.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (domain.Task, error) {
	prev, err := s.GetTask(ctx, in.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	now := s.clock()
	next := prev.Clone()
	priority := in.Priority
	if priority == "" {
		priority = prev.Priority
	}
	if err := next.UpdateDetails(in.Title, in.Description, priority, in.DueAt, in.LabelIDs, now); err != nil {
		return domain.Task{}, err
	}
	if projectID := strings.TrimSpace(in.ProjectID); projectID != "" && projectID != prev.ProjectID {
		if err := s.ensureProject(ctx, projectID); err != nil {
			return domain.Task{}, err
		}
		if err := next.Reassign(projectID, now); err != nil {
			return domain.Task{}, err
		}
	}
	if in.Status != "" && in.Status != prev.Status {
		if err := next.SetStatus(in.Status, now); err != nil {
			return domain.Task{}, err
		}
	}
	if in.Position != nil {
		if err := next.SetPosition(*in.Position, now); err != nil {
			return domain.Task{}, err
		}
	}
	return s.persistTaskUpdate(ctx, prev, next)
}

// MoveTask transitions a task to status. It reports false without writing
// anything when the task is already in that column.
func (s *Service) MoveTask(ctx context.Context, taskID string, status domain.Status) (domain.Task, bool, error) {
	status, err := domain.ParseStatus(string(status))
	if err != nil {
		return domain.Task{}, false, err
	}
	prev, err := s.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, false, err
	}
	next, moved, err := TransitionTask(prev, status, s.clock())
	if err != nil || !moved {
		return prev, false, err
	}
	updated, err := s.persistTaskUpdate(ctx, prev, next)
	if err != nil {
		return domain.Task{}, false, err
	}
	return updated, true, nil
}

// PersistDrop writes a task produced by a board drop.
func (s *Service) PersistDrop(ctx context.Context, next domain.Task) (domain.Task, error) {
	prev, err := s.GetTask(ctx, next.ID)
	if err != nil {
		return domain.Task{}, err
	}
	return s.persistTaskUpdate(ctx, prev, next)
}

// DeleteTask deletes task and decrements the owning project's counters.
func (s *Service) DeleteTask(ctx context.Context, taskID string, confirmed bool) error {
	if !confirmed {
		return ErrDeleteNotConfirmed
	}
	prev, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.repo.Tasks().Delete(ctx, prev.ID); err != nil {
		return err
	}
	s.refreshCounters(ctx, TaskCounterDeltas(&prev, nil))
	return nil
}

// Board returns the three-column board for projectID under filters.
func (s *Service) Board(ctx context.Context, projectID string, filters Filters) (Board, error) {
	tasks, err := s.ListTasks(ctx, projectID, filters)
	if err != nil {
		return Board{}, err
	}
	return BuildBoard(tasks), nil
}

// ReconcileProjectCounters recounts every project from the full task list and
// persists the projects whose cached counters drifted.
func (s *Service) ReconcileProjectCounters(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.repo.Projects().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.Tasks().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	recounted := RecountProjects(projects, tasks)
	out := make([]domain.Project, 0, len(recounted))
	for i, project := range recounted {
		if project.TaskCount == projects[i].TaskCount && project.CompletedCount == projects[i].CompletedCount {
			out = append(out, project)
			continue
		}
		updated, err := s.repo.Projects().Update(ctx, project.ID, project)
		if err != nil {
			return nil, fmt.Errorf("reconcile project %q counters: %w", project.ID, err)
		}
		out = append(out, updated)
	}
	return out, nil
}

// persistTaskUpdate writes next and applies the counter change from prev.
func (s *Service) persistTaskUpdate(ctx context.Context, prev, next domain.Task) (domain.Task, error) {
	if err := next.Validate(); err != nil {
		return domain.Task{}, err
	}
	updated, err := s.repo.Tasks().Update(ctx, next.ID, next)
	if err != nil {
		return domain.Task{}, err
	}
	s.refreshCounters(ctx, TaskCounterDeltas(&prev, &updated))
	return updated, nil
}

// refreshCounters applies deltas to the stored projects. Failures are reported, not returned.
func (s *Service) refreshCounters(ctx context.Context, deltas []CounterDelta) {
	for _, delta := range deltas {
		project, err := s.repo.Projects().GetByID(ctx, delta.ProjectID)
		if err != nil {
			s.onCounterError(delta.ProjectID, err)
			continue
		}
		project.SetCounters(project.TaskCount+delta.Tasks, project.CompletedCount+delta.Completed)
		if _, err := s.repo.Projects().Update(ctx, project.ID, project); err != nil {
			s.onCounterError(delta.ProjectID, err)
		}
	}
}

// ensureProject maps a missing project onto ErrUnknownProject.
func (s *Service) ensureProject(ctx context.Context, projectID string) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return domain.ErrInvalidID
	}
	if _, err := s.repo.Projects().GetByID(ctx, projectID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errors.Join(ErrUnknownProject, err)
		}
		return err
	}
	return nil
}
