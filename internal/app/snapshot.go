package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/taskboard/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "taskboard.snapshot.v1"

// Snapshot is the portable JSON form of every project, label, and task.
type Snapshot struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Projects   []SnapshotProject `json:"projects"`
	Labels     []SnapshotLabel   `json:"labels"`
	Tasks      []SnapshotTask    `json:"tasks"`
}

// SnapshotProject represents snapshot project data used by this package.
type SnapshotProject struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Color          string    `json:"color"`
	TaskCount      int       `json:"task_count"`
	CompletedCount int       `json:"completed_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SnapshotLabel represents snapshot label data used by this package.
type SnapshotLabel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      domain.Status   `json:"status"`
	Priority    domain.Priority `json:"priority"`
	DueAt       *time.Time      `json:"due_at,omitempty"`
	LabelIDs    []string        `json:"label_ids"`
	Position    int             `json:"position"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ExportSnapshot collects every record into a sorted snapshot.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	projects, err := s.repo.Projects().GetAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	labels, err := s.repo.Labels().GetAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	tasks, err := s.repo.Tasks().GetAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Projects:   make([]SnapshotProject, 0, len(projects)),
		Labels:     make([]SnapshotLabel, 0, len(labels)),
		Tasks:      make([]SnapshotTask, 0, len(tasks)),
	}
	for _, project := range projects {
		snap.Projects = append(snap.Projects, snapshotProjectFromDomain(project))
	}
	for _, label := range labels {
		snap.Labels = append(snap.Labels, snapshotLabelFromDomain(label))
	}
	for _, task := range tasks {
		snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(task))
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot creates or updates every record by id, then reconciles counters.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()

	for _, project := range snap.Projects {
		if err := upsert[domain.Project](ctx, s.repo.Projects(), project.ID, project.toDomain()); err != nil {
			return fmt.Errorf("import project %q: %w", project.ID, err)
		}
	}
	for _, label := range snap.Labels {
		if err := upsert[domain.Label](ctx, s.repo.Labels(), label.ID, label.toDomain()); err != nil {
			return fmt.Errorf("import label %q: %w", label.ID, err)
		}
	}
	for _, task := range snap.Tasks {
		if err := upsert[domain.Task](ctx, s.repo.Tasks(), task.ID, task.toDomain()); err != nil {
			return fmt.Errorf("import task %q: %w", task.ID, err)
		}
	}

	_, err := s.ReconcileProjectCounters(ctx)
	return err
}

// upsert updates the record when id exists and creates it otherwise.
func upsert[T any](ctx context.Context, store RecordStore[T], id string, record T) error {
	if _, err := store.GetByID(ctx, id); err == nil {
		_, err = store.Update(ctx, id, record)
		return err
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err := store.Create(ctx, record)
	return err
}

// Validate checks every record and cross reference in the snapshot.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}

	projectIDs := map[string]struct{}{}
	for i, p := range s.Projects {
		if err := p.toDomain().Validate(); err != nil {
			return fmt.Errorf("projects[%d]: %w", i, err)
		}
		if _, exists := projectIDs[p.ID]; exists {
			return fmt.Errorf("duplicate project id: %q", p.ID)
		}
		projectIDs[p.ID] = struct{}{}
	}

	labelIDs := map[string]struct{}{}
	for i, l := range s.Labels {
		if strings.TrimSpace(l.ID) == "" {
			return fmt.Errorf("labels[%d]: %w", i, domain.ErrInvalidID)
		}
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("labels[%d]: %w", i, domain.ErrInvalidName)
		}
		if _, err := domain.NormalizeColor(l.Color, domain.DefaultLabelColor); err != nil {
			return fmt.Errorf("labels[%d]: %w", i, err)
		}
		if _, exists := labelIDs[l.ID]; exists {
			return fmt.Errorf("duplicate label id: %q", l.ID)
		}
		labelIDs[l.ID] = struct{}{}
	}

	taskIDs := map[string]struct{}{}
	for i, t := range s.Tasks {
		if err := t.toDomain().Validate(); err != nil {
			return fmt.Errorf("tasks[%d]: %w", i, err)
		}
		if _, ok := projectIDs[t.ProjectID]; !ok {
			return fmt.Errorf("tasks[%d] references unknown project_id %q: %w", i, t.ProjectID, ErrUnknownProject)
		}
		if _, exists := taskIDs[t.ID]; exists {
			return fmt.Errorf("duplicate task id: %q", t.ID)
		}
		taskIDs[t.ID] = struct{}{}
	}
	return nil
}

// sort orders records deterministically so exports diff cleanly.
func (s *Snapshot) sort() {
	sort.Slice(s.Projects, func(i, j int) bool {
		return s.Projects[i].ID < s.Projects[j].ID
	})
	sort.Slice(s.Labels, func(i, j int) bool {
		return s.Labels[i].ID < s.Labels[j].ID
	})
	sort.Slice(s.Tasks, func(i, j int) bool {
		a := s.Tasks[i]
		b := s.Tasks[j]
		if a.ProjectID == b.ProjectID {
			if a.Status == b.Status {
				if a.Position == b.Position {
					return a.ID < b.ID
				}
				return a.Position < b.Position
			}
			return a.Status < b.Status
		}
		return a.ProjectID < b.ProjectID
	})
}

func snapshotProjectFromDomain(p domain.Project) SnapshotProject {
	return SnapshotProject{
		ID:             p.ID,
		Name:           p.Name,
		Color:          p.Color,
		TaskCount:      p.TaskCount,
		CompletedCount: p.CompletedCount,
		CreatedAt:      p.CreatedAt.UTC(),
		UpdatedAt:      p.UpdatedAt.UTC(),
	}
}

func snapshotLabelFromDomain(l domain.Label) SnapshotLabel {
	return SnapshotLabel{
		ID:        l.ID,
		Name:      l.Name,
		Color:     l.Color,
		CreatedAt: l.CreatedAt.UTC(),
		UpdatedAt: l.UpdatedAt.UTC(),
	}
}

func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	return SnapshotTask{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueAt:       copyTimePtr(t.DueAt),
		LabelIDs:    append([]string{}, t.LabelIDs...),
		Position:    t.Position,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		CompletedAt: copyTimePtr(t.CompletedAt),
	}
}

func (p SnapshotProject) toDomain() domain.Project {
	color, err := domain.NormalizeColor(p.Color, domain.DefaultProjectColor)
	if err != nil {
		color = p.Color
	}
	project := domain.Project{
		ID:        strings.TrimSpace(p.ID),
		Name:      strings.TrimSpace(p.Name),
		Color:     color,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
	project.SetCounters(p.TaskCount, p.CompletedCount)
	return project
}

func (l SnapshotLabel) toDomain() domain.Label {
	color, err := domain.NormalizeColor(l.Color, domain.DefaultLabelColor)
	if err != nil {
		color = l.Color
	}
	return domain.Label{
		ID:        strings.TrimSpace(l.ID),
		Name:      strings.TrimSpace(l.Name),
		Color:     color,
		CreatedAt: l.CreatedAt.UTC(),
		UpdatedAt: l.UpdatedAt.UTC(),
	}
}

func (t SnapshotTask) toDomain() domain.Task {
	return domain.Task{
		ID:          strings.TrimSpace(t.ID),
		ProjectID:   strings.TrimSpace(t.ProjectID),
		Title:       strings.TrimSpace(t.Title),
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueAt:       copyTimePtr(t.DueAt),
		LabelIDs:    append([]string(nil), t.LabelIDs...),
		Position:    t.Position,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		CompletedAt: copyTimePtr(t.CompletedAt),
	}
}

func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	out := in.UTC()
	return &out
}
