package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hylla/taskboard/internal/domain"
	"github.com/jmoiron/sqlx"
)

const taskColumns = `id, project_id, title, description, status, priority, due_at, label_ids_json, position, created_at, updated_at, completed_at`

type taskRow struct {
	ID          string         `db:"id"`
	ProjectID   string         `db:"project_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Status      string         `db:"status"`
	Priority    string         `db:"priority"`
	DueAt       sql.NullString `db:"due_at"`
	LabelIDs    string         `db:"label_ids_json"`
	Position    int            `db:"position"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
	CompletedAt sql.NullString `db:"completed_at"`
}

func taskRowFromDomain(t domain.Task) (taskRow, error) {
	labelIDs := t.LabelIDs
	if labelIDs == nil {
		labelIDs = []string{}
	}
	labelsJSON, err := json.Marshal(labelIDs)
	if err != nil {
		return taskRow{}, fmt.Errorf("encode task %q labels: %w", t.ID, err)
	}
	return taskRow{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueAt:       nullableTS(t.DueAt),
		LabelIDs:    string(labelsJSON),
		Position:    t.Position,
		CreatedAt:   ts(t.CreatedAt),
		UpdatedAt:   ts(t.UpdatedAt),
		CompletedAt: nullableTS(t.CompletedAt),
	}, nil
}

func (r taskRow) toDomain() (domain.Task, error) {
	var labelIDs []string
	if r.LabelIDs != "" {
		if err := json.Unmarshal([]byte(r.LabelIDs), &labelIDs); err != nil {
			return domain.Task{}, fmt.Errorf("decode task %q labels: %w", r.ID, err)
		}
	}
	return domain.Task{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.Status(r.Status),
		Priority:    domain.Priority(r.Priority),
		DueAt:       parseNullTS(r.DueAt),
		LabelIDs:    labelIDs,
		Position:    r.Position,
		CreatedAt:   parseTS(r.CreatedAt),
		UpdatedAt:   parseTS(r.UpdatedAt),
		CompletedAt: parseNullTS(r.CompletedAt),
	}, nil
}

type taskStore struct {
	db *sqlx.DB
}

// GetAll returns every task in insertion order.
func (s *taskStore) GetAll(ctx context.Context) ([]domain.Task, error) {
	return s.selectTasks(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY rowid`)
}

// GetByProject returns the project's tasks in insertion order.
func (s *taskStore) GetByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	return s.selectTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY rowid`, projectID)
}

// GetByStatus returns tasks with exactly status, across projects.
func (s *taskStore) GetByStatus(ctx context.Context, status domain.Status) ([]domain.Task, error) {
	return s.selectTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE status = ? ORDER BY rowid`, string(status))
}

// GetByID returns one task.
func (s *taskStore) GetByID(ctx context.Context, id string) (domain.Task, error) {
	var row taskRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id); err != nil {
		return domain.Task{}, translateGetErr(err)
	}
	return row.toDomain()
}

// Create inserts task and returns it as stored.
func (s *taskStore) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	row, err := taskRowFromDomain(t)
	if err != nil {
		return domain.Task{}, err
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO tasks(`+taskColumns+`)
		VALUES (:id, :project_id, :title, :description, :status, :priority, :due_at, :label_ids_json, :position, :created_at, :updated_at, :completed_at)
	`, row)
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task %q: %w", t.ID, err)
	}
	return s.GetByID(ctx, t.ID)
}

// Update replaces every mutable column of the task stored under id.
func (s *taskStore) Update(ctx context.Context, id string, t domain.Task) (domain.Task, error) {
	t.ID = id
	row, err := taskRowFromDomain(t)
	if err != nil {
		return domain.Task{}, err
	}
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE tasks
		SET project_id = :project_id, title = :title, description = :description, status = :status,
			priority = :priority, due_at = :due_at, label_ids_json = :label_ids_json, position = :position,
			updated_at = :updated_at, completed_at = :completed_at
		WHERE id = :id
	`, row)
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task %q: %w", id, err)
	}
	if err := translateNoRows(res); err != nil {
		return domain.Task{}, err
	}
	return s.GetByID(ctx, id)
}

// Delete deletes task.
func (s *taskStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %q: %w", id, err)
	}
	return translateNoRows(res)
}

func (s *taskStore) selectTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	out := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		task, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, nil
}
