package sqlite

import (
	"context"
	"fmt"

	"github.com/hylla/taskboard/internal/domain"
	"github.com/jmoiron/sqlx"
)

type projectRow struct {
	ID             string `db:"id"`
	Name           string `db:"name"`
	Color          string `db:"color"`
	TaskCount      int    `db:"task_count"`
	CompletedCount int    `db:"completed_count"`
	CreatedAt      string `db:"created_at"`
	UpdatedAt      string `db:"updated_at"`
}

func (r projectRow) toDomain() domain.Project {
	return domain.Project{
		ID:             r.ID,
		Name:           r.Name,
		Color:          r.Color,
		TaskCount:      r.TaskCount,
		CompletedCount: r.CompletedCount,
		CreatedAt:      parseTS(r.CreatedAt),
		UpdatedAt:      parseTS(r.UpdatedAt),
	}
}

func projectRowFromDomain(p domain.Project) projectRow {
	return projectRow{
		ID:             p.ID,
		Name:           p.Name,
		Color:          p.Color,
		TaskCount:      p.TaskCount,
		CompletedCount: p.CompletedCount,
		CreatedAt:      ts(p.CreatedAt),
		UpdatedAt:      ts(p.UpdatedAt),
	}
}

type projectStore struct {
	db *sqlx.DB
}

func (s *projectStore) GetAll(ctx context.Context) ([]domain.Project, error) {
	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, color, task_count, completed_count, created_at, updated_at
		FROM projects
		ORDER BY rowid
	`); err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	out := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *projectStore) GetByID(ctx context.Context, id string) (domain.Project, error) {
	var row projectRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, color, task_count, completed_count, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id)
	if err != nil {
		return domain.Project{}, translateGetErr(err)
	}
	return row.toDomain(), nil
}

func (s *projectStore) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO projects(id, name, color, task_count, completed_count, created_at, updated_at)
		VALUES (:id, :name, :color, :task_count, :completed_count, :created_at, :updated_at)
	`, projectRowFromDomain(p))
	if err != nil {
		return domain.Project{}, fmt.Errorf("insert project %q: %w", p.ID, err)
	}
	return s.GetByID(ctx, p.ID)
}

func (s *projectStore) Update(ctx context.Context, id string, p domain.Project) (domain.Project, error) {
	p.ID = id
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE projects
		SET name = :name, color = :color, task_count = :task_count, completed_count = :completed_count, updated_at = :updated_at
		WHERE id = :id
	`, projectRowFromDomain(p))
	if err != nil {
		return domain.Project{}, fmt.Errorf("update project %q: %w", id, err)
	}
	if err := translateNoRows(res); err != nil {
		return domain.Project{}, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the project; its tasks go with it through the foreign key.
func (s *projectStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %q: %w", id, err)
	}
	return translateNoRows(res)
}
