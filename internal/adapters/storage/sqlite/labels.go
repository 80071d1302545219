package sqlite

import (
	"context"
	"fmt"

	"github.com/hylla/taskboard/internal/domain"
	"github.com/jmoiron/sqlx"
)

type labelRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Color     string `db:"color"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type labelStore struct {
	db *sqlx.DB
}

func (s *labelStore) GetAll(ctx context.Context) ([]domain.Label, error) {
	var rows []labelRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, color, created_at, updated_at FROM labels ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	out := make([]domain.Label, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Label{
			ID:        row.ID,
			Name:      row.Name,
			Color:     row.Color,
			CreatedAt: parseTS(row.CreatedAt),
			UpdatedAt: parseTS(row.UpdatedAt),
		})
	}
	return out, nil
}

func (s *labelStore) GetByID(ctx context.Context, id string) (domain.Label, error) {
	var row labelRow
	if err := s.db.GetContext(ctx, &row, `SELECT id, name, color, created_at, updated_at FROM labels WHERE id = ?`, id); err != nil {
		return domain.Label{}, translateGetErr(err)
	}
	return domain.Label{
		ID:        row.ID,
		Name:      row.Name,
		Color:     row.Color,
		CreatedAt: parseTS(row.CreatedAt),
		UpdatedAt: parseTS(row.UpdatedAt),
	}, nil
}

func (s *labelStore) Create(ctx context.Context, l domain.Label) (domain.Label, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO labels(id, name, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, l.ID, l.Name, l.Color, ts(l.CreatedAt), ts(l.UpdatedAt))
	if err != nil {
		return domain.Label{}, fmt.Errorf("insert label %q: %w", l.ID, err)
	}
	return s.GetByID(ctx, l.ID)
}

func (s *labelStore) Update(ctx context.Context, id string, l domain.Label) (domain.Label, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE labels SET name = ?, color = ?, updated_at = ? WHERE id = ?
	`, l.Name, l.Color, ts(l.UpdatedAt), id)
	if err != nil {
		return domain.Label{}, fmt.Errorf("update label %q: %w", id, err)
	}
	if err := translateNoRows(res); err != nil {
		return domain.Label{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *labelStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM labels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete label %q: %w", id, err)
	}
	return translateNoRows(res)
}
