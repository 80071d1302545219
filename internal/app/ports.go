package app

import (
	"context"

	"github.com/hylla/taskboard/internal/domain"
)

// RecordStore is the CRUD contract every backend provides per entity type.
// Create and Update return the record as stored, which may carry a backend-assigned id.
type RecordStore[T any] interface {
	GetAll(context.Context) ([]T, error)
	GetByID(context.Context, string) (T, error)
	Create(context.Context, T) (T, error)
	Update(context.Context, string, T) (T, error)
	Delete(context.Context, string) error
}

// TaskStore adds the equality queries the board needs.
type TaskStore interface {
	RecordStore[domain.Task]
	GetByProject(context.Context, string) ([]domain.Task, error)
	GetByStatus(context.Context, domain.Status) ([]domain.Task, error)
}

type ProjectStore interface {
	RecordStore[domain.Project]
}

type LabelStore interface {
	RecordStore[domain.Label]
}

// Repository bundles the stores of one backend.
type Repository interface {
	Tasks() TaskStore
	Projects() ProjectStore
	Labels() LabelStore
}
