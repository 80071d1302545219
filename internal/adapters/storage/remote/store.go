package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/taskboard/internal/app"
	"github.com/hylla/taskboard/internal/domain"
)

// Options configures a remote repository.
type Options struct {
	Config     Config
	HTTPClient *http.Client
}

// Repository reads and writes records through the remote record service.
// A repository built from incomplete configuration is unusable: every call
// fails with app.ErrBackendUnavailable.
type Repository struct {
	client  *client
	missing []string
}

// New builds a repository. It never fails; check Ready for usability.
func New(opts Options) *Repository {
	cfg := opts.Config
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Repository{
		client:  &client{cfg: cfg, http: httpClient},
		missing: cfg.Missing(),
	}
}

// NewFromEnv builds a repository from base overlaid with the environment.
func NewFromEnv(base Config, secrets SecretSource) *Repository {
	return New(Options{Config: LoadConfig(base, secrets)})
}

// Ready reports whether the repository has everything it needs to call out.
func (r *Repository) Ready() error {
	if len(r.missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %s", app.ErrBackendUnavailable, strings.Join(r.missing, ", "))
}

// Endpoint returns the configured service endpoint.
func (r *Repository) Endpoint() string {
	return r.client.cfg.Endpoint
}

// Tasks returns the task store.
func (r *Repository) Tasks() app.TaskStore {
	return &taskStore{store: store[domain.Task]{r: r, table: tasks}}
}

// Projects returns the project store.
func (r *Repository) Projects() app.ProjectStore {
	return &store[domain.Project]{r: r, table: projects}
}

// Labels returns the label store.
func (r *Repository) Labels() app.LabelStore {
	return &store[domain.Label]{r: r, table: labels}
}

// Close releases idle connections.
func (r *Repository) Close() error {
	r.client.http.CloseIdleConnections()
	return nil
}

type table[T any] struct {
	name   string
	fields []string
	idOf   func(T) string
	withID func(T, string) T
	decode func(json.RawMessage) (T, error)
	encode func(T, bool) map[string]any
}

var tasks = table[domain.Task]{
	name:   taskTable,
	fields: taskFieldNames,
	idOf:   func(t domain.Task) string { return t.ID },
	withID: func(t domain.Task, id string) domain.Task { t.ID = id; return t },
	decode: decodeTask,
	encode: encodeTask,
}

var projects = table[domain.Project]{
	name:   projectTable,
	fields: projectFieldNames,
	idOf:   func(p domain.Project) string { return p.ID },
	withID: func(p domain.Project, id string) domain.Project { p.ID = id; return p },
	decode: decodeProject,
	encode: encodeProject,
}

var labels = table[domain.Label]{
	name:   labelTable,
	fields: labelFieldNames,
	idOf:   func(l domain.Label) string { return l.ID },
	withID: func(l domain.Label, id string) domain.Label { l.ID = id; return l },
	decode: decodeLabel,
	encode: encodeLabel,
}

type store[T any] struct {
	r     *Repository
	table table[T]
}

func (s *store[T]) query(ctx context.Context, where ...whereClause) ([]T, error) {
	if err := s.r.Ready(); err != nil {
		return nil, err
	}
	rows, err := s.r.client.fetch(ctx, s.table.name, queryRequest{
		Fields:  fieldsOf(s.table.fields...),
		Where:   where,
		OrderBy: byIDAscending,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.table.name, err)
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		record, err := s.table.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *store[T]) GetAll(ctx context.Context) ([]T, error) {
	return s.query(ctx)
}

func (s *store[T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	if err := s.r.Ready(); err != nil {
		return zero, err
	}
	n, err := wireID(id)
	if err != nil {
		return zero, err
	}
	raw, err := s.r.client.fetchOne(ctx, s.table.name, n, queryRequest{Fields: fieldsOf(s.table.fields...)})
	if err == app.ErrNotFound {
		return zero, app.ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("fetch %s %s: %w", s.table.name, id, err)
	}
	return s.table.decode(raw)
}

// Create sends record without an id; the service assigns one.
func (s *store[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	if err := s.r.Ready(); err != nil {
		return zero, err
	}
	result, err := s.r.client.mutate(ctx, http.MethodPost, s.table.name, mutationRequest{
		Records: []map[string]any{s.table.encode(record, true)},
	})
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", s.table.name, err)
	}
	if !hasData(result.Data) {
		return zero, fmt.Errorf("create %s: %w", s.table.name, app.ErrAmbiguousResult)
	}
	created, err := s.table.decode(result.Data)
	if err != nil {
		return zero, err
	}
	if s.table.idOf(created) == "" {
		return zero, fmt.Errorf("create %s: %w", s.table.name, app.ErrAmbiguousResult)
	}
	return created, nil
}

func (s *store[T]) Update(ctx context.Context, id string, record T) (T, error) {
	var zero T
	if err := s.r.Ready(); err != nil {
		return zero, err
	}
	n, err := wireID(id)
	if err != nil {
		return zero, err
	}
	fields := s.table.encode(record, false)
	fields["Id"] = n
	result, err := s.r.client.mutate(ctx, http.MethodPatch, s.table.name, mutationRequest{
		Records: []map[string]any{fields},
	})
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", s.table.name, id, err)
	}
	if !hasData(result.Data) {
		return s.table.withID(record, id), nil
	}
	updated, err := s.table.decode(result.Data)
	if err != nil {
		return zero, err
	}
	if s.table.idOf(updated) == "" {
		updated = s.table.withID(updated, id)
	}
	return updated, nil
}

func (s *store[T]) Delete(ctx context.Context, id string) error {
	if err := s.r.Ready(); err != nil {
		return err
	}
	n, err := wireID(id)
	if err != nil {
		return err
	}
	if _, err := s.r.client.mutate(ctx, http.MethodDelete, s.table.name, deleteRequest{RecordIDs: []int64{n}}); err != nil {
		return fmt.Errorf("delete %s %s: %w", s.table.name, id, err)
	}
	return nil
}

type taskStore struct {
	store[domain.Task]
}

func (s *taskStore) GetByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	return s.query(ctx, equalTo("project_id_c", projectID))
}

func (s *taskStore) GetByStatus(ctx context.Context, status domain.Status) ([]domain.Task, error) {
	return s.query(ctx, equalTo("status_c", string(status)))
}
