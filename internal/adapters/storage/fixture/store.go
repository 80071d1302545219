package fixture

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hylla/taskboard/internal/app"
	"github.com/hylla/taskboard/internal/domain"
)

// DefaultLatency is the synthetic delay applied to every call.
const DefaultLatency = 200 * time.Millisecond

// Options configures a fixture repository.
type Options struct {
	// Latency delays every call. Negative disables the delay; zero uses DefaultLatency.
	Latency time.Duration
	// Path overrides the bundled seed with a YAML file from disk.
	Path string
	Now  func() time.Time
}

// Repository serves records from memory with a synthetic network delay.
type Repository struct {
	latency  time.Duration
	tasks    *collection[domain.Task]
	projects *collection[domain.Project]
	labels   *collection[domain.Label]
}

// Open loads the seed selected by opts.
func Open(opts Options) (*Repository, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	var (
		seed Seed
		err  error
	)
	if opts.Path != "" {
		seed, err = SeedFromFile(opts.Path, opts.Now())
	} else {
		seed, err = DefaultSeed(opts.Now())
	}
	if err != nil {
		return nil, err
	}
	return New(seed, opts.Latency), nil
}

// New builds a repository over seed. The seed slices are copied and project
// counters are recomputed from the seeded tasks.
func New(seed Seed, latency time.Duration) *Repository {
	switch {
	case latency == 0:
		latency = DefaultLatency
	case latency < 0:
		latency = 0
	}
	return &Repository{
		latency: latency,
		tasks: newCollection(seed.Tasks,
			func(t domain.Task) string { return t.ID },
			func(t domain.Task, id string) domain.Task { t.ID = id; return t },
			domain.Task.Clone),
		projects: newCollection(app.RecountProjects(seed.Projects, seed.Tasks),
			func(p domain.Project) string { return p.ID },
			func(p domain.Project, id string) domain.Project { p.ID = id; return p },
			nil),
		labels: newCollection(seed.Labels,
			func(l domain.Label) string { return l.ID },
			func(l domain.Label, id string) domain.Label { l.ID = id; return l },
			nil),
	}
}

// Tasks returns the task store.
func (r *Repository) Tasks() app.TaskStore {
	return &taskStore{store: store[domain.Task]{r: r, c: r.tasks}}
}

// Projects returns the project store.
func (r *Repository) Projects() app.ProjectStore {
	return &store[domain.Project]{r: r, c: r.projects}
}

// Labels returns the label store.
func (r *Repository) Labels() app.LabelStore {
	return &store[domain.Label]{r: r, c: r.labels}
}

// Close is a no-op kept for parity with the other backends.
func (r *Repository) Close() error {
	return nil
}

// wait blocks for the configured latency or until ctx is done.
func (r *Repository) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type store[T any] struct {
	r *Repository
	c *collection[T]
}

func (s *store[T]) GetAll(ctx context.Context) ([]T, error) {
	if err := s.r.wait(ctx); err != nil {
		return nil, err
	}
	return s.c.all(nil), nil
}

func (s *store[T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	if err := s.r.wait(ctx); err != nil {
		return zero, err
	}
	return s.c.get(id)
}

func (s *store[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	if err := s.r.wait(ctx); err != nil {
		return zero, err
	}
	return s.c.create(record)
}

func (s *store[T]) Update(ctx context.Context, id string, record T) (T, error) {
	var zero T
	if err := s.r.wait(ctx); err != nil {
		return zero, err
	}
	return s.c.update(id, record)
}

func (s *store[T]) Delete(ctx context.Context, id string) error {
	if err := s.r.wait(ctx); err != nil {
		return err
	}
	return s.c.delete(id)
}

type taskStore struct {
	store[domain.Task]
}

func (s *taskStore) GetByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	if err := s.r.wait(ctx); err != nil {
		return nil, err
	}
	return s.c.all(func(t domain.Task) bool { return t.ProjectID == projectID }), nil
}

func (s *taskStore) GetByStatus(ctx context.Context, status domain.Status) ([]domain.Task, error) {
	if err := s.r.wait(ctx); err != nil {
		return nil, err
	}
	return s.c.all(func(t domain.Task) bool { return t.Status == status }), nil
}

// collection is an insertion-ordered, mutex-guarded record set that only
// ever hands out copies.
type collection[T any] struct {
	mu     sync.RWMutex
	order  []string
	items  map[string]T
	nextID int
	idOf   func(T) string
	withID func(T, string) T
	clone  func(T) T
}

func newCollection[T any](seed []T, idOf func(T) string, withID func(T, string) T, clone func(T) T) *collection[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	c := &collection[T]{
		items:  make(map[string]T, len(seed)),
		idOf:   idOf,
		withID: withID,
		clone:  clone,
	}
	for _, record := range seed {
		id := idOf(record)
		if _, exists := c.items[id]; !exists {
			c.order = append(c.order, id)
		}
		c.items[id] = clone(record)
		c.bumpNextID(id)
	}
	return c
}

// bumpNextID keeps generated numeric ids above every numeric id seen.
func (c *collection[T]) bumpNextID(id string) {
	if n, err := strconv.Atoi(id); err == nil && n >= c.nextID {
		c.nextID = n + 1
	}
}

func (c *collection[T]) all(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		record := c.items[id]
		if keep != nil && !keep(record) {
			continue
		}
		out = append(out, c.clone(record))
	}
	return out
}

func (c *collection[T]) get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.items[id]
	if !ok {
		var zero T
		return zero, app.ErrNotFound
	}
	return c.clone(record), nil
}

func (c *collection[T]) create(record T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.idOf(record)
	if id == "" {
		if c.nextID == 0 {
			c.nextID = 1
		}
		id = strconv.Itoa(c.nextID)
		record = c.withID(record, id)
	}
	if _, exists := c.items[id]; exists {
		var zero T
		return zero, fmt.Errorf("fixture record %q already exists", id)
	}
	c.bumpNextID(id)
	c.items[id] = c.clone(record)
	c.order = append(c.order, id)
	return c.clone(record), nil
}

func (c *collection[T]) update(id string, record T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		var zero T
		return zero, app.ErrNotFound
	}
	record = c.withID(record, id)
	c.items[id] = c.clone(record)
	return c.clone(record), nil
}

func (c *collection[T]) delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return app.ErrNotFound
	}
	delete(c.items, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
	return nil
}
