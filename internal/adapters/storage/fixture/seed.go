package fixture

import (
	"embed"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hylla/taskboard/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed data/seed.yaml
var seedFS embed.FS

const seedPath = "data/seed.yaml"

// seedFile is the on-disk fixture layout. Times are day offsets from load time.
type seedFile struct {
	Projects []seedProject `yaml:"projects"`
	Labels   []seedLabel   `yaml:"labels"`
	Tasks    []seedTask    `yaml:"tasks"`
}

type seedProject struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Color          string `yaml:"color"`
	CreatedDaysAgo int    `yaml:"created_days_ago"`
}

type seedLabel struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

type seedTask struct {
	ID             string   `yaml:"id"`
	ProjectID      string   `yaml:"project_id"`
	Title          string   `yaml:"title"`
	Description    string   `yaml:"description"`
	Status         string   `yaml:"status"`
	Priority       string   `yaml:"priority"`
	DueInDays      *int     `yaml:"due_in_days"`
	LabelIDs       []string `yaml:"label_ids"`
	Position       int      `yaml:"position"`
	CreatedDaysAgo int      `yaml:"created_days_ago"`
}

// Seed holds decoded fixture records.
type Seed struct {
	Projects []domain.Project
	Labels   []domain.Label
	Tasks    []domain.Task
}

// DefaultSeed decodes the bundled demo board relative to now.
func DefaultSeed(now time.Time) (Seed, error) {
	f, err := seedFS.Open(seedPath)
	if err != nil {
		return Seed{}, fmt.Errorf("open bundled fixture: %w", err)
	}
	defer f.Close()
	return DecodeSeed(f, now)
}

// SeedFromFile decodes a fixture file from disk relative to now.
func SeedFromFile(path string, now time.Time) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open fixture %q: %w", path, err)
	}
	defer f.Close()
	return DecodeSeed(f, now)
}

// DecodeSeed decodes YAML fixture records and validates them through the domain constructors.
func DecodeSeed(r io.Reader, now time.Time) (Seed, error) {
	var file seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("decode fixture: %w", err)
	}

	var err error
	day := 24 * time.Hour
	out := Seed{
		Projects: make([]domain.Project, 0, len(file.Projects)),
		Labels:   make([]domain.Label, 0, len(file.Labels)),
		Tasks:    make([]domain.Task, 0, len(file.Tasks)),
	}
	for i, p := range file.Projects {
		project, err := domain.NewProject(p.ID, p.Name, p.Color, now.Add(-time.Duration(p.CreatedDaysAgo)*day))
		if err != nil {
			return Seed{}, fmt.Errorf("fixture projects[%d]: %w", i, err)
		}
		out.Projects = append(out.Projects, project)
	}
	for i, l := range file.Labels {
		label, err := domain.NewLabel(l.ID, l.Name, l.Color, now)
		if err != nil {
			return Seed{}, fmt.Errorf("fixture labels[%d]: %w", i, err)
		}
		out.Labels = append(out.Labels, label)
	}
	for i, t := range file.Tasks {
		var status domain.Status
		if t.Status != "" {
			if status, err = domain.ParseStatus(t.Status); err != nil {
				return Seed{}, fmt.Errorf("fixture tasks[%d]: %w", i, err)
			}
		}
		var priority domain.Priority
		if t.Priority != "" {
			if priority, err = domain.ParsePriority(t.Priority); err != nil {
				return Seed{}, fmt.Errorf("fixture tasks[%d]: %w", i, err)
			}
		}
		var dueAt *time.Time
		if t.DueInDays != nil {
			due := now.Add(time.Duration(*t.DueInDays) * day)
			dueAt = &due
		}
		task, err := domain.NewTask(domain.TaskInput{
			ID:          t.ID,
			ProjectID:   t.ProjectID,
			Title:       t.Title,
			Description: t.Description,
			Status:      status,
			Priority:    priority,
			DueAt:       dueAt,
			LabelIDs:    t.LabelIDs,
			Position:    t.Position,
		}, now.Add(-time.Duration(t.CreatedDaysAgo)*day))
		if err != nil {
			return Seed{}, fmt.Errorf("fixture tasks[%d]: %w", i, err)
		}
		out.Tasks = append(out.Tasks, task)
	}
	return out, nil
}
