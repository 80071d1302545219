package remote

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hylla/taskboard/internal/domain"
)

const (
	taskTable    = "task_c"
	projectTable = "project_c"
	labelTable   = "label_c"
)

var taskFieldNames = []string{
	"Name", "project_id_c", "title_c", "description_c", "status_c", "priority_c",
	"due_date_c", "created_at_c", "completed_at_c", "position_c", "label_ids_c", "updated_at_c",
}

var projectFieldNames = []string{
	"Name", "color_c", "created_at_c", "task_count_c", "completed_count_c", "updated_at_c",
}

var labelFieldNames = []string{"Name", "color_c", "created_at_c"}

type taskRecord struct {
	ID          flexString `json:"Id"`
	Name        string     `json:"Name"`
	ProjectID   flexString `json:"project_id_c"`
	Title       string     `json:"title_c"`
	Description string     `json:"description_c"`
	Status      string     `json:"status_c"`
	Priority    string     `json:"priority_c"`
	DueDate     string     `json:"due_date_c"`
	LabelIDs    string     `json:"label_ids_c"`
	Position    flexInt    `json:"position_c"`
	CreatedAt   string     `json:"created_at_c"`
	UpdatedAt   string     `json:"updated_at_c"`
	CompletedAt string     `json:"completed_at_c"`
}

type projectRecord struct {
	ID             flexString `json:"Id"`
	Name           string     `json:"Name"`
	Color          string     `json:"color_c"`
	TaskCount      flexInt    `json:"task_count_c"`
	CompletedCount flexInt    `json:"completed_count_c"`
	CreatedAt      string     `json:"created_at_c"`
	UpdatedAt      string     `json:"updated_at_c"`
}

type labelRecord struct {
	ID        flexString `json:"Id"`
	Name      string     `json:"Name"`
	Color     string     `json:"color_c"`
	CreatedAt string     `json:"created_at_c"`
}

func decodeTask(raw json.RawMessage) (domain.Task, error) {
	var rec taskRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Task{}, fmt.Errorf("decode task record: %w", err)
	}
	status := domain.StatusTodo
	if strings.TrimSpace(rec.Status) != "" {
		parsed, err := domain.ParseStatus(rec.Status)
		if err != nil {
			return domain.Task{}, fmt.Errorf("task %s: %w", rec.ID, err)
		}
		status = parsed
	}
	priority := domain.PriorityMedium
	if strings.TrimSpace(rec.Priority) != "" {
		parsed, err := domain.ParsePriority(rec.Priority)
		if err != nil {
			return domain.Task{}, fmt.Errorf("task %s: %w", rec.ID, err)
		}
		priority = parsed
	}
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = strings.TrimSpace(rec.Name)
	}
	task := domain.Task{
		ID:          string(rec.ID),
		ProjectID:   string(rec.ProjectID),
		Title:       title,
		Description: rec.Description,
		Status:      status,
		Priority:    priority,
		DueAt:       parseOptionalTime(rec.DueDate),
		LabelIDs:    splitLabelIDs(rec.LabelIDs),
		Position:    max(0, int(rec.Position)),
		CreatedAt:   parseTime(rec.CreatedAt),
		UpdatedAt:   parseTime(rec.UpdatedAt),
		CompletedAt: parseOptionalTime(rec.CompletedAt),
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}
	switch {
	case task.Status == domain.StatusDone && task.CompletedAt == nil:
		done := task.UpdatedAt
		task.CompletedAt = &done
	case task.Status != domain.StatusDone:
		task.CompletedAt = nil
	}
	return task, nil
}

func encodeTask(t domain.Task, creating bool) map[string]any {
	fields := map[string]any{
		"Name":           t.Title,
		"title_c":        t.Title,
		"description_c":  t.Description,
		"project_id_c":   lookupValue(t.ProjectID),
		"status_c":       string(t.Status),
		"priority_c":     string(t.Priority),
		"due_date_c":     formatOptionalTime(t.DueAt),
		"label_ids_c":    strings.Join(t.LabelIDs, ","),
		"position_c":     t.Position,
		"completed_at_c": formatOptionalTime(t.CompletedAt),
		"updated_at_c":   formatTime(t.UpdatedAt),
	}
	if creating {
		fields["created_at_c"] = formatTime(t.CreatedAt)
	}
	return fields
}

func decodeProject(raw json.RawMessage) (domain.Project, error) {
	var rec projectRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Project{}, fmt.Errorf("decode project record: %w", err)
	}
	color, err := domain.NormalizeColor(rec.Color, domain.DefaultProjectColor)
	if err != nil {
		color = domain.DefaultProjectColor
	}
	project := domain.Project{
		ID:        string(rec.ID),
		Name:      strings.TrimSpace(rec.Name),
		Color:     color,
		CreatedAt: parseTime(rec.CreatedAt),
		UpdatedAt: parseTime(rec.UpdatedAt),
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = project.CreatedAt
	}
	project.SetCounters(int(rec.TaskCount), int(rec.CompletedCount))
	return project, nil
}

func encodeProject(p domain.Project, creating bool) map[string]any {
	fields := map[string]any{
		"Name":              p.Name,
		"color_c":           p.Color,
		"task_count_c":      p.TaskCount,
		"completed_count_c": p.CompletedCount,
		"updated_at_c":      formatTime(p.UpdatedAt),
	}
	if creating {
		fields["created_at_c"] = formatTime(p.CreatedAt)
	}
	return fields
}

func decodeLabel(raw json.RawMessage) (domain.Label, error) {
	var rec labelRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Label{}, fmt.Errorf("decode label record: %w", err)
	}
	color, err := domain.NormalizeColor(rec.Color, domain.DefaultLabelColor)
	if err != nil {
		color = domain.DefaultLabelColor
	}
	created := parseTime(rec.CreatedAt)
	return domain.Label{
		ID:        string(rec.ID),
		Name:      strings.TrimSpace(rec.Name),
		Color:     color,
		CreatedAt: created,
		UpdatedAt: created,
	}, nil
}

func encodeLabel(l domain.Label, creating bool) map[string]any {
	fields := map[string]any{
		"Name":    l.Name,
		"color_c": l.Color,
	}
	if creating {
		fields["created_at_c"] = formatTime(l.CreatedAt)
	}
	return fields
}

// lookupValue sends numeric ids as numbers, which lookup fields require.
func lookupValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

func splitLabelIDs(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

func parseOptionalTime(raw string) *time.Time {
	ts := parseTime(raw)
	if ts.IsZero() {
		return nil
	}
	return &ts
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

func formatOptionalTime(ts *time.Time) any {
	if ts == nil {
		return nil
	}
	return formatTime(*ts)
}
