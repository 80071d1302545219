package app

import (
	"slices"
	"strings"
	"time"

	"github.com/hylla/taskboard/internal/domain"
)

// DueDateLayout is the date-only format forms accept for due dates.
const DueDateLayout = "2006-01-02"

// FormMode distinguishes a create form from an edit form.
type FormMode string

const (
	FormCreate FormMode = "create"
	FormEdit   FormMode = "edit"
)

// TaskForm holds the transient field values of the task modal.
type TaskForm struct {
	Mode        FormMode
	TaskID      string
	ProjectID   string
	Title       string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	DueDate     string
	LabelIDs    []string
	Position    int
}

// NewTaskForm returns a create form targeting the selected project, or the first project.
func NewTaskForm(selectedProjectID string, projects []domain.Project) TaskForm {
	projectID := strings.TrimSpace(selectedProjectID)
	if projectID == "" && len(projects) > 0 {
		projectID = projects[0].ID
	}
	return TaskForm{
		Mode:      FormCreate,
		ProjectID: projectID,
		Status:    domain.StatusTodo,
		Priority:  domain.PriorityMedium,
	}
}

// EditTaskForm pre-fills a form from task. Due dates render in loc.
func EditTaskForm(task domain.Task, loc *time.Location) TaskForm {
	form := TaskForm{
		Mode:        FormEdit,
		TaskID:      task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		LabelIDs:    append([]string(nil), task.LabelIDs...),
		Position:    task.Position,
	}
	if task.DueAt != nil {
		form.DueDate = FormatDueDate(*task.DueAt, loc)
	}
	return form
}

// ToggleLabel attaches labelID when absent and detaches it otherwise.
func (f *TaskForm) ToggleLabel(labelID string) {
	labelID = strings.TrimSpace(labelID)
	if labelID == "" {
		return
	}
	if idx := slices.Index(f.LabelIDs, labelID); idx >= 0 {
		f.LabelIDs = slices.Delete(f.LabelIDs, idx, idx+1)
		return
	}
	f.LabelIDs = append(f.LabelIDs, labelID)
}

// Validate checks the fields a save needs.
func (f TaskForm) Validate(loc *time.Location) error {
	if strings.TrimSpace(f.Title) == "" {
		return domain.ErrInvalidTitle
	}
	if strings.TrimSpace(f.ProjectID) == "" {
		return domain.ErrInvalidID
	}
	if f.Mode == FormEdit && strings.TrimSpace(f.TaskID) == "" {
		return domain.ErrInvalidID
	}
	if _, err := domain.ParseStatus(string(f.Status)); err != nil {
		return err
	}
	if _, err := domain.ParsePriority(string(f.Priority)); err != nil {
		return err
	}
	if f.Position < 0 {
		return domain.ErrInvalidPosition
	}
	_, err := ParseDueDate(f.DueDate, loc)
	return err
}

// CreateInput converts the form into a create request.
func (f TaskForm) CreateInput(loc *time.Location) (CreateTaskInput, error) {
	if err := f.Validate(loc); err != nil {
		return CreateTaskInput{}, err
	}
	dueAt, _ := ParseDueDate(f.DueDate, loc)
	return CreateTaskInput{
		ProjectID:   strings.TrimSpace(f.ProjectID),
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		Priority:    f.Priority,
		DueAt:       dueAt,
		LabelIDs:    append([]string(nil), f.LabelIDs...),
		Position:    f.Position,
	}, nil
}

// UpdateInput converts the form into an update request.
func (f TaskForm) UpdateInput(loc *time.Location) (UpdateTaskInput, error) {
	if err := f.Validate(loc); err != nil {
		return UpdateTaskInput{}, err
	}
	dueAt, _ := ParseDueDate(f.DueDate, loc)
	position := f.Position
	return UpdateTaskInput{
		TaskID:      strings.TrimSpace(f.TaskID),
		ProjectID:   strings.TrimSpace(f.ProjectID),
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		Priority:    f.Priority,
		DueAt:       dueAt,
		LabelIDs:    append([]string(nil), f.LabelIDs...),
		Position:    &position,
	}, nil
}

// ParseDueDate parses a YYYY-MM-DD value as midnight in loc. Blank input means no due date.
func ParseDueDate(raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation(DueDateLayout, raw, loc)
	if err != nil {
		return nil, domain.ErrInvalidDueDate
	}
	return &ts, nil
}

// FormatDueDate renders due as YYYY-MM-DD in loc.
func FormatDueDate(due time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return due.In(loc).Format(DueDateLayout)
}

// ProjectForm holds the transient field values of the project modal.
type ProjectForm struct {
	Mode      FormMode
	ProjectID string
	Name      string
	Color     string
}

func NewProjectForm() ProjectForm {
	return ProjectForm{Mode: FormCreate, Color: domain.DefaultProjectColor}
}

func EditProjectForm(project domain.Project) ProjectForm {
	return ProjectForm{
		Mode:      FormEdit,
		ProjectID: project.ID,
		Name:      project.Name,
		Color:     project.Color,
	}
}

// CycleColor steps through the project palette.
func (f *ProjectForm) CycleColor(delta int) {
	f.Color = cycleColor(domain.ProjectPalette(), f.Color, delta)
}

func (f ProjectForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return domain.ErrInvalidName
	}
	if f.Mode == FormEdit && strings.TrimSpace(f.ProjectID) == "" {
		return domain.ErrInvalidID
	}
	_, err := domain.NormalizeColor(f.Color, domain.DefaultProjectColor)
	return err
}

func (f ProjectForm) CreateInput() (CreateProjectInput, error) {
	if err := f.Validate(); err != nil {
		return CreateProjectInput{}, err
	}
	return CreateProjectInput{Name: f.Name, Color: f.Color}, nil
}

func (f ProjectForm) UpdateInput() (UpdateProjectInput, error) {
	if err := f.Validate(); err != nil {
		return UpdateProjectInput{}, err
	}
	return UpdateProjectInput{ProjectID: strings.TrimSpace(f.ProjectID), Name: f.Name, Color: f.Color}, nil
}

// LabelForm holds the transient field values of the label manager.
type LabelForm struct {
	Mode    FormMode
	LabelID string
	Name    string
	Color   string
}

func NewLabelForm() LabelForm {
	return LabelForm{Mode: FormCreate, Color: domain.DefaultLabelColor}
}

func EditLabelForm(label domain.Label) LabelForm {
	return LabelForm{
		Mode:    FormEdit,
		LabelID: label.ID,
		Name:    label.Name,
		Color:   label.Color,
	}
}

// CycleColor steps through the label palette.
func (f *LabelForm) CycleColor(delta int) {
	f.Color = cycleColor(domain.LabelPalette(), f.Color, delta)
}

func (f LabelForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return domain.ErrInvalidName
	}
	if f.Mode == FormEdit && strings.TrimSpace(f.LabelID) == "" {
		return domain.ErrInvalidID
	}
	_, err := domain.NormalizeColor(f.Color, domain.DefaultLabelColor)
	return err
}

func (f LabelForm) CreateInput() (CreateLabelInput, error) {
	if err := f.Validate(); err != nil {
		return CreateLabelInput{}, err
	}
	return CreateLabelInput{Name: f.Name, Color: f.Color}, nil
}

func (f LabelForm) UpdateInput() (UpdateLabelInput, error) {
	if err := f.Validate(); err != nil {
		return UpdateLabelInput{}, err
	}
	return UpdateLabelInput{LabelID: strings.TrimSpace(f.LabelID), Name: f.Name, Color: f.Color}, nil
}

// cycleColor returns the palette entry delta steps from current, wrapping.
// Colors outside the palette restart from the first entry.
func cycleColor(palette []string, current string, delta int) string {
	if len(palette) == 0 {
		return current
	}
	idx := slices.Index(palette, strings.ToUpper(strings.TrimSpace(current)))
	if idx < 0 {
		return palette[0]
	}
	n := len(palette)
	return palette[((idx+delta)%n+n)%n]
}

// DeleteTarget names the kind of record a delete confirmation is for.
type DeleteTarget string

const (
	DeleteTargetTask    DeleteTarget = "task"
	DeleteTargetProject DeleteTarget = "project"
	DeleteTargetLabel   DeleteTarget = "label"
)

// DeleteRequest is a pending delete awaiting explicit confirmation.
type DeleteRequest struct {
	Target DeleteTarget
	ID     string
	Name   string
}

// Prompt returns the confirmation question shown before deleting.
func (r DeleteRequest) Prompt() string {
	switch r.Target {
	case DeleteTargetProject:
		return "Are you sure you want to delete this project? Its tasks will be deleted too."
	case DeleteTargetLabel:
		return "Are you sure you want to delete this label?"
	default:
		return "Are you sure you want to delete this task?"
	}
}
