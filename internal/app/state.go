package app

import (
	"slices"
	"time"

	"github.com/hylla/taskboard/internal/domain"
)

// Notice texts shown after a mutation settles.
const (
	NoticeTaskCreated    = "Task created successfully!"
	NoticeTaskUpdated    = "Task updated successfully!"
	NoticeTaskCompleted  = "Task completed!"
	NoticeTaskDeleted    = "Task deleted successfully!"
	NoticeProjectCreated = "Project created successfully!"
	NoticeProjectUpdated = "Project updated successfully!"
	NoticeProjectDeleted = "Project deleted successfully!"
	NoticeLabelCreated   = "Label created successfully!"
	NoticeLabelUpdated   = "Label updated successfully!"
	NoticeLabelDeleted   = "Label deleted successfully!"

	NoticeTaskSaveFailed      = "Failed to save task"
	NoticeTaskUpdateFailed    = "Failed to update task"
	NoticeTaskDeleteFailed    = "Failed to delete task"
	NoticeProjectSaveFailed   = "Failed to save project"
	NoticeProjectDeleteFailed = "Failed to delete project"
	NoticeLabelCreateFailed   = "Failed to create label"
	NoticeLabelUpdateFailed   = "Failed to update label"
	NoticeLabelDeleteFailed   = "Failed to delete label"
	NoticeLoadFailed          = "Failed to load board"
)

// NoticeLevel classifies a notice for rendering.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is the transient status line shown after an action.
type Notice struct {
	Level NoticeLevel
	Text  string
	Err   error
}

// FormKind identifies which modal form is open.
type FormKind string

const (
	FormNone    FormKind = ""
	FormTask    FormKind = "task"
	FormProject FormKind = "project"
	FormLabel   FormKind = "label"
)

// State is the whole client-side board state. Reduce is its only mutator.
type State struct {
	Loaded            bool
	LoadErr           error
	Tasks             []domain.Task
	Projects          []domain.Project
	Labels            []domain.Label
	SelectedProjectID string
	Filters           Filters
	Form              FormKind
	TaskForm          TaskForm
	ProjectForm       ProjectForm
	LabelForm         LabelForm
	PendingDelete     *DeleteRequest
	Drag              DragSession
	Notice            *Notice
}

// Action is one state transition request.
type Action interface {
	isAction()
}

type (
	// Loaded replaces every collection with freshly fetched records.
	Loaded struct {
		Projects []domain.Project
		Labels   []domain.Label
		Tasks    []domain.Task
	}
	// LoadFailed records a failed initial or retried load.
	LoadFailed struct{ Err error }

	SelectProject      struct{ ProjectID string }
	SetPriorityFilter  struct{ Priority domain.Priority }
	SetDateRangeFilter struct{ DateRange DateRange }
	SetSearchQuery     struct{ Query string }
	ClearFilters       struct{}

	// OpenTaskForm opens the task modal; a nil Task means create.
	OpenTaskForm struct {
		Task     *domain.Task
		Location *time.Location
	}
	OpenProjectForm struct{ Project *domain.Project }
	OpenLabelForm   struct{ Label *domain.Label }
	CloseForm       struct{}

	TaskSaved struct {
		Task    domain.Task
		Created bool
	}
	// TaskMoved applies a persisted drop and ends the drag.
	TaskMoved      struct{ Task domain.Task }
	TaskDeleted    struct{ TaskID string }
	ProjectSaved   struct {
		Project domain.Project
		Created bool
	}
	ProjectDeleted struct{ ProjectID string }
	LabelSaved     struct {
		Label   domain.Label
		Created bool
	}
	LabelDeleted struct{ LabelID string }

	RequestDelete struct{ Request DeleteRequest }
	CancelDelete  struct{}

	// OperationFailed reports a failed mutation. Collections stay untouched.
	OperationFailed struct {
		Text string
		Err  error
	}
	DismissNotice struct{}

	StartDrag struct{ TaskID string }
	DragOver  struct{ Status domain.Status }
	EndDrag   struct{}
)

func (Loaded) isAction()             {}
func (LoadFailed) isAction()         {}
func (SelectProject) isAction()      {}
func (SetPriorityFilter) isAction()  {}
func (SetDateRangeFilter) isAction() {}
func (SetSearchQuery) isAction()     {}
func (ClearFilters) isAction()       {}
func (OpenTaskForm) isAction()       {}
func (OpenProjectForm) isAction()    {}
func (OpenLabelForm) isAction()      {}
func (CloseForm) isAction()          {}
func (TaskSaved) isAction()          {}
func (TaskMoved) isAction()          {}
func (TaskDeleted) isAction()        {}
func (ProjectSaved) isAction()       {}
func (ProjectDeleted) isAction()     {}
func (LabelSaved) isAction()         {}
func (LabelDeleted) isAction()       {}
func (RequestDelete) isAction()      {}
func (CancelDelete) isAction()       {}
func (OperationFailed) isAction()    {}
func (DismissNotice) isAction()      {}
func (StartDrag) isAction()          {}
func (DragOver) isAction()           {}
func (EndDrag) isAction()            {}

// Reduce returns the state that results from applying action to s.
// Slices in s are never mutated in place.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case Loaded:
		s.Loaded = true
		s.LoadErr = nil
		s.Tasks = cloneTasks(a.Tasks)
		s.Projects = RecountProjects(a.Projects, a.Tasks)
		s.Labels = append([]domain.Label(nil), a.Labels...)
		s.SelectedProjectID = resolveSelection(s.SelectedProjectID, s.Projects)
	case LoadFailed:
		s.Loaded = true
		s.LoadErr = a.Err
	case SelectProject:
		if _, ok := findProject(s.Projects, a.ProjectID); ok || a.ProjectID == "" {
			s.SelectedProjectID = a.ProjectID
		}
	case SetPriorityFilter:
		s.Filters.Priority = a.Priority
	case SetDateRangeFilter:
		s.Filters.DateRange = a.DateRange
	case SetSearchQuery:
		s.Filters.Query = a.Query
	case ClearFilters:
		s.Filters = Filters{}
	case OpenTaskForm:
		s.Form = FormTask
		if a.Task != nil {
			s.TaskForm = EditTaskForm(*a.Task, a.Location)
		} else {
			s.TaskForm = NewTaskForm(s.SelectedProjectID, s.Projects)
		}
	case OpenProjectForm:
		s.Form = FormProject
		if a.Project != nil {
			s.ProjectForm = EditProjectForm(*a.Project)
		} else {
			s.ProjectForm = NewProjectForm()
		}
	case OpenLabelForm:
		s.Form = FormLabel
		if a.Label != nil {
			s.LabelForm = EditLabelForm(*a.Label)
		} else {
			s.LabelForm = NewLabelForm()
		}
	case CloseForm:
		s.Form = FormNone
	case TaskSaved:
		prev, had := findTask(s.Tasks, a.Task.ID)
		s = s.applyTask(prev, had, a.Task)
		s.Form = FormNone
		text := NoticeTaskUpdated
		if a.Created || !had {
			text = NoticeTaskCreated
		}
		s.Notice = &Notice{Level: NoticeSuccess, Text: text}
	case TaskMoved:
		prev, had := findTask(s.Tasks, a.Task.ID)
		s = s.applyTask(prev, had, a.Task)
		s.Drag.End()
		if a.Task.Status == domain.StatusDone {
			s.Notice = &Notice{Level: NoticeSuccess, Text: NoticeTaskCompleted}
		}
	case TaskDeleted:
		prev, had := findTask(s.Tasks, a.TaskID)
		if had {
			s.Tasks = slices.DeleteFunc(cloneTasks(s.Tasks), func(t domain.Task) bool { return t.ID == a.TaskID })
			s.Projects = ApplyCounterDeltas(s.Projects, TaskCounterDeltas(&prev, nil))
		}
		s.PendingDelete = nil
		s.Notice = &Notice{Level: NoticeSuccess, Text: NoticeTaskDeleted}
	case ProjectSaved:
		text := NoticeProjectUpdated
		if idx := projectIndex(s.Projects, a.Project.ID); idx >= 0 {
			s.Projects = slices.Clone(s.Projects)
			s.Projects[idx] = a.Project
		} else {
			s.Projects = append(slices.Clone(s.Projects), a.Project)
			text = NoticeProjectCreated
		}
		if a.Created {
			text = NoticeProjectCreated
		}
		s.SelectedProjectID = resolveSelection(s.SelectedProjectID, s.Projects)
		s.Form = FormNone
		s.Notice = &Notice{Level: NoticeSuccess, Text: text}
	case ProjectDeleted:
		s.Projects = slices.DeleteFunc(slices.Clone(s.Projects), func(p domain.Project) bool { return p.ID == a.ProjectID })
		s.Tasks = slices.DeleteFunc(cloneTasks(s.Tasks), func(t domain.Task) bool { return t.ProjectID == a.ProjectID })
		if s.SelectedProjectID == a.ProjectID {
			s.SelectedProjectID = ""
		}
		s.SelectedProjectID = resolveSelection(s.SelectedProjectID, s.Projects)
		s.PendingDelete = nil
		s.Notice = &Notice{Level: NoticeSuccess, Text: NoticeProjectDeleted}
	case LabelSaved:
		text := NoticeLabelUpdated
		if idx := labelIndex(s.Labels, a.Label.ID); idx >= 0 {
			s.Labels = slices.Clone(s.Labels)
			s.Labels[idx] = a.Label
		} else {
			s.Labels = append(slices.Clone(s.Labels), a.Label)
			text = NoticeLabelCreated
		}
		if a.Created {
			text = NoticeLabelCreated
		}
		s.Form = FormNone
		s.Notice = &Notice{Level: NoticeSuccess, Text: text}
	case LabelDeleted:
		s.Labels = slices.DeleteFunc(slices.Clone(s.Labels), func(l domain.Label) bool { return l.ID == a.LabelID })
		s.PendingDelete = nil
		s.Notice = &Notice{Level: NoticeSuccess, Text: NoticeLabelDeleted}
	case RequestDelete:
		req := a.Request
		s.PendingDelete = &req
	case CancelDelete:
		s.PendingDelete = nil
	case OperationFailed:
		s.PendingDelete = nil
		s.Drag.End()
		s.Notice = &Notice{Level: NoticeError, Text: a.Text, Err: a.Err}
	case DismissNotice:
		s.Notice = nil
	case StartDrag:
		task, ok := findTask(s.Tasks, a.TaskID)
		if !ok {
			s.Notice = &Notice{Level: NoticeError, Text: NoticeTaskUpdateFailed, Err: ErrNotFound}
			break
		}
		if err := s.Drag.Start(task); err != nil {
			s.Notice = &Notice{Level: NoticeError, Text: NoticeTaskUpdateFailed, Err: err}
		}
	case DragOver:
		s.Drag.Over(a.Status)
	case EndDrag:
		s.Drag.End()
	}
	return s
}

// applyTask swaps in next and moves the cached counters by the difference.
func (s State) applyTask(prev domain.Task, had bool, next domain.Task) State {
	tasks := cloneTasks(s.Tasks)
	var before *domain.Task
	if had {
		before = &prev
		for i := range tasks {
			if tasks[i].ID == next.ID {
				tasks[i] = next.Clone()
			}
		}
	} else {
		tasks = append(tasks, next.Clone())
	}
	s.Tasks = tasks
	s.Projects = ApplyCounterDeltas(s.Projects, TaskCounterDeltas(before, &next))
	return s
}

// SelectedProject resolves the selection by id against the current project list.
func (s State) SelectedProject() (domain.Project, bool) {
	return findProject(s.Projects, s.SelectedProjectID)
}

// VisibleTasks returns the filtered task list for the selected project.
func (s State) VisibleTasks(now time.Time) []domain.Task {
	return FilterTasks(s.Tasks, s.SelectedProjectID, s.Filters, now)
}

// Board partitions the visible tasks into columns.
func (s State) Board(now time.Time) Board {
	return BuildBoard(s.VisibleTasks(now))
}

// Task looks a task up by id.
func (s State) Task(taskID string) (domain.Task, bool) {
	return findTask(s.Tasks, taskID)
}

// TaskLabels resolves the task's label ids, dropping dangling ones.
func (s State) TaskLabels(task domain.Task) []domain.Label {
	return domain.ResolveLabels(task.LabelIDs, s.Labels)
}

// ProjectName returns the project's display name, or empty when unknown.
func (s State) ProjectName(projectID string) string {
	project, ok := findProject(s.Projects, projectID)
	if !ok {
		return ""
	}
	return project.Name
}

func resolveSelection(selected string, projects []domain.Project) string {
	if _, ok := findProject(projects, selected); ok {
		return selected
	}
	if len(projects) == 0 {
		return ""
	}
	return projects[0].ID
}

func findTask(tasks []domain.Task, taskID string) (domain.Task, bool) {
	for _, task := range tasks {
		if task.ID == taskID {
			return task.Clone(), true
		}
	}
	return domain.Task{}, false
}

func findProject(projects []domain.Project, projectID string) (domain.Project, bool) {
	if idx := projectIndex(projects, projectID); idx >= 0 {
		return projects[idx], true
	}
	return domain.Project{}, false
}

func projectIndex(projects []domain.Project, projectID string) int {
	if projectID == "" {
		return -1
	}
	return slices.IndexFunc(projects, func(p domain.Project) bool { return p.ID == projectID })
}

func labelIndex(labels []domain.Label, labelID string) int {
	return slices.IndexFunc(labels, func(l domain.Label) bool { return l.ID == labelID })
}

func cloneTasks(in []domain.Task) []domain.Task {
	out := make([]domain.Task, len(in))
	for i, task := range in {
		out[i] = task.Clone()
	}
	return out
}
