package tui

import (
	"context"
	"slices"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/hylla/taskboard/internal/app"
	"github.com/hylla/taskboard/internal/domain"
)

// Task form rows. Only the first three are text inputs.
const (
	taskFieldTitle = iota
	taskFieldDescription
	taskFieldDue
	taskFieldStatus
	taskFieldPriority
	taskFieldProject
	taskFieldLabels
	taskFieldCount
)

// Project and label form rows.
const (
	nameFieldName = iota
	nameFieldColor
	nameFieldCount
)

var taskFieldNames = []string{"title", "description", "due", "status", "priority", "project", "labels"}

// newModalInput constructs one text input for a modal form.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
		in.CursorEnd()
	}
	return in
}

// startTaskForm opens the task modal. A nil task creates one in the selected column.
func (m *Model) startTaskForm(task *domain.Task) tea.Cmd {
	if task == nil && len(m.state.Projects) == 0 {
		m.status = "create a project first"
		return nil
	}
	m.state = app.Reduce(m.state, app.OpenTaskForm{Task: task, Location: m.loc})
	form := &m.state.TaskForm
	if task == nil {
		statuses := domain.Statuses()
		form.Status = statuses[clamp(m.selectedColumn, 0, len(statuses)-1)]
		m.status = "new task"
	} else {
		m.status = "edit task"
	}
	m.formInputs = []textinput.Model{
		newModalInput("", "task title (required)", form.Title, 200),
		newModalInput("", "description (markdown)", form.Description, 2000),
		newModalInput("", "YYYY-MM-DD or blank", form.DueDate, 10),
	}
	m.labelFocus = 0
	m.mode = modeTaskForm
	return m.focusFormField(taskFieldTitle)
}

// startProjectForm opens the project modal. A nil project creates one.
func (m *Model) startProjectForm(project *domain.Project) tea.Cmd {
	m.state = app.Reduce(m.state, app.OpenProjectForm{Project: project})
	if project == nil {
		if m.status != "create your first project" {
			m.status = "new project"
		}
	} else {
		m.status = "edit project"
	}
	m.formInputs = []textinput.Model{
		newModalInput("", "project name", m.state.ProjectForm.Name, 120),
	}
	m.mode = modeProjectForm
	return m.focusFormField(nameFieldName)
}

// startLabelForm opens the label modal. A nil label creates one.
func (m *Model) startLabelForm(label *domain.Label) tea.Cmd {
	m.state = app.Reduce(m.state, app.OpenLabelForm{Label: label})
	if label == nil {
		m.status = "new label"
	} else {
		m.status = "edit label"
	}
	m.formInputs = []textinput.Model{
		newModalInput("", "label name", m.state.LabelForm.Name, 60),
	}
	m.mode = modeLabelForm
	return m.focusFormField(nameFieldName)
}

// focusFormField moves focus to idx. Selector rows blur every input.
func (m *Model) focusFormField(idx int) tea.Cmd {
	total := taskFieldCount
	if m.mode != modeTaskForm {
		total = nameFieldCount
	}
	m.formFocus = wrapIndex(idx, 0, total)
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	if m.formFocus < len(m.formInputs) {
		return m.formInputs[m.formFocus].Focus()
	}
	return nil
}

func (m Model) handleTaskFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = app.Reduce(m.state, app.CloseForm{})
		m.syncMode()
		m.status = "cancelled"
		return m, nil
	case "tab", "down":
		return m, m.focusFormField(m.formFocus + 1)
	case "shift+tab", "up":
		return m, m.focusFormField(m.formFocus - 1)
	case "enter":
		return m.submitTaskForm()
	}

	form := &m.state.TaskForm
	switch m.formFocus {
	case taskFieldStatus:
		if delta := horizontalDelta(msg); delta != 0 {
			form.Status = cycleOption(domain.Statuses(), form.Status, delta)
		}
		return m, nil
	case taskFieldPriority:
		if delta := horizontalDelta(msg); delta != 0 {
			form.Priority = cycleOption(domain.Priorities(), form.Priority, delta)
		}
		return m, nil
	case taskFieldProject:
		if delta := horizontalDelta(msg); delta != 0 && len(m.state.Projects) > 0 {
			ids := make([]string, 0, len(m.state.Projects))
			for _, project := range m.state.Projects {
				ids = append(ids, project.ID)
			}
			form.ProjectID = cycleOption(ids, form.ProjectID, delta)
		}
		return m, nil
	case taskFieldLabels:
		if msg.String() == "space" {
			if len(m.state.Labels) > 0 {
				form.ToggleLabel(m.state.Labels[clamp(m.labelFocus, 0, len(m.state.Labels)-1)].ID)
			}
			return m, nil
		}
		if delta := horizontalDelta(msg); delta != 0 {
			m.labelFocus = wrapIndex(m.labelFocus, delta, len(m.state.Labels))
		}
		return m, nil
	}

	if m.formFocus >= len(m.formInputs) {
		return m, nil
	}
	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

// submitTaskForm validates the modal and saves it. Invalid input keeps the modal open.
func (m Model) submitTaskForm() (tea.Model, tea.Cmd) {
	form := m.state.TaskForm
	form.Title = m.formInputs[taskFieldTitle].Value()
	form.Description = m.formInputs[taskFieldDescription].Value()
	form.DueDate = m.formInputs[taskFieldDue].Value()
	m.state.TaskForm = form
	if err := form.Validate(m.loc); err != nil {
		m.status = "invalid task: " + err.Error()
		return m, nil
	}
	svc := m.svc
	m.status = "saving..."
	if form.Mode == app.FormEdit {
		in, _ := form.UpdateInput(m.loc)
		return m, func() tea.Msg {
			task, err := svc.UpdateTask(context.Background(), in)
			if err != nil {
				return actionMsg{action: app.OperationFailed{Text: app.NoticeTaskUpdateFailed, Err: err}}
			}
			return actionMsg{action: app.TaskSaved{Task: task}}
		}
	}
	in, _ := form.CreateInput(m.loc)
	return m, func() tea.Msg {
		task, err := svc.CreateTask(context.Background(), in)
		if err != nil {
			return actionMsg{action: app.OperationFailed{Text: app.NoticeTaskSaveFailed, Err: err}}
		}
		return actionMsg{action: app.TaskSaved{Task: task, Created: true}}
	}
}

// handleNameColorFormKey drives the project and label modals, which share a layout.
func (m Model) handleNameColorFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = app.Reduce(m.state, app.CloseForm{})
		m.syncMode()
		m.status = "cancelled"
		return m, nil
	case "tab", "down":
		return m, m.focusFormField(m.formFocus + 1)
	case "shift+tab", "up":
		return m, m.focusFormField(m.formFocus - 1)
	case "enter":
		if m.mode == modeLabelForm {
			return m.submitLabelForm()
		}
		return m.submitProjectForm()
	}
	if m.formFocus == nameFieldColor {
		if delta := horizontalDelta(msg); delta != 0 {
			if m.mode == modeLabelForm {
				m.state.LabelForm.CycleColor(delta)
			} else {
				m.state.ProjectForm.CycleColor(delta)
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.formInputs[nameFieldName], cmd = m.formInputs[nameFieldName].Update(msg)
	return m, cmd
}

func (m Model) submitProjectForm() (tea.Model, tea.Cmd) {
	form := m.state.ProjectForm
	form.Name = m.formInputs[nameFieldName].Value()
	m.state.ProjectForm = form
	if err := form.Validate(); err != nil {
		m.status = "invalid project: " + err.Error()
		return m, nil
	}
	svc := m.svc
	m.status = "saving..."
	if form.Mode == app.FormEdit {
		in, _ := form.UpdateInput()
		return m, func() tea.Msg {
			project, err := svc.UpdateProject(context.Background(), in)
			if err != nil {
				return actionMsg{action: app.OperationFailed{Text: app.NoticeProjectSaveFailed, Err: err}}
			}
			return actionMsg{action: app.ProjectSaved{Project: project}}
		}
	}
	in, _ := form.CreateInput()
	return m, func() tea.Msg {
		project, err := svc.CreateProject(context.Background(), in)
		if err != nil {
			return actionMsg{action: app.OperationFailed{Text: app.NoticeProjectSaveFailed, Err: err}}
		}
		return actionMsg{action: app.ProjectSaved{Project: project, Created: true}}
	}
}

func (m Model) submitLabelForm() (tea.Model, tea.Cmd) {
	form := m.state.LabelForm
	form.Name = m.formInputs[nameFieldName].Value()
	m.state.LabelForm = form
	if err := form.Validate(); err != nil {
		m.status = "invalid label: " + err.Error()
		return m, nil
	}
	svc := m.svc
	m.status = "saving..."
	if form.Mode == app.FormEdit {
		in, _ := form.UpdateInput()
		return m, func() tea.Msg {
			label, err := svc.UpdateLabel(context.Background(), in)
			if err != nil {
				return actionMsg{action: app.OperationFailed{Text: app.NoticeLabelUpdateFailed, Err: err}}
			}
			return actionMsg{action: app.LabelSaved{Label: label}}
		}
	}
	in, _ := form.CreateInput()
	return m, func() tea.Msg {
		label, err := svc.CreateLabel(context.Background(), in)
		if err != nil {
			return actionMsg{action: app.OperationFailed{Text: app.NoticeLabelCreateFailed, Err: err}}
		}
		return actionMsg{action: app.LabelSaved{Label: label, Created: true}}
	}
}

// horizontalDelta maps left/right style keys to a cycling step.
func horizontalDelta(msg tea.KeyPressMsg) int {
	switch msg.String() {
	case "h", "left":
		return -1
	case "l", "right", "space":
		return 1
	default:
		return 0
	}
}

// cycleOption returns the option delta steps from current. Unknown values restart at the first option.
func cycleOption[T comparable](options []T, current T, delta int) T {
	if len(options) == 0 {
		return current
	}
	idx := slices.Index(options, current)
	if idx < 0 {
		return options[0]
	}
	return options[wrapIndex(idx, delta, len(options))]
}
