package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"

	"github.com/hylla/taskboard/internal/app"
	"github.com/hylla/taskboard/internal/domain"
)

// Service is the slice of app.Service the board drives.
type Service interface {
	Now() time.Time
	ListProjects(context.Context) ([]domain.Project, error)
	ListLabels(context.Context) ([]domain.Label, error)
	ListTasks(context.Context, string, app.Filters) ([]domain.Task, error)
	CreateProject(context.Context, app.CreateProjectInput) (domain.Project, error)
	UpdateProject(context.Context, app.UpdateProjectInput) (domain.Project, error)
	DeleteProject(context.Context, string, bool) error
	CreateLabel(context.Context, app.CreateLabelInput) (domain.Label, error)
	UpdateLabel(context.Context, app.UpdateLabelInput) (domain.Label, error)
	DeleteLabel(context.Context, string, bool) error
	CreateTask(context.Context, app.CreateTaskInput) (domain.Task, error)
	UpdateTask(context.Context, app.UpdateTaskInput) (domain.Task, error)
	PersistDrop(context.Context, domain.Task) (domain.Task, error)
	DeleteTask(context.Context, string, bool) error
}

// inputMode selects which key handler owns the keyboard.
type inputMode int

const (
	modeNone inputMode = iota
	modeDrag
	modeSearch
	modeTaskForm
	modeProjectForm
	modeLabelForm
	modeProjectPicker
	modeLabels
	modeTaskDetails
	modeConfirmDelete
)

// Model is the bubbletea model for the board. All record state lives in
// state and only changes through app.Reduce.
type Model struct {
	svc   Service
	state app.State
	board BoardConfig
	loc   *time.Location

	copyText func(string) error

	ready  bool
	width  int
	height int
	status string
	help   help.Model
	keys   keyMap
	mode   inputMode

	selectedColumn int
	selectedTask   int
	focusTaskID    string
	pendingMoveID  string

	searchInput  textinput.Model
	searchBefore string

	formInputs []textinput.Model
	formFocus  int
	labelFocus int

	pickerIndex int
	labelIndex  int

	confirmChoice int
	confirmBack   inputMode

	detailsTaskID string
	markdown      *markdownRenderer
}

// loadedMsg carries a full fetch of projects, labels, and tasks.
type loadedMsg struct {
	projects []domain.Project
	labels   []domain.Label
	tasks    []domain.Task
	err      error
}

// actionMsg carries the outcome of one mutation back into the reducer.
type actionMsg struct {
	action app.Action
	status string
}

// NewModel constructs the board model.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	searchInput := textinput.New()
	searchInput.Prompt = "/ "
	searchInput.Placeholder = "title or description"
	searchInput.CharLimit = 120
	m := Model{
		svc:         svc,
		board:       DefaultBoardConfig(),
		loc:         time.Local,
		copyText:    clipboard.WriteAll,
		status:      "loading...",
		help:        h,
		keys:        newKeyMap(),
		searchInput: searchInput,
		markdown:    &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update applies one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.state = app.Reduce(m.state, app.LoadFailed{Err: msg.err})
			m.status = app.NoticeLoadFailed
			return m, nil
		}
		m.state = app.Reduce(m.state, app.Loaded{
			Projects: msg.projects,
			Labels:   msg.labels,
			Tasks:    msg.tasks,
		})
		m.clampSelections()
		if len(m.state.Projects) == 0 && m.mode == modeNone {
			m.status = "create your first project"
			return m, m.startProjectForm(nil)
		}
		if m.status == "" || m.status == "loading..." || m.status == "reloading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		m.state = app.Reduce(m.state, msg.action)
		m.syncMode()
		m.status = noticeStatus(m.state.Notice, msg.status)
		switch a := msg.action.(type) {
		case app.TaskSaved:
			m.focusTaskByID(a.Task.ID)
		case app.TaskMoved:
			m.pendingMoveID = ""
			m.focusTaskByID(a.Task.ID)
		case app.OperationFailed:
			m.pendingMoveID = ""
		}
		m.clampSelections()
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// handleNormalModeKey handles board keys when no modal is open.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
			return m, nil
		}
		if m.state.Notice != nil {
			m.state = app.Reduce(m.state, app.DismissNotice{})
			m.status = "ready"
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	}

	if m.state.LoadErr != nil || !m.state.Loaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.newProject):
		return m, m.startProjectForm(nil)
	case key.Matches(msg, m.keys.projects):
		return m.startProjectPicker()
	case key.Matches(msg, m.keys.labels):
		m.mode = modeLabels
		m.labelIndex = clamp(m.labelIndex, 0, len(m.state.Labels)-1)
		m.status = "labels"
		return m, nil
	}

	if len(m.state.Projects) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(domain.Statuses())-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if tasks := m.currentColumnTasks(); m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.grab):
		return m.startDrag()
	case key.Matches(msg, m.keys.addTask):
		return m, m.startTaskForm(nil)
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.startTaskForm(&task)
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m.requestDelete(app.DeleteRequest{Target: app.DeleteTargetTask, ID: task.ID, Name: task.Title})
	case key.Matches(msg, m.keys.taskDetails):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeTaskDetails
		m.detailsTaskID = task.ID
		m.status = "task details"
		return m, nil
	case key.Matches(msg, m.keys.copyTaskID):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m.copyTaskID(task)
	case key.Matches(msg, m.keys.editProject):
		project, ok := m.state.SelectedProject()
		if !ok {
			m.status = "no project selected"
			return m, nil
		}
		return m, m.startProjectForm(&project)
	case key.Matches(msg, m.keys.priority):
		next := cyclePriorityFilter(m.state.Filters.Priority)
		m.state = app.Reduce(m.state, app.SetPriorityFilter{Priority: next})
		m.clampSelections()
		m.status = "priority: " + priorityFilterLabel(next)
		return m, nil
	case key.Matches(msg, m.keys.dateRange):
		next := cycleDateRange(m.state.Filters.DateRange)
		m.state = app.Reduce(m.state, app.SetDateRangeFilter{DateRange: next})
		m.clampSelections()
		m.status = "due: " + dateRangeLabel(next)
		return m, nil
	case key.Matches(msg, m.keys.search):
		return m, m.startSearchMode()
	case key.Matches(msg, m.keys.clearFilters):
		m.state = app.Reduce(m.state, app.ClearFilters{})
		m.searchInput.SetValue("")
		m.clampSelections()
		m.status = "filters cleared"
		return m, nil
	default:
		return m, nil
	}
}

// handleInputModeKey routes keys to the active modal.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeDrag:
		return m.handleDragKey(msg)
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeTaskForm:
		return m.handleTaskFormKey(msg)
	case modeProjectForm, modeLabelForm:
		return m.handleNameColorFormKey(msg)
	case modeProjectPicker:
		return m.handleProjectPickerKey(msg)
	case modeLabels:
		return m.handleLabelsKey(msg)
	case modeTaskDetails:
		return m.handleDetailsKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	default:
		m.mode = modeNone
		return m, nil
	}
}

// startDrag grabs the selected card and hovers it over its own column.
func (m Model) startDrag() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	if task.ID == m.pendingMoveID {
		m.status = "saving..."
		return m, nil
	}
	m.state = app.Reduce(m.state, app.StartDrag{TaskID: task.ID})
	if !m.state.Drag.Active() || m.state.Drag.TaskID() != task.ID {
		m.status = noticeStatus(m.state.Notice, "")
		return m, nil
	}
	m.state = app.Reduce(m.state, app.DragOver{Status: task.Status})
	m.mode = modeDrag
	m.focusTaskID = task.ID
	m.status = "moving " + truncate(task.Title, 32)
	return m, nil
}

func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	statuses := domain.Statuses()
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.state = app.Reduce(m.state, app.EndDrag{})
		m.mode = modeNone
		m.status = "move cancelled"
		m.focusTaskByID(m.focusTaskID)
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn = clamp(m.selectedColumn-1, 0, len(statuses)-1)
		m.state = app.Reduce(m.state, app.DragOver{Status: statuses[m.selectedColumn]})
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn = clamp(m.selectedColumn+1, 0, len(statuses)-1)
		m.state = app.Reduce(m.state, app.DragOver{Status: statuses[m.selectedColumn]})
		return m, nil
	case key.Matches(msg, m.keys.drop):
		return m.dropTask()
	default:
		return m, nil
	}
}

// dropTask resolves the drag onto the hovered column and persists any change.
func (m Model) dropTask() (tea.Model, tea.Cmd) {
	m.mode = modeNone
	target := m.state.Drag.OverStatus()
	if target == "" {
		target = domain.Statuses()[clamp(m.selectedColumn, 0, len(domain.Statuses())-1)]
	}
	next, moved, err := m.state.Drag.Drop(target, m.svc.Now())
	if err != nil {
		m.state = app.Reduce(m.state, app.OperationFailed{Text: app.NoticeTaskUpdateFailed, Err: err})
		m.status = noticeStatus(m.state.Notice, "")
		return m, nil
	}
	if !moved {
		m.state = app.Reduce(m.state, app.EndDrag{})
		m.focusTaskByID(next.ID)
		m.status = "task unchanged"
		return m, nil
	}
	m.state = app.Reduce(m.state, app.EndDrag{})
	m.focusTaskID = next.ID
	m.pendingMoveID = next.ID
	m.status = "saving..."
	svc := m.svc
	return m, func() tea.Msg {
		saved, err := svc.PersistDrop(context.Background(), next)
		if err != nil {
			return actionMsg{action: app.OperationFailed{Text: app.NoticeTaskUpdateFailed, Err: err}}
		}
		return actionMsg{action: app.TaskMoved{Task: saved}, status: "moved to " + saved.Status.Label()}
	}
}

func (m *Model) startSearchMode() tea.Cmd {
	m.mode = modeSearch
	m.searchBefore = m.state.Filters.Query
	m.searchInput.SetValue(m.state.Filters.Query)
	m.searchInput.CursorEnd()
	m.status = "search"
	return m.searchInput.Focus()
}

// handleSearchKey filters live on every keystroke. Esc restores the previous query.
func (m Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.searchInput.Blur()
		m.searchInput.SetValue(m.searchBefore)
		m.state = app.Reduce(m.state, app.SetSearchQuery{Query: m.searchBefore})
		m.clampSelections()
		m.status = "search cancelled"
		return m, nil
	case "enter":
		m.mode = modeNone
		m.searchInput.Blur()
		if strings.TrimSpace(m.state.Filters.Query) == "" {
			m.status = "search cleared"
		} else {
			m.status = fmt.Sprintf("%d matches", len(m.state.VisibleTasks(m.svc.Now())))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.state = app.Reduce(m.state, app.SetSearchQuery{Query: m.searchInput.Value()})
	m.clampSelections()
	return m, cmd
}

func (m Model) startProjectPicker() (tea.Model, tea.Cmd) {
	if len(m.state.Projects) == 0 {
		m.status = "no projects"
		return m, nil
	}
	m.mode = modeProjectPicker
	m.pickerIndex = 0
	for idx, project := range m.state.Projects {
		if project.ID == m.state.SelectedProjectID {
			m.pickerIndex = idx
		}
	}
	m.status = "select project"
	return m, nil
}

func (m Model) handleProjectPickerKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	projects := m.state.Projects
	switch msg.String() {
	case "esc", "p":
		m.mode = modeNone
		m.status = "ready"
		return m, nil
	case "j", "down":
		m.pickerIndex = wrapIndex(m.pickerIndex, 1, len(projects))
		return m, nil
	case "k", "up":
		m.pickerIndex = wrapIndex(m.pickerIndex, -1, len(projects))
		return m, nil
	case "enter":
		if len(projects) == 0 {
			m.mode = modeNone
			return m, nil
		}
		project := projects[clamp(m.pickerIndex, 0, len(projects)-1)]
		m.state = app.Reduce(m.state, app.SelectProject{ProjectID: project.ID})
		m.mode = modeNone
		m.selectedColumn = 0
		m.selectedTask = 0
		m.status = "project: " + project.Name
		return m, nil
	case "N":
		return m, m.startProjectForm(nil)
	case "e":
		if len(projects) == 0 {
			return m, nil
		}
		project := projects[clamp(m.pickerIndex, 0, len(projects)-1)]
		return m, m.startProjectForm(&project)
	case "d":
		if len(projects) == 0 {
			return m, nil
		}
		project := projects[clamp(m.pickerIndex, 0, len(projects)-1)]
		return m.requestDelete(app.DeleteRequest{Target: app.DeleteTargetProject, ID: project.ID, Name: project.Name})
	default:
		return m, nil
	}
}

func (m Model) handleLabelsKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	labels := m.state.Labels
	switch msg.String() {
	case "esc", "L":
		m.mode = modeNone
		m.status = "ready"
		return m, nil
	case "j", "down":
		m.labelIndex = wrapIndex(m.labelIndex, 1, len(labels))
		return m, nil
	case "k", "up":
		m.labelIndex = wrapIndex(m.labelIndex, -1, len(labels))
		return m, nil
	case "n":
		return m, m.startLabelForm(nil)
	case "e", "enter":
		if len(labels) == 0 {
			return m, nil
		}
		label := labels[clamp(m.labelIndex, 0, len(labels)-1)]
		return m, m.startLabelForm(&label)
	case "d":
		if len(labels) == 0 {
			return m, nil
		}
		label := labels[clamp(m.labelIndex, 0, len(labels)-1)]
		return m.requestDelete(app.DeleteRequest{Target: app.DeleteTargetLabel, ID: label.ID, Name: label.Name})
	default:
		return m, nil
	}
}

func (m Model) handleDetailsKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	task, ok := m.state.Task(m.detailsTaskID)
	if !ok {
		m.mode = modeNone
		m.detailsTaskID = ""
		m.status = "task details unavailable"
		return m, nil
	}
	switch {
	case msg.String() == "esc" || key.Matches(msg, m.keys.taskDetails) || key.Matches(msg, m.keys.quit):
		m.mode = modeNone
		m.detailsTaskID = ""
		m.status = "ready"
		return m, nil
	case key.Matches(msg, m.keys.copyTaskID):
		return m.copyTaskID(task)
	case key.Matches(msg, m.keys.editTask):
		m.detailsTaskID = ""
		return m, m.startTaskForm(&task)
	default:
		return m, nil
	}
}

// requestDelete opens the confirmation modal, or deletes straight away when
// confirmations are disabled.
func (m Model) requestDelete(req app.DeleteRequest) (tea.Model, tea.Cmd) {
	if !m.board.ConfirmDelete {
		m.status = "deleting..."
		return m, m.deleteCmd(req)
	}
	m.state = app.Reduce(m.state, app.RequestDelete{Request: req})
	m.confirmBack = m.mode
	m.mode = modeConfirmDelete
	m.confirmChoice = 1
	m.status = "confirm delete"
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	pending := m.state.PendingDelete
	if pending == nil {
		m.mode = m.confirmBack
		return m, nil
	}
	cancel := func(m Model) (tea.Model, tea.Cmd) {
		m.state = app.Reduce(m.state, app.CancelDelete{})
		m.mode = m.confirmBack
		m.status = "cancelled"
		return m, nil
	}
	switch msg.String() {
	case "esc", "n":
		return cancel(m)
	case "h", "left", "l", "right", "tab":
		m.confirmChoice = 1 - m.confirmChoice
		return m, nil
	case "y":
		m.confirmChoice = 0
	case "enter":
		if m.confirmChoice == 1 {
			return cancel(m)
		}
	default:
		return m, nil
	}
	req := *pending
	m.status = "deleting..."
	return m, m.deleteCmd(req)
}

// deleteCmd runs a confirmed delete and reports the matching reducer action.
func (m Model) deleteCmd(req app.DeleteRequest) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		switch req.Target {
		case app.DeleteTargetProject:
			if err := svc.DeleteProject(ctx, req.ID, true); err != nil {
				return actionMsg{action: app.OperationFailed{Text: app.NoticeProjectDeleteFailed, Err: err}}
			}
			return actionMsg{action: app.ProjectDeleted{ProjectID: req.ID}}
		case app.DeleteTargetLabel:
			if err := svc.DeleteLabel(ctx, req.ID, true); err != nil {
				return actionMsg{action: app.OperationFailed{Text: app.NoticeLabelDeleteFailed, Err: err}}
			}
			return actionMsg{action: app.LabelDeleted{LabelID: req.ID}}
		default:
			if err := svc.DeleteTask(ctx, req.ID, true); err != nil {
				return actionMsg{action: app.OperationFailed{Text: app.NoticeTaskDeleteFailed, Err: err}}
			}
			return actionMsg{action: app.TaskDeleted{TaskID: req.ID}}
		}
	}
}

func (m Model) copyTaskID(task domain.Task) (tea.Model, tea.Cmd) {
	if err := m.copyText(task.ID); err != nil {
		m.status = "copy failed: " + err.Error()
		return m, nil
	}
	m.status = "copied task id " + task.ID
	return m, nil
}

// syncMode closes modals whose backing state the reducer has cleared.
func (m *Model) syncMode() {
	switch m.mode {
	case modeTaskForm, modeProjectForm, modeLabelForm:
		if m.state.Form == app.FormNone {
			back := modeNone
			if m.mode == modeLabelForm {
				back = modeLabels
			}
			m.mode = back
			m.formInputs = nil
			m.formFocus = 0
		}
	case modeConfirmDelete:
		if m.state.PendingDelete == nil {
			m.mode = m.confirmBack
		}
	}
	if m.mode == modeProjectPicker && len(m.state.Projects) == 0 {
		m.mode = modeNone
	}
	if m.mode == modeDrag && !m.state.Drag.Active() {
		m.mode = modeNone
	}
	m.pickerIndex = clamp(m.pickerIndex, 0, len(m.state.Projects)-1)
	m.labelIndex = clamp(m.labelIndex, 0, len(m.state.Labels)-1)
}

// loadData fetches every collection. Filtering happens client side.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	projects, err := m.svc.ListProjects(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	labels, err := m.svc.ListLabels(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	tasks, err := m.svc.ListTasks(ctx, "", app.Filters{})
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{projects: projects, labels: labels, tasks: tasks}
}

// currentBoard partitions the visible tasks of the selected project.
func (m Model) currentBoard() app.Board {
	return m.state.Board(m.svc.Now())
}

func (m Model) currentColumnTasks() []domain.Task {
	board := m.currentBoard()
	if len(board.Columns) == 0 {
		return nil
	}
	return board.Columns[clamp(m.selectedColumn, 0, len(board.Columns)-1)].Tasks
}

func (m Model) selectedTaskInCurrentColumn() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return domain.Task{}, false
	}
	return tasks[clamp(m.selectedTask, 0, len(tasks)-1)], true
}

// focusTaskByID moves the cursor onto taskID when it is visible.
func (m *Model) focusTaskByID(taskID string) {
	if strings.TrimSpace(taskID) == "" {
		return
	}
	for colIdx, column := range m.currentBoard().Columns {
		for taskIdx, task := range column.Tasks {
			if task.ID == taskID {
				m.selectedColumn = colIdx
				m.selectedTask = taskIdx
				m.focusTaskID = ""
				return
			}
		}
	}
}

func (m *Model) clampSelections() {
	m.selectedColumn = clamp(m.selectedColumn, 0, len(domain.Statuses())-1)
	m.selectedTask = clamp(m.selectedTask, 0, len(m.currentColumnTasks())-1)
}

// noticeStatus renders the reducer notice as a status line.
func noticeStatus(notice *app.Notice, fallback string) string {
	if notice == nil {
		if fallback == "" {
			return "ready"
		}
		return fallback
	}
	if notice.Level == app.NoticeError && notice.Err != nil {
		return notice.Text + ": " + errorText(notice.Err)
	}
	if fallback != "" {
		return notice.Text + " " + fallback
	}
	return notice.Text
}

// errorText shortens the well-known failures to a user-facing phrase.
func errorText(err error) string {
	switch {
	case errors.Is(err, app.ErrBackendUnavailable):
		return "backend unavailable"
	case errors.Is(err, app.ErrNotFound):
		return "not found"
	case errors.Is(err, app.ErrDragInProgress):
		return "another task is already moving"
	default:
		return err.Error()
	}
}

func cyclePriorityFilter(current domain.Priority) domain.Priority {
	options := append([]domain.Priority{""}, domain.Priorities()...)
	for idx, p := range options {
		if p == current {
			return options[(idx+1)%len(options)]
		}
	}
	return ""
}

func cycleDateRange(current app.DateRange) app.DateRange {
	options := app.DateRanges()
	for idx, r := range options {
		if r == current {
			return options[(idx+1)%len(options)]
		}
	}
	return app.DateRangeNone
}

func priorityFilterLabel(p domain.Priority) string {
	if p == "" {
		return "all"
	}
	return string(p)
}

func dateRangeLabel(r app.DateRange) string {
	if r == app.DateRangeNone {
		return "all"
	}
	return string(r)
}

// wrapIndex steps current by delta, wrapping within total.
func wrapIndex(current, delta, total int) int {
	if total <= 0 {
		return 0
	}
	return ((current+delta)%total + total) % total
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
