package tui

import "charm.land/bubbles/v2/key"

// keyMap holds the board-level bindings. Modal modes match raw key strings.
type keyMap struct {
	quit         key.Binding
	reload       key.Binding
	toggleHelp   key.Binding
	moveLeft     key.Binding
	moveRight    key.Binding
	moveUp       key.Binding
	moveDown     key.Binding
	grab         key.Binding
	drop         key.Binding
	cancel       key.Binding
	addTask      key.Binding
	editTask     key.Binding
	deleteTask   key.Binding
	taskDetails  key.Binding
	copyTaskID   key.Binding
	newProject   key.Binding
	editProject  key.Binding
	labels       key.Binding
	projects     key.Binding
	priority     key.Binding
	dateRange    key.Binding
	search       key.Binding
	clearFilters key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		grab:         key.NewBinding(key.WithKeys("space", " "), key.WithHelp("space", "grab task")),
		drop:         key.NewBinding(key.WithKeys("space", " ", "enter"), key.WithHelp("space/enter", "drop task")),
		cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		addTask:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		editTask:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		deleteTask:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		taskDetails:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "task details")),
		copyTaskID:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task id")),
		newProject:   key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new project")),
		editProject:  key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "edit project")),
		labels:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "labels")),
		projects:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "project picker")),
		priority:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle priority filter")),
		dateRange:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle due filter")),
		search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		clearFilters: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
	}
}

// ShortHelp returns the footer bindings.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.grab, k.taskDetails, k.editTask, k.deleteTask, k.search, k.toggleHelp, k.quit,
	}
}

// FullHelp returns the grouped bindings shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.grab, k.drop, k.cancel},
		{k.addTask, k.editTask, k.deleteTask, k.taskDetails, k.copyTaskID},
		{k.newProject, k.editProject, k.projects, k.labels},
		{k.priority, k.dateRange, k.search, k.clearFilters, k.reload, k.toggleHelp, k.quit},
	}
}
