package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/taskboard/internal/app"
	"github.com/hylla/taskboard/internal/domain"
)

var (
	defaultAccent = lipgloss.Color("62")
	mutedColor    = lipgloss.Color("241")
	dimColor      = lipgloss.Color("239")
	titleColor    = lipgloss.Color("252")
	selectedColor = lipgloss.Color("212")
	dangerColor   = lipgloss.Color("203")
	successColor  = lipgloss.Color("78")
)

// View renders the board and any open modal.
func (m Model) View() tea.View {
	var content string
	switch {
	case m.state.LoadErr != nil:
		content = "error: " + errorText(m.state.LoadErr) + "\n\npress r to retry • q quit\n"
	case !m.ready || !m.state.Loaded:
		content = "loading..."
	case len(m.state.Projects) == 0:
		content = m.renderEmpty()
	default:
		content = m.renderBoard()
	}
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderEmpty renders the first-run screen shown before any project exists.
func (m Model) renderEmpty() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	statusStyle := lipgloss.NewStyle().Foreground(dimColor)
	sections := []string{
		titleStyle.Render("taskboard"),
		"",
		"No projects yet.",
		"Press N to create your first project.",
		"Press q to quit.",
	}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, "", statusStyle.Render(m.status))
	}
	return m.composeScreen(strings.Join(sections, "\n"), m.renderModeOverlay(defaultAccent))
}

func (m Model) renderBoard() string {
	project, _ := m.state.SelectedProject()
	accent := accentColor(project.Color)
	statusStyle := lipgloss.NewStyle().Foreground(dimColor)

	sections := []string{
		m.renderHeader(project, accent),
		statusStyle.Render(m.filterSummary()),
		"",
		m.renderColumns(accent),
	}
	if m.mode == modeSearch {
		sections = append(sections, m.searchInput.View())
	}
	if line := m.renderStatusLine(); line != "" {
		sections = append(sections, line)
	}

	overlay := m.renderModeOverlay(accent)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent)
	}
	return m.composeScreen(strings.Join(sections, "\n"), overlay)
}

// composeScreen pins the short help to the bottom and layers overlay over the content.
func (m Model) composeScreen(content, overlay string) string {
	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	full := content + "\n" + helpLine
	if overlay == "" {
		return full
	}
	overlayHeight := lipgloss.Height(full)
	if m.height > 0 {
		overlayHeight = m.height
	}
	return overlayOnContent(full, overlay, max(1, m.width), max(1, overlayHeight))
}

// renderHeader renders the project name, accent, and completion counters.
func (m Model) renderHeader(project domain.Project, accent color.Color) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	statusStyle := lipgloss.NewStyle().Foreground(dimColor)

	header := titleStyle.Render("taskboard") + "  " + nameStyle.Render("● "+project.Name)
	counts := fmt.Sprintf("  %d/%d done", project.CompletedCount, project.TaskCount)
	if m.board.ShowCompletionRate {
		counts += fmt.Sprintf(" (%.0f%%)", project.CompletionRate())
	}
	header += statusStyle.Render(counts)
	if len(m.state.Projects) > 1 {
		header += statusStyle.Render(fmt.Sprintf("  [%d projects • p switch]", len(m.state.Projects)))
	}
	return header
}

// filterSummary describes the active filters in one line.
func (m Model) filterSummary() string {
	f := m.state.Filters
	if !f.Active() {
		return "filters: none"
	}
	parts := make([]string, 0, 3)
	if f.Priority != "" {
		parts = append(parts, "priority="+string(f.Priority))
	}
	if f.DateRange != app.DateRangeNone {
		parts = append(parts, "due="+string(f.DateRange))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		parts = append(parts, fmt.Sprintf("search=%q", q))
	}
	return "filters: " + strings.Join(parts, " • ") + "  (c clear)"
}

func (m Model) renderStatusLine() string {
	style := lipgloss.NewStyle().Foreground(dimColor)
	if notice := m.state.Notice; notice != nil {
		switch notice.Level {
		case app.NoticeError:
			style = lipgloss.NewStyle().Bold(true).Foreground(dangerColor)
		case app.NoticeSuccess:
			style = lipgloss.NewStyle().Foreground(successColor)
		}
	}
	if strings.TrimSpace(m.status) == "" || m.status == "ready" {
		return ""
	}
	return style.Render(m.status)
}

// renderColumns renders the three status columns side by side.
func (m Model) renderColumns(accent color.Color) string {
	now := m.svc.Now()
	board := m.currentBoard()
	colWidth := m.columnWidthFor(m.width, len(board.Columns))
	innerHeight := max(1, m.columnHeight()-4)

	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth)
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	dragID := m.state.Drag.TaskID()
	over := m.state.Drag.OverStatus()

	views := make([]string, 0, len(board.Columns))
	for colIdx, column := range board.Columns {
		headerText := fmt.Sprintf("%s (%d)", column.Title, len(column.Tasks))
		if m.state.Drag.Active() && column.Status == over {
			headerText += " ⇣ drop here"
		}
		headerLines := []string{colTitle.Render(headerText)}
		if dragged, ok := m.state.Drag.Task(); ok && column.Status == over && dragged.Status != over {
			ghost := lipgloss.NewStyle().Italic(true).Foreground(selectedColor)
			headerLines = append(headerLines, ghost.Render("→ "+truncate(dragged.Title, max(1, colWidth-6))))
		}

		taskLines := make([]string, 0, max(1, len(column.Tasks)*3))
		selectedStart, selectedEnd := -1, -1
		if len(column.Tasks) == 0 {
			taskLines = append(taskLines, emptyStyle.Render("(empty)"))
		}
		for taskIdx, task := range column.Tasks {
			selected := colIdx == m.selectedColumn && taskIdx == m.selectedTask && !m.state.Drag.Active()
			rowStart := len(taskLines)
			taskLines = append(taskLines, m.renderCard(task, colWidth, selected, task.ID == dragID || task.ID == m.pendingMoveID, now)...)
			if taskIdx < len(column.Tasks)-1 {
				taskLines = append(taskLines, "")
			}
			if selected {
				selectedStart = rowStart
				selectedEnd = len(taskLines) - 1
			}
		}

		windowHeight := max(1, innerHeight-len(headerLines))
		scrollTop := 0
		if selectedStart >= 0 && selectedEnd >= windowHeight {
			scrollTop = selectedEnd - windowHeight + 1
		}
		scrollTop = clamp(scrollTop, 0, max(0, len(taskLines)-windowHeight))
		if len(taskLines) > windowHeight {
			taskLines = taskLines[scrollTop : scrollTop+windowHeight]
		}

		style := baseColStyle
		switch {
		case m.state.Drag.Active() && column.Status == over:
			style = style.BorderForeground(selectedColor)
		case colIdx == m.selectedColumn:
			style = style.BorderForeground(accent)
		}
		lines := append(append([]string{}, headerLines...), taskLines...)
		views = append(views, style.Render(fitLines(strings.Join(lines, "\n"), innerHeight)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// renderCard renders one task as title, meta, and optional label chips.
func (m Model) renderCard(task domain.Task, width int, selected, dragging bool, now time.Time) []string {
	prefix := "   "
	if selected {
		prefix = "│  "
	}
	textWidth := max(1, width-6)
	title := prefix + truncate(task.Title, textWidth)
	switch {
	case dragging:
		title = lipgloss.NewStyle().Italic(true).Foreground(mutedColor).Render(prefix + "⇄ " + truncate(task.Title, max(1, textWidth-2)))
	case selected:
		title = lipgloss.NewStyle().Bold(true).Foreground(selectedColor).Render(title)
	}

	lines := []string{title}
	metaStyle := lipgloss.NewStyle().Foreground(mutedColor)
	meta := string(task.Priority)
	if task.DueAt != nil {
		meta += " • due " + app.FormatDueDate(*task.DueAt, m.loc)
	}
	metaLine := prefix + metaStyle.Render(truncate(meta, textWidth))
	if task.IsOverdue(now) {
		metaLine += " " + lipgloss.NewStyle().Bold(true).Foreground(dangerColor).Render("! overdue")
	}
	lines = append(lines, metaLine)

	if m.board.ShowLabels {
		if chips := renderLabelChips(m.state.TaskLabels(task), textWidth); chips != "" {
			lines = append(lines, prefix+chips)
		}
	}
	return lines
}

// renderLabelChips renders label names in their own colors, stopping before width overflows.
func renderLabelChips(labels []domain.Label, width int) string {
	chips := make([]string, 0, len(labels))
	used := 0
	for idx, label := range labels {
		text := "#" + label.Name
		if used+len(text) > width {
			chips = append(chips, lipgloss.NewStyle().Foreground(mutedColor).Render(fmt.Sprintf("+%d", len(labels)-idx)))
			break
		}
		chips = append(chips, lipgloss.NewStyle().Foreground(accentColor(label.Color)).Render(text))
		used += len(text) + 1
	}
	return strings.Join(chips, " ")
}

// renderModeOverlay renders the modal for the current input mode, if any.
func (m Model) renderModeOverlay(accent color.Color) string {
	width := clamp(m.width-8, 36, 72)
	switch m.mode {
	case modeTaskForm:
		return m.renderTaskForm(accent, width)
	case modeProjectForm:
		form := m.state.ProjectForm
		title := "New Project"
		if form.Mode == app.FormEdit {
			title = "Edit Project"
		}
		return m.renderNameColorForm(title, form.Color, accent, width)
	case modeLabelForm:
		form := m.state.LabelForm
		title := "New Label"
		if form.Mode == app.FormEdit {
			title = "Edit Label"
		}
		return m.renderNameColorForm(title, form.Color, accent, width)
	case modeProjectPicker:
		return m.renderProjectPicker(accent, width)
	case modeLabels:
		return m.renderLabelsManager(accent, width)
	case modeTaskDetails:
		return m.renderTaskDetails(accent, width)
	case modeConfirmDelete:
		return m.renderConfirm(width)
	default:
		return ""
	}
}

func modalStyle(accent color.Color, width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Width(width)
}

func (m Model) renderTaskForm(accent color.Color, width int) string {
	form := m.state.TaskForm
	title := "New Task"
	if form.Mode == app.FormEdit {
		title = "Edit Task"
	}
	labelStyle := lipgloss.NewStyle().Foreground(mutedColor).Width(13)
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title), ""}
	for idx, name := range taskFieldNames {
		marker := "  "
		if idx == m.formFocus {
			marker = lipgloss.NewStyle().Foreground(accent).Render("› ")
		}
		var value string
		switch idx {
		case taskFieldTitle, taskFieldDescription, taskFieldDue:
			if idx < len(m.formInputs) {
				value = m.formInputs[idx].View()
			}
		case taskFieldStatus:
			value = "‹ " + form.Status.Label() + " ›"
		case taskFieldPriority:
			value = "‹ " + string(form.Priority) + " ›"
		case taskFieldProject:
			value = "‹ " + m.state.ProjectName(form.ProjectID) + " ›"
		case taskFieldLabels:
			value = m.renderLabelToggles(idx == m.formFocus)
		}
		lines = append(lines, marker+labelStyle.Render(name)+value)
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(mutedColor).Render("tab next • h/l change • space toggle label • enter save • esc cancel"))
	return modalStyle(accent, width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderLabelToggles(focused bool) string {
	if len(m.state.Labels) == 0 {
		return lipgloss.NewStyle().Foreground(mutedColor).Render("(no labels, press L on the board)")
	}
	parts := make([]string, 0, len(m.state.Labels))
	for idx, label := range m.state.Labels {
		check := "[ ]"
		for _, id := range m.state.TaskForm.LabelIDs {
			if id == label.ID {
				check = "[x]"
			}
		}
		style := lipgloss.NewStyle().Foreground(accentColor(label.Color))
		if focused && idx == m.labelFocus {
			style = style.Underline(true).Bold(true)
		}
		parts = append(parts, style.Render(check+" "+label.Name))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderNameColorForm(title, hex string, accent color.Color, width int) string {
	labelStyle := lipgloss.NewStyle().Foreground(mutedColor).Width(8)
	markers := [nameFieldCount]string{"  ", "  "}
	markers[clamp(m.formFocus, 0, nameFieldCount-1)] = lipgloss.NewStyle().Foreground(accent).Render("› ")
	name := ""
	if len(m.formInputs) > 0 {
		name = m.formInputs[nameFieldName].View()
	}
	swatch := lipgloss.NewStyle().Foreground(accentColor(hex)).Render("■■")
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title),
		"",
		markers[nameFieldName] + labelStyle.Render("name") + name,
		markers[nameFieldColor] + labelStyle.Render("color") + "‹ " + swatch + " " + hex + " ›",
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Render("tab next • h/l color • enter save • esc cancel"),
	}
	return modalStyle(accent, width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderProjectPicker(accent color.Color, width int) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Projects"), ""}
	for idx, project := range m.state.Projects {
		cursor := "  "
		style := lipgloss.NewStyle()
		if idx == m.pickerIndex {
			cursor = "› "
			style = style.Bold(true).Foreground(selectedColor)
		}
		swatch := lipgloss.NewStyle().Foreground(accentColor(project.Color)).Render("●")
		row := fmt.Sprintf("%s %s", swatch, style.Render(truncate(project.Name, width-24)))
		counts := lipgloss.NewStyle().Foreground(mutedColor).Render(fmt.Sprintf("  %d/%d", project.CompletedCount, project.TaskCount))
		if project.ID == m.state.SelectedProjectID {
			counts += lipgloss.NewStyle().Foreground(mutedColor).Render("  (current)")
		}
		lines = append(lines, cursor+row+counts)
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(mutedColor).Render("enter select • N new • e edit • d delete • esc close"))
	return modalStyle(accent, width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderLabelsManager(accent color.Color, width int) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Labels"), ""}
	if len(m.state.Labels) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Render("No labels yet."))
	}
	for idx, label := range m.state.Labels {
		cursor := "  "
		if idx == m.labelIndex {
			cursor = "› "
		}
		style := lipgloss.NewStyle().Foreground(accentColor(label.Color))
		if idx == m.labelIndex {
			style = style.Bold(true)
		}
		lines = append(lines, cursor+style.Render("#"+label.Name)+lipgloss.NewStyle().Foreground(mutedColor).Render("  "+label.Color))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(mutedColor).Render("n new • e edit • d delete • esc close"))
	return modalStyle(accent, width).Render(strings.Join(lines, "\n"))
}

// renderTaskDetails renders the selected task with its description as markdown.
func (m Model) renderTaskDetails(accent color.Color, width int) string {
	task, ok := m.state.Task(m.detailsTaskID)
	if !ok {
		return ""
	}
	muted := lipgloss.NewStyle().Foreground(mutedColor)
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render(task.Title),
		muted.Render("id: " + task.ID),
		"",
		"project:  " + m.state.ProjectName(task.ProjectID),
		"status:   " + task.Status.Label(),
		"priority: " + string(task.Priority),
	}
	due := "-"
	if task.DueAt != nil {
		due = app.FormatDueDate(*task.DueAt, m.loc)
		if task.IsOverdue(m.svc.Now()) {
			due += " " + lipgloss.NewStyle().Bold(true).Foreground(dangerColor).Render("(overdue)")
		}
	}
	lines = append(lines, "due:      "+due)
	if chips := renderLabelChips(m.state.TaskLabels(task), width-14); chips != "" {
		lines = append(lines, "labels:   "+chips)
	}
	if task.CompletedAt != nil {
		lines = append(lines, muted.Render("completed "+task.CompletedAt.In(m.loc).Format(time.DateTime)))
	}
	lines = append(lines, muted.Render("updated "+task.UpdatedAt.In(m.loc).Format(time.DateTime)))
	if rendered := splitMarkdownLines(m.markdown.render(task.Description, width-4)); len(rendered) > 0 {
		lines = append(lines, "")
		lines = append(lines, rendered...)
	}
	lines = append(lines, "", muted.Render("e edit • y copy id • esc close"))
	body := strings.Join(lines, "\n")
	if m.height > 0 {
		body = fitLines(body, max(8, m.height-6))
	}
	return modalStyle(accent, width).Render(body)
}

func (m Model) renderConfirm(width int) string {
	pending := m.state.PendingDelete
	if pending == nil {
		return ""
	}
	button := func(text string, active bool, c color.Color) string {
		style := lipgloss.NewStyle().Padding(0, 2).Foreground(mutedColor)
		if active {
			style = style.Bold(true).Foreground(lipgloss.Color("0")).Background(c)
		}
		return style.Render(text)
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		button("Delete", m.confirmChoice == 0, dangerColor),
		"  ",
		button("Cancel", m.confirmChoice == 1, defaultAccent),
	)
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(dangerColor).Render("Confirm delete"),
		"",
		pending.Prompt(),
		lipgloss.NewStyle().Foreground(mutedColor).Render(string(pending.Target) + ": " + truncate(pending.Name, width-12)),
		"",
		buttons,
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Render("y delete • n/esc cancel • h/l choose"),
	}
	return modalStyle(dangerColor, width).Render(strings.Join(lines, "\n"))
}

// renderHelpOverlay renders every binding grouped by area.
func (m Model) renderHelpOverlay(accent color.Color) string {
	helpBubble := m.help
	helpBubble.ShowAll = true
	helpBubble.SetWidth(max(0, m.width-12))
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Keys"),
		"",
		helpBubble.View(m.keys),
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Render("while grabbing: h/l hover • space/enter drop • esc cancel"),
	}
	return modalStyle(accent, clamp(m.width-8, 36, 96)).Render(strings.Join(lines, "\n"))
}

// accentColor returns hex as a color, or the default accent when blank.
func accentColor(hex string) color.Color {
	if strings.TrimSpace(hex) == "" {
		return defaultAccent
	}
	return lipgloss.Color(hex)
}

// columnWidthFor splits boardWidth across columns within readable bounds.
func (m Model) columnWidthFor(boardWidth, columns int) int {
	if columns == 0 {
		return 24
	}
	w := 28
	if boardWidth > 0 {
		// Per-column overhead: left/right border (2), horizontal padding (4), margin-right (1)
		const colOverhead = 7
		if candidate := (boardWidth - columns*colOverhead) / columns; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 24, 48)
}

func (m Model) columnHeight() int {
	// header, filter line, spacer, status, help
	const chrome = 7
	return max(12, m.height-chrome)
}

func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base using a layered canvas.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	overlayLayer := lipgloss.NewLayer(centered).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
