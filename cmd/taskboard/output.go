package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	servercommon "github.com/hylla/taskboard/internal/adapters/server/common"
)

// emit writes v as JSON under --json, ids one per line under --quiet, and the
// human rendering otherwise.
func (c *cli) emit(v any, ids []string, human func(io.Writer) error) error {
	switch {
	case c.jsonOutput:
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json output: %w", err)
		}
		return nil
	case c.quiet:
		for _, id := range ids {
			if _, err := fmt.Fprintln(c.stdout, id); err != nil {
				return err
			}
		}
		return nil
	default:
		return human(c.stdout)
	}
}

func (c *cli) emitTasks(tasks []servercommon.Task) error {
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	if tasks == nil {
		tasks = []servercommon.Task{}
	}
	return c.emit(tasks, ids, func(w io.Writer) error {
		return writeTasks(w, tasks)
	})
}

func (c *cli) emitDeleted(kind, id string) error {
	out := map[string]string{"deleted": kind, "id": id}
	return c.emit(out, []string{id}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "deleted %s %s\n", kind, id)
		return err
	})
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// swatch renders a short color sample; invalid colors fall back to the raw text.
func swatch(hex string) string {
	if strings.TrimSpace(hex) == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■ " + hex)
}

func writeProjects(w io.Writer, projects []servercommon.Project) error {
	if len(projects) == 0 {
		_, err := fmt.Fprintln(w, "no projects")
		return err
	}
	t := newTable("ID", "Name", "Color", "Tasks", "Done", "Rate")
	for _, p := range projects {
		t.Row(p.ID, p.Name, swatch(p.Color), strconv.Itoa(p.TaskCount), strconv.Itoa(p.CompletedCount), fmt.Sprintf("%.0f%%", p.CompletionRate))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeLabels(w io.Writer, labels []servercommon.Label) error {
	if len(labels) == 0 {
		_, err := fmt.Fprintln(w, "no labels")
		return err
	}
	t := newTable("ID", "Name", "Color")
	for _, l := range labels {
		t.Row(l.ID, l.Name, swatch(l.Color))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeTasks(w io.Writer, tasks []servercommon.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "no tasks")
		return err
	}
	t := newTable("ID", "Title", "Status", "Priority", "Due", "Labels")
	for _, task := range tasks {
		t.Row(task.ID, task.Title, task.Status, task.Priority, dueCell(task), strings.Join(task.LabelIDs, ","))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeBoard(w io.Writer, board servercommon.Board) error {
	if board.Project != nil {
		header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(board.Project.Color))
		if _, err := fmt.Fprintf(w, "%s  %d/%d done\n", header.Render(board.Project.Name), board.Project.CompletedCount, board.Project.TaskCount); err != nil {
			return err
		}
	}
	headers := make([]string, 0, len(board.Columns))
	depth := 0
	for _, col := range board.Columns {
		headers = append(headers, fmt.Sprintf("%s (%d)", col.Title, len(col.Tasks)))
		depth = max(depth, len(col.Tasks))
	}
	t := newTable(headers...)
	for i := range depth {
		row := make([]string, len(board.Columns))
		for j, col := range board.Columns {
			if i < len(col.Tasks) {
				row[j] = boardCell(col.Tasks[i])
			}
		}
		t.Row(row...)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func boardCell(task servercommon.Task) string {
	cell := task.Title
	if task.Priority != "" {
		cell = fmt.Sprintf("[%s] %s", strings.ToUpper(task.Priority[:1]), task.Title)
	}
	if due := dueCell(task); due != "" {
		cell += " · " + due
	}
	return cell
}

func dueCell(task servercommon.Task) string {
	if task.DueAt == nil {
		return ""
	}
	due := task.DueAt.In(time.Local).Format("2006-01-02")
	if task.Overdue {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(due + " overdue")
	}
	return due
}
