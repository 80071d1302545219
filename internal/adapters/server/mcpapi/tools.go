package mcpapi

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hylla/taskboard/internal/adapters/server/common"
)

var (
	statusValues    = []string{"todo", "in_progress", "done"}
	priorityValues  = []string{"low", "medium", "high"}
	dateRangeValues = []string{"all", "today", "week", "month", "overdue"}
)

// registerProjectTools registers project list and create tools.
func registerProjectTools(srv *mcpserver.MCPServer, projects common.ProjectService) {
	srv.AddTool(
		mcp.NewTool(
			"taskboard.list_projects",
			mcp.WithDescription("List projects with their task and completed counters."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := projects.ListProjects(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_projects", map[string]any{"projects": rows})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.create_project",
			mcp.WithDescription("Create one project."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("color", mcp.Description("Optional #RRGGBB color")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil || strings.TrimSpace(name) == "" {
				return missingArgument("name"), nil
			}
			project, err := projects.CreateProject(ctx, common.CreateProjectRequest{
				Name:  name,
				Color: req.GetString("color", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("create_project", project)
		},
	)
}

// registerLabelTools registers label list and create tools.
func registerLabelTools(srv *mcpserver.MCPServer, labels common.LabelService) {
	srv.AddTool(
		mcp.NewTool(
			"taskboard.list_labels",
			mcp.WithDescription("List labels in creation order."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := labels.ListLabels(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_labels", map[string]any{"labels": rows})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.create_label",
			mcp.WithDescription("Create one label."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Label name")),
			mcp.WithString("color", mcp.Description("Optional #RRGGBB color")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil || strings.TrimSpace(name) == "" {
				return missingArgument("name"), nil
			}
			label, err := labels.CreateLabel(ctx, common.CreateLabelRequest{
				Name:  name,
				Color: req.GetString("color", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("create_label", label)
		},
	)
}

// registerTaskTools registers board, task query, and task mutation tools.
func registerTaskTools(srv *mcpserver.MCPServer, tasks common.TaskService) {
	filterOptions := []mcp.ToolOption{
		mcp.WithString("project_id", mcp.Description("Restrict to one project")),
		mcp.WithString("priority", mcp.Description("low|medium|high"), mcp.Enum(priorityValues...)),
		mcp.WithString("date_range", mcp.Description("all|today|week|month|overdue"), mcp.Enum(dateRangeValues...)),
		mcp.WithString("q", mcp.Description("Case-insensitive title/description search")),
	}

	srv.AddTool(
		mcp.NewTool(
			"taskboard.get_board",
			append([]mcp.ToolOption{
				mcp.WithDescription("Return the three-column board for one project under optional filters."),
			}, filterOptions...)...,
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			board, err := tasks.Board(ctx, filtersFromArgs(req))
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("get_board", board)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.list_tasks",
			append([]mcp.ToolOption{
				mcp.WithDescription("List tasks under optional filters."),
				mcp.WithString("status", mcp.Description("todo|in_progress|done"), mcp.Enum(statusValues...)),
			}, filterOptions...)...,
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			filters := filtersFromArgs(req)
			filters.Status = req.GetString("status", "")
			rows, err := tasks.ListTasks(ctx, filters)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_tasks", map[string]any{"tasks": rows})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.create_task",
			mcp.WithDescription("Create one task in a project."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("description", mcp.Description("Task description")),
			mcp.WithString("status", mcp.Description("todo|in_progress|done"), mcp.Enum(statusValues...)),
			mcp.WithString("priority", mcp.Description("low|medium|high"), mcp.Enum(priorityValues...)),
			mcp.WithString("due_date", mcp.Description("Optional YYYY-MM-DD or RFC3339 due date")),
			mcp.WithArray("label_ids", mcp.Description("Optional label ids"), mcp.WithStringItems()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args common.CreateTaskRequest
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if strings.TrimSpace(args.ProjectID) == "" {
				return missingArgument("project_id"), nil
			}
			if strings.TrimSpace(args.Title) == "" {
				return missingArgument("title"), nil
			}
			task, err := tasks.CreateTask(ctx, args)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("create_task", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.update_task",
			mcp.WithDescription("Replace the editable fields of one task."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("project_id", mcp.Description("Move to another project")),
			mcp.WithString("description", mcp.Description("Task description")),
			mcp.WithString("status", mcp.Description("todo|in_progress|done"), mcp.Enum(statusValues...)),
			mcp.WithString("priority", mcp.Description("low|medium|high"), mcp.Enum(priorityValues...)),
			mcp.WithString("due_date", mcp.Description("YYYY-MM-DD or RFC3339; empty clears the due date")),
			mcp.WithArray("label_ids", mcp.Description("Label ids"), mcp.WithStringItems()),
			mcp.WithNumber("position", mcp.Description("Sort order within the column; omit to keep it")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args common.UpdateTaskRequest
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if strings.TrimSpace(args.ID) == "" {
				return missingArgument("id"), nil
			}
			if strings.TrimSpace(args.Title) == "" {
				return missingArgument("title"), nil
			}
			task, err := tasks.UpdateTask(ctx, args)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("update_task", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.move_task",
			mcp.WithDescription("Move one task to another column. Moving to the current column is a no-op."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Target column"), mcp.Enum(statusValues...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return missingArgument("id"), nil
			}
			status, err := req.RequireString("status")
			if err != nil {
				return missingArgument("status"), nil
			}
			moved, err := tasks.MoveTask(ctx, common.MoveTaskRequest{ID: id, Status: status})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_task", moved)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.delete_task",
			mcp.WithDescription("Delete one task. Requires confirm=true."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithBoolean("confirm", mcp.Description("Must be true to delete")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return missingArgument("id"), nil
			}
			if err := tasks.DeleteTask(ctx, common.DeleteRequest{
				ID:      id,
				Confirm: req.GetBool("confirm", false),
			}); err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("delete_task", map[string]any{"id": id, "deleted": true})
		},
	)
}

// filtersFromArgs reads the shared board/list filter arguments.
func filtersFromArgs(req mcp.CallToolRequest) common.ListTasksRequest {
	return common.ListTasksRequest{
		ProjectID: req.GetString("project_id", ""),
		Priority:  req.GetString("priority", ""),
		DateRange: req.GetString("date_range", ""),
		Query:     req.GetString("q", ""),
	}
}
