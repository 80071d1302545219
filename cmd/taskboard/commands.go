package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	serveradapter "github.com/hylla/taskboard/internal/adapters/server"
	servercommon "github.com/hylla/taskboard/internal/adapters/server/common"
	"github.com/hylla/taskboard/internal/adapters/storage/remote"
	"github.com/hylla/taskboard/internal/app"
	"github.com/hylla/taskboard/internal/platform"
)

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = serveradapter.Run

func (c *cli) newPathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data locations",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			out := struct {
				App        string `json:"app"`
				DevMode    bool   `json:"dev_mode"`
				Config     string `json:"config"`
				DataDir    string `json:"data_dir"`
				DB         string `json:"db"`
				LogDir     string `json:"log_dir"`
				KeyringDir string `json:"keyring_dir"`
				Seed       string `json:"seed"`
			}{c.appName, c.devMode, c.paths.ConfigPath, c.paths.DataDir, c.paths.DBPath, c.paths.LogDir, c.paths.KeyringDir, c.paths.SeedPath}
			return c.emit(out, nil, func(w io.Writer) error {
				_, _ = fmt.Fprintf(w, "app: %s\n", out.App)
				_, _ = fmt.Fprintf(w, "dev_mode: %t\n", out.DevMode)
				_, _ = fmt.Fprintf(w, "config: %s\n", out.Config)
				_, _ = fmt.Fprintf(w, "data_dir: %s\n", out.DataDir)
				_, _ = fmt.Fprintf(w, "db: %s\n", out.DB)
				_, _ = fmt.Fprintf(w, "log_dir: %s\n", out.LogDir)
				_, _ = fmt.Fprintf(w, "keyring_dir: %s\n", out.KeyringDir)
				_, err := fmt.Fprintf(w, "seed: %s\n", out.Seed)
				return err
			})
		},
	}
}

func (c *cli) newServeCommand() *cobra.Command {
	var httpBind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and MCP tools over HTTP",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.open(true); err != nil {
				return err
			}
			bind := c.cfg.Server.HTTPBind
			if strings.TrimSpace(httpBind) != "" {
				bind = httpBind
			}
			c.logger.Info("command flow start", "command", "serve", "http_bind", bind)
			err := serveCommandRunner(cmd.Context(), serveradapter.Config{
				HTTPBind:      bind,
				APIEndpoint:   c.cfg.Server.APIEndpoint,
				MCPEndpoint:   c.cfg.Server.MCPEndpoint,
				ServerName:    platform.AppName,
				ServerVersion: version,
			}, serveradapter.Dependencies{
				Service: c.adapter,
				Ready:   c.ready,
			})
			if err != nil {
				c.logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run serve command: %w", err)
			}
			c.logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "listen address (overrides server.http_bind)")
	return cmd
}

func (c *cli) newExportCommand() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every project, label, and task as a JSON snapshot",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.open(outPath != "-")
			if err != nil {
				return err
			}
			snap, err := svc.ExportSnapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("export snapshot: %w", err)
			}
			encoded, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot json: %w", err)
			}
			encoded = append(encoded, '\n')
			if outPath == "-" {
				if _, err := c.stdout.Write(encoded); err != nil {
					return fmt.Errorf("write snapshot to stdout: %w", err)
				}
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return fmt.Errorf("create export output dir: %w", err)
			}
			if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			c.logger.Info("snapshot exported", "path", outPath, "projects", len(snap.Projects), "tasks", len(snap.Tasks))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file path ('-' for stdout)")
	return cmd
}

func (c *cli) newImportCommand() *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create or update records from a JSON snapshot",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return usageError{err: errors.New("--in is required")}
			}
			content, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var snap app.Snapshot
			if err := json.Unmarshal(content, &snap); err != nil {
				return fmt.Errorf("decode snapshot json: %w: %w", servercommon.ErrInvalidRequest, err)
			}
			svc, err := c.open(true)
			if err != nil {
				return err
			}
			if err := svc.ImportSnapshot(cmd.Context(), snap); err != nil {
				return fmt.Errorf("import snapshot: %w", err)
			}
			c.logger.Info("snapshot imported", "path", inPath, "projects", len(snap.Projects), "tasks", len(snap.Tasks))
			return nil
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "input snapshot JSON file")
	return cmd
}

// addFilterFlags binds the shared task filter flags onto f.
func addFilterFlags(cmd *cobra.Command, f *servercommon.Filters) {
	cmd.Flags().StringVarP(&f.ProjectID, "project", "p", "", "project id")
	cmd.Flags().StringVar(&f.Priority, "priority", "", "priority filter: low, medium, high")
	cmd.Flags().StringVar(&f.DateRange, "due", "", "due date range: today, week, month, overdue")
	cmd.Flags().StringVarP(&f.Query, "search", "s", "", "case-insensitive title/description search")
}

func (c *cli) newBoardCommand() *cobra.Command {
	var filters servercommon.Filters
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the three-column board",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			board, err := svc.Board(cmd.Context(), filters)
			if err != nil {
				return err
			}
			var ids []string
			for _, col := range board.Columns {
				for _, task := range col.Tasks {
					ids = append(ids, task.ID)
				}
			}
			return c.emit(board, ids, func(w io.Writer) error {
				return writeBoard(w, board)
			})
		},
	}
	addFilterFlags(cmd, &filters)
	return cmd
}

func (c *cli) newProjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
		Args:  usageArgs(cobra.NoArgs),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects with their task counters",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			projects, err := svc.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(projects))
			for _, p := range projects {
				ids = append(ids, p.ID)
			}
			return c.emit(projects, ids, func(w io.Writer) error {
				return writeProjects(w, projects)
			})
		},
	}

	var create servercommon.CreateProjectRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			project, err := svc.CreateProject(cmd.Context(), create)
			if err != nil {
				return err
			}
			return c.emit(project, []string{project.ID}, func(w io.Writer) error {
				return writeProjects(w, []servercommon.Project{project})
			})
		},
	}
	createCmd.Flags().StringVarP(&create.Name, "name", "n", "", "project name")
	createCmd.Flags().StringVar(&create.Color, "color", "", "hex color, e.g. #5B47E0")

	var update servercommon.UpdateProjectRequest
	updateCmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Rename or recolor a project",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			current, err := svc.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := servercommon.UpdateProjectRequest{ID: current.ID, Name: current.Name, Color: current.Color}
			if cmd.Flags().Changed("name") {
				req.Name = update.Name
			}
			if cmd.Flags().Changed("color") {
				req.Color = update.Color
			}
			project, err := svc.UpdateProject(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.emit(project, []string{project.ID}, func(w io.Writer) error {
				return writeProjects(w, []servercommon.Project{project})
			})
		},
	}
	updateCmd.Flags().StringVarP(&update.Name, "name", "n", "", "project name")
	updateCmd.Flags().StringVar(&update.Color, "color", "", "hex color")

	deleteCmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and all of its tasks",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			project, err := svc.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ok, err := c.confirm(app.DeleteRequest{Target: app.DeleteTargetProject, ID: project.ID, Name: project.Name})
			if err != nil || !ok {
				return err
			}
			if err := svc.DeleteProject(cmd.Context(), servercommon.DeleteRequest{ID: project.ID, Confirm: true}); err != nil {
				return err
			}
			return c.emitDeleted("project", project.ID)
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile",
		Short: "Recount every project's task counters from its tasks",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.open(!c.jsonOutput && !c.quiet); err != nil {
				return err
			}
			if _, err := c.svc.ReconcileProjectCounters(cmd.Context()); err != nil {
				return fmt.Errorf("reconcile counters: %w", err)
			}
			projects, err := c.adapter.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(projects))
			for _, p := range projects {
				ids = append(ids, p.ID)
			}
			return c.emit(projects, ids, func(w io.Writer) error {
				return writeProjects(w, projects)
			})
		},
	}

	cmd.AddCommand(list, createCmd, updateCmd, deleteCmd, reconcile)
	return cmd
}

func (c *cli) newLabelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Manage labels",
		Args:  usageArgs(cobra.NoArgs),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List labels",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			labels, err := svc.ListLabels(cmd.Context())
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(labels))
			for _, l := range labels {
				ids = append(ids, l.ID)
			}
			return c.emit(labels, ids, func(w io.Writer) error {
				return writeLabels(w, labels)
			})
		},
	}

	var create servercommon.CreateLabelRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a label",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			label, err := svc.CreateLabel(cmd.Context(), create)
			if err != nil {
				return err
			}
			return c.emit(label, []string{label.ID}, func(w io.Writer) error {
				return writeLabels(w, []servercommon.Label{label})
			})
		},
	}
	createCmd.Flags().StringVarP(&create.Name, "name", "n", "", "label name")
	createCmd.Flags().StringVar(&create.Color, "color", "", "hex color, e.g. #3B82F6")

	deleteCmd := &cobra.Command{
		Use:   "delete <label-id>",
		Short: "Delete a label; tasks keep the dangling id",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			labels, err := svc.ListLabels(cmd.Context())
			if err != nil {
				return err
			}
			var target *servercommon.Label
			for i := range labels {
				if labels[i].ID == args[0] {
					target = &labels[i]
				}
			}
			if target == nil {
				return fmt.Errorf("label %q: %w", args[0], servercommon.ErrNotFound)
			}
			ok, err := c.confirm(app.DeleteRequest{Target: app.DeleteTargetLabel, ID: target.ID, Name: target.Name})
			if err != nil || !ok {
				return err
			}
			if err := svc.DeleteLabel(cmd.Context(), servercommon.DeleteRequest{ID: target.ID, Confirm: true}); err != nil {
				return err
			}
			return c.emitDeleted("label", target.ID)
		},
	}

	cmd.AddCommand(list, createCmd, deleteCmd)
	return cmd
}

func (c *cli) newTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Args:  usageArgs(cobra.NoArgs),
	}

	var filters servercommon.Filters
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks matching the filters",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			tasks, err := svc.ListTasks(cmd.Context(), filters)
			if err != nil {
				return err
			}
			return c.emitTasks(tasks)
		},
	}
	addFilterFlags(list, &filters)
	list.Flags().StringVar(&filters.Status, "status", "", "status filter: todo, in_progress, done")

	var create servercommon.CreateTaskRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			task, err := svc.CreateTask(cmd.Context(), create)
			if err != nil {
				return err
			}
			return c.emitTasks([]servercommon.Task{task})
		},
	}
	createCmd.Flags().StringVarP(&create.ProjectID, "project", "p", "", "project id")
	createCmd.Flags().StringVarP(&create.Title, "title", "t", "", "task title")
	createCmd.Flags().StringVarP(&create.Description, "description", "d", "", "markdown description")
	createCmd.Flags().StringVar(&create.Status, "status", "", "todo, in_progress, or done")
	createCmd.Flags().StringVar(&create.Priority, "priority", "", "low, medium, or high")
	createCmd.Flags().StringVar(&create.DueDate, "due", "", "due date YYYY-MM-DD")
	createCmd.Flags().StringSliceVarP(&create.LabelIDs, "label", "l", nil, "label id (repeatable)")
	createCmd.Flags().IntVar(&create.Position, "position", 0, "position within the column")

	var (
		update         servercommon.UpdateTaskRequest
		updatePosition int
	)
	updateCmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Edit a task; unset flags keep their current value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			current, err := svc.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := updateRequestFrom(current)
			flags := cmd.Flags()
			if flags.Changed("project") {
				req.ProjectID = update.ProjectID
			}
			if flags.Changed("title") {
				req.Title = update.Title
			}
			if flags.Changed("description") {
				req.Description = update.Description
			}
			if flags.Changed("status") {
				req.Status = update.Status
			}
			if flags.Changed("priority") {
				req.Priority = update.Priority
			}
			if flags.Changed("due") {
				req.DueDate = update.DueDate
			}
			if flags.Changed("label") {
				req.LabelIDs = update.LabelIDs
			}
			if flags.Changed("position") {
				position := updatePosition
				req.Position = &position
			}
			task, err := svc.UpdateTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.emitTasks([]servercommon.Task{task})
		},
	}
	updateCmd.Flags().StringVarP(&update.ProjectID, "project", "p", "", "move to project id")
	updateCmd.Flags().StringVarP(&update.Title, "title", "t", "", "task title")
	updateCmd.Flags().StringVarP(&update.Description, "description", "d", "", "markdown description")
	updateCmd.Flags().StringVar(&update.Status, "status", "", "todo, in_progress, or done")
	updateCmd.Flags().StringVar(&update.Priority, "priority", "", "low, medium, or high")
	updateCmd.Flags().StringVar(&update.DueDate, "due", "", "due date YYYY-MM-DD, empty clears it")
	updateCmd.Flags().StringSliceVarP(&update.LabelIDs, "label", "l", nil, "label ids, replacing the current set")
	updateCmd.Flags().IntVar(&updatePosition, "position", 0, "position within the column")

	move := &cobra.Command{
		Use:   "move <task-id> <status>",
		Short: "Move a task to another column",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			result, err := svc.MoveTask(cmd.Context(), servercommon.MoveTaskRequest{ID: args[0], Status: args[1]})
			if err != nil {
				return err
			}
			return c.emit(result, []string{result.Task.ID}, func(w io.Writer) error {
				if !result.Moved {
					_, err := fmt.Fprintf(w, "task %s already in %s\n", result.Task.ID, result.Task.Status)
					return err
				}
				_, err := fmt.Fprintf(w, "moved task %s to %s\n", result.Task.ID, result.Task.Status)
				return err
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.board()
			if err != nil {
				return err
			}
			task, err := svc.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ok, err := c.confirm(app.DeleteRequest{Target: app.DeleteTargetTask, ID: task.ID, Name: task.Title})
			if err != nil || !ok {
				return err
			}
			if err := svc.DeleteTask(cmd.Context(), servercommon.DeleteRequest{ID: task.ID, Confirm: true}); err != nil {
				return err
			}
			return c.emitDeleted("task", task.ID)
		},
	}

	cmd.AddCommand(list, createCmd, updateCmd, move, deleteCmd)
	return cmd
}

// updateRequestFrom seeds a full edit with the task's current values.
func updateRequestFrom(task servercommon.Task) servercommon.UpdateTaskRequest {
	req := servercommon.UpdateTaskRequest{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		LabelIDs:    append([]string(nil), task.LabelIDs...),
	}
	if task.DueAt != nil {
		req.DueDate = app.FormatDueDate(*task.DueAt, time.Local)
	}
	return req
}

func (c *cli) newRemoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage remote record service credentials",
		Args:  usageArgs(cobra.NoArgs),
	}

	var key string
	login := &cobra.Command{
		Use:   "login",
		Short: "Store the remote public key in the OS keyring",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			value := strings.TrimSpace(key)
			if value == "" {
				line, err := bufio.NewReader(c.stdin).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read public key: %w", err)
				}
				value = strings.TrimSpace(line)
			}
			if value == "" {
				return usageError{err: errors.New("public key is required (--key or stdin)")}
			}
			if err := credentialsFactory(c.paths).Set(remote.PublicKeyItem, value); err != nil {
				return fmt.Errorf("store public key: %w", err)
			}
			return c.emit(map[string]bool{"stored": true}, nil, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "public key stored")
				return err
			})
		},
	}
	login.Flags().StringVar(&key, "key", "", "public key (read from stdin when omitted)")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored remote public key",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			if err := credentialsFactory(c.paths).Delete(remote.PublicKeyItem); err != nil {
				return fmt.Errorf("remove public key: %w", err)
			}
			return c.emit(map[string]bool{"removed": true}, nil, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "public key removed")
				return err
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Report which remote settings are still missing",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			timeout, err := c.cfg.RemoteTimeout()
			if err != nil {
				return err
			}
			resolved := remote.LoadConfig(remote.Config{
				Endpoint:  c.cfg.Remote.Endpoint,
				ProjectID: c.cfg.Remote.ProjectID,
				Timeout:   timeout,
			}, credentialsFactory(c.paths))
			out := struct {
				Endpoint string   `json:"endpoint"`
				Ready    bool     `json:"ready"`
				Missing  []string `json:"missing"`
			}{resolved.Endpoint, len(resolved.Missing()) == 0, resolved.Missing()}
			if out.Missing == nil {
				out.Missing = []string{}
			}
			return c.emit(out, nil, func(w io.Writer) error {
				if out.Ready {
					_, err := fmt.Fprintf(w, "remote ready: %s\n", out.Endpoint)
					return err
				}
				_, err := fmt.Fprintf(w, "remote not configured, missing: %s\n", strings.Join(out.Missing, ", "))
				return err
			})
		},
	}

	cmd.AddCommand(login, logout, status)
	return cmd
}
