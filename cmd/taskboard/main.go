// Command taskboard runs the terminal board, the HTTP/MCP server, and a scriptable CLI
// over one record backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	servercommon "github.com/hylla/taskboard/internal/adapters/server/common"
	"github.com/hylla/taskboard/internal/app"
	"github.com/hylla/taskboard/internal/config"
	"github.com/hylla/taskboard/internal/domain"
	"github.com/hylla/taskboard/internal/platform"
	"github.com/hylla/taskboard/internal/tui"
)

// version is stamped at build time.
var version = "dev"

// program is the part of tea.Program the TUI command needs.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program; tests swap it out.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// Stable process exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitNotFound   = 3
	exitValidation = 5
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode(err))
}

// run executes one command line. Errors are already reported on stderr.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := c.newRootCommand()
	root.SetArgs(append([]string{}, args...))
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer c.close()

	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// usageError marks a command-line mistake.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// usageArgs wraps a positional-argument validator so its failures exit with exitUsage.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	}
}

// exitCode maps a command error onto the documented exit codes.
func exitCode(err error) int {
	var usage usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &usage):
		return exitUsage
	case errors.Is(err, servercommon.ErrNotFound), errors.Is(err, app.ErrNotFound):
		return exitNotFound
	case errors.Is(err, servercommon.ErrInvalidRequest),
		errors.Is(err, servercommon.ErrConfirmationRequired),
		errors.Is(err, app.ErrUnknownProject),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrInvalidColor),
		errors.Is(err, domain.ErrInvalidDueDate),
		errors.Is(err, domain.ErrInvalidDateRange):
		return exitValidation
	default:
		return exitFailure
	}
}

// cli carries the global flags and the lazily opened runtime of one invocation.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	dbPath     string
	backend    string
	appName    string
	devMode    bool
	jsonOutput bool
	quiet      bool
	yes        bool

	paths   platform.Paths
	cfg     config.Config
	loaded  bool
	logger  *runtimeLogger
	repo    repository
	ready   func(context.Context) error
	svc     *app.Service
	adapter *servercommon.AppServiceAdapter
}

func (c *cli) newRootCommand() *cobra.Command {
	defaultDevMode := version == "dev"
	if envDev, ok := config.DevModeFromEnv(os.Getenv); ok {
		defaultDevMode = envDev
	}

	root := &cobra.Command{
		Use:           platform.AppName,
		Short:         "Three-column task board for the terminal, HTTP, and MCP",
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.resolvePaths()
		},
		RunE: func(*cobra.Command, []string) error {
			return c.runTUI()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config TOML")
	flags.StringVar(&c.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&c.backend, "backend", "", "record backend: sqlite, fixture, or remote")
	flags.StringVar(&c.appName, "app", platform.AppName, "application name for config/data path resolution")
	flags.BoolVar(&c.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	flags.BoolVar(&c.jsonOutput, "json", false, "print machine-readable JSON")
	flags.BoolVarP(&c.quiet, "quiet", "q", false, "print only ids")
	flags.BoolVarP(&c.yes, "yes", "y", false, "skip delete confirmation prompts")

	root.AddCommand(
		c.newPathsCommand(),
		c.newServeCommand(),
		c.newExportCommand(),
		c.newImportCommand(),
		c.newBoardCommand(),
		c.newProjectCommand(),
		c.newLabelCommand(),
		c.newTaskCommand(),
		c.newRemoteCommand(),
	)
	return root
}

func (c *cli) resolvePaths() error {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.appName,
		DevMode: c.devMode,
	})
	if err != nil {
		return err
	}
	c.paths = paths
	return nil
}

// loadConfig resolves the config file, environment, and flag overrides, then
// starts the runtime logger.
func (c *cli) loadConfig() error {
	if c.loaded {
		return nil
	}
	configPath := strings.TrimSpace(c.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv(config.EnvConfigPath)); envPath != "" {
			configPath = envPath
		} else {
			configPath = c.paths.ConfigPath
		}
	}
	c.configPath = configPath

	cfg, err := config.Load(configPath, config.Default(c.paths.DBPath))
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	cfg, err = config.ApplyEnv(cfg, os.Getenv)
	if err != nil {
		return fmt.Errorf("apply environment overrides: %w", err)
	}
	if v := strings.TrimSpace(c.dbPath); v != "" {
		cfg.Database.Path = v
	}
	if v := strings.TrimSpace(c.backend); v != "" {
		cfg.Storage.Backend = config.Backend(strings.ToLower(v))
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err: fmt.Errorf("invalid configuration: %w", err)}
	}

	logger, err := newRuntimeLogger(c.stderr, c.appName, c.devMode, cfg.Logging, c.paths.LogDir, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	c.cfg = cfg
	c.logger = logger
	c.loaded = true

	logger.Debug("configuration loaded", "config_path", configPath, "backend", cfg.Storage.Backend, "log_level", cfg.Logging.Level)
	if path := logger.DevLogPath(); path != "" {
		logger.Debug("dev file logging enabled", "path", path)
	}
	return nil
}

// open returns the application service, opening the backend on first use.
// console controls whether runtime logs reach stderr.
func (c *cli) open(console bool) (*app.Service, error) {
	if err := c.loadConfig(); err != nil {
		return nil, err
	}
	c.logger.SetConsoleEnabled(console)
	if c.svc != nil {
		return c.svc, nil
	}
	repo, ready, err := openRepository(c.cfg, c.paths, c.logger)
	if err != nil {
		return nil, err
	}
	logger := c.logger
	c.repo = repo
	c.ready = ready
	c.svc = app.NewService(repo, uuid.NewString, nil, app.ServiceConfig{
		OnCounterRefreshError: func(projectID string, err error) {
			logger.Warn("project counter refresh failed", "project_id", projectID, "err", err)
		},
	})
	c.adapter = servercommon.NewAppServiceAdapter(c.svc, time.Local)
	return c.svc, nil
}

// board returns the transport adapter used by the scripting commands.
func (c *cli) board() (*servercommon.AppServiceAdapter, error) {
	if _, err := c.open(!c.jsonOutput && !c.quiet); err != nil {
		return nil, err
	}
	return c.adapter, nil
}

func (c *cli) close() {
	if c.repo != nil {
		if err := c.repo.Close(); err != nil {
			c.logger.Warn("record store close failed", "err", err)
		}
		c.repo = nil
	}
	if err := c.logger.Close(); err != nil {
		_, _ = fmt.Fprintf(c.stderr, "warning: close runtime log sink: %v\n", err)
	}
}

func (c *cli) runTUI() error {
	svc, err := c.open(false)
	if err != nil {
		return err
	}
	filters, err := c.cfg.DefaultFilters()
	if err != nil {
		return err
	}
	board := tui.BoardConfig{
		Filters:            filters,
		ConfirmDelete:      c.cfg.Confirm.Delete,
		ShowCompletionRate: c.cfg.Board.ShowCompletionRate,
		ShowLabels:         c.cfg.Board.ShowLabels,
	}
	m := tui.NewModel(svc, tui.WithBoardConfig(board), tui.WithLocation(time.Local))

	c.logger.Info("starting tui program loop", "backend", c.cfg.Storage.Backend)
	if _, err := programFactory(m).Run(); err != nil {
		c.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	c.logger.Info("tui program exited")
	return nil
}
