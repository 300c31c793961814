// Package commands implements the conveyor subcommands.
package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/conveyor/internal/cli/config"
	"github.com/leapstack-labs/conveyor/internal/cli/output"
	"github.com/leapstack-labs/conveyor/internal/state"
	"github.com/leapstack-labs/conveyor/internal/task"
	"github.com/leapstack-labs/conveyor/internal/toolchain"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Registry *task.Registry
	Runner   *task.Runner
	Store    state.Store
}

// NewCommandContext creates a CommandContext with a run-history store and
// the workflow tasks registered. Returns the context and a cleanup function
// that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.Output)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	exec := toolchain.NewProcessExecutor(&rendererSink{r: r}, logger)
	registry := task.NewRegistry()
	if err := toolchain.Register(registry, cfg, exec); err != nil {
		store.Close()
		return nil, nil, err
	}

	cmdCtx := &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
		Registry: registry,
		Store:    store,
	}
	cmdCtx.Runner = task.NewRunner(registry, store, logger, &progressObserver{r: r})

	cleanup := func() {
		_ = store.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a
// run-history store. Useful for commands that only inspect the task set.
func NewCommandContextWithoutStore(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.Output)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	exec := toolchain.NewProcessExecutor(&rendererSink{r: r}, logger)
	registry := task.NewRegistry()
	if err := toolchain.Register(registry, cfg, exec); err != nil {
		return nil, err
	}

	cmdCtx := &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
		Registry: registry,
	}
	cmdCtx.Runner = task.NewRunner(registry, nil, logger, &progressObserver{r: r})
	return cmdCtx, nil
}

// getConfig returns the current configuration, falling back to defaults when
// no load has happened (help paths).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	cfg, err := config.LoadConfig("", nil)
	if err != nil {
		cwd, _ := os.Getwd()
		return &config.Config{ProjectDir: cwd, Output: "auto"}
	}
	return cfg
}

// openStore opens the SQLite run-history store, creating its directory.
func openStore(cfg *config.Config, logger *slog.Logger) (state.Store, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, err
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// rendererSink streams toolchain output through the renderer.
type rendererSink struct {
	r *output.Renderer
}

func (s *rendererSink) Stdout(line string) {
	s.r.Println(line)
}

func (s *rendererSink) Stderr(line string) {
	s.r.Errorln(line)
}
