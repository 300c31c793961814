package toolchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/conveyor/internal/cli/config"
	"github.com/leapstack-labs/conveyor/internal/task"
)

// BuildArgs returns the arguments of the build invocation.
func BuildArgs(cfg *config.Config) []string {
	return []string{"build", cfg.Go.Packages}
}

// FormatArgs returns the arguments of a formatter invocation. With write set
// the formatter rewrites files in place; without it the formatter lists the
// files that need formatting.
func FormatArgs(cfg *config.Config, write bool) []string {
	mode := "-l"
	if write {
		mode = "-w"
	}
	return append([]string{mode}, cfg.Format.Paths...)
}

// DocArgs returns the arguments of a documentation invocation for pkg. With
// unexported set, undocumented and unexported items are included.
func DocArgs(pkg string, unexported bool) []string {
	args := []string{"doc", "-all"}
	if unexported {
		args = append(args, "-u")
	}
	return append(args, pkg)
}

// LintArgs returns the arguments of the lint invocation. Exactly the
// configured rules are enabled; any finding fails through the non-zero exit.
func LintArgs(cfg *config.Config) []string {
	return []string{
		"run",
		"--no-config",
		"--disable-all",
		"--enable", strings.Join(cfg.Lint.Rules, ","),
		cfg.Go.Packages,
	}
}

// TestArgs returns the arguments of the test invocation. Output is verbose
// and every configured feature set (build tag) is enabled.
func TestArgs(cfg *config.Config) []string {
	args := []string{"test", "-v"}
	if len(cfg.Test.Tags) > 0 {
		args = append(args, "-tags", strings.Join(cfg.Test.Tags, ","))
	}
	args = append(args, cfg.Test.Args...)
	return append(args, cfg.Go.Packages)
}

// listPackages resolves the packages to document. An empty configuration
// means every package the toolchain reports.
func listPackages(ctx context.Context, cfg *config.Config, exec Executor) ([]string, error) {
	if len(cfg.Docs.Packages) > 0 {
		return cfg.Docs.Packages, nil
	}
	pkgs, err := exec.Capture(ctx, Invocation{
		Name: cfg.Go.Bin,
		Args: []string{"list", cfg.Go.Packages},
		Dir:  cfg.ProjectDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return pkgs, nil
}

// runDocs renders the documentation of every resolved package.
func runDocs(ctx context.Context, cfg *config.Config, exec Executor, unexported bool) error {
	pkgs, err := listPackages(ctx, cfg, exec)
	if err != nil {
		return err
	}
	for _, pkg := range pkgs {
		inv := Invocation{Name: cfg.Go.Bin, Args: DocArgs(pkg, unexported), Dir: cfg.ProjectDir}
		if err := exec.Run(ctx, inv); err != nil {
			return err
		}
	}
	return nil
}

// Tasks builds the workflow task set against cfg, executing through exec.
func Tasks(cfg *config.Config, exec Executor) []*task.Task {
	return []*task.Task{
		{
			Name:    "build",
			Aliases: []string{"b"},
			Summary: "Compile every package",
			Run: func(ctx context.Context) error {
				return exec.Run(ctx, Invocation{Name: cfg.Go.Bin, Args: BuildArgs(cfg), Dir: cfg.ProjectDir})
			},
		},
		{
			Name:    "check_format",
			Summary: "Fail if any file is not formatted",
			Run: func(ctx context.Context) error {
				inv := Invocation{Name: cfg.Format.Tool, Args: FormatArgs(cfg, false), Dir: cfg.ProjectDir}
				files, err := exec.Capture(ctx, inv)
				if err != nil {
					return err
				}
				if len(files) > 0 {
					return fmt.Errorf("%d file(s) need formatting:\n%s", len(files), strings.Join(files, "\n"))
				}
				return nil
			},
		},
		{
			Name:    "format",
			Summary: "Rewrite files into canonical format",
			Run: func(ctx context.Context) error {
				return exec.Run(ctx, Invocation{Name: cfg.Format.Tool, Args: FormatArgs(cfg, true), Dir: cfg.ProjectDir})
			},
		},
		{
			Name:    "fix",
			Aliases: []string{"f"},
			Summary: "Apply automatic fixes",
			Deps:    []string{"format"},
		},
		{
			Name:    "doc",
			Summary: "Render documentation of exported items",
			Run: func(ctx context.Context) error {
				return runDocs(ctx, cfg, exec, false)
			},
		},
		{
			Name:    "doc_all",
			Summary: "Render documentation including private items",
			Run: func(ctx context.Context) error {
				return runDocs(ctx, cfg, exec, true)
			},
		},
		{
			Name:    "lint",
			Summary: "Run the configured analyzers; any finding fails",
			Run: func(ctx context.Context) error {
				return exec.Run(ctx, Invocation{Name: cfg.Lint.Tool, Args: LintArgs(cfg), Dir: cfg.ProjectDir})
			},
		},
		{
			Name:    "test",
			Aliases: []string{"t"},
			Summary: "Run tests verbosely with every feature set",
			Run: func(ctx context.Context) error {
				return exec.Run(ctx, Invocation{Name: cfg.Go.Bin, Args: TestArgs(cfg), Dir: cfg.ProjectDir})
			},
		},
		{
			Name:    "validate",
			Aliases: []string{"v"},
			Summary: "Run the full validation pipeline",
			Deps:    []string{"check_format", "build", "test", "lint"},
		},
	}
}

// Register adds every workflow task to the registry.
func Register(reg *task.Registry, cfg *config.Config, exec Executor) error {
	for _, t := range Tasks(cfg, exec) {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}
