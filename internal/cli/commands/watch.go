package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Task string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rerun a task on file changes",
		Long: `Watch the project for source changes and rerun a task after each change.

Events are debounced so a burst of writes triggers a single run. The default
task is validate.`,
		Example: `  # Rerun validate on every change
  conveyor watch

  # Rerun only the tests
  conveyor watch --task test`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Task, "task", "validate", "Task to rerun on changes")

	return cmd
}

// watchedExtensions are the file extensions that trigger a rerun.
var watchedExtensions = map[string]bool{
	".go":  true,
	".mod": true,
	".sum": true,
	".sql": true,
}

func runWatch(cmd *cobra.Command, opts *WatchOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	if _, ok := cmdCtx.Registry.Resolve(opts.Task); !ok {
		return fmt.Errorf("unknown task: %s", opts.Task)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, cmdCtx.Cfg.ProjectDir); err != nil {
		return err
	}

	debounce := time.Duration(cmdCtx.Cfg.Watch.DebounceMS) * time.Millisecond
	triggers := make(chan string, 1)

	r.Println(r.Styles().Bold.Render("Watching " + cmdCtx.Cfg.ProjectDir))
	r.Println("Press Ctrl+C to stop")

	g, ctx := errgroup.WithContext(cmd.Context())

	// Event loop: debounce file events into triggers.
	g.Go(func() error {
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if !watchedExtensions[filepath.Ext(event.Name)] {
					continue
				}
				// New directories need watching too.
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watchDir(watcher, event.Name)
					}
				}
				if timer != nil {
					timer.Stop()
				}
				name := event.Name
				timer = time.AfterFunc(debounce, func() {
					select {
					case triggers <- name:
					default:
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				cmdCtx.Logger.Warn("watcher error", "error", err)
			}
		}
	})

	// Run loop: one run at a time, triggered by the event loop.
	g.Go(func() error {
		runOnce := func() {
			if _, err := cmdCtx.Runner.Run(ctx, opts.Task); err != nil {
				r.Errorln(r.Styles().Error.Render(err.Error()))
			}
			r.Println("")
		}
		runOnce()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case name := <-triggers:
				r.Println(r.Styles().Muted.Render("Change detected: " + filepath.Base(name)))
				runOnce()
			}
		}
	})

	if err := g.Wait(); err != nil && !isCanceled(err) {
		return err
	}
	return nil
}

// watchDir recursively adds a directory tree to the watcher, skipping hidden
// directories and vendor.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if path != dir && (name == "vendor" || (len(name) > 0 && name[0] == '.')) {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
