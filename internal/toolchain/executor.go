// Package toolchain runs the Go toolchain commands behind the workflow
// tasks. Every invocation is a child process whose streams are drained line
// by line while the exit code is polled.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/conveyor/pkg/exchange"
)

// pollInterval is the delay between exit-code polls while the child runs.
const pollInterval = 10 * time.Millisecond

// Invocation is a single command to execute.
type Invocation struct {
	// Name is the binary to run.
	Name string
	// Args are the command arguments.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// String returns the invocation as a printable command line.
func (inv Invocation) String() string {
	if len(inv.Args) == 0 {
		return inv.Name
	}
	return inv.Name + " " + strings.Join(inv.Args, " ")
}

// LineSink receives the stream output of a running invocation.
type LineSink interface {
	Stdout(line string)
	Stderr(line string)
}

// discardSink drops every line.
type discardSink struct{}

func (discardSink) Stdout(string) {}
func (discardSink) Stderr(string) {}

// ExitError reports a command that terminated with a non-zero exit code.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

// Executor runs toolchain invocations. Implementations stream stderr to the
// sink; Run also streams stdout while Capture collects it.
type Executor interface {
	// Run executes inv, streaming both output streams to the sink. A
	// non-zero exit code is returned as an *ExitError.
	Run(ctx context.Context, inv Invocation) error
	// Capture executes inv and returns its stdout lines. Stderr still goes
	// to the sink. A non-zero exit code is returned as an *ExitError.
	Capture(ctx context.Context, inv Invocation) ([]string, error)
}

// ProcessExecutor executes invocations as child processes with piped
// standard streams.
type ProcessExecutor struct {
	sink   LineSink
	logger *slog.Logger
}

// NewProcessExecutor creates a ProcessExecutor. A nil sink discards stream
// output; a nil logger discards.
func NewProcessExecutor(sink LineSink, logger *slog.Logger) *ProcessExecutor {
	if sink == nil {
		sink = discardSink{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProcessExecutor{sink: sink, logger: logger}
}

// Run executes inv, streaming stdout and stderr to the sink.
func (e *ProcessExecutor) Run(ctx context.Context, inv Invocation) error {
	_, err := e.execute(ctx, inv, false)
	return err
}

// Capture executes inv and returns its stdout lines.
func (e *ProcessExecutor) Capture(ctx context.Context, inv Invocation) ([]string, error) {
	return e.execute(ctx, inv, true)
}

// execute drives a child process to completion, draining its streams on
// every exit-code poll so the child never blocks on a full pipe.
func (e *ProcessExecutor) execute(ctx context.Context, inv Invocation, capture bool) ([]string, error) {
	e.logger.Debug("executing", "command", inv.String(), "dir", inv.Dir)

	proc, err := exchange.StartProcessIn(ctx, inv.Dir, inv.Name, inv.Args...)
	if err != nil {
		return nil, err
	}

	var captured []string
	onStdout := func(line string) {
		if capture {
			captured = append(captured, line)
		} else {
			e.sink.Stdout(line)
		}
	}

	for {
		drainLines(proc.Output(), onStdout)
		drainLines(proc.Errors(), e.sink.Stderr)

		code, err := proc.Consume()
		if errors.Is(err, exchange.ErrEmptyStock) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(pollInterval):
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to run %s: %w", inv.String(), err)
		}

		// The child has exited; its pipes deliver EOF once drained.
		drainStream(proc.Output(), onStdout)
		drainStream(proc.Errors(), e.sink.Stderr)

		e.logger.Debug("command finished", "command", inv.String(), "exit_code", code)
		if code != 0 {
			return captured, &ExitError{Command: inv.String(), Code: code}
		}
		return captured, nil
	}
}

// drainLines consumes every line currently available from r.
func drainLines(r *exchange.Reader[string], fn func(string)) {
	for {
		line, err := r.Consume()
		if err != nil {
			return
		}
		fn(line)
	}
}

// drainStream consumes lines from r until the stream closes or faults.
func drainStream(r *exchange.Reader[string], fn func(string)) {
	for {
		line, err := r.Consume()
		if err == nil {
			fn(line)
			continue
		}
		if errors.Is(err, exchange.ErrEmptyStock) {
			time.Sleep(pollInterval)
			continue
		}
		return
	}
}
