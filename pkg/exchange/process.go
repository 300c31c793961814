package exchange

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Process is a child process with piped standard streams.
//
// The process stdin is written to by producing lines to Input, stdout and
// stderr are read by consuming lines from Output and Errors, and the exit
// code is consumed from the Process itself once the child has terminated.
// A non-zero exit code is a consumable good, not a fault.
type Process struct {
	commandStr string
	input      *Writer[string]
	output     *Reader[string]
	errors     *Reader[string]
	waiter     *Worker[int]
}

// StartProcess starts name with args. Canceling ctx kills the child.
func StartProcess(ctx context.Context, name string, args ...string) (*Process, error) {
	return StartProcessIn(ctx, "", name, args...)
}

// StartProcessIn starts name with args in dir. An empty dir means the current
// directory.
func StartProcessIn(ctx context.Context, dir, name string, args ...string) (*Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	commandStr := cmd.String()

	// The pipes are created here rather than through the exec helpers so that
	// Wait does not close the read ends while the stream readers drain them.
	inRead, inWrite, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to pipe stdin for %s: %w", commandStr, err)
	}
	outRead, outWrite, err := os.Pipe()
	if err != nil {
		inRead.Close()
		inWrite.Close()
		return nil, fmt.Errorf("failed to pipe stdout for %s: %w", commandStr, err)
	}
	errRead, errWrite, err := os.Pipe()
	if err != nil {
		inRead.Close()
		inWrite.Close()
		outRead.Close()
		outWrite.Close()
		return nil, fmt.Errorf("failed to pipe stderr for %s: %w", commandStr, err)
	}

	cmd.Stdin = inRead
	cmd.Stdout = outWrite
	cmd.Stderr = errWrite

	if err := cmd.Start(); err != nil {
		for _, f := range []*os.File{inRead, inWrite, outRead, outWrite, errRead, errWrite} {
			f.Close()
		}
		return nil, fmt.Errorf("failed to start %s: %w", commandStr, err)
	}

	// The child holds its own copies of the pipe ends.
	inRead.Close()
	outWrite.Close()
	errWrite.Close()

	p := &Process{
		commandStr: commandStr,
		input:      NewWriter[string](inWrite, LineDisassembler{}),
		output:     NewReader[string](outRead, LineAssembler{}),
		errors:     NewReader[string](errRead, LineAssembler{}),
	}
	p.waiter = Start(func(context.Context) (int, error) {
		err := cmd.Wait()
		inWrite.Close()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			return 0, fmt.Errorf("failed to wait for %s: %w", commandStr, err)
		}
		return cmd.ProcessState.ExitCode(), nil
	})
	return p, nil
}

// Input returns the producer of stdin lines.
func (p *Process) Input() *Writer[string] {
	return p.input
}

// CloseInput closes the child's stdin once the queued lines are written.
// Children that read stdin to EOF need this to terminate.
func (p *Process) CloseInput() {
	p.input.Close()
}

// Output returns the consumer of stdout lines.
func (p *Process) Output() *Reader[string] {
	return p.output
}

// Errors returns the consumer of stderr lines.
func (p *Process) Errors() *Reader[string] {
	return p.errors
}

// String returns a printable representation of the command.
func (p *Process) String() string {
	return p.commandStr
}

// Consume retrieves the exit code of the process, returning ErrEmptyStock
// while it is still running.
func (p *Process) Consume() (int, error) {
	code, err := p.waiter.Consume()
	if err != nil {
		return 0, err
	}
	// Child has exited; stop feeding stdin.
	p.input.Cancel()
	return code, nil
}
