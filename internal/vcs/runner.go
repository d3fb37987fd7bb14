package vcs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Runner executes external commands.
type Runner interface {
	// Run executes name with args in dir, streaming output to the terminal.
	Run(ctx context.Context, dir string, name string, args ...string) error
	// Output executes name with args in dir and returns its captured stdout.
	Output(ctx context.Context, dir string, name string, args ...string) (string, error)
}

// ExecRunner implements Runner with os/exec. Nil streams default to the process streams.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (r ExecRunner) stdin() io.Reader {
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

func (r ExecRunner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r ExecRunner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// Run executes the command with inherited streams.
func (r ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = r.stdin()
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()
	return cmd.Run()
}

// Output executes the command and captures stdout; stderr is still streamed.
func (r ExecRunner) Output(ctx context.Context, dir string, name string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = r.stdin()
	cmd.Stdout = &out
	cmd.Stderr = r.stderr()
	err := cmd.Run()
	return out.String(), err
}

// ExitCode returns the exit status carried by err (any error in the chain with
// an ExitCode method, such as *exec.ExitError), or 1 when there is none. A nil
// err yields 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		if code := coder.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
