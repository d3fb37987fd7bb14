package vcs

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LoggingRunner logs every command it delegates to Next at debug level.
type LoggingRunner struct {
	Next   Runner
	Logger *log.Logger
}

// Run logs and runs the command through Next.
func (r LoggingRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	start := time.Now()
	r.Logger.Debug("run", "dir", dir, "cmd", commandLine(name, args))
	err := r.Next.Run(ctx, dir, name, args...)
	r.done(name, start, err)
	return err
}

// Output logs and runs the command through Next, capturing stdout.
func (r LoggingRunner) Output(ctx context.Context, dir string, name string, args ...string) (string, error) {
	start := time.Now()
	r.Logger.Debug("output", "dir", dir, "cmd", commandLine(name, args))
	out, err := r.Next.Output(ctx, dir, name, args...)
	r.done(name, start, err)
	return out, err
}

func (r LoggingRunner) done(name string, start time.Time, err error) {
	if err != nil {
		r.Logger.Debug("failed", "cmd", name, "exit", ExitCode(err), "elapsed", time.Since(start).Round(time.Millisecond))
		return
	}
	r.Logger.Debug("done", "cmd", name, "elapsed", time.Since(start).Round(time.Millisecond))
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
