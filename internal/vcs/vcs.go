// Package vcs drives git through its command line.
package vcs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// BranchPrefix is prepended to the template type to name the configuration branch.
const BranchPrefix = "config-with-"

// DefaultRemote is the remote pushed to when none is configured.
const DefaultRemote = "origin"

// BranchName returns the configuration branch for configType.
func BranchName(configType string) string {
	return BranchPrefix + configType
}

// CommitMessage returns the commit message for configType.
func CommitMessage(configType string) string {
	return "Configuring for " + configType
}

// IsWorkingCopy reports whether path contains a .git entry (directory or worktree file).
func IsWorkingCopy(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// ParseBranches splits `git branch --format %(refname:short)` output.
func ParseBranches(output string) []string {
	var branches []string
	for _, line := range strings.Split(output, "\n") {
		name := strings.TrimSpace(line)
		if name != "" {
			branches = append(branches, name)
		}
	}
	return branches
}

// Git runs git commands in a fixed directory.
type Git struct {
	runner Runner
	dir    string
}

// New returns a Git bound to dir.
func New(runner Runner, dir string) *Git {
	return &Git{runner: runner, dir: dir}
}

// Dir returns the directory commands run in.
func (g *Git) Dir() string {
	return g.dir
}

func (g *Git) run(ctx context.Context, args ...string) error {
	return g.runner.Run(ctx, g.dir, "git", args...)
}

func (g *Git) output(ctx context.Context, args ...string) (string, error) {
	return g.runner.Output(ctx, g.dir, "git", args...)
}

// HeadCommit returns the hash of the current commit.
func (g *Git) HeadCommit(ctx context.Context) (string, error) {
	out, err := g.output(ctx, "log", "-n1", "--format=format:%H")
	return strings.TrimSpace(out), err
}

// Branches lists local branch names.
func (g *Git) Branches(ctx context.Context) ([]string, error) {
	out, err := g.output(ctx, "branch", "--format", "%(refname:short)")
	return ParseBranches(out), err
}

// Checkout switches to an existing branch.
func (g *Git) Checkout(ctx context.Context, branch string) error {
	return g.run(ctx, "checkout", branch)
}

// CheckoutNew creates branch and switches to it.
func (g *Git) CheckoutNew(ctx context.Context, branch string) error {
	return g.run(ctx, "checkout", "-b", branch)
}

// Add stages paths.
func (g *Git) Add(ctx context.Context, paths ...string) error {
	return g.run(ctx, append([]string{"add"}, paths...)...)
}

// Remove deletes paths from the index and the working tree.
func (g *Git) Remove(ctx context.Context, paths ...string) error {
	return g.run(ctx, append([]string{"rm"}, paths...)...)
}

// Commit records staged changes with message.
func (g *Git) Commit(ctx context.Context, message string) error {
	return g.run(ctx, "commit", "-m", message)
}

// Push pushes branch to remote and sets it as upstream.
func (g *Git) Push(ctx context.Context, remote string, branch string) error {
	return g.run(ctx, "push", "--set-upstream", remote, branch)
}
