// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CallsLog is the file stubs append their invocations to.
const CallsLog = "calls.log"

// NewRepo creates an empty working copy named name and returns its path.
// Only the .git directory is created; no git binary is needed.
func NewRepo(t *testing.T, name string) string {
	t.Helper()
	repo := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatalf("create repo: %v", err)
	}
	return repo
}

// WriteStub writes an executable shell stub into dir that records its
// arguments in dir/CallsLog and exits with exitCode.
func WriteStub(t *testing.T, dir string, name string, exitCode int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	log := filepath.Join(dir, CallsLog)
	content := fmt.Sprintf("#!/bin/sh\necho \"%s $*\" >> '%s'\nexit %d\n", name, log, exitCode)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// PrependPath puts dir first on PATH for the rest of the test.
func PrependPath(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// ReadCalls returns the invocations recorded by stubs in dir.
func ReadCalls(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, CallsLog))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read calls: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return lines
}
