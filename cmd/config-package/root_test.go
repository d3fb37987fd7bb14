package main

// NOTE: Tests in this file replace package-level hooks (applyRun, isTerminal,
// newTypeSelector). Do not use t.Parallel(); each test restores them via t.Cleanup().

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/config-package/internal/apply"
	"github.com/conn-castle/config-package/internal/config"
	"github.com/conn-castle/config-package/internal/pyversions"
	"github.com/conn-castle/config-package/internal/templates"
	"github.com/conn-castle/config-package/internal/wizard"
)

type fakeSelector struct {
	choice  templates.Type
	err     error
	initial templates.Type
}

func (s *fakeSelector) SelectType(initial templates.Type) (templates.Type, error) {
	s.initial = initial
	return s.choice, s.err
}

// captureApply stubs applyRun and isolates the user config directory.
func captureApply(t *testing.T, err error) *apply.Options {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("HOME", home)

	var captured apply.Options
	origApply := applyRun
	applyRun = func(_ context.Context, opts apply.Options) (*apply.Result, error) {
		captured = opts
		return &apply.Result{}, err
	}
	origTerminal := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() {
		applyRun = origApply
		isTerminal = origTerminal
	})
	return &captured
}

func runRootCmd(args ...string) (string, error) {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootDefaults(t *testing.T) {
	opts := captureApply(t, nil)
	repo := t.TempDir()

	_, err := runRootCmd(repo, "pure-python")
	require.NoError(t, err)

	assert.Equal(t, repo, opts.Path)
	assert.Equal(t, templates.PurePython, opts.Type)
	assert.Equal(t, pyversions.DefaultMin, opts.MinVersion)
	assert.False(t, opts.NoPush)
	assert.False(t, opts.WithPyPy)
	assert.False(t, opts.SupportLegacyPython)
	assert.False(t, opts.ShowDiff)
	assert.Nil(t, opts.Templates)
	assert.Equal(t, "origin", opts.Remote)
	assert.Equal(t, config.DefaultTestCommand, opts.TestCommand)

	registryDir, err := config.DefaultRegistryDir()
	require.NoError(t, err)
	assert.Equal(t, registryDir, opts.RegistryDir)
	assert.NotNil(t, opts.System)
	assert.NotNil(t, opts.Runner)
}

func TestRootFlags(t *testing.T) {
	opts := captureApply(t, nil)
	repo := t.TempDir()

	_, err := runRootCmd(repo, "pytest", "--no-push", "--with-pypy", "--with-py27", "--with-py38-plus", "--diff")
	require.NoError(t, err)

	assert.Equal(t, templates.Pytest, opts.Type)
	assert.True(t, opts.NoPush)
	assert.True(t, opts.WithPyPy)
	assert.True(t, opts.SupportLegacyPython)
	assert.True(t, opts.ShowDiff)
	assert.Equal(t, pyversions.Version{Major: 3, Minor: 8}, opts.MinVersion)
}

func TestRootMinVersionFlags(t *testing.T) {
	tests := []struct {
		flag string
		want pyversions.Version
	}{
		{"--with-py35", pyversions.Version{Major: 3, Minor: 5}},
		{"--py3-only", pyversions.Version{Major: 3, Minor: 5}},
		{"--with-py36-plus", pyversions.Version{Major: 3, Minor: 6}},
		{"--with-py37-plus", pyversions.Version{Major: 3, Minor: 7}},
		{"--with-py39-plus", pyversions.Version{Major: 3, Minor: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			opts := captureApply(t, nil)
			_, err := runRootCmd(t.TempDir(), "buildout-recipe", tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts.MinVersion)
		})
	}
}

func TestRootMinVersionFlagsAreExclusive(t *testing.T) {
	captureApply(t, nil)
	_, err := runRootCmd(t.TempDir(), "pytest", "--with-py35", "--with-py37-plus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "with-py35")
}

func TestRootPy3OnlyIsAliasOfWithPy35(t *testing.T) {
	opts := captureApply(t, nil)
	_, err := runRootCmd(t.TempDir(), "pytest", "--with-py35", "--py3-only")
	require.NoError(t, err)
	assert.Equal(t, pyversions.Version{Major: 3, Minor: 5}, opts.MinVersion)

	_, err = runRootCmd(t.TempDir(), "pytest", "--py3-only", "--with-py37-plus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "with-py35")
}

func TestRootUnknownType(t *testing.T) {
	captureApply(t, nil)
	_, err := runRootCmd(t.TempDir(), "django")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template type")
}

func TestRootTooManyArgs(t *testing.T) {
	captureApply(t, nil)
	_, err := runRootCmd("a", "pytest", "extra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "received 3 argument(s)")
}

func TestRootMissingTypeWithoutTerminal(t *testing.T) {
	captureApply(t, nil)
	_, err := runRootCmd(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template type is required")
	assert.Contains(t, err.Error(), "buildout-recipe, pure-python, pytest")
}

func TestRootMissingTypeUsesSelector(t *testing.T) {
	opts := captureApply(t, nil)
	isTerminal = func() bool { return true }
	selector := &fakeSelector{choice: templates.BuildoutRecipe}
	origSelector := newTypeSelector
	newTypeSelector = func() wizard.TypeSelector { return selector }
	t.Cleanup(func() { newTypeSelector = origSelector })

	_, err := runRootCmd(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, templates.BuildoutRecipe, opts.Type)
	assert.Equal(t, templates.PurePython, selector.initial)
}

func TestRootSelectorCancelled(t *testing.T) {
	captureApply(t, nil)
	isTerminal = func() bool { return true }
	origSelector := newTypeSelector
	newTypeSelector = func() wizard.TypeSelector { return &fakeSelector{err: wizard.ErrCancelled} }
	t.Cleanup(func() { newTypeSelector = origSelector })

	_, err := runRootCmd(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, wizard.ErrCancelled))
}

func TestRootConfigFile(t *testing.T) {
	opts := captureApply(t, nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "registry_dir = \"registry\"\nremote = \"upstream\"\n\n[test]\ncommand = [\"bin/tox\", \"-e\", \"py39\"]\n\n[diff]\nmax_lines = 10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := runRootCmd(t.TempDir(), "pytest", "--config", path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "registry"), opts.RegistryDir)
	assert.Equal(t, "upstream", opts.Remote)
	assert.Equal(t, []string{"bin/tox", "-e", "py39"}, opts.TestCommand)
	assert.Equal(t, 10, opts.DiffMaxLines)
}

func TestRootExplicitConfigMissing(t *testing.T) {
	captureApply(t, nil)
	_, err := runRootCmd(t.TempDir(), "pytest", "--config", filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.toml")
}

func TestRootDirectoryOverrides(t *testing.T) {
	opts := captureApply(t, nil)
	registryDir := t.TempDir()
	templatesDir := t.TempDir()

	out, err := runRootCmd(t.TempDir(), "pytest", "--registry-dir", registryDir, "--templates-dir", templatesDir)
	require.NoError(t, err)

	assert.Equal(t, registryDir, opts.RegistryDir)
	assert.Equal(t, templatesDir, opts.TemplatesDir)
	assert.NotNil(t, opts.Templates)
	assert.NotContains(t, out, "does not exist yet")
}

func TestRootWarnsAboutMissingRegistry(t *testing.T) {
	captureApply(t, nil)
	registryDir := filepath.Join(t.TempDir(), "missing")

	out, err := runRootCmd(t.TempDir(), "pytest", "--registry-dir", registryDir)
	require.NoError(t, err)
	assert.Contains(t, out, "does not exist yet")
}

func TestRootPropagatesApplyError(t *testing.T) {
	abort := &apply.AbortError{Code: 2, Err: errors.New("tox failed")}
	captureApply(t, abort)

	_, err := runRootCmd(t.TempDir(), "pytest")
	require.Error(t, err)
	var got *apply.AbortError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 2, got.Code)
}

func TestRootVerboseLogsConfig(t *testing.T) {
	captureApply(t, nil)
	registryDir := t.TempDir()

	out, err := runRootCmd(t.TempDir(), "pytest", "--verbose", "--registry-dir", registryDir)
	require.NoError(t, err)
	assert.Contains(t, out, "config-package")
	assert.Contains(t, out, registryDir)

	quiet, err := runRootCmd(t.TempDir(), "pytest", "--registry-dir", registryDir)
	require.NoError(t, err)
	assert.NotContains(t, quiet, registryDir)
}
