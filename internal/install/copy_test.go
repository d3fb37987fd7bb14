package install

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wantHint = "# Generated from:\n# https://github.com/gocept/meta/tree/master/config/pure-python\n"

func testSource() fstest.MapFS {
	return fstest.MapFS{
		"default/plain":      {Data: []byte("keep %(literal)s and 100%\n")},
		"pure-python/render": {Data: []byte("universal = %(universal_wheel)s\nratio = 50%%\n")},
		"pure-python/broken": {Data: []byte("a = %(a)s\nb = %(b)s\nc = %(c)s\n")},
		"pure-python/braces": {Data: []byte("[run]\nsource = {package_name}\nkeep = %(literal)s {{x}}\n")},
	}
}

func TestMetaHintIsTwoLines(t *testing.T) {
	hint := MetaHint("pure-python")
	assert.Equal(t, wantHint, hint)
	assert.Equal(t, 2, strings.Count(hint, "\n"))
}

func TestCopyWithMetaVerbatimWithoutSubs(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "plain")
	change, err := CopyWithMeta(RealSystem{}, testSource(), "default/plain", dest, "pure-python", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, wantHint+"keep %(literal)s and 100%\n", string(data))
	assert.True(t, change.Created)
	assert.True(t, change.Changed())
}

func TestCopyWithMetaSubstitutes(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "setup.cfg")
	_, err := CopyWithMeta(RealSystem{}, testSource(), "pure-python/render", dest, "pure-python", map[string]string{"universal_wheel": "1"})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, wantHint+"universal = 1\nratio = 50%\n", string(data))
}

func TestCopyWithMetaOverwritesDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(dest, []byte("old content that is longer than the template\n"), 0o644))

	change, err := CopyWithMeta(RealSystem{}, testSource(), "default/plain", dest, "pure-python", nil)
	require.NoError(t, err)
	assert.False(t, change.Created)
	assert.Equal(t, "old content that is longer than the template\n", change.Before)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, change.After, string(data))
	assert.True(t, strings.HasPrefix(string(data), wantHint))
}

func TestCopyWithMetaCreatesParentDirs(t *testing.T) {
	dest := filepath.Join(t.TempDir(), ".github", "workflows", "tests.yml")
	_, err := CopyWithMeta(RealSystem{}, testSource(), "default/plain", dest, "pure-python", nil)
	require.NoError(t, err)
	_, err = os.Stat(dest)
	require.NoError(t, err)
}

func TestCopyWithMetaMissingSource(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	_, err := CopyWithMeta(RealSystem{}, testSource(), "default/missing", dest, "pure-python", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read template default/missing")
	_, statErr := os.Stat(dest)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestCopyWithMetaMissingPlaceholder(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	_, err := CopyWithMeta(RealSystem{}, testSource(), "pure-python/broken", dest, "pure-python", map[string]string{"b": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a, c")
}

func TestCopyWithMetaWriteError(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	sys := newFaultSystem(RealSystem{})
	sys.writeErrs[normalizePath(dest)] = errors.New("disk full")

	_, err := CopyWithMeta(sys, testSource(), "default/plain", dest, "pure-python", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestCopyWithMetaReadDestinationError(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")
	sys := newFaultSystem(RealSystem{})
	sys.readErrs[normalizePath(dest)] = errors.New("permission denied")

	_, err := CopyWithMeta(sys, testSource(), "default/plain", dest, "pure-python", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestCopierRecordsChanges(t *testing.T) {
	root := t.TempDir()
	copier := NewCopier(RealSystem{}, testSource(), "pure-python")
	require.NoError(t, copier.Copy("default/plain", filepath.Join(root, "a"), nil))
	require.NoError(t, copier.Copy("pure-python/render", filepath.Join(root, "b"), map[string]string{"universal_wheel": "0"}))

	changes := copier.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, filepath.Join(root, "a"), changes[0].Path)
	assert.Equal(t, filepath.Join(root, "b"), changes[1].Path)
}

func TestSubstitute(t *testing.T) {
	out, err := Substitute("x=%(x)s y=%(y)s %%", map[string]string{"x": "1", "y": ""})
	require.NoError(t, err)
	assert.Equal(t, "x=1 y= %", out)

	out, err = Substitute("untouched %(x)s %%", nil)
	require.NoError(t, err)
	assert.Equal(t, "untouched %(x)s %%", out)
}

func TestSubstituteBraces(t *testing.T) {
	out, err := SubstituteAs(Brace, "source = {package_name} {{escaped}} %(kept)s %%", map[string]string{"package_name": "gocept.foo"})
	require.NoError(t, err)
	assert.Equal(t, "source = gocept.foo {escaped} %(kept)s %%", out)

	_, err = SubstituteAs(Brace, "{a} {b}", map[string]string{"a": "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")

	out, err = SubstituteAs(Percent, "{package_name} %(x)s", map[string]string{"x": "1"})
	require.NoError(t, err)
	assert.Equal(t, "{package_name} 1", out)
}

func TestCopierCopyAsBrace(t *testing.T) {
	dest := filepath.Join(t.TempDir(), ".coveragerc")
	copier := NewCopier(RealSystem{}, testSource(), "pure-python")
	require.NoError(t, copier.CopyAs(Brace, "pure-python/braces", dest, map[string]string{"package_name": "gocept.foo"}))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, wantHint+"[run]\nsource = gocept.foo\nkeep = %(literal)s {x}\n", string(data))
	require.Len(t, copier.Changes(), 1)
}

func TestAppendFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, RealSystem{}.AppendFile(path, []byte("a\n"), 0o644))
	require.NoError(t, RealSystem{}.AppendFile(path, []byte("b\n"), 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))
}
