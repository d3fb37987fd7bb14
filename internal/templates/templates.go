// Package templates provides the configuration templates applied to packages.
// The embedded set is the default source; a directory with the same layout can
// replace it.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/conn-castle/config-package/internal/messages"
)

//go:embed default pure-python buildout-recipe pytest
var embedded embed.FS

// DefaultDir holds the templates shared by every type.
const DefaultDir = "default"

// Type identifies a configuration profile.
type Type string

// Known template types.
const (
	BuildoutRecipe Type = "buildout-recipe"
	PurePython     Type = "pure-python"
	Pytest         Type = "pytest"
)

// Types returns the closed set of template types in display order.
func Types() []Type {
	return []Type{BuildoutRecipe, PurePython, Pytest}
}

// TypeNames returns Types as plain strings.
func TypeNames() []string {
	types := Types()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return names
}

// ParseType validates name against the known template types.
func ParseType(name string) (Type, error) {
	trimmed := strings.TrimSpace(name)
	for _, t := range Types() {
		if string(t) == trimmed {
			return t, nil
		}
	}
	return "", fmt.Errorf(messages.TemplatesUnknownTypeFmt, name, strings.Join(TypeNames(), ", "))
}

// Embedded returns the templates compiled into the binary.
func Embedded() fs.FS {
	return embedded
}

// Dir returns a template source rooted at an on-disk directory.
func Dir(root string) fs.FS {
	return os.DirFS(root)
}

// Path joins a template directory and file name into an fs.FS path.
func Path(dir string, name string) string {
	return path.Join(dir, name)
}

// Read returns the content of the named template.
func Read(fsys fs.FS, name string) ([]byte, error) {
	return fs.ReadFile(fsys, name)
}

// Exists reports whether the named template is present as a regular file.
func Exists(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}
