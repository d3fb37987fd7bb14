// Package install copies configuration templates into a target repository.
package install

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/conn-castle/config-package/internal/messages"
	"github.com/conn-castle/config-package/internal/templates"
)

// metaHintFmt is the provenance header written at the top of every generated file.
const metaHintFmt = "# Generated from:\n# https://github.com/gocept/meta/tree/master/config/%s\n"

// Syntax is the placeholder notation a template is written in.
type Syntax int

const (
	// Percent templates use %(name)s placeholders and the %% escape.
	Percent Syntax = iota
	// Brace templates use {name} placeholders and the {{ and }} escapes.
	Brace
)

var (
	percentPattern = regexp.MustCompile(`%%|%\(([A-Za-z0-9_-]+)\)s`)
	bracePattern   = regexp.MustCompile(`\{\{|\}\}|\{([A-Za-z0-9_]+)\}`)
)

var escapes = map[string]string{"%%": "%", "{{": "{", "}}": "}"}

func (s Syntax) pattern() *regexp.Regexp {
	if s == Brace {
		return bracePattern
	}
	return percentPattern
}

// MetaHint returns the two-line provenance header for configType.
func MetaHint(configType string) string {
	return fmt.Sprintf(metaHintFmt, configType)
}

// Change records the content of a destination before and after a write.
type Change struct {
	Path    string
	Before  string
	After   string
	Created bool
}

// Changed reports whether the write altered the destination.
func (c Change) Changed() bool {
	return c.Created || c.Before != c.After
}

// Copier writes templates from a source into a repository and records every change.
type Copier struct {
	sys        System
	source     fs.FS
	configType string
	changes    []Change
}

// NewCopier returns a Copier reading from source and labelling output with configType.
func NewCopier(sys System, source fs.FS, configType string) *Copier {
	return &Copier{sys: sys, source: source, configType: configType}
}

// Copy copies the percent-style template at source to dest with the provenance header.
// subs holds placeholder values; when empty the template is copied verbatim.
func (c *Copier) Copy(source string, dest string, subs map[string]string) error {
	return c.CopyAs(Percent, source, dest, subs)
}

// CopyAs is Copy for a template written in syntax.
func (c *Copier) CopyAs(syntax Syntax, source string, dest string, subs map[string]string) error {
	change, err := CopyWithMetaAs(c.sys, c.source, syntax, source, dest, c.configType, subs)
	if err != nil {
		return err
	}
	c.changes = append(c.changes, change)
	return nil
}

// Changes returns the recorded writes in order.
func (c *Copier) Changes() []Change {
	return append([]Change(nil), c.changes...)
}

// CopyWithMeta reads the template at source from fsys and writes it to dest,
// prefixed with the provenance header for configType. dest is fully overwritten.
func CopyWithMeta(sys System, fsys fs.FS, source string, dest string, configType string, subs map[string]string) (Change, error) {
	return CopyWithMetaAs(sys, fsys, Percent, source, dest, configType, subs)
}

// CopyWithMetaAs is CopyWithMeta for a template written in syntax.
func CopyWithMetaAs(sys System, fsys fs.FS, syntax Syntax, source string, dest string, configType string, subs map[string]string) (Change, error) {
	data, err := templates.Read(fsys, source)
	if err != nil {
		return Change{}, fmt.Errorf(messages.InstallFailedReadTemplateFmt, source, err)
	}
	content, err := SubstituteAs(syntax, string(data), subs)
	if err != nil {
		return Change{}, fmt.Errorf(messages.InstallRenderTemplateFmt, source, err)
	}
	return WriteWithMeta(sys, dest, configType, content)
}

// WriteWithMeta writes content to dest prefixed with the provenance header.
func WriteWithMeta(sys System, dest string, configType string, content string) (Change, error) {
	change := Change{Path: dest, After: MetaHint(configType) + content}
	existing, err := sys.ReadFile(dest)
	switch {
	case err == nil:
		change.Before = string(existing)
	case errors.Is(err, os.ErrNotExist):
		change.Created = true
	default:
		return Change{}, fmt.Errorf(messages.InstallFailedReadFmt, dest, err)
	}
	if err := sys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Change{}, fmt.Errorf(messages.InstallFailedCreateDirForFmt, dest, err)
	}
	if err := sys.WriteFileAtomic(dest, []byte(change.After), 0o644); err != nil {
		return Change{}, fmt.Errorf(messages.InstallFailedWriteFmt, dest, err)
	}
	return change, nil
}

// Substitute replaces %(name)s placeholders with values from subs and collapses %% to %.
// Content is returned unchanged when subs is empty. A placeholder without a value is an error.
func Substitute(content string, subs map[string]string) (string, error) {
	return SubstituteAs(Percent, content, subs)
}

// SubstituteAs is Substitute for content written in syntax.
func SubstituteAs(syntax Syntax, content string, subs map[string]string) (string, error) {
	if len(subs) == 0 {
		return content, nil
	}
	pattern := syntax.pattern()
	missing := map[string]struct{}{}
	out := pattern.ReplaceAllStringFunc(content, func(match string) string {
		if escaped, ok := escapes[match]; ok {
			return escaped
		}
		name := pattern.FindStringSubmatch(match)[1]
		value, ok := subs[name]
		if !ok {
			missing[name] = struct{}{}
			return match
		}
		return value
	})
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", fmt.Errorf(messages.InstallMissingPlaceholderFmt, strings.Join(names, ", "))
	}
	return out, nil
}
