// Package registry tracks which repositories have adopted each template type.
package registry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/config-package/internal/messages"
)

// FileName is the registry file kept per template type.
const FileName = "packages.txt"

// System is the filesystem surface the registry needs.
type System interface {
	ReadFile(name string) ([]byte, error)
	MkdirAll(path string, perm os.FileMode) error
	AppendFile(filename string, data []byte, perm os.FileMode) error
}

// Status reports what Ensure did.
type Status int

const (
	// Adding means the repository was appended to the registry.
	Adding Status = iota
	// Updating means the repository was already registered.
	Updating
)

// Path returns the registry file for configType under dir.
func Path(dir string, configType string) string {
	return filepath.Join(dir, configType, FileName)
}

// Load returns the registered names in file order. A missing file is an empty registry.
func Load(sys System, path string) ([]string, error) {
	data, err := sys.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(messages.RegistryReadFailedFmt, path, err)
	}
	return parse(string(data)), nil
}

func parse(content string) []string {
	var names []string
	for _, line := range strings.Split(content, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Ensure registers name for configType unless it is already present and
// prints the matching notice to out. Existing entries are never changed.
func Ensure(sys System, out io.Writer, dir string, configType string, name string) (Status, error) {
	path := Path(dir, configType)
	data, err := sys.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Adding, fmt.Errorf(messages.RegistryReadFailedFmt, path, err)
	}
	content := string(data)
	for _, known := range parse(content) {
		if known == name {
			_, _ = fmt.Fprintf(out, messages.RegistryUpdatingFmt, name)
			return Updating, nil
		}
	}

	_, _ = fmt.Fprintf(out, messages.RegistryAddingFmt, name)
	entry := name + "\n"
	if content != "" && !strings.HasSuffix(content, "\n") {
		entry = "\n" + entry
	}
	if err := sys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Adding, fmt.Errorf(messages.RegistryCreateDirFailedFmt, path, err)
	}
	if err := sys.AppendFile(path, []byte(entry), 0o644); err != nil {
		return Adding, fmt.Errorf(messages.RegistryWriteFailedFmt, path, err)
	}
	return Adding, nil
}
