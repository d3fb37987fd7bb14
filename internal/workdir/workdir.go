// Package workdir scopes changes of the process working directory.
package workdir

import (
	"fmt"
	"os"

	"github.com/conn-castle/config-package/internal/messages"
)

// Scope is an entered working directory. Restore returns to the previous one.
type Scope struct {
	dir      string
	previous string
	restored bool
}

// Enter changes the working directory to dir. Callers must defer Restore.
func Enter(dir string) (*Scope, error) {
	previous, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf(messages.WorkdirGetwdFailedFmt, err)
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf(messages.WorkdirChdirFailedFmt, dir, err)
	}
	return &Scope{dir: dir, previous: previous}, nil
}

// Dir returns the entered directory.
func (s *Scope) Dir() string {
	return s.dir
}

// Previous returns the directory that was current before Enter.
func (s *Scope) Previous() string {
	return s.previous
}

// Restore changes back to the previous directory. Repeated calls are no-ops.
func (s *Scope) Restore() error {
	if s == nil || s.restored {
		return nil
	}
	if err := os.Chdir(s.previous); err != nil {
		return fmt.Errorf(messages.WorkdirRestoreFailedFmt, s.previous, err)
	}
	s.restored = true
	return nil
}
