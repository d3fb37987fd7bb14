// Package confirm asks the operator whether to continue after a failed step.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conn-castle/config-package/internal/messages"
)

// Outcome is the result of gating a step.
type Outcome int

const (
	// Success means the step succeeded.
	Success Outcome = iota
	// FailedOverridden means the step failed and the operator chose to proceed.
	FailedOverridden
	// Aborted means the step failed and the operator declined to proceed.
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case FailedOverridden:
		return "failed-overridden"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Continue reports whether the caller may run the next step.
func (o Outcome) Continue() bool {
	return o != Aborted
}

// Gate prompts on failures. One Gate should serve a whole run so buffered
// input is not lost between prompts.
type Gate struct {
	in  *bufio.Reader
	out io.Writer
}

// NewGate returns a Gate reading answers from in and writing prompts to out.
func NewGate(in io.Reader, out io.Writer) *Gate {
	return &Gate{in: bufio.NewReader(in), out: out}
}

// Check returns Success for a nil err. Otherwise it asks the operator and
// returns FailedOverridden only for a "y" answer (any case).
func (g *Gate) Check(err error) Outcome {
	if err == nil {
		return Success
	}
	_, _ = color.New(color.FgRed).Fprintln(g.out, messages.ConfirmAborting)
	_, _ = fmt.Fprint(g.out, messages.ConfirmProceedPrompt)
	line, readErr := g.in.ReadString('\n')
	if readErr != nil && line == "" {
		_, _ = fmt.Fprintln(g.out)
		return Aborted
	}
	if strings.ToLower(strings.TrimRight(line, "\r\n")) == "y" {
		return FailedOverridden
	}
	return Aborted
}
