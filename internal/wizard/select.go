// Package wizard asks interactively for inputs the command line left out.
package wizard

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/conn-castle/config-package/internal/messages"
	"github.com/conn-castle/config-package/internal/templates"
)

// ErrCancelled is returned when the operator aborts the form.
var ErrCancelled = errors.New(messages.WizardCancelled)

// TypeSelector chooses a template type.
type TypeSelector interface {
	SelectType(initial templates.Type) (templates.Type, error)
}

// HuhSelector implements TypeSelector using charmbracelet/huh.
type HuhSelector struct {
	isTerminal func() bool
	runForm    func(form *huh.Form) error
}

// NewHuhSelector returns a selector gated on isTerminal.
func NewHuhSelector(isTerminal func() bool) *HuhSelector {
	return &HuhSelector{
		isTerminal: isTerminal,
		runForm:    func(form *huh.Form) error { return form.Run() },
	}
}

// SelectType shows the known template types with initial highlighted.
func (s *HuhSelector) SelectType(initial templates.Type) (templates.Type, error) {
	if s.isTerminal == nil || !s.isTerminal() {
		return "", errors.New(messages.WizardRequiresTerminal)
	}
	names := templates.TypeNames()
	opts := make([]huh.Option[string], len(names))
	for i, name := range names {
		opts[i] = huh.NewOption(name, name)
	}
	choice := string(initial)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(messages.WizardSelectTypeTitle).
				Description(messages.WizardSelectTypeDescription).
				Options(opts...).
				Value(&choice),
		),
	)
	form.WithProgramOptions(tea.WithOutput(os.Stderr))

	if err := s.runForm(form); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", err
	}
	return templates.ParseType(choice)
}
