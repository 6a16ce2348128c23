package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// UserInteractor asks the user questions during multi-step commands.
type UserInteractor interface {
	// Confirm asks a yes/no question. An empty answer returns def.
	Confirm(question string, def bool) (bool, error)
	// Prompt asks for a line of text. An empty answer returns def.
	Prompt(question, def string) (string, error)
}

// DefaultInteractor reads answers from Reader and writes questions to Writer.
type DefaultInteractor struct {
	Reader *bufio.Reader
	Writer io.Writer
}

// NewDefaultInteractor wraps r and w.
func NewDefaultInteractor(r io.Reader, w io.Writer) *DefaultInteractor {
	return &DefaultInteractor{Reader: bufio.NewReader(r), Writer: w}
}

// Confirm implements UserInteractor.
func (i *DefaultInteractor) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	answer, err := i.readLine(fmt.Sprintf("%s [%s]: ", question, hint))
	if err != nil {
		return false, err
	}
	if answer == "" {
		return def, nil
	}
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}

// Prompt implements UserInteractor.
func (i *DefaultInteractor) Prompt(question, def string) (string, error) {
	label := question + ": "
	if def != "" {
		label = fmt.Sprintf("%s [%s]: ", question, def)
	}
	answer, err := i.readLine(label)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (i *DefaultInteractor) readLine(label string) (string, error) {
	if _, err := fmt.Fprint(i.Writer, label); err != nil {
		return "", err
	}
	value, err := i.Reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF && value == "" {
		// A closed stdin answers every question with its default.
		_, _ = fmt.Fprintln(i.Writer)
	}
	return strings.TrimSpace(value), nil
}

// NonInteractiveInteractor accepts every default without prompting.
type NonInteractiveInteractor struct{}

// Confirm implements UserInteractor.
func (NonInteractiveInteractor) Confirm(_ string, def bool) (bool, error) {
	return def, nil
}

// Prompt implements UserInteractor.
func (NonInteractiveInteractor) Prompt(_ string, def string) (string, error) {
	return def, nil
}

func newInteractor(cmd *cobra.Command) UserInteractor {
	if assumeYes {
		return NonInteractiveInteractor{}
	}
	return NewDefaultInteractor(cmd.InOrStdin(), cmd.ErrOrStderr())
}
