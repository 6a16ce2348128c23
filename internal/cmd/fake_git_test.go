package cmd

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

// fakeGit answers git invocations keyed by their joined arguments.
type fakeGit struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeGit() *fakeGit {
	return &fakeGit{outputs: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeGit) Execute(ctx context.Context, cmd *exec.Cmd) error {
	_, err := f.ExecuteWithOutput(ctx, cmd)
	return err
}

func (f *fakeGit) ExecuteWithOutput(_ context.Context, cmd *exec.Cmd) (string, error) {
	key := strings.Join(cmd.Args[1:], " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	return f.outputs[key], nil
}

func (f *fakeGit) called(key string) bool {
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

// scriptedUI answers confirmations and prompts from fixed queues.
type scriptedUI struct {
	confirms  []bool
	prompts   []string
	questions []string
}

func (s *scriptedUI) Confirm(question string, def bool) (bool, error) {
	s.questions = append(s.questions, question)
	if len(s.confirms) == 0 {
		return def, nil
	}
	answer := s.confirms[0]
	s.confirms = s.confirms[1:]
	return answer, nil
}

func (s *scriptedUI) Prompt(question, def string) (string, error) {
	s.questions = append(s.questions, question)
	if len(s.prompts) == 0 {
		return def, nil
	}
	answer := s.prompts[0]
	s.prompts = s.prompts[1:]
	return answer, nil
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	c := &cobra.Command{Use: "test"}
	c.SetOut(&out)
	c.SetErr(&out)
	return c, &out
}
