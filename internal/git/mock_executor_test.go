package git

import (
	"context"
	"os/exec"
	"strings"
)

// mockExecutor records commands and answers by joined git arguments.
type mockExecutor struct {
	outputs  map[string]string
	errs     map[string]error
	commands [][]string
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{outputs: map[string]string{}, errs: map[string]error{}}
}

func (m *mockExecutor) key(cmd *exec.Cmd) string {
	return strings.Join(cmd.Args[1:], " ")
}

func (m *mockExecutor) Execute(ctx context.Context, cmd *exec.Cmd) error {
	_, err := m.ExecuteWithOutput(ctx, cmd)
	return err
}

func (m *mockExecutor) ExecuteWithOutput(_ context.Context, cmd *exec.Cmd) (string, error) {
	m.commands = append(m.commands, cmd.Args[1:])
	k := m.key(cmd)
	if err, ok := m.errs[k]; ok {
		return "", err
	}
	return m.outputs[k], nil
}

func (m *mockExecutor) last() string {
	if len(m.commands) == 0 {
		return ""
	}
	return strings.Join(m.commands[len(m.commands)-1], " ")
}
