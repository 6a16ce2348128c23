package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotRepository is returned when the working directory is not inside a
// git work tree.
var ErrNotRepository = errors.New("Not a git repository. Run 'git init' first.") // nolint:staticcheck // shown verbatim to users

// CommandExecutor runs git commands. Tests substitute a mock.
type CommandExecutor interface {
	// Execute runs a command, discarding stdout.
	Execute(ctx context.Context, cmd *exec.Cmd) error
	// ExecuteWithOutput runs a command and returns its stdout.
	ExecuteWithOutput(ctx context.Context, cmd *exec.Cmd) (string, error)
}

// Error describes a failed git invocation.
type Error struct {
	Op     string
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	sub := e.Op
	if len(e.Args) > 0 {
		sub = e.Args[0]
	}
	return fmt.Sprintf("git %s failed: %s", sub, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExecExecutor runs commands with os/exec.
type ExecExecutor struct{}

// NewExecExecutor returns the default executor.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Execute implements CommandExecutor.
func (e *ExecExecutor) Execute(ctx context.Context, cmd *exec.Cmd) error {
	_, err := e.ExecuteWithOutput(ctx, cmd)
	return err
}

// ExecuteWithOutput implements CommandExecutor.
func (e *ExecExecutor) ExecuteWithOutput(ctx context.Context, cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		op := ""
		if len(cmd.Args) > 0 {
			op = cmd.Args[0]
		}
		var args []string
		if len(cmd.Args) > 1 {
			args = cmd.Args[1:]
		}
		return "", &Error{Op: op, Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}
