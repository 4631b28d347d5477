// Package usercmd runs the shadow-utils commands that change the host
// account databases.
package usercmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// useradd(8) exit status for "username already in use".
const exitNameInUse = 9

// ErrNameInUse is returned by UserAdd when the account already exists.
var ErrNameInUse = errors.New("username already in use")

// ExitError is a command that ran and exited non-zero.
type ExitError struct {
	Name   string
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s %v: exit status %d", e.Name, e.Args, e.Code)
	}
	return fmt.Sprintf("%s %v: %s", e.Name, e.Args, e.Stderr)
}

// ExecFunc runs one command and returns its trimmed stderr and exit code. A
// non-nil error means the command could not be run at all.
type ExecFunc func(ctx context.Context, name string, args ...string) (stderr string, code int, err error)

type Runner struct {
	Timeout time.Duration
	Exec    ExecFunc
}

func New(timeout time.Duration) *Runner {
	return &Runner{Timeout: timeout, Exec: execCommand}
}

func execCommand(ctx context.Context, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	s := strings.TrimSpace(stderr.String())
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return s, ee.ExitCode(), nil
	}
	if err != nil {
		return s, -1, err
	}
	return s, 0, nil
}

func (r *Runner) run(ctx context.Context, name string, args ...string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	stderr, code, err := r.Exec(ctx, name, args...)
	if err != nil {
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	if code != 0 {
		return &ExitError{Name: name, Args: args, Code: code, Stderr: stderr}
	}
	return nil
}

// UserAdd creates an account with a home directory, a login shell and a
// pre-hashed password.
func (r *Runner) UserAdd(ctx context.Context, username, shell, passwordHash string) error {
	args := []string{"-m"}
	if shell != "" {
		args = append(args, "-s", shell)
	}
	if passwordHash != "" {
		args = append(args, "-p", passwordHash)
	}
	args = append(args, username)
	err := r.run(ctx, "useradd", args...)
	var ee *ExitError
	if errors.As(err, &ee) && (ee.Code == exitNameInUse || strings.Contains(ee.Stderr, "already exists")) {
		return fmt.Errorf("%w: %s", ErrNameInUse, ee.Error())
	}
	return err
}

// AddToGroup appends a supplementary group, leaving existing memberships.
func (r *Runner) AddToGroup(ctx context.Context, username, group string) error {
	return r.run(ctx, "usermod", "-a", "-G", group, username)
}
