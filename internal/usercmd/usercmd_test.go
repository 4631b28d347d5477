package usercmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

func fakeRunner(stderr string, code int, err error, calls *[]call) *Runner {
	return &Runner{
		Timeout: time.Second,
		Exec: func(ctx context.Context, name string, args ...string) (string, int, error) {
			_, hasDeadline := ctx.Deadline()
			if !hasDeadline {
				return "", -1, errors.New("missing deadline")
			}
			*calls = append(*calls, call{name: name, args: args})
			return stderr, code, err
		},
	}
}

func TestUserAddArgs(t *testing.T) {
	var calls []call
	r := fakeRunner("", 0, nil, &calls)

	require.NoError(t, r.UserAdd(context.Background(), "alice", "/bin/bash", "$6$salt$hash"))
	require.Len(t, calls, 1)
	assert.Equal(t, "useradd", calls[0].name)
	assert.Equal(t, []string{"-m", "-s", "/bin/bash", "-p", "$6$salt$hash", "alice"}, calls[0].args)
}

func TestUserAddNameInUse(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		code   int
		inUse  bool
	}{
		{name: "exit 9", stderr: "useradd: user 'bob' already exists", code: 9, inUse: true},
		{name: "busybox message", stderr: "adduser: user 'bob' already exists", code: 1, inUse: true},
		{name: "other failure", stderr: "useradd: cannot lock /etc/passwd", code: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []call
			err := fakeRunner(tt.stderr, tt.code, nil, &calls).UserAdd(context.Background(), "bob", "", "")
			require.Error(t, err)
			assert.Equal(t, tt.inUse, errors.Is(err, ErrNameInUse))
			assert.Contains(t, err.Error(), tt.stderr)
		})
	}
}

func TestAddToGroup(t *testing.T) {
	var calls []call
	r := fakeRunner("", 0, nil, &calls)
	require.NoError(t, r.AddToGroup(context.Background(), "alice", "video"))
	assert.Equal(t, []call{{name: "usermod", args: []string{"-a", "-G", "video", "alice"}}}, calls)
}

func TestRunStartFailure(t *testing.T) {
	var calls []call
	r := fakeRunner("", -1, errors.New("executable file not found"), &calls)
	err := r.AddToGroup(context.Background(), "alice", "video")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executable file not found")

	var ee *ExitError
	assert.False(t, errors.As(err, &ee))
}

func TestExitErrorWithoutStderr(t *testing.T) {
	err := &ExitError{Name: "usermod", Args: []string{"-a"}, Code: 6}
	assert.Equal(t, "usermod [-a]: exit status 6", err.Error())
}

func TestExecCommandReportsExitCode(t *testing.T) {
	stderr, code, err := execCommand(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, "oops", stderr)
}
