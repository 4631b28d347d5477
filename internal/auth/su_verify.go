package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
)

var ErrAuthBackend = errors.New("auth backend error")

// nobody is the credential su runs under when ltspacct itself is root;
// su(1) does not ask root for a password.
var nobody = &syscall.Credential{Uid: 65534, Gid: 65534}

// SuChecker verifies passwords by running su(1) on a PTY and answering its
// password prompt, so it accepts any hash format the host PAM stack does.
type SuChecker struct {
	Binary  string
	Timeout time.Duration
	// RunAs is the credential su is started with. Nil keeps the caller's.
	RunAs *syscall.Credential
}

func NewSuChecker() SuChecker {
	c := SuChecker{Binary: "su", Timeout: 6 * time.Second}
	if os.Geteuid() == 0 {
		c.RunAs = nobody
	}
	return c
}

func (s SuChecker) Check(username, password string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.Binary, "-s", "/bin/sh", "-c", "true", username)
	if s.RunAs != nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{Credential: s.RunAs}
	}
	tty, err := pty.Start(cmd)
	if err != nil {
		return false, fmt.Errorf("%w: start su: %v", ErrAuthBackend, err)
	}
	defer func() { _ = tty.Close() }()

	prompted := make(chan bool, 1)
	go func() { prompted <- answerPrompt(tty, password) }()

	waitErr := cmd.Wait()
	asked := <-prompted

	switch {
	case ctx.Err() != nil:
		return false, fmt.Errorf("%w: su timed out", ErrAuthBackend)
	case !asked:
		return false, fmt.Errorf("%w: su did not ask for a password", ErrAuthBackend)
	default:
		return waitErr == nil, nil
	}
}

// answerPrompt watches the terminal for su's password prompt and types
// password once it appears. It returns when the PTY closes, reporting whether
// the prompt was seen.
func answerPrompt(tty *os.File, password string) bool {
	var seen []byte
	chunk := make([]byte, 4096)
	asked := false
	for {
		_ = tty.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, err := tty.Read(chunk)
		if !asked && n > 0 {
			seen = append(seen, chunk[:n]...)
			if bytes.Contains(bytes.ToLower(seen), []byte("password")) {
				asked = true
				seen = nil
				_, _ = io.WriteString(tty, password+"\n")
			}
		}
		switch {
		case errors.Is(err, os.ErrDeadlineExceeded):
		case err != nil:
			return asked
		}
	}
}
