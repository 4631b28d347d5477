package dialog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Whiptail drives the whiptail(1) program on the controlling terminal.
type Whiptail struct {
	Binary string
	Height string
	Width  string

	Stdin  io.Reader
	Stdout io.Writer

	// run is swapped out in tests.
	run func(cmd *exec.Cmd) (int, error)
}

func NewWhiptail(binary string) *Whiptail {
	return &Whiptail{
		Binary: binary,
		Height: "24",
		Width:  "78",
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		run:    runExit,
	}
}

func runExit(cmd *exec.Cmd) (int, error) {
	err := cmd.Run()
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// Confirm shows a scrollable yes/no box. whiptail exits 0 for yes and 1 for
// no; anything else (such as 255 on Esc or a missing terminal) is
// Indeterminate.
func (w *Whiptail) Confirm(ctx context.Context, title, text string) (Decision, error) {
	code, err := w.exec(ctx, "--title", title, "--scrolltext", "--yesno",
		"--yes-button", "import", "--no-button", "Cancel", text, w.Height, w.Width)
	if err != nil {
		return Indeterminate, err
	}
	switch code {
	case 0:
		return Accept, nil
	case 1:
		return Decline, nil
	default:
		return Indeterminate, nil
	}
}

func (w *Whiptail) Notify(ctx context.Context, title, text string) error {
	_, err := w.exec(ctx, "--title", title, "--msgbox", text, "8", w.Width)
	return err
}

func (w *Whiptail) exec(ctx context.Context, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, w.Binary, args...)
	cmd.Stdin = w.Stdin
	cmd.Stdout = w.Stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	code, err := w.run(cmd)
	if err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return code, errors.New(s)
		}
		return code, err
	}
	return code, nil
}

// Available reports whether the whiptail binary can be found.
func (w *Whiptail) Available() bool {
	_, err := exec.LookPath(w.Binary)
	return err == nil
}
