package dialog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompt asks on a plain terminal. When In is not a terminal the answer is
// still read from it, so a piped "y" works.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

func NewPrompt() Prompt {
	return Prompt{In: os.Stdin, Out: os.Stdout}
}

func (p Prompt) Confirm(_ context.Context, title, text string) (Decision, error) {
	fmt.Fprintf(p.Out, "%s\n\n%s\nProceed? [y/N] ", title, text)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return Indeterminate, nil
		}
		return Indeterminate, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return Accept, nil
	case "", "n", "no":
		return Decline, nil
	default:
		return Indeterminate, nil
	}
}

func (p Prompt) Notify(_ context.Context, title, text string) error {
	_, err := fmt.Fprintf(p.Out, "%s: %s\n", title, text)
	return err
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ReadSecret reads a line without echo from a terminal, or a plain line
// from anything else.
func ReadSecret(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
