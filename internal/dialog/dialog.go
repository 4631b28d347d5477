// Package dialog asks the operator yes/no questions and shows messages,
// either through whiptail or on the plain terminal.
package dialog

import (
	"context"
	"fmt"
	"io"
)

type Decision int

const (
	Indeterminate Decision = iota
	Accept
	Decline
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Decline:
		return "decline"
	default:
		return "indeterminate"
	}
}

// AutoAccept approves everything after echoing the text to Out.
type AutoAccept struct {
	Out io.Writer
}

func (a AutoAccept) Confirm(_ context.Context, title, text string) (Decision, error) {
	if a.Out != nil {
		fmt.Fprintf(a.Out, "%s\n%s", title, text)
	}
	return Accept, nil
}

func (a AutoAccept) Notify(_ context.Context, title, text string) error {
	if a.Out != nil {
		fmt.Fprintf(a.Out, "%s: %s\n", title, text)
	}
	return nil
}
