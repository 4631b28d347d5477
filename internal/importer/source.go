package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/hnrobert/ltspacct/internal/record"
)

const (
	segmentDelim = ' '
	quoteChar    = '|'
	columnDelim  = ","

	maxRow = 1024 * 1024
)

var ErrValidation = errors.New("invalid import source")

// ValidationError names the offending row of the source.
type ValidationError struct {
	Source   string
	Line     int
	Username string
	Reason   string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "line %d", e.Line)
	if e.Username != "" {
		fmt.Fprintf(&b, " (%q)", e.Username)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Row is one account to provision. Password is already resolved against the
// default password.
type Row struct {
	Line     int
	Username string
	Password string
}

// Batch is the validated content of one source, in source order.
type Batch []Row

func (b Batch) Usernames() []string {
	out := make([]string, 0, len(b))
	for _, r := range b {
		out = append(out, r.Username)
	}
	return out
}

// ParseFile reads the source at path. A missing or unreadable file wraps
// record.ErrIO.
func ParseFile(path, defaultPassword string) (Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import source %s: %w: %w", path, record.ErrIO, err)
	}
	defer f.Close()

	batch, err := ParseBatch(f, defaultPassword)
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Source = path
	}
	if err != nil && ve == nil {
		return nil, fmt.Errorf("read import source %s: %w: %w", path, record.ErrIO, err)
	}
	return batch, err
}

// ParseBatch validates every row of r. Any invalid row fails the whole batch.
func ParseBatch(r io.Reader, defaultPassword string) (Batch, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxRow)
	var batch Batch
	line := 0
	for s.Scan() {
		line++
		row, err := parseRow(line, s.Text(), defaultPassword)
		if err != nil {
			return nil, err
		}
		batch = append(batch, row)
	}
	if err := s.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ValidationError{Line: line + 1, Reason: fmt.Sprintf("row longer than %d bytes", maxRow)}
		}
		return nil, err
	}
	return batch, nil
}

func parseRow(line int, text, defaultPassword string) (Row, error) {
	segments, err := splitSegments(text)
	if err != nil {
		return Row{}, &ValidationError{Line: line, Reason: err.Error()}
	}
	if len(segments) == 0 {
		return Row{}, &ValidationError{Line: line, Reason: "empty row, expected username[,password]"}
	}

	first := segments[0]
	if !strings.Contains(first, columnDelim) {
		// A comma in a later segment means a space split the username column.
		for i := 1; i < len(segments); i++ {
			if strings.Contains(segments[i], columnDelim) {
				name, _, _ := strings.Cut(strings.Join(segments[:i+1], string(segmentDelim)), columnDelim)
				return Row{}, &ValidationError{Line: line, Username: name, Reason: "username contains whitespace"}
			}
		}
	}

	cols := strings.Split(first, columnDelim)
	row := Row{Line: line, Username: cols[0]}
	switch {
	case row.Username == "":
		return Row{}, &ValidationError{Line: line, Reason: "missing username"}
	case strings.IndexFunc(row.Username, unicode.IsSpace) >= 0:
		return Row{}, &ValidationError{Line: line, Username: row.Username, Reason: "username contains whitespace"}
	}

	if len(cols) >= 2 && cols[1] != "" {
		row.Password = cols[1]
	} else {
		row.Password = defaultPassword
	}
	if row.Password == "" {
		return Row{}, &ValidationError{Line: line, Username: row.Username, Reason: "no password given and no default password set"}
	}
	return row, nil
}

// splitSegments splits a row on single spaces. A segment that starts with
// '|' runs to the closing '|' and may contain spaces; "||" inside it is a
// literal '|'. Characters after a closing quote are kept in the segment.
func splitSegments(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	const (
		startField = iota
		inField
		inQuoted
		quoteInQuoted
	)
	var (
		out   []string
		field strings.Builder
		state = startField
	)
	for _, c := range text {
		switch state {
		case startField:
			switch c {
			case quoteChar:
				state = inQuoted
			case segmentDelim:
				out = append(out, "")
			default:
				field.WriteRune(c)
				state = inField
			}
		case inField:
			if c == segmentDelim {
				out = append(out, field.String())
				field.Reset()
				state = startField
				continue
			}
			field.WriteRune(c)
		case inQuoted:
			if c == quoteChar {
				state = quoteInQuoted
				continue
			}
			field.WriteRune(c)
		case quoteInQuoted:
			switch c {
			case quoteChar:
				field.WriteRune(c)
				state = inQuoted
			case segmentDelim:
				out = append(out, field.String())
				field.Reset()
				state = startField
			default:
				field.WriteRune(c)
				state = inField
			}
		}
	}
	if state == inQuoted {
		return nil, errors.New("unterminated quoted segment")
	}
	out = append(out, field.String())
	return out, nil
}
