package record

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/hnrobert/ltspacct/internal/hostfs"
)

// ErrIO marks a file that is missing, unreadable or unwritable.
var ErrIO = errors.New("account file I/O error")

type ioError struct {
	op   string
	path string
	err  error
}

func (e *ioError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.op, e.path, e.err)
}

func (e *ioError) Unwrap() []error { return []error{ErrIO, e.err} }

// Load reads the whole file at path and parses it.
func Load(path string) (Set, error) {
	b, err := hostfs.ReadFile(path)
	if err != nil {
		return nil, &ioError{op: "read", path: path, err: err}
	}
	set, err := Parse(bytes.NewReader(b))
	if err != nil {
		return nil, &ioError{op: "parse", path: path, err: err}
	}
	return set, nil
}

// Save replaces the file at path with the serialized set. An existing file
// keeps its mode; a new one is created with perm. inPlace reports that the
// file had to be rewritten in place rather than atomically replaced.
func Save(path string, set Set, perm os.FileMode) (inPlace bool, err error) {
	inPlace, err = hostfs.WriteFileAtomic(path, Format(set), hostfs.Mode(path, perm))
	if err != nil {
		return inPlace, &ioError{op: "write", path: path, err: err}
	}
	return inPlace, nil
}
