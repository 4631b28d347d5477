package record

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

const maxLine = 1024 * 1024

// Parse splits every line of r into a record. Trailing empty fields are
// kept, and nothing but the line terminator is stripped.
func Parse(r io.Reader) (Set, error) {
	s := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	s.Buffer(buf, maxLine)
	var set Set
	for s.Scan() {
		set = append(set, parseLine(s.Text()))
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

func parseLine(line string) Record {
	return Record(strings.Split(line, Delim))
}

// Format serializes the set, one record per line.
func Format(set Set) []byte {
	var b bytes.Buffer
	for _, r := range set {
		for i, f := range r {
			if i > 0 {
				b.WriteString(Delim)
			}
			b.WriteString(f)
		}
		b.WriteByte('\n')
	}
	return b.Bytes()
}
