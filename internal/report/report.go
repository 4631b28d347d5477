// Package report writes the outcome of an import run for the record.
package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hnrobert/ltspacct/internal/hostfs"
	"github.com/hnrobert/ltspacct/internal/importer"
)

// Markdown renders the result as a summary line and a table of rows.
// Passwords are not included.
func Markdown(res importer.Result, at time.Time) string {
	var b strings.Builder
	b.WriteString("# Account import\n\n")
	fmt.Fprintf(&b, "- Source: `%s`\n", res.Source)
	fmt.Fprintf(&b, "- Run: `%s`\n", res.RunID)
	fmt.Fprintf(&b, "- Finished: %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Result: %d succeeded, %d failed\n\n", res.Succeeded(), res.Failed())

	b.WriteString("| Line | Username | Status | Reason |\n")
	b.WriteString("|---:|---|---|---|\n")
	for _, row := range res.Rows {
		status := "created"
		if !row.OK() {
			status = "failed"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", row.Row.Line, escape(row.Row.Username), status, escape(row.Reason()))
	}
	return b.String()
}

// HTML converts the markdown report to an HTML fragment.
func HTML(md string) ([]byte, error) {
	var buf bytes.Buffer
	conv := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := conv.Convert([]byte(md), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores the report at path, as HTML when the path ends in .html or
// .htm and as markdown otherwise.
func Write(path string, res importer.Result, at time.Time) error {
	data := []byte(Markdown(res, at))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		html, err := HTML(string(data))
		if err != nil {
			return err
		}
		data = html
	}
	_, err := hostfs.WriteFileAtomic(path, data, 0o600)
	return err
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
