package importer

import (
	"fmt"
	"regexp"
	"strings"
)

// Names useradd accepts without --badname on Debian/Ubuntu.
var portableName = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}\$?$`)

// Plan is a validated batch awaiting approval.
type Plan struct {
	Source   string
	Batch    Batch
	Preview  string
	Warnings []string
}

// ParsePlan reads and validates the source and renders the preview shown to
// the operator. Nothing on the system is touched.
func ParsePlan(path, defaultPassword string) (Plan, error) {
	batch, err := ParseFile(path, defaultPassword)
	if err != nil {
		return Plan{}, err
	}
	return NewPlan(path, batch), nil
}

func NewPlan(source string, batch Batch) Plan {
	p := Plan{Source: source, Batch: batch}
	for _, r := range batch {
		if !portableName.MatchString(r.Username) {
			p.Warnings = append(p.Warnings, fmt.Sprintf("line %d: %q may be rejected by useradd", r.Line, r.Username))
		}
	}
	p.Preview = renderPreview(p)
	return p
}

// Passwords are shown in plain text so the operator can hand them out.
func renderPreview(p Plan) string {
	var b strings.Builder
	for _, r := range p.Batch {
		fmt.Fprintf(&b, "Username - %s : Password - %s\n", r.Username, r.Password)
	}
	if len(p.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range p.Warnings {
			b.WriteString(w)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
