package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hnrobert/ltspacct/internal/dialog"
)

var (
	// ErrDeclined means the operator cancelled at the confirmation step.
	// Nothing was provisioned.
	ErrDeclined = errors.New("import cancelled by operator")
	// ErrConfirmation means no answer could be obtained from the operator.
	ErrConfirmation = errors.New("import confirmation failed")
)

type Confirmer interface {
	Confirm(ctx context.Context, title, text string) (dialog.Decision, error)
}

type Notifier interface {
	Notify(ctx context.Context, title, text string) error
}

const confirmTitle = "About to import (Use arrow keys to scroll)"

type Pipeline struct {
	exec    *Executor
	confirm Confirmer
	notify  Notifier
	log     *zap.SugaredLogger
}

func NewPipeline(exec *Executor, confirm Confirmer, notify Notifier, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{exec: exec, confirm: confirm, notify: notify, log: log}
}

// Run plans the import of path, asks for confirmation and provisions the
// batch. Validation errors and a declined confirmation leave the system
// untouched.
func (p *Pipeline) Run(ctx context.Context, path, defaultPassword string) (Result, error) {
	plan, err := ParsePlan(path, defaultPassword)
	if err != nil {
		return Result{}, err
	}
	return p.RunPlan(ctx, plan)
}

func (p *Pipeline) RunPlan(ctx context.Context, plan Plan) (Result, error) {
	if len(plan.Batch) == 0 {
		return Result{Source: plan.Source}, nil
	}
	decision, err := p.confirm.Confirm(ctx, confirmTitle, plan.Preview)
	switch {
	case err != nil:
		return Result{}, fmt.Errorf("%w: %w", ErrConfirmation, err)
	case decision == dialog.Decline:
		p.log.Infof("import of %s declined", plan.Source)
		return Result{}, ErrDeclined
	case decision != dialog.Accept:
		return Result{}, ErrConfirmation
	}

	res := p.exec.Execute(ctx, plan)
	if err := p.notify.Notify(ctx, "Complete", Summary(res)); err != nil {
		p.log.Warnf("notify: %v", err)
	}
	return res, nil
}

// Summary is the closing message shown to the operator.
func Summary(res Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d of %d accounts (%d failed).", res.Succeeded(), len(res.Rows), res.Failed())
	for _, f := range res.Failures() {
		fmt.Fprintf(&b, "\nline %d %s: %s", f.Row.Line, f.Row.Username, f.Reason())
	}
	return b.String()
}
