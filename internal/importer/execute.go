package importer

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hnrobert/ltspacct/internal/provision"
)

// Provisioner creates one account.
type Provisioner interface {
	Provision(ctx context.Context, username, password string) error
}

type RowResult struct {
	Row Row
	Err error
}

func (r RowResult) OK() bool { return r.Err == nil }

// Reason is a short description of the failure, empty on success.
func (r RowResult) Reason() string {
	var pe *provision.ProvisionError
	switch {
	case r.Err == nil:
		return ""
	case errors.As(r.Err, &pe):
		return pe.Kind.String() + ": " + pe.Err.Error()
	default:
		return r.Err.Error()
	}
}

type Result struct {
	RunID  string
	Source string
	Rows   []RowResult
}

func (r Result) Succeeded() int {
	n := 0
	for _, row := range r.Rows {
		if row.OK() {
			n++
		}
	}
	return n
}

func (r Result) Failed() int { return len(r.Rows) - r.Succeeded() }

func (r Result) Failures() []RowResult {
	var out []RowResult
	for _, row := range r.Rows {
		if !row.OK() {
			out = append(out, row)
		}
	}
	return out
}

type Executor struct {
	prov Provisioner
	log  *zap.SugaredLogger
}

func NewExecutor(prov Provisioner, log *zap.SugaredLogger) *Executor {
	return &Executor{prov: prov, log: log}
}

// Execute provisions every row of an approved plan, one at a time and in
// order. A failed row does not stop the batch, and once started the batch is
// not interrupted by cancellation of ctx.
func (e *Executor) Execute(ctx context.Context, plan Plan) Result {
	ctx = context.WithoutCancel(ctx)
	res := Result{RunID: uuid.NewString(), Source: plan.Source}
	log := e.log.With("run", res.RunID)
	log.Infof("importing %d accounts from %s", len(plan.Batch), plan.Source)

	for _, row := range plan.Batch {
		err := e.prov.Provision(ctx, row.Username, row.Password)
		if err != nil {
			log.Errorf("line %d: %s: %v", row.Line, row.Username, err)
		} else {
			log.Infof("import of %s complete", row.Username)
		}
		res.Rows = append(res.Rows, RowResult{Row: row, Err: err})
	}
	log.Infof("import finished: %d succeeded, %d failed", res.Succeeded(), res.Failed())
	return res
}
