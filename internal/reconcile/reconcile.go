// Package reconcile merges migrated account records into the live account
// databases. Live records always win; migrated records are only appended
// when their key is new.
package reconcile

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/hnrobert/ltspacct/internal/config"
	"github.com/hnrobert/ltspacct/internal/record"
)

// Reconcile returns live followed by every migrated record whose key is
// not already present. Live records are kept in order and untouched. A key
// repeated within migrated is appended once, and records with an empty key
// are never appended.
func Reconcile(live, migrated record.Set) record.Set {
	seen := live.Keys()
	out := make(record.Set, 0, len(live)+len(migrated))
	for _, r := range live {
		out = append(out, r.Clone())
	}
	for _, r := range migrated {
		k := r.Key()
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r.Clone())
	}
	return out
}

// Report describes the outcome for one schema file. InPlace means the live
// file could not be replaced atomically and was rewritten where it is.
type Report struct {
	Schema    record.Schema
	LivePath  string
	Live      int
	AddedKeys []string
	Written   bool
	InPlace   bool
	Err       error
}

func (r Report) Added() int { return len(r.AddedKeys) }

type Options struct {
	Schemas []record.Schema
	DryRun  bool
}

type Reconciler struct {
	cfg config.Config
	log *zap.SugaredLogger
}

func New(cfg config.Config, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{cfg: cfg, log: log}
}

// Run reconciles each schema independently. A failing schema does not stop the
// others; the returned error lists every schema that failed.
func (r *Reconciler) Run(ctx context.Context, opts Options) ([]Report, error) {
	schemas := opts.Schemas
	if len(schemas) == 0 {
		var err error
		if schemas, err = r.cfg.SchemaList(); err != nil {
			return nil, err
		}
	}

	var result *multierror.Error
	reports := make([]Report, 0, len(schemas))
	for _, s := range schemas {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		rep := r.runSchema(s, opts.DryRun)
		if rep.Err != nil {
			r.log.Errorf("reconcile %s: %v", s.Name, rep.Err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", s.Name, rep.Err))
		}
		reports = append(reports, rep)
	}
	return reports, result.ErrorOrNil()
}

func (r *Reconciler) runSchema(s record.Schema, dryRun bool) Report {
	rep := Report{Schema: s}

	livePath, err := r.cfg.LivePath(s)
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.LivePath = livePath
	migPath, err := r.cfg.MigratedPath(s)
	if err != nil {
		rep.Err = err
		return rep
	}

	live, err := record.Load(livePath)
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.Live = len(live)
	migrated, err := record.Load(migPath)
	if err != nil {
		rep.Err = err
		return rep
	}
	for _, bad := range migrated.FieldCountMismatches(s) {
		r.log.Warnf("%s: record %q has %d fields, expected %d", migPath, bad.Key(), len(bad), s.Fields)
	}

	merged := Reconcile(live, migrated)
	for _, rec := range merged[len(live):] {
		rep.AddedKeys = append(rep.AddedKeys, rec.Key())
	}
	r.log.Infof("%s: %d live records, %d migrated, %d to add", s.Name, len(live), len(migrated), rep.Added())

	if dryRun {
		return rep
	}
	inPlace, err := record.Save(livePath, merged, s.Perm)
	if err != nil {
		rep.Err = err
		return rep
	}
	if inPlace {
		r.log.Warnf("%s: rename over %s failed, rewrote it in place", s.Name, livePath)
	}
	rep.Written = true
	rep.InPlace = inPlace
	r.log.Infof("%s: written to %s", s.Name, livePath)
	return rep
}
