package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hnrobert/ltspacct/internal/reconcile"
	"github.com/hnrobert/ltspacct/internal/record"
)

func newReconcileCommand(app *App) *cobra.Command {
	var (
		schemas []string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Merge migrated account records into the live account files",
		Long: `Merge the records staged by a previous export (<migration_dir>/<schema>.mig)
into the live account files. Records already present in a live file are kept
as they are; only new names are appended. Schemas are processed independently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := reconcile.Options{DryRun: dryRun}
			for _, name := range schemas {
				s, ok := record.LookupSchema(name)
				if !ok {
					return fmt.Errorf("unknown schema %q", name)
				}
				opts.Schemas = append(opts.Schemas, s)
			}
			reports, err := reconcile.New(app.cfg, app.log).Run(cmd.Context(), opts)
			for _, r := range reports {
				app.printReport(r, dryRun)
			}
			return err
		},
	}
	cmd.Flags().StringSliceVar(&schemas, "schema", nil, "Schemas to reconcile (passwd, group, shadow, gshadow); default all configured")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be added without writing")
	return cmd
}

func (a *App) printReport(r reconcile.Report, dryRun bool) {
	switch {
	case r.Err != nil:
		a.printf("%-8s failed: %v\n", r.Schema.Name, r.Err)
	case r.Added() == 0:
		a.printf("%-8s up to date (%d records)\n", r.Schema.Name, r.Live)
	case dryRun:
		a.printf("%-8s would add %d: %s\n", r.Schema.Name, r.Added(), strings.Join(r.AddedKeys, ", "))
	default:
		a.printf("%-8s added %d: %s\n", r.Schema.Name, r.Added(), strings.Join(r.AddedKeys, ", "))
	}
}
