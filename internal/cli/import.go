package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/hnrobert/ltspacct/internal/dialog"
	"github.com/hnrobert/ltspacct/internal/importer"
	"github.com/hnrobert/ltspacct/internal/report"
)

type importFlags struct {
	defaultPassword string
	yes             bool
	reportPath      string
}

func newPlanCommand(app *App) *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   "plan <file>",
		Short: "Validate an import list and show what would be created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := importer.ParsePlan(args[0], f.defaultPassword)
			if err != nil {
				return err
			}
			app.printf("%d accounts from %s\n\n%s", len(plan.Batch), plan.Source, plan.Preview)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.defaultPassword, "default-password", "", "Password for rows that do not set one")
	return cmd
}

func newImportCommand(app *App) *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create accounts in bulk from a username[,password] list",
		Long: `Create one account per row of <file>. Each row starts with
"username[,password]"; rows without a password get the default password.
The whole list is validated and shown for confirmation before anything is
created. Accounts are then created one at a time; a failing row does not
stop the rest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runImport(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.defaultPassword, "default-password", "", "Password for rows that do not set one (prompted for when omitted on a terminal)")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "Write a report of the run (.md, or .html)")
	return cmd
}

func (a *App) runImport(cmd *cobra.Command, path string, f importFlags) error {
	if !cmd.Flags().Changed("default-password") && dialog.IsTerminal(a.In) {
		pw, err := dialog.ReadSecret(a.In, a.Out, "Default password: ")
		if err != nil {
			return err
		}
		f.defaultPassword = pw
	}

	plan, err := importer.ParsePlan(path, f.defaultPassword)
	if err != nil {
		return err
	}

	prov, err := a.provisioner()
	if err != nil {
		return err
	}
	confirm, notify := a.dialogs(f.yes)
	pipeline := importer.NewPipeline(importer.NewExecutor(prov, a.log), confirm, notify, a.log)

	res, err := pipeline.RunPlan(cmd.Context(), plan)
	if errors.Is(err, importer.ErrDeclined) {
		a.printf("Import cancelled, nothing was changed.\n")
		return nil
	}
	if err != nil {
		return err
	}

	if f.reportPath != "" {
		if err := report.Write(f.reportPath, res, time.Now()); err != nil {
			a.log.Errorf("write report %s: %v", f.reportPath, err)
		}
	}
	if res.Failed() > 0 {
		return errors.New(importer.Summary(res))
	}
	return nil
}

type confirmNotifier interface {
	importer.Confirmer
	importer.Notifier
}

func (a *App) dialogs(yes bool) (importer.Confirmer, importer.Notifier) {
	if yes {
		d := dialog.AutoAccept{Out: a.Out}
		return d, d
	}
	var d confirmNotifier = dialog.Prompt{In: a.In, Out: a.Out}
	if w := dialog.NewWhiptail(a.cfg.Dialog); dialog.IsTerminal(a.In) && w.Available() {
		d = w
	}
	return d, d
}
