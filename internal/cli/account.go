package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hnrobert/ltspacct/internal/auth"
	"github.com/hnrobert/ltspacct/internal/dialog"
	"github.com/hnrobert/ltspacct/internal/record"
)

func newGroupsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "groups <username>",
		Short: "Add an existing user to the configured supplementary groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prov, err := app.provisioner()
			if err != nil {
				return err
			}
			failed := prov.ApplyGroups(cmd.Context(), args[0])
			if len(failed) > 0 {
				return fmt.Errorf("%s: could not join %s", args[0], strings.Join(failed, ", "))
			}
			app.printf("%s: member of %s\n", args[0], strings.Join(prov.Groups(), ", "))
			return nil
		},
	}
}

func newVerifyCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <username>",
		Short: "Check a user's password against the shadow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runVerify(args[0])
		},
	}
}

var errNoShadowEntry = errors.New("no shadow entry")

func (a *App) runVerify(username string) error {
	path, err := a.cfg.LivePath(record.Shadow)
	if err != nil {
		return err
	}
	shadow, err := record.Load(path)
	if err != nil {
		return err
	}
	rec, ok := shadow.Find(username)
	if !ok || len(rec) < 2 {
		return fmt.Errorf("%s: %w in %s", username, errNoShadowEntry, path)
	}

	password, err := dialog.ReadSecret(a.In, a.Out, "Password: ")
	if err != nil {
		return err
	}
	su := a.Su
	if su == nil {
		su = auth.NewSuChecker().Check
	}
	if err := (auth.Verifier{Su: su}).Verify(username, rec[1], password); err != nil {
		return errors.New(auth.HumanAuthError(err))
	}
	a.printf("%s: password OK\n", username)
	return nil
}
