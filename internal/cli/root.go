package cli

import (
	"github.com/spf13/cobra"

	"github.com/hnrobert/ltspacct/internal/config"
)

// NewRootCommand builds the command table. Every subcommand is listed here
// with its handler; there is no lookup by name at run time.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "ltspacct",
		Short: "Reconcile migrated accounts and bulk-provision users on an LTSP server",
		Long: `ltspacct maintains the user accounts of a shared LTSP terminal server.

It merges account records exported from a previous server into the live
passwd, group, shadow and gshadow files, and creates accounts in bulk from a
list of usernames and passwords.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  app.setup,
		PersistentPostRunE: app.teardown,
	}
	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.SetErr(app.ErrOut)

	root.PersistentFlags().StringVar(&app.cfgPath, "config", config.DefaultPath(), "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&app.logDir, "log-dir", "", "Directory for daily log files")

	root.AddCommand(
		newReconcileCommand(app),
		newPlanCommand(app),
		newImportCommand(app),
		newGroupsCommand(app),
		newVerifyCommand(app),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	app := NewApp()
	root := NewRootCommand(app)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
