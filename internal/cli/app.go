// Package cli wires the configuration, logger and components into the
// ltspacct command table.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hnrobert/ltspacct/internal/auth"
	"github.com/hnrobert/ltspacct/internal/config"
	"github.com/hnrobert/ltspacct/internal/logger"
	"github.com/hnrobert/ltspacct/internal/provision"
	"github.com/hnrobert/ltspacct/internal/usercmd"
)

// App carries what every command needs. It is filled in by the root
// command's PersistentPreRunE.
type App struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	// Commander overrides the shadow-utils runner, for tests.
	Commander provision.Commander
	// Su overrides the su(1) password check, for tests.
	Su func(username, password string) (bool, error)

	cfgPath  string
	logLevel string
	logDir   string

	cfg config.Config
	log *zap.SugaredLogger
}

func NewApp() *App {
	return &App{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir = a.logDir
	}
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Dir: cfg.LogDir})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *App) teardown(*cobra.Command, []string) error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}

func (a *App) provisioner() (*provision.Provisioner, error) {
	hasher, err := auth.NewHasher(a.cfg.Hash)
	if err != nil {
		return nil, err
	}
	cmd := a.Commander
	if cmd == nil {
		cmd = usercmd.New(a.cfg.CommandTimeout)
	}
	return provision.New(cmd, hasher, a.cfg.Shell, a.cfg.Groups, a.log), nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}
