// Package cli implements the agriledger command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/agriledger/internal/paths"
	"github.com/mesh-intelligence/agriledger/internal/service"
	"github.com/mesh-intelligence/agriledger/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError attaches an exit code to an error returned by a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// fromService maps a service error to an exit code: domain errors are the
// caller's fault, anything else is ours.
func fromService(err error) error {
	if err == nil {
		return nil
	}
	if types.AsError(err) != nil {
		return userError(err)
	}
	return sysError(err)
}

// app holds global flag values and state shared by subcommands.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool

	cfg    *viper.Viper
	logger *slog.Logger
}

// NewRootCmd creates the top-level "agriledger" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "agriledger",
		Short:   "Record keeping for agricultural debts, escrows and crop insurance",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newStatusCmd(a))
	root.AddCommand(newDebtCmd(a))
	root.AddCommand(newEscrowCmd(a))
	root.AddCommand(newInsuranceCmd(a))
	root.AddCommand(newClaimCmd(a))

	return root
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Flag and argument errors from cobra.
	return exitUserError
}

// setup builds the logger and loads configuration before any subcommand.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	a.configDir = configDir

	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.cfg = cfg
	a.logger.Debug("configuration loaded", "config_dir", configDir, "backend", cfg.GetString(cfgKeyBackend))
	return nil
}

// withService attaches the configured ledger, runs fn, and detaches.
func (a *app) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.Service) error) (err error) {
	ledger, cfg, err := a.attach()
	if err != nil {
		return err
	}
	defer func() {
		if derr := ledger.Detach(); derr != nil && err == nil {
			err = sysError(fmt.Errorf("detach %s backend: %w", cfg.Backend, derr))
		}
	}()

	svc := service.New(ledger, service.WithLogger(a.logger))
	return fn(cmd.Context(), svc)
}

// attach resolves the ledger configuration and attaches a backend.
func (a *app) attach() (types.Ledger, types.Config, error) {
	cfg, err := a.ledgerConfig()
	if err != nil {
		return nil, cfg, err
	}
	ledger, err := newLedger(cfg.Backend)
	if err != nil {
		return nil, cfg, userError(err)
	}
	if err := ledger.Attach(cfg); err != nil {
		return nil, cfg, sysError(fmt.Errorf("attach %s backend: %w", cfg.Backend, err))
	}
	a.logger.Debug("ledger attached", "backend", cfg.Backend, "data_dir", cfg.DataDir)
	return ledger, cfg, nil
}
