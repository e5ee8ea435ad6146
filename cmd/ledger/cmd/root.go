// Package cmd provides the ledger command tree.
package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/reports"
	"ledger/internal/services"
)

const skipLedger = "skip-ledger"

// app holds what PersistentPreRunE opened for the running command.
type app struct {
	now     func() time.Time
	cfg     *config.Config
	logger  *log.Logger
	backend *backend.Result
	ledger  *services.LedgerService
	reports *reports.Service
}

type rootOptions struct {
	file    string
	backend string
	envFile string
	debug   bool
}

// Execute runs the command tree until it finishes or a signal arrives.
func Execute() error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	root, a := newRootCmd()
	defer a.close()
	return root.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, *app) {
	opts := &rootOptions{}
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "ledger",
		Short: "Track personal expenses in a CSV ledger",
		Long: `ledger keeps a list of expenses in a CSV file (or SQLite database)
and answers questions about them.

Example:
  ledger add "Lunch, Fri" 12.50 FOOD --date 2024-03-01
  ledger list --month 2024-03
  ledger month 2024-03
  ledger trend --months 6`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.file, "file", "", "ledger CSV file (default $LEDGER_FILE or expenses.csv)")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "storage backend: csv or sqlite (default $DATA_BACKEND)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "env file to load (default .env)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newAddCmd(a),
		newUpdateCmd(a),
		newRemoveCmd(a),
		newListCmd(a),
		newTotalCmd(a),
		newMonthCmd(a),
		newTrendCmd(a),
		newCategoriesCmd(),
		newExportCmd(a),
		newImportCmd(a),
		newWorkerCmd(a),
	)
	return root, a
}

func (a *app) open(cmd *cobra.Command, opts *rootOptions) error {
	if err := cli.LoadEnvFile(opts.envFile); err != nil {
		return err
	}
	cfg, err := cli.LoadAndValidateConfig(func(c *config.Config) {
		if opts.file != "" {
			c.LedgerFile = opts.file
		}
		if opts.backend != "" {
			c.DataBackend = opts.backend
		}
	})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cli.SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel, opts.debug)
	cmd.SetContext(log.NewContext(cmd.Context(), a.logger))

	if cmd.Annotations[skipLedger] == "true" {
		return nil
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(a.logger).Create(cmd.Context(), bcfg)
	if err != nil {
		return err
	}
	a.backend = res

	deps := res.Deps()
	deps.Logger = a.logger
	svc, err := services.Open(cmd.Context(), deps, ledger.WithClock(a.now))
	if err != nil {
		res.Repository.Close()
		res.Publisher.Close()
		return err
	}
	a.ledger = svc
	a.reports = reports.New(svc.Store(), cfg.ReportCacheSize, cfg.ReportCacheTTL,
		reports.WithClock(a.now), reports.WithLogger(a.logger))
	return nil
}

func (a *app) close() {
	if a.ledger == nil {
		return
	}
	if err := a.ledger.Close(); err != nil {
		a.logger.Warn("Failed to close ledger", log.FieldError, err)
	}
	a.ledger = nil
}
