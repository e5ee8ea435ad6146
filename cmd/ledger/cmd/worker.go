package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/events"
	"ledger/internal/log"
	"ledger/internal/worker"
)

func newWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Keep mirrors in sync by following ledger events",
		Long: `Consume ledger events from RabbitMQ and re-export the ledger to every
mirror after each save. Runs until interrupted.

Requires AMQP_URL and a configured mirror (GOOGLE_SPREADSHEET_ID).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.EventsEnabled() {
				return fmt.Errorf("worker requires AMQP_URL")
			}
			if len(a.backend.Mirrors) == 0 {
				return fmt.Errorf("worker requires a mirror; set GOOGLE_SPREADSHEET_ID")
			}

			consumer, err := events.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
			if err != nil {
				return fmt.Errorf("connect to broker: %w", err)
			}
			defer consumer.Close()

			logger := log.FromContext(cmd.Context())
			logger.Info("Mirror worker started", "queue", a.cfg.AMQPQueue)
			w := worker.NewMirrorWorker(a.backend.Repository, a.backend.Mirrors, logger,
				worker.WithClock(a.now),
				worker.WithReportCache(a.cfg.ReportCacheSize, a.cfg.ReportCacheTTL))
			return w.Run(cmd.Context(), consumer)
		},
	}
}
