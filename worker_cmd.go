package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/mailwright/app/queue"
	"github.com/amirphl/mailwright/app/router"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workerConcurrency int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run generation workers",
	Long: `Run a pool of generation workers pulling job ids from the Redis queue,
plus the reconciler that fails abandoned jobs and re-enqueues lost ones.

A small listener on WORKER_HTTP_PORT serves /metrics and /api/v1/health.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 0, "Number of concurrent jobs (default WORKER_CONCURRENCY)")
}

func runWorker(cmd *cobra.Command, _ []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, ok := app.queue.(*queue.MemoryQueue); ok {
		return errors.New("worker needs the redis queue; set CACHE_ENABLED=true or use serve --with-worker")
	}

	cfg := app.cfg
	log := app.logger

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	concurrency := workerConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Worker.Concurrency
	}
	stopWorkers, err := app.startWorkers(ctx, concurrency)
	if err != nil {
		return err
	}

	ops := router.NewOpsApp(cfg, app.probes())
	go func() {
		if err := ops.Listen(fmt.Sprintf(":%d", cfg.Worker.HTTPPort)); err != nil {
			log.Error("Ops listener stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Stopping workers; waiting for in-flight jobs")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ops.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("Error during ops shutdown", zap.Error(err))
	}

	log.Info("Workers stopped")
	return nil
}
