package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/amirphl/mailwright/app/handlers"
	"github.com/amirphl/mailwright/app/middleware"
	"github.com/amirphl/mailwright/app/router"
	"github.com/amirphl/mailwright/app/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveWithWorker  bool
	serveConcurrency int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API that accepts generation requests and serves job results.

Jobs are executed by "mailwright worker". For local development --with-worker
runs a worker pool inside the API process; it still reads jobs from the queue
and the database like a separate worker would.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveWithWorker, "with-worker", false, "Run an embedded generation worker pool (development only)")
	serveCmd.Flags().IntVar(&serveConcurrency, "concurrency", 0, "Embedded worker concurrency (default WORKER_CONCURRENCY)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.cfg
	log := app.logger

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	r := router.NewFiberRouter(
		cfg,
		handlers.NewGenerationHandler(app.generationFlow(), log.Named("generation_handler")),
		middleware.NewAuthMiddleware(tokenService),
		app.probes(),
		log.Named("router"),
	)
	r.SetupRoutes()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveWithWorker {
		concurrency := serveConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Worker.Concurrency
		}
		stopWorkers, err := app.startWorkers(ctx, concurrency)
		if err != nil {
			return err
		}
		defer stopWorkers()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := r.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
	return nil
}
