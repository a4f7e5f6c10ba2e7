package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/config"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/server"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/telemetry"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 {
		rootPath := os.Args[1]
		if rootPath == "" {
			log.Fatal("root directory path is empty")
		}

		if err := godotenv.Load(path.Join(rootPath, "config.env")); err != nil {
			log.Fatal(err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := run(cfg); err != nil {
		cfg.Logger.Error("server exited", zap.Error(err))
		_ = cfg.Logger.Sync()
		os.Exit(1)
	}

	_ = cfg.Logger.Sync()
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, config.ServiceName, cfg.Telemetry.Endpoint, cfg.Telemetry.Enabled)
	if err != nil {
		return err
	}

	srv, err := server.NewHTTPServer(ctx, cfg)
	if err != nil {
		return err
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Start()
	}()

	select {
	case err = <-errs:
	case <-ctx.Done():
		cfg.Logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if stopErr := srv.Stop(shutdownCtx); stopErr != nil {
		cfg.Logger.Error("failed to stop server", zap.Error(stopErr))
	}

	if tracingErr := shutdownTracing(shutdownCtx); tracingErr != nil {
		cfg.Logger.Warn("failed to flush traces", zap.Error(tracingErr))
	}

	return err
}
