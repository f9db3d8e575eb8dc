package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/johngate/internal/config"
	"github.com/dropDatabas3/johngate/internal/http/server"
	"github.com/dropDatabas3/johngate/internal/idp"
	"github.com/dropDatabas3/johngate/internal/observability/logger"
	"github.com/dropDatabas3/johngate/internal/observability/tracing"
)

const serviceName = "johngate"

// version se pisa con -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: .env no se pudo leer: %v", err)
	}

	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logEnv := "dev"
	if cfg.IsProd() {
		logEnv = "prod"
	}
	logger.Init(logger.Config{Env: logEnv, Level: cfg.Log.Level, ServiceName: serviceName, Version: version})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ToContext(ctx, lg)

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: serviceName,
		Version:     version,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		lg.Fatal("tracing setup failed", logger.Err(err))
	}

	opts := server.Options{Version: version}
	if idpCfg, ok := idp.LoadConfig(); ok {
		opts.IdP = &idpCfg
	}

	app, err := server.Build(ctx, cfg, opts)
	if err != nil {
		lg.Fatal("wiring failed", logger.Err(err))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      app.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("listening", logger.String("addr", cfg.Server.Addr), logger.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		lg.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			lg.Error("server failed", logger.Err(err))
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		lg.Warn("http shutdown", logger.Err(err))
	}
	if err := app.Close(); err != nil {
		lg.Warn("closing resources", logger.Err(err))
	}
	if err := shutdownTracing(sctx); err != nil {
		lg.Warn("tracing shutdown", logger.Err(err))
	}
}
