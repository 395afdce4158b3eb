package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "invoice-agent/internal/adapters/web"
	"invoice-agent/internal/app"
	"invoice-agent/internal/config"
	"invoice-agent/internal/logging"

	"go.uber.org/zap"
)

func main() {
	portFlag := flag.String("port", "", "HTTP listen port (overrides PORT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *portFlag != "" {
		cfg.Port = config.NormalizePort(*portFlag)
	}

	logger, err := logging.New(cfg.Env, cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("stores", zap.Error(err))
	}
	defer stores.Close()

	if err := stores.References.EnsureSeeded(ctx); err != nil {
		logger.Fatal("seed reference data", zap.Error(err))
	}
	if n, err := stores.PurgeExpiredDrafts(ctx); err != nil {
		logger.Warn("purge expired drafts", zap.Error(err))
	} else if n > 0 {
		logger.Info("purged expired drafts", zap.Int64("count", n))
	}

	agent, err := app.NewAgent(cfg, stores.References, logger)
	if err != nil {
		logger.Fatal("agent", zap.Error(err))
	}
	svc := app.NewFromConfig(cfg, stores, agent, logger)

	handler := webAdapter.NewHandler(svc, webAdapter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Debug:          cfg.Debug,
		Logger:         logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting", zap.String("addr", cfg.Port), zap.String("env", cfg.Env))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server", zap.Error(err))
	}
	logger.Info("server stopped")
}
