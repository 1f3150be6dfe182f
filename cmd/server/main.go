package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clickagent/backend/internal/config"
	"github.com/clickagent/backend/internal/logging"
	"github.com/clickagent/backend/internal/server"
)

func main() {
	cfg := config.LoadOrDefault()

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		log = logging.NewDefault()
		log.Warn("invalid log level, using info", zap.String("level", cfg.Logging.Level))
	}
	defer log.Sync()

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatal("failed to create server", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			log.Fatal("server error", zap.Error(err))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown incomplete", zap.Error(err))
	}
}
