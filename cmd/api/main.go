package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	apiconfig "lottery/internal/app/api/config"
	apiserver "lottery/internal/app/api/server"
	"lottery/internal/logger"
)

func main() {
	cfg := apiconfig.Load()
	logger.Init(cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := apiserver.New(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize api server", zap.Error(err))
	}
	defer srv.Close()

	if err := srv.Run(ctx); err != nil {
		logger.Error("api server stopped", zap.Error(err))
	}
}
