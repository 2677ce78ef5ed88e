package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	consumerconfig "lottery/internal/app/consumer/config"
	consumerserver "lottery/internal/app/consumer/server"
	"lottery/internal/logger"
)

func main() {
	cfg := consumerconfig.Load()
	logger.Init(cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := consumerserver.New(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to init consumer", zap.Error(err))
	}
	defer srv.Close()

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", zap.Error(err))
	}
}
