package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"lottery/internal/app/api/config"
	"lottery/internal/app/api/router"
	"lottery/internal/db"
	"lottery/internal/domain/activity"
	"lottery/internal/domain/draw"
	"lottery/internal/kafka"
	"lottery/internal/logger"
	"lottery/internal/messaging/drawmsg"
	redispkg "lottery/internal/redis"
)

// Server wires infrastructure dependencies for the API service.
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	store      *db.Store
	redis      *redispkg.Client
	producer   *kafka.Producer
}

// New constructs the server and underlying dependencies.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	store, err := db.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}

	redisClient, err := redispkg.New(cfg.RedisAddr)
	if err != nil {
		store.Close()
		return nil, err
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		_ = redisClient.Close()
		store.Close()
		return nil, err
	}

	activities := activity.NewService(store, redisClient, cfg.ActivityCacheTTL)
	draws := draw.NewService(store, drawmsg.NewPublisher(producer), redisClient, draw.RecordTTL{
		Prize:    cfg.PrizeRecordsTTL,
		Activity: cfg.ActivityRecordsTTL,
	})
	ginRouter := router.New(router.Dependencies{
		ActivityService: activities,
		DrawService:     draws,
	})

	httpSrv := &http.Server{Addr: ":" + cfg.Port, Handler: ginRouter, ReadHeaderTimeout: 10 * time.Second}
	return &Server{
		cfg:        cfg,
		httpServer: httpSrv,
		store:      store,
		redis:      redisClient,
		producer:   producer,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is canceled or fatal error occurs.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("api listening", zap.String("addr", s.httpServer.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Close releases infrastructure resources.
func (s *Server) Close() {
	_ = s.httpServer.Close()
	if s.producer != nil {
		_ = s.producer.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
}
