package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	consumerconfig "lottery/internal/app/consumer/config"
	"lottery/internal/db"
	"lottery/internal/domain/activity"
	"lottery/internal/domain/draw"
	"lottery/internal/domain/status"
	"lottery/internal/kafka"
	"lottery/internal/logger"
	"lottery/internal/messaging/drawmsg"
	"lottery/internal/notify"
	redispkg "lottery/internal/redis"
)

// Server hosts the draw consumer, the dead-letter requeuer and the metrics
// endpoint.
type Server struct {
	cfg      consumerconfig.Config
	store    *db.Store
	redis    *redispkg.Client
	producer *kafka.Producer
	pool     *notify.Pool
	draws    *drawmsg.Consumer
	requeuer *kafka.Consumer
	metrics  *http.Server
}

// New builds the consumer server and supporting dependencies.
func New(ctx context.Context, cfg consumerconfig.Config) (_ *Server, err error) {
	s := &Server{cfg: cfg}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if s.store, err = db.New(ctx, cfg.PostgresDSN); err != nil {
		return nil, err
	}
	if err = s.store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	if s.redis, err = redispkg.New(cfg.RedisAddr); err != nil {
		return nil, err
	}
	if s.producer, err = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic); err != nil {
		return nil, err
	}

	s.pool = notify.NewPool(cfg.NotifyWorkers, cfg.NotifyQueueSize, cfg.NotifyTimeout)
	dispatcher := notify.NewDispatcher(s.pool, notify.LogMailer{}, notify.LogSMSSender{})

	activities := activity.NewService(s.store, s.redis, cfg.ActivityCacheTTL)
	engine := status.NewManager(s.store, activities)
	orchestrator := draw.NewOrchestrator(s.store, engine, s.redis, draw.RecordTTL{
		Prize:    cfg.PrizeRecordsTTL,
		Activity: cfg.ActivityRecordsTTL,
	}, dispatcher)

	router := kafka.NewDeadLetterRouter(s.producer, kafka.RetryPolicy{
		IngressTopic:    cfg.KafkaTopic,
		DeadLetterTopic: cfg.DeadLetterTopic,
		ParkingTopic:    cfg.ParkingTopic,
		MaxAttempts:     cfg.MaxAttempts,
		Delay:           cfg.RequeueDelay,
	})
	if s.draws, err = drawmsg.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroup, cfg.KafkaTopic, orchestrator, router.HandleFailure); err != nil {
		return nil, err
	}
	if s.requeuer, err = kafka.NewConsumer(cfg.KafkaBrokers, cfg.DeadLetterGroup, cfg.DeadLetterTopic, router, kafka.Abort); err != nil {
		return nil, err
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	s.metrics = &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux, ReadHeaderTimeout: 10 * time.Second}
	return s, nil
}

// Run consumes draw requests and requeues dead letters until ctx is
// canceled or one of them fails.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("consumer metrics listening", zap.String("addr", s.cfg.MetricsAddr))
		if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.metrics.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		logger.Info("draw consumer started", zap.String("topic", s.cfg.KafkaTopic), zap.String("group", s.cfg.KafkaGroup))
		return s.draws.Start(ctx)
	})
	g.Go(func() error {
		logger.Info("dead-letter requeuer started", zap.String("topic", s.cfg.DeadLetterTopic),
			zap.Int("max_attempts", s.cfg.MaxAttempts), zap.Duration("delay", s.cfg.RequeueDelay))
		return s.requeuer.Start(ctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases resources. Consumers stop before the notification pool
// drains so no task is submitted to a closed pool.
func (s *Server) Close() {
	if s.draws != nil {
		_ = s.draws.Close()
	}
	if s.requeuer != nil {
		_ = s.requeuer.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
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
