package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests handled by the API service",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	dbOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_operation_duration_seconds",
		Help:    "Time spent executing database operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	redisOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Time spent executing redis operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	kafkaOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_operation_duration_seconds",
		Help:    "Time spent sending data to Kafka",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	consumerProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "consumer_process_duration_seconds",
		Help:    "Time spent processing draw requests in the consumer service",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})

	drawTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draw_requests_total",
		Help: "Draw requests processed by outcome",
	}, []string{"outcome"})

	deadLetterTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "draw_dead_letter_total",
		Help: "Failed draw messages by routing decision",
	}, []string{"route"})

	notificationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "winner_notifications_total",
		Help: "Winner notification tasks by channel and result",
	}, []string{"channel", "result"})
)

// Draw outcomes.
const (
	DrawSuccess     = "success"
	DrawRejected    = "rejected"
	DrawCompensated = "compensated"
	DrawFailed      = "failed"
)

// ObserveHTTPRequest tracks the handling time of HTTP requests.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveDBOperation tracks database call duration.
func ObserveDBOperation(operation string, d time.Duration) {
	dbOperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveRedisOperation tracks redis call duration.
func ObserveRedisOperation(operation string, d time.Duration) {
	redisOperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveKafkaOperation tracks kafka call duration.
func ObserveKafkaOperation(operation string, d time.Duration) {
	kafkaOperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveConsumerProcessing tracks consumer processing stages.
func ObserveConsumerProcessing(step string, d time.Duration) {
	consumerProcessDuration.WithLabelValues(step).Observe(d.Seconds())
}

// RecordDraw counts a processed draw request.
func RecordDraw(outcome string) {
	drawTotal.WithLabelValues(outcome).Inc()
}

// RecordDeadLetter counts a routing decision for a failed message.
func RecordDeadLetter(route string) {
	deadLetterTotal.WithLabelValues(route).Inc()
}

// RecordNotification counts a finished or rejected notification task.
func RecordNotification(channel, result string) {
	notificationTotal.WithLabelValues(channel, result).Inc()
}
