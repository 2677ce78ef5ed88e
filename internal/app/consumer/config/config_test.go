package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cases := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{"KAFKA_TOPIC": "", "KAFKA_DLQ_TOPIC": "", "DRAW_MAX_ATTEMPTS": "", "DRAW_REQUEUE_DELAY": ""},
			check: func(t *testing.T, cfg Config) {
				if cfg.KafkaTopic != "lottery_draw" || cfg.DeadLetterTopic != "lottery_draw.dlq" || cfg.ParkingTopic != "lottery_draw.parking" {
					t.Fatalf("unexpected topics %+v", cfg)
				}
				if cfg.MaxAttempts != 5 || cfg.RequeueDelay != 2*time.Second {
					t.Fatalf("unexpected retry policy %d %s", cfg.MaxAttempts, cfg.RequeueDelay)
				}
				if cfg.NotifyWorkers != 4 || cfg.NotifyQueueSize != 256 {
					t.Fatalf("unexpected pool size %d/%d", cfg.NotifyWorkers, cfg.NotifyQueueSize)
				}
			},
		},
		{
			name: "derived topics follow ingress",
			env:  map[string]string{"KAFKA_TOPIC": "draws", "KAFKA_DLQ_TOPIC": "", "KAFKA_PARKING_TOPIC": ""},
			check: func(t *testing.T, cfg Config) {
				if cfg.DeadLetterTopic != "draws.dlq" || cfg.ParkingTopic != "draws.parking" {
					t.Fatalf("unexpected topics %s %s", cfg.DeadLetterTopic, cfg.ParkingTopic)
				}
			},
		},
		{
			name: "overrides",
			env:  map[string]string{"DRAW_MAX_ATTEMPTS": "3", "DRAW_REQUEUE_DELAY": "500ms", "KAFKA_DLQ_TOPIC": "retry"},
			check: func(t *testing.T, cfg Config) {
				if cfg.MaxAttempts != 3 || cfg.RequeueDelay != 500*time.Millisecond || cfg.DeadLetterTopic != "retry" {
					t.Fatalf("overrides not applied %+v", cfg)
				}
			},
		},
		{
			name: "invalid numbers fall back",
			env:  map[string]string{"DRAW_MAX_ATTEMPTS": "0", "NOTIFY_WORKERS": "many"},
			check: func(t *testing.T, cfg Config) {
				if cfg.MaxAttempts != 5 || cfg.NotifyWorkers != 4 {
					t.Fatalf("expected defaults, got %d %d", cfg.MaxAttempts, cfg.NotifyWorkers)
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			tc.check(t, Load())
		})
	}
}
