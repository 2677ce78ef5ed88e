package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "KAFKA_BROKERS", "KAFKA_TOPIC", "ACTIVITY_CACHE_TTL", "PRIZE_RECORDS_TTL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" || cfg.KafkaTopic != "lottery_draw" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"localhost:9092"}) {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.ActivityCacheTTL != 72*time.Hour || cfg.PrizeRecordsTTL != 24*time.Hour || cfg.ActivityRecordsTTL != 48*time.Hour {
		t.Fatalf("unexpected ttls %+v", cfg)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("unexpected log level %q", cfg.Log.Level)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("PRIZE_RECORDS_TTL", "90m")
	t.Setenv("ACTIVITY_CACHE_TTL", "not-a-duration")
	t.Setenv("LOG_MAX_SIZE_MB", "-1")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("expected port override, got %s", cfg.Port)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"k1:9092", "k2:9092"}) {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.PrizeRecordsTTL != 90*time.Minute {
		t.Fatalf("expected 90m, got %s", cfg.PrizeRecordsTTL)
	}
	if cfg.ActivityCacheTTL != 72*time.Hour {
		t.Fatalf("invalid duration must fall back, got %s", cfg.ActivityCacheTTL)
	}
	if cfg.Log.MaxSizeMB != 100 {
		t.Fatalf("invalid size must fall back, got %d", cfg.Log.MaxSizeMB)
	}
}
