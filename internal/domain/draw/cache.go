package draw

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"lottery/internal/logger"
	"lottery/internal/model"
	redisClient "lottery/internal/redis"
)

// Cache is the subset of the Redis client used for winning records.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RecordTTL sets how long cached record lists live. Per-prize lists are
// written while an activity is still being drawn, so they expire sooner.
type RecordTTL struct {
	Prize    time.Duration
	Activity time.Duration
}

// recordCache stores winning-record lists. Every operation is best effort:
// failures are logged and never returned.
type recordCache struct {
	cache Cache
	ttl   RecordTTL
}

func (c recordCache) key(activityID, prizeID int64) (string, time.Duration) {
	if prizeID > 0 {
		return redisClient.PrizeRecordsKey(activityID, prizeID), c.ttl.Prize
	}
	return redisClient.ActivityRecordsKey(activityID), c.ttl.Activity
}

func (c recordCache) save(ctx context.Context, activityID, prizeID int64, records []model.WinningRecord) {
	key, ttl := c.key(activityID, prizeID)
	raw, err := json.Marshal(records)
	if err == nil {
		err = c.cache.Set(ctx, key, string(raw), ttl)
	}
	if err != nil {
		logger.WarnCtx(ctx, "write winning records cache failed", zap.String("key", key), zap.Error(err))
	}
}

func (c recordCache) load(ctx context.Context, activityID, prizeID int64) ([]model.WinningRecord, bool) {
	key, _ := c.key(activityID, prizeID)
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redisClient.ErrMiss) {
			logger.WarnCtx(ctx, "read winning records cache failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var records []model.WinningRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		logger.WarnCtx(ctx, "decode winning records cache failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return records, true
}

// drop removes the per-prize and per-activity lists.
func (c recordCache) drop(ctx context.Context, activityID, prizeID int64) {
	keys := []string{redisClient.ActivityRecordsKey(activityID)}
	if prizeID > 0 {
		keys = append(keys, redisClient.PrizeRecordsKey(activityID, prizeID))
	}
	if err := c.cache.Del(ctx, keys...); err != nil {
		logger.WarnCtx(ctx, "invalidate winning records cache failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
