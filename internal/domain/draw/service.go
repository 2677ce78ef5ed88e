// Package draw accepts draw requests, processes them off the queue and
// serves the resulting winning records.
package draw

import (
	"context"

	"go.uber.org/zap"

	"lottery/internal/logger"
	"lottery/internal/model"
	"lottery/internal/repository"
)

// Publisher hands a request to the transport and returns its message id.
type Publisher interface {
	Publish(ctx context.Context, req Request) (string, error)
}

// Service is the request-accept side of the draw pipeline.
type Service struct {
	store     repository.Repository
	publisher Publisher
	records   recordCache
}

// NewService wires dependencies.
func NewService(store repository.Repository, publisher Publisher, cache Cache, ttl RecordTTL) *Service {
	return &Service{store: store, publisher: publisher, records: recordCache{cache: cache, ttl: ttl}}
}

// SubmitDraw checks the request shape and enqueues it. It never waits for
// the draw to be processed.
func (s *Service) SubmitDraw(ctx context.Context, req Request) (string, error) {
	if err := req.check(); err != nil {
		return "", err
	}
	id, err := s.publisher.Publish(ctx, req)
	if err != nil {
		return "", err
	}
	logger.InfoCtx(ctx, "draw request accepted",
		zap.String("message_id", id),
		zap.Int64("activity_id", req.ActivityID),
		zap.Int64("prize_id", req.PrizeID),
		zap.Int("winners", len(req.Winners)))
	return id, nil
}

// ShowWinningRecords returns the winners of one prize, or of the whole
// activity when prizeID is zero. Misses are filled from the store.
func (s *Service) ShowWinningRecords(ctx context.Context, activityID, prizeID int64) ([]model.WinningRecord, error) {
	if activityID <= 0 {
		return nil, invalid(ErrInvalidRequest, "activity_id is required")
	}
	if records, ok := s.records.load(ctx, activityID, prizeID); ok {
		return records, nil
	}

	var (
		records []model.WinningRecord
		err     error
	)
	if prizeID > 0 {
		records, err = s.store.ListWinningRecordsByPrize(ctx, activityID, prizeID)
	} else {
		records, err = s.store.ListWinningRecords(ctx, activityID)
	}
	if err != nil {
		return nil, err
	}
	// An empty list may belong to a draw still in flight.
	if len(records) > 0 {
		s.records.save(ctx, activityID, prizeID, records)
	}
	return records, nil
}
