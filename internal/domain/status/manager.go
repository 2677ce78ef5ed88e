// Package status applies activity, prize and user status transitions in
// priority order inside a single store transaction.
package status

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"lottery/internal/logger"
	"lottery/internal/model"
	"lottery/internal/observability/metrics"
	"lottery/internal/repository"
)

var (
	// ErrTransitionFailed wraps a persistence error raised while an operator
	// that needed to convert was writing its new status.
	ErrTransitionFailed = errors.New("status transition failed")
	// ErrRequiredNotConverted is returned when a required operator found
	// nothing to convert. The transaction is rolled back.
	ErrRequiredNotConverted = errors.New("required status operator did not convert")
)

// NotConvertedError names the required operator that found nothing to
// convert. It matches ErrRequiredNotConverted.
type NotConvertedError struct {
	Kind Kind
}

func (e *NotConvertedError) Error() string {
	return ErrRequiredNotConverted.Error() + ": " + string(e.Kind)
}

func (e *NotConvertedError) Unwrap() error { return ErrRequiredNotConverted }

// ActivityCache rebuilds the cached activity detail after a transition.
type ActivityCache interface {
	CacheActivity(ctx context.Context, activityID int64) error
}

// Manager runs the fixed operator chain.
type Manager struct {
	store     repository.TxRunner
	cache     ActivityCache
	operators []Operator
}

// NewManager wires the prize, user and activity operators.
func NewManager(store repository.TxRunner, cache ActivityCache) *Manager {
	ops := []Operator{prizeOperator{}, userOperator{}, activityOperator{}}
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Priority() < ops[j].Priority() })
	return &Manager{store: store, cache: cache, operators: ops}
}

// HandleEvent applies the forward transition and reports whether any
// operator converted. All writes share one transaction; priority 1
// operators finish before priority 2 operators are evaluated.
func (m *Manager) HandleEvent(ctx context.Context, tr ForwardTransition) (bool, error) {
	defer observe("status_handle_event", time.Now())
	t := tr.targets()
	var converted []Kind

	err := m.store.InTx(ctx, func(repo repository.Repository) error {
		converted = converted[:0]
		for _, op := range m.operators {
			need, err := op.NeedConvert(ctx, repo, t)
			if err != nil {
				return fmt.Errorf("check %s status: %w", op.Kind(), err)
			}
			if !need {
				if tr.requires(op.Kind()) {
					return &NotConvertedError{Kind: op.Kind()}
				}
				continue
			}
			if err := op.ConvertStatus(ctx, repo, t); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrTransitionFailed, op.Kind(), err)
			}
			converted = append(converted, op.Kind())
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if len(converted) == 0 {
		return false, nil
	}

	logger.InfoCtx(ctx, "status converted",
		zap.Int64("activity_id", tr.ActivityID),
		zap.Int64("prize_id", tr.PrizeID),
		zap.Any("kinds", converted))
	m.refresh(ctx, tr.ActivityID)
	return true, nil
}

// RollbackHandleEvent restores pre-draw states. Every operator converts
// regardless of NeedConvert and the activity cache is always refreshed.
// Rows that no longer exist are skipped.
func (m *Manager) RollbackHandleEvent(ctx context.Context, tr RollbackTransition) error {
	defer observe("status_rollback", time.Now())
	t := tr.targets()
	err := m.store.InTx(ctx, func(repo repository.Repository) error {
		for _, op := range m.operators {
			if err := op.ConvertStatus(ctx, repo, t); err != nil && !errors.Is(err, model.ErrNotFound) {
				return fmt.Errorf("%w: rollback %s: %w", ErrTransitionFailed, op.Kind(), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.refresh(ctx, tr.ActivityID)
	return nil
}

func (m *Manager) refresh(ctx context.Context, activityID int64) {
	if m.cache == nil || activityID == 0 {
		return
	}
	if err := m.cache.CacheActivity(ctx, activityID); err != nil {
		logger.WarnCtx(ctx, "refresh activity cache failed",
			zap.Int64("activity_id", activityID), zap.Error(err))
	}
}

func observe(step string, start time.Time) {
	metrics.ObserveConsumerProcessing(step, time.Since(start))
}
