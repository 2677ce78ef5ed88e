package draw

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"lottery/internal/domain/status"
	"lottery/internal/logger"
	"lottery/internal/model"
	"lottery/internal/observability/metrics"
	"lottery/internal/repository"
)

// compensationTimeout bounds the rollback that runs after a failed draw.
// Compensation runs on a context detached from the caller's cancellation.
const compensationTimeout = 30 * time.Second

// StatusEngine applies forward and rollback status transitions.
type StatusEngine interface {
	HandleEvent(ctx context.Context, tr status.ForwardTransition) (bool, error)
	RollbackHandleEvent(ctx context.Context, tr status.RollbackTransition) error
}

// Notifier schedules winner notifications. It must not block and must not
// report delivery failures to the caller.
type Notifier interface {
	NotifyWinners(ctx context.Context, records []model.WinningRecord)
}

// Orchestrator runs dequeued draw requests.
type Orchestrator struct {
	store    repository.Store
	engine   StatusEngine
	records  recordCache
	notifier Notifier
}

// NewOrchestrator wires dependencies. notifier may be nil.
func NewOrchestrator(store repository.Store, engine StatusEngine, cache Cache, ttl RecordTTL, notifier Notifier) *Orchestrator {
	return &Orchestrator{
		store:    store,
		engine:   engine,
		records:  recordCache{cache: cache, ttl: ttl},
		notifier: notifier,
	}
}

// HandleDraw validates the request, converts statuses, persists and caches
// the winning records and schedules notifications. A failure after the
// status conversion was attempted is compensated before it is returned.
// Validation failures are returned as *ValidationError.
func (o *Orchestrator) HandleDraw(ctx context.Context, req Request) error {
	start := time.Now()
	defer func() { metrics.ObserveConsumerProcessing("total", time.Since(start)) }()

	act, ap, err := o.validate(ctx, req)
	if errors.Is(err, errInterrupted) {
		act, ap, err = o.repair(ctx, req)
	}
	if err != nil {
		if IsValidation(err) {
			metrics.RecordDraw(metrics.DrawRejected)
			logger.WarnCtx(ctx, "draw request rejected", drawFields(req, zap.Error(err))...)
		} else {
			metrics.RecordDraw(metrics.DrawFailed)
		}
		return err
	}

	records, err := o.process(ctx, req, act, ap)
	if err != nil {
		if IsValidation(err) {
			metrics.RecordDraw(metrics.DrawRejected)
			logger.WarnCtx(ctx, "draw request rejected", drawFields(req, zap.Error(err))...)
			return err
		}
		logger.ErrorCtx(ctx, "draw processing failed, compensating", drawFields(req, zap.Error(err))...)
		if cerr := o.compensate(ctx, req); cerr != nil {
			metrics.RecordDraw(metrics.DrawFailed)
			return errors.Join(err, cerr)
		}
		metrics.RecordDraw(metrics.DrawCompensated)
		return err
	}

	metrics.RecordDraw(metrics.DrawSuccess)
	logger.InfoCtx(ctx, "draw recorded", drawFields(req, zap.Int("records", len(records)))...)
	if o.notifier != nil {
		o.notifier.NotifyWinners(ctx, records)
	}
	return nil
}

func (o *Orchestrator) validate(ctx context.Context, req Request) (*model.Activity, *model.ActivityPrize, error) {
	defer observe("validate", time.Now())
	if err := req.check(); err != nil {
		return nil, nil, err
	}

	ap, err := o.store.GetActivityPrize(ctx, req.ActivityID, req.PrizeID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil, invalid(ErrActivityOrPrizeMissing, "activity %d prize %d", req.ActivityID, req.PrizeID)
	}
	if err != nil {
		return nil, nil, err
	}
	act, err := o.store.GetActivity(ctx, req.ActivityID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil, invalid(ErrActivityOrPrizeMissing, "activity %d", req.ActivityID)
	}
	if err != nil {
		return nil, nil, err
	}

	if int64(len(req.Winners)) > ap.Amount {
		return nil, nil, invalid(ErrWinnerExceedsAmount, "%d winners for amount %d", len(req.Winners), ap.Amount)
	}
	if ap.Status == model.PrizeCompleted {
		interrupted, err := o.interrupted(ctx, req)
		if err != nil {
			return nil, nil, err
		}
		if interrupted {
			return nil, nil, errInterrupted
		}
		return nil, nil, invalid(ErrPrizeCompleted, "activity %d prize %d", req.ActivityID, req.PrizeID)
	}
	if act.Status == model.ActivityCompleted {
		return nil, nil, invalid(ErrActivityCompleted, "activity %d", act.ID)
	}

	enrolled, err := o.store.ListActivityUsersByIDs(ctx, req.ActivityID, req.WinnerIDs())
	if err != nil {
		return nil, nil, err
	}
	if len(enrolled) != len(req.Winners) {
		return nil, nil, invalid(ErrWinnerNotEnrolled, "%d of %d winners enrolled", len(enrolled), len(req.Winners))
	}
	for _, u := range enrolled {
		if u.Status != model.UserInit {
			return nil, nil, invalid(ErrWinnerAlreadyWon, "user %d is %s", u.UserID, u.Status)
		}
	}
	return act, ap, nil
}

// interrupted reports whether a COMPLETED prize carries exactly the state
// this request's own status transition leaves behind: no winning records
// for the prize, and every winner COMPLETED without a record anywhere in the
// activity. That only happens when a previous delivery of the request
// stopped between the transition and the record insert.
func (o *Orchestrator) interrupted(ctx context.Context, req Request) (bool, error) {
	n, err := o.store.CountWinningRecords(ctx, req.ActivityID, req.PrizeID)
	if err != nil || n > 0 {
		return false, err
	}
	ids := req.WinnerIDs()
	users, err := o.store.ListActivityUsersByIDs(ctx, req.ActivityID, ids)
	if err != nil {
		return false, err
	}
	if len(users) != len(ids) {
		return false, nil
	}
	for _, u := range users {
		if u.Status != model.UserCompleted {
			return false, nil
		}
	}
	holders, err := o.prizeHolders(ctx, req.ActivityID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if _, ok := holders[id]; ok {
			return false, nil
		}
	}
	return true, nil
}

// repair rolls back the statuses left by an interrupted delivery and
// validates the request again so it can be processed from the start.
func (o *Orchestrator) repair(ctx context.Context, req Request) (*model.Activity, *model.ActivityPrize, error) {
	logger.WarnCtx(ctx, "draw was interrupted before its records were written, rolling back", drawFields(req)...)
	if err := o.compensate(ctx, req); err != nil {
		return nil, nil, fmt.Errorf("repair interrupted draw: %w", err)
	}
	return o.validate(ctx, req)
}

// prizeHolders maps every user with a winning record in the activity to the
// prize it won.
func (o *Orchestrator) prizeHolders(ctx context.Context, activityID int64) (map[int64]int64, error) {
	records, err := o.store.ListWinningRecords(ctx, activityID)
	if err != nil {
		return nil, err
	}
	holders := make(map[int64]int64, len(records))
	for _, r := range records {
		holders[r.WinnerID] = r.PrizeID
	}
	return holders, nil
}

// process runs the convert, persist and cache steps.
func (o *Orchestrator) process(ctx context.Context, req Request, act *model.Activity, ap *model.ActivityPrize) ([]model.WinningRecord, error) {
	start := time.Now()
	changed, err := o.engine.HandleEvent(ctx, status.DrawCompleted(req.ActivityID, req.PrizeID, req.WinnerIDs()))
	observe("convert", start)
	var nc *status.NotConvertedError
	if errors.As(err, &nc) && nc.Kind == status.KindUser {
		return nil, invalid(ErrWinnerAlreadyWon, "a winner was drawn by a concurrent request")
	}
	if errors.Is(err, status.ErrRequiredNotConverted) || (err == nil && !changed) {
		return nil, invalid(ErrPrizeAlreadyDrawn, "activity %d prize %d", req.ActivityID, req.PrizeID)
	}
	if err != nil {
		return nil, err
	}

	records, err := o.buildRecords(ctx, req, act, ap)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	err = o.store.InTx(ctx, func(repo repository.Repository) error {
		return repo.InsertWinningRecords(ctx, records)
	})
	observe("persist", start)
	if err != nil {
		return nil, fmt.Errorf("insert winning records: %w", err)
	}

	o.cacheRecords(ctx, req)
	return records, nil
}

func (o *Orchestrator) buildRecords(ctx context.Context, req Request, act *model.Activity, ap *model.ActivityPrize) ([]model.WinningRecord, error) {
	prize, err := o.store.GetPrize(ctx, req.PrizeID)
	if err != nil {
		return nil, fmt.Errorf("load prize %d: %w", req.PrizeID, err)
	}
	ids := req.WinnerIDs()
	users, err := o.store.ListUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load winners: %w", err)
	}
	byID := make(map[int64]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	roster, err := o.store.ListActivityUsersByIDs(ctx, req.ActivityID, ids)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	rosterName := make(map[int64]string, len(roster))
	for _, au := range roster {
		rosterName[au.UserID] = au.UserName
	}

	records := make([]model.WinningRecord, 0, len(req.Winners))
	for _, w := range req.Winners {
		u := byID[w.UserID]
		name := strings.TrimSpace(w.UserName)
		if name == "" {
			name = rosterName[w.UserID]
		}
		if name == "" {
			name = u.UserName
		}
		records = append(records, model.WinningRecord{
			WinnerID:     w.UserID,
			WinnerName:   name,
			WinnerEmail:  u.Email,
			WinnerPhone:  u.PhoneNumber,
			ActivityID:   act.ID,
			ActivityName: act.Name,
			PrizeID:      prize.ID,
			PrizeName:    prize.Name,
			PrizeTier:    ap.Tier,
			WinningTime:  req.WinningTime,
		})
	}
	return records, nil
}

// cacheRecords rebuilds the per-prize list from the store and, once the
// activity is completed, the full activity list. Otherwise the activity list
// is invalidated so readers rebuild it from the store.
func (o *Orchestrator) cacheRecords(ctx context.Context, req Request) {
	defer observe("cache", time.Now())
	prizeRecords, err := o.store.ListWinningRecordsByPrize(ctx, req.ActivityID, req.PrizeID)
	if err != nil {
		logger.WarnCtx(ctx, "list prize records for cache failed", drawFields(req, zap.Error(err))...)
		o.records.drop(ctx, req.ActivityID, req.PrizeID)
		return
	}
	o.records.save(ctx, req.ActivityID, req.PrizeID, prizeRecords)

	act, err := o.store.GetActivity(ctx, req.ActivityID)
	if err != nil {
		logger.WarnCtx(ctx, "reload activity for cache failed", drawFields(req, zap.Error(err))...)
		o.records.drop(ctx, req.ActivityID, 0)
		return
	}
	if act.Status != model.ActivityCompleted {
		o.records.drop(ctx, req.ActivityID, 0)
		return
	}
	all, err := o.store.ListWinningRecords(ctx, req.ActivityID)
	if err != nil {
		logger.WarnCtx(ctx, "list activity records for cache failed", drawFields(req, zap.Error(err))...)
		o.records.drop(ctx, req.ActivityID, 0)
		return
	}
	o.records.save(ctx, req.ActivityID, 0, all)
}

// compensate undoes whatever the failed attempt committed. The prize status
// is the witness: prize and user transitions commit in one transaction, so
// a prize still INIT means nothing was applied.
func (o *Orchestrator) compensate(ctx context.Context, req Request) error {
	defer observe("compensate", time.Now())
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	ap, err := o.store.GetActivityPrize(ctx, req.ActivityID, req.PrizeID)
	if err != nil {
		logger.ErrorCtx(ctx, "compensation: read prize status failed", drawFields(req, zap.Error(err))...)
		return fmt.Errorf("compensation: read prize status: %w", err)
	}
	if ap.Status != model.PrizeCompleted {
		logger.InfoCtx(ctx, "compensation: status transition not committed", drawFields(req)...)
		return nil
	}

	// Winners holding another prize belong to a committed draw.
	holders, err := o.prizeHolders(ctx, req.ActivityID)
	if err != nil {
		logger.ErrorCtx(ctx, "compensation: list winning records failed", drawFields(req, zap.Error(err))...)
		return fmt.Errorf("compensation: list winning records: %w", err)
	}
	userIDs := make([]int64, 0, len(req.Winners))
	for _, id := range req.WinnerIDs() {
		if pid, ok := holders[id]; ok && pid != req.PrizeID {
			continue
		}
		userIDs = append(userIDs, id)
	}

	if err := o.engine.RollbackHandleEvent(ctx, status.RollbackTransition{
		ActivityID: req.ActivityID,
		PrizeID:    req.PrizeID,
		UserIDs:    userIDs,
	}); err != nil {
		logger.ErrorCtx(ctx, "compensation: status rollback failed", drawFields(req, zap.Error(err))...)
		return fmt.Errorf("compensation: rollback status: %w", err)
	}

	n, err := o.store.CountWinningRecords(ctx, req.ActivityID, req.PrizeID)
	if err != nil {
		logger.ErrorCtx(ctx, "compensation: count winning records failed", drawFields(req, zap.Error(err))...)
		return fmt.Errorf("compensation: count winning records: %w", err)
	}
	if n > 0 {
		if err := o.store.DeleteWinningRecords(ctx, req.ActivityID, req.PrizeID, nil); err != nil {
			logger.ErrorCtx(ctx, "compensation: delete winning records failed", drawFields(req, zap.Error(err))...)
			return fmt.Errorf("compensation: delete winning records: %w", err)
		}
	}
	o.records.drop(ctx, req.ActivityID, req.PrizeID)
	logger.InfoCtx(ctx, "compensation finished", drawFields(req, zap.Int("deleted_records", n))...)
	return nil
}

func drawFields(req Request, extra ...zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.Int64("activity_id", req.ActivityID),
		zap.Int64("prize_id", req.PrizeID),
	}, extra...)
}

func observe(step string, start time.Time) {
	metrics.ObserveConsumerProcessing(step, time.Since(start))
}
