package draw

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"lottery/internal/domain/activity"
	"lottery/internal/domain/status"
	"lottery/internal/memstore"
	"lottery/internal/model"
	redisClient "lottery/internal/redis"
)

type fakeNotifier struct {
	mu      sync.Mutex
	batches [][]model.WinningRecord
}

func (f *fakeNotifier) NotifyWinners(_ context.Context, records []model.WinningRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, records)
}

type fixture struct {
	store      *memstore.Store
	mr         *miniredis.Miniredis
	orch       *Orchestrator
	svc        *Service
	notifier   *fakeNotifier
	activityID int64
}

var drawTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// newFixture seeds an activity with prizes 1 and 2 (amount 1 each) and
// users 10, 11 and 12.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := redisClient.New(mr.Addr())
	if err != nil {
		t.Fatalf("connect miniredis: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })

	store := memstore.New()
	store.SeedPrize(model.Prize{ID: 1, Name: "phone"})
	store.SeedPrize(model.Prize{ID: 2, Name: "watch"})
	for _, u := range []model.User{
		{ID: 10, UserName: "ann", Email: "ann@example.com", PhoneNumber: "100"},
		{ID: 11, UserName: "bob", Email: "bob@example.com", PhoneNumber: "101"},
		{ID: 12, UserName: "cat", Email: "cat@example.com", PhoneNumber: "102"},
	} {
		store.SeedUser(u)
	}
	aid := store.SeedActivity(
		model.Activity{Name: "spring", Status: model.ActivityRunning},
		[]model.ActivityPrize{
			{PrizeID: 1, Tier: model.FirstPrize, Amount: 1, Status: model.PrizeInit},
			{PrizeID: 2, Tier: model.SecondPrize, Amount: 1, Status: model.PrizeInit},
		},
		[]model.ActivityUser{
			{UserID: 10, UserName: "Ann", Status: model.UserInit},
			{UserID: 11, UserName: "Bob", Status: model.UserInit},
			{UserID: 12, UserName: "Cat", Status: model.UserInit},
		},
	)

	ttl := RecordTTL{Prize: 24 * time.Hour, Activity: 48 * time.Hour}
	activities := activity.NewService(store, rc, 72*time.Hour)
	engine := status.NewManager(store, activities)
	notifier := &fakeNotifier{}
	return &fixture{
		store:      store,
		mr:         mr,
		orch:       NewOrchestrator(store, engine, rc, ttl, notifier),
		svc:        NewService(store, nil, rc, ttl),
		notifier:   notifier,
		activityID: aid,
	}
}

func (f *fixture) request(prizeID int64, userIDs ...int64) Request {
	req := Request{ActivityID: f.activityID, PrizeID: prizeID, WinningTime: drawTime}
	for _, id := range userIDs {
		req.Winners = append(req.Winners, Winner{UserID: id})
	}
	return req
}

func (f *fixture) prizeStatus(t *testing.T, prizeID int64) model.PrizeStatus {
	t.Helper()
	ap, err := f.store.GetActivityPrize(context.Background(), f.activityID, prizeID)
	if err != nil {
		t.Fatalf("get activity prize: %v", err)
	}
	return ap.Status
}

func (f *fixture) activityStatus(t *testing.T) model.ActivityStatus {
	t.Helper()
	a, err := f.store.GetActivity(context.Background(), f.activityID)
	if err != nil {
		t.Fatalf("get activity: %v", err)
	}
	return a.Status
}

func (f *fixture) userStatus(t *testing.T, userID int64) model.UserStatus {
	t.Helper()
	users, err := f.store.ListActivityUsersByIDs(context.Background(), f.activityID, []int64{userID})
	if err != nil || len(users) != 1 {
		t.Fatalf("get activity user %d: %v", userID, err)
	}
	return users[0].Status
}

func (f *fixture) recordCount(t *testing.T, prizeID int64) int {
	t.Helper()
	n, err := f.store.CountWinningRecords(context.Background(), f.activityID, prizeID)
	if err != nil {
		t.Fatalf("count records: %v", err)
	}
	return n
}

func (f *fixture) cachedRecords(t *testing.T, key string) []model.WinningRecord {
	t.Helper()
	raw, err := f.mr.Get(key)
	if err != nil {
		t.Fatalf("cache key %s: %v", key, err)
	}
	var records []model.WinningRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		t.Fatalf("decode cache key %s: %v", key, err)
	}
	return records
}

func TestDrawFirstPrizeKeepsActivityRunning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.orch.HandleDraw(ctx, f.request(1, 10)); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := f.prizeStatus(t, 1); got != model.PrizeCompleted {
		t.Fatalf("prize 1: expected COMPLETED, got %s", got)
	}
	if got := f.userStatus(t, 10); got != model.UserCompleted {
		t.Fatalf("user 10: expected COMPLETED, got %s", got)
	}
	if got := f.activityStatus(t); got != model.ActivityRunning {
		t.Fatalf("activity: expected RUNNING, got %s", got)
	}

	records := f.cachedRecords(t, redisClient.PrizeRecordsKey(f.activityID, 1))
	if len(records) != 1 {
		t.Fatalf("expected 1 cached record, got %d", len(records))
	}
	r := records[0]
	if r.WinnerName != "Ann" || r.WinnerEmail != "ann@example.com" || r.PrizeName != "phone" ||
		r.PrizeTier != model.FirstPrize || r.ActivityName != "spring" || !r.WinningTime.Equal(drawTime) {
		t.Fatalf("unexpected record %+v", r)
	}
	if f.mr.Exists(redisClient.ActivityRecordsKey(f.activityID)) {
		t.Fatalf("activity record list must not be cached while running")
	}
	if len(f.notifier.batches) != 1 || len(f.notifier.batches[0]) != 1 {
		t.Fatalf("expected one notification batch, got %v", f.notifier.batches)
	}
}

func TestDrawLastPrizeCompletesActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.orch.HandleDraw(ctx, f.request(1, 10)); err != nil {
		t.Fatalf("draw prize 1: %v", err)
	}
	if err := f.orch.HandleDraw(ctx, f.request(2, 11)); err != nil {
		t.Fatalf("draw prize 2: %v", err)
	}
	if got := f.prizeStatus(t, 2); got != model.PrizeCompleted {
		t.Fatalf("prize 2: expected COMPLETED, got %s", got)
	}
	if got := f.activityStatus(t); got != model.ActivityCompleted {
		t.Fatalf("activity: expected COMPLETED, got %s", got)
	}
	all := f.cachedRecords(t, redisClient.ActivityRecordsKey(f.activityID))
	if len(all) != 2 {
		t.Fatalf("expected 2 cached activity records, got %d", len(all))
	}

	var detail activity.Detail
	raw, err := f.mr.Get(redisClient.ActivityKey(f.activityID))
	if err != nil {
		t.Fatalf("activity detail not cached: %v", err)
	}
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Status != model.ActivityCompleted {
		t.Fatalf("cached detail must be refreshed, got %s", detail.Status)
	}
}

func TestDrawValidation(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		setup  func(t *testing.T, f *fixture)
		req    func(f *fixture) Request
		reason error
	}{
		{
			name:   "too many winners",
			req:    func(f *fixture) Request { return f.request(1, 10, 11) },
			reason: ErrWinnerExceedsAmount,
		},
		{
			name:   "unknown prize",
			req:    func(f *fixture) Request { return f.request(9, 10) },
			reason: ErrActivityOrPrizeMissing,
		},
		{
			name: "unknown activity",
			req: func(f *fixture) Request {
				r := f.request(1, 10)
				r.ActivityID = 999
				return r
			},
			reason: ErrActivityOrPrizeMissing,
		},
		{
			name:   "winner not enrolled",
			req:    func(f *fixture) Request { return f.request(1, 77) },
			reason: ErrWinnerNotEnrolled,
		},
		{
			name: "duplicate winner",
			req: func(f *fixture) Request {
				r := f.request(1, 10)
				r.Winners = append(r.Winners, Winner{UserID: 10})
				return r
			},
			reason: ErrInvalidRequest,
		},
		{
			name: "activity completed",
			setup: func(t *testing.T, f *fixture) {
				if err := f.store.UpdateActivityStatus(context.Background(), f.activityID, model.ActivityCompleted); err != nil {
					t.Fatal(err)
				}
			},
			req:    func(f *fixture) Request { return f.request(1, 10) },
			reason: ErrActivityCompleted,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if tc.setup != nil {
				tc.setup(t, f)
			}
			err := f.orch.HandleDraw(ctx, tc.req(f))
			if !errors.Is(err, tc.reason) || !IsValidation(err) {
				t.Fatalf("expected validation error %v, got %v", tc.reason, err)
			}
			var p interface{ Permanent() bool }
			if !errors.As(err, &p) || !p.Permanent() {
				t.Fatalf("validation errors must be permanent")
			}
			if got := f.prizeStatus(t, 1); got != model.PrizeInit {
				t.Fatalf("prize must stay INIT, got %s", got)
			}
			if got := f.userStatus(t, 10); got != model.UserInit {
				t.Fatalf("user must stay INIT, got %s", got)
			}
			if n := f.recordCount(t, 1); n != 0 {
				t.Fatalf("expected no records, got %d", n)
			}
			if len(f.notifier.batches) != 0 {
				t.Fatalf("rejected draws must not notify")
			}
		})
	}
}

func TestDrawIsIdempotentOnceCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.orch.HandleDraw(ctx, f.request(1, 10)); err != nil {
		t.Fatalf("draw: %v", err)
	}
	for _, req := range []Request{f.request(1, 10), f.request(1, 11)} {
		err := f.orch.HandleDraw(ctx, req)
		if !errors.Is(err, ErrPrizeCompleted) {
			t.Fatalf("expected ErrPrizeCompleted, got %v", err)
		}
	}
	if n := f.recordCount(t, 1); n != 1 {
		t.Fatalf("expected exactly 1 record, got %d", n)
	}
	if got := f.userStatus(t, 11); got != model.UserInit {
		t.Fatalf("user 11 must stay INIT, got %s", got)
	}
}

// seedTwoWinnerPrize replaces the fixture activity with one whose second
// prize takes two winners.
func (f *fixture) seedTwoWinnerPrize() {
	f.activityID = f.store.SeedActivity(
		model.Activity{Name: "summer", Status: model.ActivityRunning},
		[]model.ActivityPrize{
			{PrizeID: 1, Tier: model.FirstPrize, Amount: 1, Status: model.PrizeInit},
			{PrizeID: 2, Tier: model.SecondPrize, Amount: 2, Status: model.PrizeInit},
		},
		[]model.ActivityUser{
			{UserID: 10, UserName: "Ann", Status: model.UserInit},
			{UserID: 11, UserName: "Bob", Status: model.UserInit},
		},
	)
}

func TestDrawRejectsWinnerOfAnotherPrize(t *testing.T) {
	f := newFixture(t)
	f.seedTwoWinnerPrize()
	ctx := context.Background()

	if err := f.orch.HandleDraw(ctx, f.request(1, 10)); err != nil {
		t.Fatalf("draw prize 1: %v", err)
	}
	err := f.orch.HandleDraw(ctx, f.request(2, 10, 11))
	if !errors.Is(err, ErrWinnerAlreadyWon) || !IsValidation(err) {
		t.Fatalf("expected ErrWinnerAlreadyWon, got %v", err)
	}
	var p interface{ Permanent() bool }
	if !errors.As(err, &p) || !p.Permanent() {
		t.Fatalf("rejection must be permanent")
	}
	if got := f.prizeStatus(t, 2); got != model.PrizeInit {
		t.Fatalf("prize 2 must stay INIT, got %s", got)
	}
	if got := f.userStatus(t, 11); got != model.UserInit {
		t.Fatalf("user 11 must stay INIT, got %s", got)
	}
	if got := f.userStatus(t, 10); got != model.UserCompleted {
		t.Fatalf("user 10 must keep its first prize, got %s", got)
	}
	if n := f.recordCount(t, 2); n != 0 {
		t.Fatalf("expected no records for prize 2, got %d", n)
	}
	if n := f.recordCount(t, 1); n != 1 {
		t.Fatalf("expected 1 record for prize 1, got %d", n)
	}

	// The prize stays drawable for the remaining users.
	if err := f.orch.HandleDraw(ctx, f.request(2, 11)); err != nil {
		t.Fatalf("draw prize 2: %v", err)
	}
}

// racingEngine reports that a winner was converted by a concurrent draw
// between validation and the status transition.
type racingEngine struct {
	StatusEngine
}

func (racingEngine) HandleEvent(context.Context, status.ForwardTransition) (bool, error) {
	return false, &status.NotConvertedError{Kind: status.KindUser}
}

func TestDrawLosingWinnerRace(t *testing.T) {
	f := newFixture(t)
	f.orch.engine = racingEngine{StatusEngine: f.orch.engine}

	err := f.orch.HandleDraw(context.Background(), f.request(1, 10))
	if !errors.Is(err, ErrWinnerAlreadyWon) || !IsValidation(err) {
		t.Fatalf("expected ErrWinnerAlreadyWon, got %v", err)
	}
	if got := f.prizeStatus(t, 1); got != model.PrizeInit {
		t.Fatalf("prize must stay INIT, got %s", got)
	}
}

func TestCompensationKeepsWinnersOfOtherPrizes(t *testing.T) {
	f := newFixture(t)
	f.seedTwoWinnerPrize()
	ctx := context.Background()

	if err := f.orch.HandleDraw(ctx, f.request(1, 10)); err != nil {
		t.Fatalf("draw prize 1: %v", err)
	}
	// State left by a prize 2 draw for [10 11] that failed after converting.
	if err := f.store.UpdateActivityPrizeStatus(ctx, f.activityID, 2, model.PrizeCompleted); err != nil {
		t.Fatal(err)
	}
	if err := f.store.UpdateActivityUserStatus(ctx, f.activityID, []int64{11}, model.UserCompleted); err != nil {
		t.Fatal(err)
	}

	if err := f.orch.compensate(ctx, f.request(2, 10, 11)); err != nil {
		t.Fatalf("compensate: %v", err)
	}
	if got := f.prizeStatus(t, 2); got != model.PrizeInit {
		t.Fatalf("prize 2: expected INIT, got %s", got)
	}
	if got := f.userStatus(t, 11); got != model.UserInit {
		t.Fatalf("user 11: expected INIT, got %s", got)
	}
	if got := f.userStatus(t, 10); got != model.UserCompleted {
		t.Fatalf("user 10 won prize 1 and must stay COMPLETED, got %s", got)
	}
	if n := f.recordCount(t, 1); n != 1 {
		t.Fatalf("prize 1 records must survive, got %d", n)
	}
}

// interrupt leaves the statuses a draw commits without its winning records,
// as after a crash between the transition and the insert.
func (f *fixture) interrupt(t *testing.T, prizeID int64, userIDs ...int64) {
	t.Helper()
	ctx := context.Background()
	if err := f.store.UpdateActivityPrizeStatus(ctx, f.activityID, prizeID, model.PrizeCompleted); err != nil {
		t.Fatal(err)
	}
	if err := f.store.UpdateActivityUserStatus(ctx, f.activityID, userIDs, model.UserCompleted); err != nil {
		t.Fatal(err)
	}
}

func TestRedeliveryRepairsInterruptedDraw(t *testing.T) {
	t.Run("first prize", func(t *testing.T) {
		f := newFixture(t)
		f.interrupt(t, 1, 10)

		if err := f.orch.HandleDraw(context.Background(), f.request(1, 10)); err != nil {
			t.Fatalf("redelivery: %v", err)
		}
		if n := f.recordCount(t, 1); n != 1 {
			t.Fatalf("expected 1 record, got %d", n)
		}
		if got := f.prizeStatus(t, 1); got != model.PrizeCompleted {
			t.Fatalf("prize: expected COMPLETED, got %s", got)
		}
		if got := f.userStatus(t, 10); got != model.UserCompleted {
			t.Fatalf("user: expected COMPLETED, got %s", got)
		}
		if got := f.activityStatus(t); got != model.ActivityRunning {
			t.Fatalf("activity: expected RUNNING, got %s", got)
		}
		if len(f.notifier.batches) != 1 {
			t.Fatalf("expected one notification batch, got %d", len(f.notifier.batches))
		}
	})

	t.Run("last prize", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		if err := f.orch.HandleDraw(ctx, f.request(1, 10)); err != nil {
			t.Fatalf("draw prize 1: %v", err)
		}
		f.interrupt(t, 2, 11)
		if err := f.store.UpdateActivityStatus(ctx, f.activityID, model.ActivityCompleted); err != nil {
			t.Fatal(err)
		}

		if err := f.orch.HandleDraw(ctx, f.request(2, 11)); err != nil {
			t.Fatalf("redelivery: %v", err)
		}
		if n := f.recordCount(t, 2); n != 1 {
			t.Fatalf("expected 1 record for prize 2, got %d", n)
		}
		if got := f.activityStatus(t); got != model.ActivityCompleted {
			t.Fatalf("activity: expected COMPLETED, got %s", got)
		}
		all := f.cachedRecords(t, redisClient.ActivityRecordsKey(f.activityID))
		if len(all) != 2 {
			t.Fatalf("expected 2 cached activity records, got %d", len(all))
		}
	})

	t.Run("other winners stay rejected", func(t *testing.T) {
		f := newFixture(t)
		f.interrupt(t, 1, 10)

		err := f.orch.HandleDraw(context.Background(), f.request(1, 11))
		if !errors.Is(err, ErrPrizeCompleted) {
			t.Fatalf("expected ErrPrizeCompleted, got %v", err)
		}
		if got := f.prizeStatus(t, 1); got != model.PrizeCompleted {
			t.Fatalf("prize must be left alone, got %s", got)
		}
		if got := f.userStatus(t, 10); got != model.UserCompleted {
			t.Fatalf("user 10 must be left alone, got %s", got)
		}
		if got := f.userStatus(t, 11); got != model.UserInit {
			t.Fatalf("user 11 must stay INIT, got %s", got)
		}
	})
}

func TestDrawPersistFailureIsCompensated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("insert failed")
	f.store.FailOn("InsertWinningRecords", boom)

	err := f.orch.HandleDraw(ctx, f.request(1, 10))
	if !errors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	if IsValidation(err) {
		t.Fatalf("processing failure must not be reported as validation")
	}
	if got := f.prizeStatus(t, 1); got != model.PrizeInit {
		t.Fatalf("prize must be rolled back to INIT, got %s", got)
	}
	if got := f.userStatus(t, 10); got != model.UserInit {
		t.Fatalf("user must be rolled back to INIT, got %s", got)
	}
	if got := f.activityStatus(t); got != model.ActivityRunning {
		t.Fatalf("activity must stay RUNNING, got %s", got)
	}
	if n := f.recordCount(t, 1); n != 0 {
		t.Fatalf("expected no records, got %d", n)
	}
	if len(f.notifier.batches) != 0 {
		t.Fatalf("failed draws must not notify")
	}

	// The redelivered message succeeds once the store recovers.
	f.store.FailOn("InsertWinningRecords", nil)
	if err := f.orch.HandleDraw(ctx, f.request(1, 10)); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if n := f.recordCount(t, 1); n != 1 {
		t.Fatalf("expected 1 record after redelivery, got %d", n)
	}
}

func TestDrawConvertFailureCommitsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("lock timeout")
	f.store.FailOn("UpdateActivityUserStatus", boom)

	err := f.orch.HandleDraw(ctx, f.request(1, 10))
	if !errors.Is(err, status.ErrTransitionFailed) || !errors.Is(err, boom) {
		t.Fatalf("expected transition failure, got %v", err)
	}
	f.store.FailOn("UpdateActivityUserStatus", nil)
	if got := f.prizeStatus(t, 1); got != model.PrizeInit {
		t.Fatalf("prize must stay INIT, got %s", got)
	}
}

func TestCompensationRemovesCommittedDraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.orch.HandleDraw(ctx, f.request(1, 10)); err != nil {
		t.Fatalf("draw prize 1: %v", err)
	}
	if err := f.orch.HandleDraw(ctx, f.request(2, 11)); err != nil {
		t.Fatalf("draw prize 2: %v", err)
	}

	if err := f.orch.compensate(ctx, f.request(2, 11)); err != nil {
		t.Fatalf("compensate: %v", err)
	}
	if got := f.prizeStatus(t, 2); got != model.PrizeInit {
		t.Fatalf("prize 2: expected INIT, got %s", got)
	}
	if got := f.userStatus(t, 11); got != model.UserInit {
		t.Fatalf("user 11: expected INIT, got %s", got)
	}
	if got := f.activityStatus(t); got != model.ActivityRunning {
		t.Fatalf("activity: expected RUNNING, got %s", got)
	}
	if n := f.recordCount(t, 2); n != 0 {
		t.Fatalf("expected no records for prize 2, got %d", n)
	}
	if n := f.recordCount(t, 1); n != 1 {
		t.Fatalf("prize 1 records must survive, got %d", n)
	}
	for _, key := range []string{
		redisClient.PrizeRecordsKey(f.activityID, 2),
		redisClient.ActivityRecordsKey(f.activityID),
	} {
		if f.mr.Exists(key) {
			t.Fatalf("cache key %s must be invalidated", key)
		}
	}

	// Nothing left to undo.
	if err := f.orch.compensate(ctx, f.request(2, 11)); err != nil {
		t.Fatalf("second compensate: %v", err)
	}
}

func TestConcurrentDrawsOnSamePrize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i, uid := range []int64{10, 11, 12} {
		wg.Add(1)
		go func(i int, uid int64) {
			defer wg.Done()
			errs[i] = f.orch.HandleDraw(ctx, f.request(1, uid))
		}(i, uid)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrPrizeCompleted), errors.Is(err, ErrPrizeAlreadyDrawn):
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one winning draw, got %d", won)
	}
	if n := f.recordCount(t, 1); n != 1 {
		t.Fatalf("expected 1 record, got %d", n)
	}
}

func TestCachedRecordsMatchStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.orch.HandleDraw(ctx, f.request(1, 10)); err != nil {
		t.Fatalf("draw prize 1: %v", err)
	}
	// Warm the activity-level list while the activity is still running.
	if _, err := f.svc.ShowWinningRecords(ctx, f.activityID, 0); err != nil {
		t.Fatalf("show: %v", err)
	}
	if err := f.orch.HandleDraw(ctx, f.request(2, 11, 12)); !errors.Is(err, ErrWinnerExceedsAmount) {
		t.Fatalf("expected ErrWinnerExceedsAmount, got %v", err)
	}
	if err := f.orch.HandleDraw(ctx, f.request(2, 12)); err != nil {
		t.Fatalf("draw prize 2: %v", err)
	}

	for _, prizeID := range []int64{0, 1, 2} {
		cached, err := f.svc.ShowWinningRecords(ctx, f.activityID, prizeID)
		if err != nil {
			t.Fatalf("show prize %d: %v", prizeID, err)
		}
		var fresh []model.WinningRecord
		if prizeID == 0 {
			fresh, err = f.store.ListWinningRecords(ctx, f.activityID)
		} else {
			fresh, err = f.store.ListWinningRecordsByPrize(ctx, f.activityID, prizeID)
		}
		if err != nil {
			t.Fatalf("store prize %d: %v", prizeID, err)
		}
		if got, want := winnerIDs(cached), winnerIDs(fresh); !equalIDs(got, want) {
			t.Fatalf("prize %d: cached winners %v, store winners %v", prizeID, got, want)
		}
	}
}

func winnerIDs(records []model.WinningRecord) []int64 {
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.WinnerID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
