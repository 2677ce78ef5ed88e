package draw

import (
	"context"
	"errors"
	"testing"

	"lottery/internal/model"
	redisClient "lottery/internal/redis"
)

type fakePublisher struct {
	published []Request
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, req Request) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, req)
	return "msg-1", nil
}

func TestSubmitDraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pub := &fakePublisher{}
	f.svc.publisher = pub

	id, err := f.svc.SubmitDraw(ctx, f.request(1, 10))
	if err != nil || id != "msg-1" {
		t.Fatalf("expected accepted message, got %q (err %v)", id, err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected one published request, got %d", len(pub.published))
	}
	if got := f.prizeStatus(t, 1); got != model.PrizeInit {
		t.Fatalf("submit must not process the draw, prize is %s", got)
	}

	bad := []Request{
		{},
		{ActivityID: f.activityID, PrizeID: 1, WinningTime: drawTime},
		{ActivityID: f.activityID, PrizeID: 1, Winners: []Winner{{UserID: 10}}},
		{ActivityID: f.activityID, PrizeID: 1, WinningTime: drawTime, Winners: []Winner{{UserID: 0}}},
	}
	for i, req := range bad {
		if _, err := f.svc.SubmitDraw(ctx, req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("case %d: expected ErrInvalidRequest, got %v", i, err)
		}
	}
	if len(pub.published) != 1 {
		t.Fatalf("invalid requests must not be published")
	}

	boom := errors.New("broker down")
	pub.err = boom
	if _, err := f.svc.SubmitDraw(ctx, f.request(1, 10)); !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestShowWinningRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	records, err := f.svc.ShowWinningRecords(ctx, f.activityID, 1)
	if err != nil || len(records) != 0 {
		t.Fatalf("expected no records, got %v (err %v)", records, err)
	}
	if f.mr.Exists(redisClient.PrizeRecordsKey(f.activityID, 1)) {
		t.Fatalf("empty results must not be cached")
	}

	if err := f.orch.HandleDraw(ctx, f.request(1, 10)); err != nil {
		t.Fatalf("draw: %v", err)
	}
	f.mr.Del(redisClient.PrizeRecordsKey(f.activityID, 1))

	records, err = f.svc.ShowWinningRecords(ctx, f.activityID, 1)
	if err != nil || len(records) != 1 || records[0].WinnerID != 10 {
		t.Fatalf("expected winner 10, got %v (err %v)", records, err)
	}
	if !f.mr.Exists(redisClient.PrizeRecordsKey(f.activityID, 1)) {
		t.Fatalf("read miss should repopulate the cache")
	}

	f.store.FailOn("ListWinningRecordsByPrize", errors.New("db down"))
	if records, err := f.svc.ShowWinningRecords(ctx, f.activityID, 1); err != nil || len(records) != 1 {
		t.Fatalf("expected cached records, got %v (err %v)", records, err)
	}

	if _, err := f.svc.ShowWinningRecords(ctx, 0, 1); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
