package memstore

import (
	"context"

	"lottery/internal/model"
)

// The methods below expose the view operations on the committed state.

func (s *Store) GetActivity(ctx context.Context, activityID int64) (a *model.Activity, err error) {
	err = s.run(func(v *view) error { a, err = v.GetActivity(ctx, activityID); return err })
	return a, err
}

func (s *Store) InsertActivity(ctx context.Context, activity *model.Activity) (id int64, err error) {
	err = s.run(func(v *view) error { id, err = v.InsertActivity(ctx, activity); return err })
	return id, err
}

func (s *Store) UpdateActivityStatus(ctx context.Context, activityID int64, status model.ActivityStatus) error {
	return s.run(func(v *view) error { return v.UpdateActivityStatus(ctx, activityID, status) })
}

func (s *Store) GetPrize(ctx context.Context, prizeID int64) (p *model.Prize, err error) {
	err = s.run(func(v *view) error { p, err = v.GetPrize(ctx, prizeID); return err })
	return p, err
}

func (s *Store) ListPrizesByIDs(ctx context.Context, prizeIDs []int64) (out []model.Prize, err error) {
	err = s.run(func(v *view) error { out, err = v.ListPrizesByIDs(ctx, prizeIDs); return err })
	return out, err
}

func (s *Store) InsertPrize(ctx context.Context, prize *model.Prize) (id int64, err error) {
	err = s.run(func(v *view) error { id, err = v.InsertPrize(ctx, prize); return err })
	return id, err
}

func (s *Store) GetActivityPrize(ctx context.Context, activityID, prizeID int64) (ap *model.ActivityPrize, err error) {
	err = s.run(func(v *view) error { ap, err = v.GetActivityPrize(ctx, activityID, prizeID); return err })
	return ap, err
}

func (s *Store) ListActivityPrizes(ctx context.Context, activityID int64) (out []model.ActivityPrize, err error) {
	err = s.run(func(v *view) error { out, err = v.ListActivityPrizes(ctx, activityID); return err })
	return out, err
}

func (s *Store) CountInitPrizes(ctx context.Context, activityID int64) (n int, err error) {
	err = s.run(func(v *view) error { n, err = v.CountInitPrizes(ctx, activityID); return err })
	return n, err
}

func (s *Store) InsertActivityPrizes(ctx context.Context, prizes []model.ActivityPrize) error {
	return s.run(func(v *view) error { return v.InsertActivityPrizes(ctx, prizes) })
}

func (s *Store) UpdateActivityPrizeStatus(ctx context.Context, activityID, prizeID int64, status model.PrizeStatus) error {
	return s.run(func(v *view) error { return v.UpdateActivityPrizeStatus(ctx, activityID, prizeID, status) })
}

func (s *Store) ListActivityUsers(ctx context.Context, activityID int64) (out []model.ActivityUser, err error) {
	err = s.run(func(v *view) error { out, err = v.ListActivityUsers(ctx, activityID); return err })
	return out, err
}

func (s *Store) ListActivityUsersByIDs(ctx context.Context, activityID int64, userIDs []int64) (out []model.ActivityUser, err error) {
	err = s.run(func(v *view) error { out, err = v.ListActivityUsersByIDs(ctx, activityID, userIDs); return err })
	return out, err
}

func (s *Store) InsertActivityUsers(ctx context.Context, users []model.ActivityUser) error {
	return s.run(func(v *view) error { return v.InsertActivityUsers(ctx, users) })
}

func (s *Store) UpdateActivityUserStatus(ctx context.Context, activityID int64, userIDs []int64, status model.UserStatus) error {
	return s.run(func(v *view) error { return v.UpdateActivityUserStatus(ctx, activityID, userIDs, status) })
}

func (s *Store) ListUsersByIDs(ctx context.Context, userIDs []int64) (out []model.User, err error) {
	err = s.run(func(v *view) error { out, err = v.ListUsersByIDs(ctx, userIDs); return err })
	return out, err
}

func (s *Store) InsertWinningRecords(ctx context.Context, records []model.WinningRecord) error {
	return s.run(func(v *view) error { return v.InsertWinningRecords(ctx, records) })
}

func (s *Store) ListWinningRecords(ctx context.Context, activityID int64) (out []model.WinningRecord, err error) {
	err = s.run(func(v *view) error { out, err = v.ListWinningRecords(ctx, activityID); return err })
	return out, err
}

func (s *Store) ListWinningRecordsByPrize(ctx context.Context, activityID, prizeID int64) (out []model.WinningRecord, err error) {
	err = s.run(func(v *view) error { out, err = v.ListWinningRecordsByPrize(ctx, activityID, prizeID); return err })
	return out, err
}

func (s *Store) CountWinningRecords(ctx context.Context, activityID, prizeID int64) (n int, err error) {
	err = s.run(func(v *view) error { n, err = v.CountWinningRecords(ctx, activityID, prizeID); return err })
	return n, err
}

func (s *Store) DeleteWinningRecords(ctx context.Context, activityID, prizeID int64, winnerIDs []int64) error {
	return s.run(func(v *view) error { return v.DeleteWinningRecords(ctx, activityID, prizeID, winnerIDs) })
}
