package status

import (
	"context"
	"errors"

	"lottery/internal/model"
	"lottery/internal/repository"
)

// Kind names the entity an operator transitions.
type Kind string

const (
	KindPrize    Kind = "prize"
	KindUser     Kind = "user"
	KindActivity Kind = "activity"
)

// Targets is the request-scoped input every operator reads. Zero ids or
// empty statuses mean "nothing to do" for the corresponding operator.
type Targets struct {
	ActivityID int64
	PrizeID    int64
	UserIDs    []int64

	ActivityStatus model.ActivityStatus
	PrizeStatus    model.PrizeStatus
	UserStatus     model.UserStatus
}

// Operator transitions one entity kind. Lower Priority runs first.
type Operator interface {
	Kind() Kind
	Priority() int
	NeedConvert(ctx context.Context, repo repository.Repository, t Targets) (bool, error)
	ConvertStatus(ctx context.Context, repo repository.Repository, t Targets) error
}

type prizeOperator struct{}

func (prizeOperator) Kind() Kind    { return KindPrize }
func (prizeOperator) Priority() int { return 1 }

func (prizeOperator) NeedConvert(ctx context.Context, repo repository.Repository, t Targets) (bool, error) {
	if t.ActivityID == 0 || t.PrizeID == 0 || t.PrizeStatus == "" {
		return false, nil
	}
	ap, err := repo.GetActivityPrize(ctx, t.ActivityID, t.PrizeID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ap.Status != t.PrizeStatus && ap.Status != model.PrizeCompleted, nil
}

func (prizeOperator) ConvertStatus(ctx context.Context, repo repository.Repository, t Targets) error {
	return repo.UpdateActivityPrizeStatus(ctx, t.ActivityID, t.PrizeID, t.PrizeStatus)
}

type userOperator struct{}

func (userOperator) Kind() Kind    { return KindUser }
func (userOperator) Priority() int { return 1 }

// NeedConvert holds only when every listed user is on the roster and none is
// already at the target or COMPLETED.
func (userOperator) NeedConvert(ctx context.Context, repo repository.Repository, t Targets) (bool, error) {
	if t.ActivityID == 0 || len(t.UserIDs) == 0 || t.UserStatus == "" {
		return false, nil
	}
	users, err := repo.ListActivityUsersByIDs(ctx, t.ActivityID, t.UserIDs)
	if err != nil {
		return false, err
	}
	if len(users) != len(uniqueIDs(t.UserIDs)) {
		return false, nil
	}
	for _, u := range users {
		if u.Status == t.UserStatus || u.Status == model.UserCompleted {
			return false, nil
		}
	}
	return true, nil
}

func (userOperator) ConvertStatus(ctx context.Context, repo repository.Repository, t Targets) error {
	return repo.UpdateActivityUserStatus(ctx, t.ActivityID, uniqueIDs(t.UserIDs), t.UserStatus)
}

type activityOperator struct{}

func (activityOperator) Kind() Kind    { return KindActivity }
func (activityOperator) Priority() int { return 2 }

// NeedConvert additionally requires that no prize of the activity is still
// INIT, so it must be evaluated after the prize operator has run.
func (activityOperator) NeedConvert(ctx context.Context, repo repository.Repository, t Targets) (bool, error) {
	if t.ActivityID == 0 || t.ActivityStatus == "" {
		return false, nil
	}
	a, err := repo.GetActivity(ctx, t.ActivityID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if a.Status == t.ActivityStatus || a.Status == model.ActivityCompleted {
		return false, nil
	}
	pending, err := repo.CountInitPrizes(ctx, t.ActivityID)
	if err != nil {
		return false, err
	}
	return pending == 0, nil
}

func (activityOperator) ConvertStatus(ctx context.Context, repo repository.Repository, t Targets) error {
	return repo.UpdateActivityStatus(ctx, t.ActivityID, t.ActivityStatus)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
