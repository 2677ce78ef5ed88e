package repository

import (
	"context"

	"lottery/internal/model"
)

// Repository is the store contract consumed by the draw pipeline and the
// activity services. Single-row getters return model.ErrNotFound when the
// row is missing.
type Repository interface {
	GetActivity(ctx context.Context, activityID int64) (*model.Activity, error)
	InsertActivity(ctx context.Context, activity *model.Activity) (int64, error)
	UpdateActivityStatus(ctx context.Context, activityID int64, status model.ActivityStatus) error

	GetPrize(ctx context.Context, prizeID int64) (*model.Prize, error)
	ListPrizesByIDs(ctx context.Context, prizeIDs []int64) ([]model.Prize, error)
	InsertPrize(ctx context.Context, prize *model.Prize) (int64, error)

	GetActivityPrize(ctx context.Context, activityID, prizeID int64) (*model.ActivityPrize, error)
	ListActivityPrizes(ctx context.Context, activityID int64) ([]model.ActivityPrize, error)
	CountInitPrizes(ctx context.Context, activityID int64) (int, error)
	InsertActivityPrizes(ctx context.Context, prizes []model.ActivityPrize) error
	UpdateActivityPrizeStatus(ctx context.Context, activityID, prizeID int64, status model.PrizeStatus) error

	ListActivityUsers(ctx context.Context, activityID int64) ([]model.ActivityUser, error)
	ListActivityUsersByIDs(ctx context.Context, activityID int64, userIDs []int64) ([]model.ActivityUser, error)
	InsertActivityUsers(ctx context.Context, users []model.ActivityUser) error
	UpdateActivityUserStatus(ctx context.Context, activityID int64, userIDs []int64, status model.UserStatus) error

	ListUsersByIDs(ctx context.Context, userIDs []int64) ([]model.User, error)

	InsertWinningRecords(ctx context.Context, records []model.WinningRecord) error
	ListWinningRecords(ctx context.Context, activityID int64) ([]model.WinningRecord, error)
	ListWinningRecordsByPrize(ctx context.Context, activityID, prizeID int64) ([]model.WinningRecord, error)
	CountWinningRecords(ctx context.Context, activityID, prizeID int64) (int, error)
	// DeleteWinningRecords removes the records of (activityID, prizeID),
	// restricted to winnerIDs when it is non-empty.
	DeleteWinningRecords(ctx context.Context, activityID, prizeID int64, winnerIDs []int64) error
}

// TxRunner executes fn inside one store transaction. Any error returned by
// fn rolls back every write made through the Repository it received.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Repository) error) error
}

// Store is a Repository that can also open transactions.
type Store interface {
	Repository
	TxRunner
}
