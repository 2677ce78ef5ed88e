// Package activity manages prizes, activities and the cached activity
// detail view.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lottery/internal/logger"
	"lottery/internal/model"
	redisClient "lottery/internal/redis"
	"lottery/internal/repository"
)

// ErrInvalidInput marks creation requests rejected before touching the store.
var ErrInvalidInput = errors.New("invalid input")

// Cache is the subset of the Redis client the service uses.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Service coordinates the store and the activity detail cache.
type Service struct {
	store repository.Store
	cache Cache
	ttl   time.Duration
}

// NewService wires dependencies. ttl bounds the life of a cached detail.
func NewService(store repository.Store, cache Cache, ttl time.Duration) *Service {
	return &Service{store: store, cache: cache, ttl: ttl}
}

// CreatePrizeInput captures prize creation payload.
type CreatePrizeInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
}

// CreatePrize stores a prize and returns its id.
func (s *Service) CreatePrize(ctx context.Context, in CreatePrizeInput) (int64, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return 0, fmt.Errorf("%w: prize name is required", ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return 0, fmt.Errorf("%w: prize price must not be negative", ErrInvalidInput)
	}
	return s.store.InsertPrize(ctx, &model.Prize{
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
	})
}

// PrizeInput places an existing prize in an activity.
type PrizeInput struct {
	PrizeID int64
	Tier    string
	Amount  int64
}

// UserInput enrols an existing user in an activity.
type UserInput struct {
	UserID   int64
	UserName string
}

// CreateActivityInput captures activity creation payload.
type CreateActivityInput struct {
	Name        string
	Description string
	Prizes      []PrizeInput
	Users       []UserInput
}

// CreateActivity validates the rosters, inserts the activity with every
// prize and user in INIT state in one transaction, then caches the detail.
func (s *Service) CreateActivity(ctx context.Context, in CreateActivityInput) (int64, error) {
	prizes, users, err := s.validate(ctx, in)
	if err != nil {
		return 0, err
	}

	var activityID int64
	err = s.store.InTx(ctx, func(repo repository.Repository) error {
		id, err := repo.InsertActivity(ctx, &model.Activity{
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			Status:      model.ActivityRunning,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		for i := range prizes {
			prizes[i].ActivityID = id
		}
		for i := range users {
			users[i].ActivityID = id
		}
		if err := repo.InsertActivityPrizes(ctx, prizes); err != nil {
			return err
		}
		if err := repo.InsertActivityUsers(ctx, users); err != nil {
			return err
		}
		activityID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := s.CacheActivity(ctx, activityID); err != nil {
		logger.WarnCtx(ctx, "cache new activity failed", zap.Int64("activity_id", activityID), zap.Error(err))
	}
	return activityID, nil
}

func (s *Service) validate(ctx context.Context, in CreateActivityInput) ([]model.ActivityPrize, []model.ActivityUser, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, nil, fmt.Errorf("%w: activity name is required", ErrInvalidInput)
	}
	if len(in.Prizes) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one prize is required", ErrInvalidInput)
	}
	if len(in.Users) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one user is required", ErrInvalidInput)
	}

	prizes := make([]model.ActivityPrize, 0, len(in.Prizes))
	prizeIDs := make([]int64, 0, len(in.Prizes))
	seenPrize := make(map[int64]bool, len(in.Prizes))
	var total int64
	for _, p := range in.Prizes {
		if seenPrize[p.PrizeID] {
			return nil, nil, fmt.Errorf("%w: prize %d listed twice", ErrInvalidInput, p.PrizeID)
		}
		seenPrize[p.PrizeID] = true
		tier, err := model.ParsePrizeTier(p.Tier)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if p.Amount <= 0 {
			return nil, nil, fmt.Errorf("%w: prize %d amount must be positive", ErrInvalidInput, p.PrizeID)
		}
		total += p.Amount
		prizeIDs = append(prizeIDs, p.PrizeID)
		prizes = append(prizes, model.ActivityPrize{PrizeID: p.PrizeID, Tier: tier, Amount: p.Amount, Status: model.PrizeInit})
	}

	userIDs := make([]int64, 0, len(in.Users))
	seenUser := make(map[int64]bool, len(in.Users))
	for _, u := range in.Users {
		if seenUser[u.UserID] {
			return nil, nil, fmt.Errorf("%w: user %d listed twice", ErrInvalidInput, u.UserID)
		}
		seenUser[u.UserID] = true
		userIDs = append(userIDs, u.UserID)
	}
	if int64(len(in.Users)) < total {
		return nil, nil, fmt.Errorf("%w: %d users cannot cover %d prizes", ErrInvalidInput, len(in.Users), total)
	}

	known, err := s.store.ListPrizesByIDs(ctx, prizeIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(known) != len(prizeIDs) {
		return nil, nil, fmt.Errorf("%w: unknown prize in roster", ErrInvalidInput)
	}

	registered, err := s.store.ListUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(registered) != len(userIDs) {
		return nil, nil, fmt.Errorf("%w: unknown user in roster", ErrInvalidInput)
	}
	names := make(map[int64]string, len(registered))
	for _, u := range registered {
		names[u.ID] = u.UserName
	}

	users := make([]model.ActivityUser, 0, len(in.Users))
	for _, u := range in.Users {
		name := strings.TrimSpace(u.UserName)
		if name == "" {
			name = names[u.UserID]
		}
		users = append(users, model.ActivityUser{UserID: u.UserID, UserName: name, Status: model.UserInit})
	}
	return prizes, users, nil
}

// GetActivityDetail reads the cached detail and rebuilds it from the store
// on a miss or cache failure.
func (s *Service) GetActivityDetail(ctx context.Context, activityID int64) (*Detail, error) {
	if activityID <= 0 {
		return nil, fmt.Errorf("%w: activity id is required", ErrInvalidInput)
	}
	if d, ok := s.cached(ctx, activityID); ok {
		return d, nil
	}
	d, err := s.buildDetail(ctx, activityID)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, d)
	return d, nil
}

// CacheActivity rebuilds the detail from the store and overwrites the cache.
func (s *Service) CacheActivity(ctx context.Context, activityID int64) error {
	d, err := s.buildDetail(ctx, activityID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, redisClient.ActivityKey(activityID), string(raw), s.ttl)
}

func (s *Service) cached(ctx context.Context, activityID int64) (*Detail, bool) {
	raw, err := s.cache.Get(ctx, redisClient.ActivityKey(activityID))
	if err != nil {
		if !errors.Is(err, redisClient.ErrMiss) {
			logger.WarnCtx(ctx, "read activity cache failed", zap.Int64("activity_id", activityID), zap.Error(err))
		}
		return nil, false
	}
	var d Detail
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		logger.WarnCtx(ctx, "decode activity cache failed", zap.Int64("activity_id", activityID), zap.Error(err))
		return nil, false
	}
	return &d, true
}

func (s *Service) writeCache(ctx context.Context, d *Detail) {
	raw, err := json.Marshal(d)
	if err == nil {
		err = s.cache.Set(ctx, redisClient.ActivityKey(d.ActivityID), string(raw), s.ttl)
	}
	if err != nil {
		logger.WarnCtx(ctx, "write activity cache failed", zap.Int64("activity_id", d.ActivityID), zap.Error(err))
	}
}
