package activity

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"lottery/internal/model"
)

// Detail is the denormalized activity view served to detail pages.
type Detail struct {
	ActivityID  int64                `json:"activity_id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      model.ActivityStatus `json:"status"`
	Prizes      []PrizeDetail        `json:"prizes"`
	Users       []UserDetail         `json:"users"`
}

type PrizeDetail struct {
	PrizeID     int64             `json:"prize_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	ImageURL    string            `json:"image_url"`
	Tier        model.PrizeTier   `json:"tier"`
	Amount      int64             `json:"amount"`
	Status      model.PrizeStatus `json:"status"`
}

type UserDetail struct {
	UserID   int64            `json:"user_id"`
	UserName string           `json:"user_name"`
	Status   model.UserStatus `json:"status"`
}

// buildDetail always reads every part from the store; cached details are
// replaced wholesale, never patched.
func (s *Service) buildDetail(ctx context.Context, activityID int64) (*Detail, error) {
	a, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	aps, err := s.store.ListActivityPrizes(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("list activity prizes: %w", err)
	}
	ids := make([]int64, 0, len(aps))
	for _, ap := range aps {
		ids = append(ids, ap.PrizeID)
	}
	prizes, err := s.store.ListPrizesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list prizes: %w", err)
	}
	byID := make(map[int64]model.Prize, len(prizes))
	for _, p := range prizes {
		byID[p.ID] = p
	}
	users, err := s.store.ListActivityUsers(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("list activity users: %w", err)
	}

	d := &Detail{
		ActivityID:  a.ID,
		Name:        a.Name,
		Description: a.Description,
		Status:      a.Status,
		Prizes:      make([]PrizeDetail, 0, len(aps)),
		Users:       make([]UserDetail, 0, len(users)),
	}
	for _, ap := range aps {
		p := byID[ap.PrizeID]
		d.Prizes = append(d.Prizes, PrizeDetail{
			PrizeID:     ap.PrizeID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
			Tier:        ap.Tier,
			Amount:      ap.Amount,
			Status:      ap.Status,
		})
	}
	for _, u := range users {
		d.Users = append(d.Users, UserDetail{UserID: u.UserID, UserName: u.UserName, Status: u.Status})
	}
	return d, nil
}
