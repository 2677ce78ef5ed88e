package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by stores when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Activity is a single lottery event.
type Activity struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      ActivityStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Prize is shared across activities and never mutated once referenced.
type Prize struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}

// ActivityPrize binds a prize to an activity with a tier and allotted amount.
type ActivityPrize struct {
	ActivityID int64       `json:"activity_id"`
	PrizeID    int64       `json:"prize_id"`
	Tier       PrizeTier   `json:"tier"`
	Amount     int64       `json:"amount"`
	Status     PrizeStatus `json:"status"`
}

// ActivityUser is one entry of an activity's eligible roster.
type ActivityUser struct {
	ActivityID int64      `json:"activity_id"`
	UserID     int64      `json:"user_id"`
	UserName   string     `json:"user_name"`
	Status     UserStatus `json:"status"`
}

// User holds the contact data used when recording and notifying winners.
// Users are provisioned by the registration service.
type User struct {
	ID          int64  `json:"id"`
	UserName    string `json:"user_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// WinningRecord is one (winner, activity, prize) outcome.
type WinningRecord struct {
	ID           int64     `json:"id"`
	WinnerID     int64     `json:"winner_id"`
	WinnerName   string    `json:"winner_name"`
	WinnerEmail  string    `json:"winner_email"`
	WinnerPhone  string    `json:"winner_phone"`
	ActivityID   int64     `json:"activity_id"`
	ActivityName string    `json:"activity_name"`
	PrizeID      int64     `json:"prize_id"`
	PrizeName    string    `json:"prize_name"`
	PrizeTier    PrizeTier `json:"prize_tier"`
	WinningTime  time.Time `json:"winning_time"`
}
