package draw

import (
	"time"
)

// Winner is one user picked by a draw.
type Winner struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
}

// Request asks to record the winners of one prize. It travels as the JSON
// payload of a draw message.
type Request struct {
	ActivityID  int64     `json:"activity_id"`
	PrizeID     int64     `json:"prize_id"`
	Winners     []Winner  `json:"winner_list"`
	WinningTime time.Time `json:"winning_time"`
}

// WinnerIDs returns the winner user ids in request order.
func (r Request) WinnerIDs() []int64 {
	ids := make([]int64, 0, len(r.Winners))
	for _, w := range r.Winners {
		ids = append(ids, w.UserID)
	}
	return ids
}

// check performs the structural validation shared by the submit path and
// the orchestrator.
func (r Request) check() error {
	if r.ActivityID <= 0 || r.PrizeID <= 0 {
		return invalid(ErrInvalidRequest, "activity_id and prize_id are required")
	}
	if len(r.Winners) == 0 {
		return invalid(ErrInvalidRequest, "winner_list is empty")
	}
	if r.WinningTime.IsZero() {
		return invalid(ErrInvalidRequest, "winning_time is required")
	}
	seen := make(map[int64]bool, len(r.Winners))
	for _, w := range r.Winners {
		if w.UserID <= 0 {
			return invalid(ErrInvalidRequest, "winner user_id is required")
		}
		if seen[w.UserID] {
			return invalid(ErrInvalidRequest, "user %d listed twice", w.UserID)
		}
		seen[w.UserID] = true
	}
	return nil
}
