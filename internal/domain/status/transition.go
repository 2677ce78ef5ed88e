package status

import "lottery/internal/model"

// ForwardTransition moves a draw's entities towards their target states.
// Kinds listed in Required must convert, otherwise the whole transition is
// aborted with ErrRequiredNotConverted.
type ForwardTransition struct {
	ActivityID int64
	PrizeID    int64
	UserIDs    []int64

	ActivityStatus model.ActivityStatus
	PrizeStatus    model.PrizeStatus
	UserStatus     model.UserStatus

	Required []Kind
}

// DrawCompleted is the forward transition applied by a successful draw. The
// prize and every winner must convert together.
func DrawCompleted(activityID, prizeID int64, userIDs []int64) ForwardTransition {
	return ForwardTransition{
		ActivityID:     activityID,
		PrizeID:        prizeID,
		UserIDs:        append([]int64(nil), userIDs...),
		ActivityStatus: model.ActivityCompleted,
		PrizeStatus:    model.PrizeCompleted,
		UserStatus:     model.UserCompleted,
		Required:       []Kind{KindPrize, KindUser},
	}
}

func (f ForwardTransition) targets() Targets {
	return Targets{
		ActivityID:     f.ActivityID,
		PrizeID:        f.PrizeID,
		UserIDs:        f.UserIDs,
		ActivityStatus: f.ActivityStatus,
		PrizeStatus:    f.PrizeStatus,
		UserStatus:     f.UserStatus,
	}
}

func (f ForwardTransition) requires(k Kind) bool {
	for _, r := range f.Required {
		if r == k {
			return true
		}
	}
	return false
}

// RollbackTransition restores a draw's entities to their pre-draw states:
// activity RUNNING, prize INIT, users INIT.
type RollbackTransition struct {
	ActivityID int64
	PrizeID    int64
	UserIDs    []int64
}

func (r RollbackTransition) targets() Targets {
	return Targets{
		ActivityID:     r.ActivityID,
		PrizeID:        r.PrizeID,
		UserIDs:        r.UserIDs,
		ActivityStatus: model.ActivityRunning,
		PrizeStatus:    model.PrizeInit,
		UserStatus:     model.UserInit,
	}
}
