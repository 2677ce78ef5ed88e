package model

import (
	"fmt"
	"strings"
)

// ActivityStatus is the lifecycle state of an Activity.
type ActivityStatus string

const (
	ActivityRunning   ActivityStatus = "RUNNING"
	ActivityCompleted ActivityStatus = "COMPLETED"
)

// PrizeStatus is the lifecycle state of an ActivityPrize row.
type PrizeStatus string

const (
	PrizeInit      PrizeStatus = "INIT"
	PrizeCompleted PrizeStatus = "COMPLETED"
)

// UserStatus is the lifecycle state of an ActivityUser row.
type UserStatus string

const (
	UserInit      UserStatus = "INIT"
	UserCompleted UserStatus = "COMPLETED"
)

// PrizeTier ranks prizes within an activity.
type PrizeTier string

const (
	FirstPrize  PrizeTier = "FIRST_PRIZE"
	SecondPrize PrizeTier = "SECOND_PRIZE"
	ThirdPrize  PrizeTier = "THIRD_PRIZE"
)

var tierLabels = map[PrizeTier]string{
	FirstPrize:  "First Prize",
	SecondPrize: "Second Prize",
	ThirdPrize:  "Third Prize",
}

// ParsePrizeTier accepts a tier name case-insensitively.
func ParsePrizeTier(name string) (PrizeTier, error) {
	tier := PrizeTier(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := tierLabels[tier]; !ok {
		return "", fmt.Errorf("unknown prize tier %q", name)
	}
	return tier, nil
}

// Label returns the human readable tier name used in notifications.
func (t PrizeTier) Label() string {
	if label, ok := tierLabels[t]; ok {
		return label
	}
	return string(t)
}
