package redis

import "fmt"

// Key prefixes for the cached read views.
const (
	PrefixActivity       = "lottery:activity:"
	PrefixWinningRecords = "lottery:winning_record:"
)

// ActivityKey holds the activity detail snapshot. lottery:activity:{activity_id}
func ActivityKey(activityID int64) string {
	return fmt.Sprintf("%s%d", PrefixActivity, activityID)
}

// ActivityRecordsKey holds every winning record of a completed activity.
// lottery:winning_record:{activity_id}
func ActivityRecordsKey(activityID int64) string {
	return fmt.Sprintf("%s%d", PrefixWinningRecords, activityID)
}

// PrizeRecordsKey holds the winning records of one prize draw.
// lottery:winning_record:{activity_id}_{prize_id}
func PrizeRecordsKey(activityID, prizeID int64) string {
	return fmt.Sprintf("%s%d_%d", PrefixWinningRecords, activityID, prizeID)
}
