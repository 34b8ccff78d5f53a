package storage

import "strconv"

// Well-known settings keys.
const (
	KeyStudyGoal = "study_goal" // study target, minutes
	KeyDailyGoal = "daily_goal" // media limit, minutes
)

// Counter key prefixes. The full key carries a day-of-year suffix so a
// new calendar day implicitly starts every counter at zero.
const (
	prefixManualStudy  = "manual_study_"
	prefixNotification = "notif_"
)

// ManualStudyKey returns the counter key for the manually-logged study
// time (milliseconds) on the given day of year.
func ManualStudyKey(dayOfYear int) string {
	return prefixManualStudy + strconv.Itoa(dayOfYear)
}

// NotificationKey returns the counter key for an app's notification
// count on the given day of year.
func NotificationKey(appID string, dayOfYear int) string {
	return prefixNotification + appID + "_" + strconv.Itoa(dayOfYear)
}

// CounterDay extracts the day-of-year suffix from a counter key. The
// second return is false for keys without a numeric day suffix; such
// keys are never swept by retention.
func CounterDay(key string) (int, bool) {
	idx := -1
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '_' {
			idx = i
			break
		}
	}
	if idx < 0 || idx == len(key)-1 {
		return 0, false
	}
	day, err := strconv.Atoi(key[idx+1:])
	if err != nil || day < 1 || day > 366 {
		return 0, false
	}
	return day, true
}
