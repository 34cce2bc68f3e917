package utils

import (
	"time"
)

// GetCurrentTimeMillis returns current time in milliseconds since epoch
func GetCurrentTimeMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// MillisToTime converts milliseconds since epoch to time.Time
func MillisToTime(millis int64) time.Time {
	return time.Unix(0, millis*int64(time.Millisecond))
}

// TimeToMillis converts time.Time to milliseconds since epoch
func TimeToMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// DurationToMillis converts a duration to milliseconds
func DurationToMillis(d time.Duration) int64 {
	return int64(d / time.Millisecond)
}

// IsExpired checks if a given expiry time (in millis) has passed
func IsExpired(expiresAt int64) bool {
	if expiresAt == 0 {
		return false
	}
	return GetCurrentTimeMillis() > expiresAt
}
