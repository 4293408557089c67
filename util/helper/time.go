package helper_util

import (
	"time"
)

// ParseTime parses an RFC3339 timestamp from a query parameter.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// TimeWindow returns the [from, to] range for a query, defaulting to the
// last 24 hours when either bound is absent.
func TimeWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now()
	from, to := now.Add(-24*time.Hour), now

	var err error
	if fromStr != "" {
		if from, err = ParseTime(fromStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toStr != "" {
		if to, err = ParseTime(toStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}
