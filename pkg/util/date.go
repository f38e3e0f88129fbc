package util

import (
	"strconv"
	"time"
)

// unix values above this are taken as milliseconds
const unixMilliCutoff = 1e11

// ParseTime accepts RFC3339, RFC3339Nano, unix seconds and unix milliseconds.
// The result is always UTC.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ts <= 0 {
		return time.Time{}, false
	}
	if ts > unixMilliCutoff {
		return time.UnixMilli(ts).UTC(), true
	}
	return time.Unix(ts, 0).UTC(), true
}
