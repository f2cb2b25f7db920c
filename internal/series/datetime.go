package series

import (
	"math"
	"time"
)

// epoch is the reference instant for the numeric datetime encoding:
// days since 0001-01-01, matching the fixed-epoch scheme in spec §6.
var epoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// epochUnix is epoch in Unix seconds. The conversions go through Unix
// seconds because a time.Duration cannot span the ~2000 years between
// epoch and present-day dates.
var epochUnix = epoch.Unix()

// ToNum encodes t as days-since-epoch with fractional intraday. Time
// zones are applied at display only; the encoding itself is UTC-based.
func ToNum(t time.Time) float64 {
	secs := float64(t.Unix()-epochUnix) + float64(t.Nanosecond())/1e9
	return secs / 86400
}

// ToTime decodes a days-since-epoch value back into a UTC time.Time,
// rounded to the nearest millisecond. ToNum/ToTime round-trip on any
// instant with whole-millisecond precision (spec §8).
func ToTime(num float64) time.Time {
	ms := int64(math.Round(num * 86400 * 1e3))
	return time.UnixMilli(ms + epochUnix*1000).UTC()
}
