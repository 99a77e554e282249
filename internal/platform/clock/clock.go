package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Millis converts t to epoch milliseconds, the unit persisted records use.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// DateString formats the calendar day of epoch ms in loc as YYYY-MM-DD.
func DateString(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(time.DateOnly)
}
