package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Date formats t as the YYYY-MM-DD key used by daily statistics.
func Date(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
