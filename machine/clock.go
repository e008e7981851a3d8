package machine

import "time"

// Clock abstracts wall time so timestamping and jog pacing can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
