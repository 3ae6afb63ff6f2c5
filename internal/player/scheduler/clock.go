package scheduler

import "time"

// Clock abstracts wall time so playback timing is deterministic in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the stoppable handle AfterFunc returns.
type Timer interface {
	Stop() bool
}

type realClock struct{}

// RealClock is the production Clock.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
