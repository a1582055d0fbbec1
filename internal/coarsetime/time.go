// Package coarsetime is a clock refreshed every 50ms by a background
// goroutine. Pools use it to stamp connections on every release, where
// time.Now would dominate the cost of the release.
package coarsetime

import (
	"sync/atomic"
	"time"
)

const tick = 50 * time.Millisecond

var now atomic.Value

func init() {
	now.Store(time.Now())

	tick := time.NewTicker(tick)
	go func() {
		for range tick.C {
			now.Store(time.Now())
		}
	}()
}

// Now returns the time of the last tick.
func Now() time.Time {
	return now.Load().(time.Time)
}

// Since is Now().Sub(t), never negative.
func Since(t time.Time) time.Duration {
	return max(Now().Sub(t), 0)
}
