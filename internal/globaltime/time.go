// Package globaltime is the process clock. Tests freeze it to pin retention
// cutoffs and stored timestamps.
package globaltime

import (
	"sync/atomic"
	"time"
)

var frozen atomic.Pointer[time.Time]

func Now() time.Time {
	if t := frozen.Load(); t != nil {
		return *t
	}
	return time.Now()
}

func UTC() time.Time {
	return Now().UTC()
}

// Freeze pins Now to t until the returned restore func runs.
func Freeze(t time.Time) (restore func()) {
	prev := frozen.Swap(&t)
	return func() { frozen.Store(prev) }
}
