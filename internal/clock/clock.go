// Package clock provides the monotonic-checked wall-clock source sources
// use to timestamp emitted messages. Grounded on
// _examples/original_source/crates/zelos-trace/src/time.rs.
package clock

import (
	"sync/atomic"
	"time"
)

var last atomic.Int64

// NowNs returns the current wall-clock time as nanoseconds since the Unix
// epoch. Per spec §7, a detected clock regression is a programmer error and
// panics — the only panic in the core.
func NowNs() int64 {
	for {
		prev := last.Load()
		now := time.Now().UnixNano()
		if now < prev {
			panic("signaltap: clock regression detected")
		}
		if last.CompareAndSwap(prev, now) {
			return now
		}
	}
}
