// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package hal

import (
	"sync"
	"time"
)

// dtnEpochUnix is the number of seconds between the Unix epoch and the DTN epoch
// (2000-01-01T00:00:00Z), matching bpv7's milliseconds1970To2k divided by 1000.
const dtnEpochUnix = 946_684_800

// Clock is the monotonic millisecond clock the core consults for contact-window arithmetic and
// which the management agent's SET_TIME command adjusts.
//
// Now returns milliseconds since the DTN epoch. SetTime installs an offset so that a subsequent
// Now call reports dtnTimeSeconds at the instant SetTime was invoked; unlike a wall-clock write,
// it never makes Now run backwards relative to real elapsed time once applied.
type Clock interface {
	Now() int64
	SetTime(dtnTimeSeconds uint64)
}

// SystemClock is a Clock backed by the real wall clock, adjustable by an offset applied once at
// SET_TIME time.
type SystemClock struct {
	mu     sync.Mutex
	offset int64
}

// NewSystemClock returns a Clock tracking the real wall clock with no offset applied.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().UnixMilli() - dtnEpochUnix*1000 + c.offset
}

// SetTime adjusts the clock so Now() reports dtnTimeSeconds (as milliseconds) right now.
func (c *SystemClock) SetTime(dtnTimeSeconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wallNow := time.Now().UnixMilli() - dtnEpochUnix*1000
	c.offset = int64(dtnTimeSeconds)*1000 - wallNow
}

// ManualClock is a Clock entirely driven by test code, with no relation to the real wall clock.
type ManualClock struct {
	mu  sync.Mutex
	nowMs int64
}

// NewManualClock returns a Clock fixed at the given millisecond value.
func NewManualClock(startMs int64) *ManualClock {
	return &ManualClock{nowMs: startMs}
}

func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowMs
}

func (c *ManualClock) SetTime(dtnTimeSeconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nowMs = int64(dtnTimeSeconds) * 1000
}

// Advance moves a ManualClock forward by deltaMs, for simulating elapsed time in tests.
func (c *ManualClock) Advance(deltaMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nowMs += deltaMs
}
