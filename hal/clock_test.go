// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package hal

import "testing"

func TestSystemClockSetTime(t *testing.T) {
	c := NewSystemClock()
	c.SetTime(42)

	if got := c.Now(); got < 42_000 || got > 42_100 {
		t.Fatalf("expected Now() to read back ~42000ms immediately after SetTime(42), got %d", got)
	}
}

func TestManualClockAdvance(t *testing.T) {
	c := NewManualClock(1000)
	c.Advance(500)

	if got := c.Now(); got != 1500 {
		t.Fatalf("expected 1500, got %d", got)
	}
}

func TestManualClockSetTime(t *testing.T) {
	c := NewManualClock(0)
	c.SetTime(42)

	if got := c.Now(); got != 42_000 {
		t.Fatalf("expected 42000, got %d", got)
	}
}
