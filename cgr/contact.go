// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package cgr

import (
	"fmt"
	"math"

	"github.com/ud3tn/godtn/bpv7"
)

// Priority is one of the three routing priority classes tracked independently in a Contact's
// residual capacity.
type Priority int

const (
	PriorityBulk Priority = iota
	PriorityNormal
	PriorityExpedited

	priorityCount = 3
)

// InfiniteCapacity is the sentinel capacity value ("INT32_MAX") used once a contact's
// duration-bitrate product overflows or reaches the 32-bit signed range.
const InfiniteCapacity int64 = math.MaxInt32

// Contact is a scheduled interval during which a link to Node's peer is expected to be
// available at a known bitrate.
type Contact struct {
	// Node is this contact's owning node. A Contact never outlives the Node slice entry that
	// references it; there is no back-and-forth owning cycle.
	Node *Node

	// From and To bound the half-open contact window [From, To) in milliseconds.
	From, To int64

	// Bitrate is the expected link rate in bytes per second.
	Bitrate int64

	// TotalCapacity is clamp_to_i32(duration_s * bitrate), computed by RecalculateCapacity.
	TotalCapacity int64

	// Residual holds the remaining capacity per priority class. Signed, so in-flight
	// overbooking is representable as a negative residual.
	Residual [priorityCount]int64

	// Endpoints is the subset of Node's endpoints reachable only while this contact is open.
	Endpoints []bpv7.EndpointID

	// Bundles lists the bundles currently routed onto this contact.
	Bundles []*bpv7.Bundle

	// Active is true while the contact is live; an active contact may not be freed.
	Active bool
}

func (c *Contact) String() string {
	return fmt.Sprintf("Contact(%v, [%d, %d), %d B/s)", c.Node.EID, c.From, c.To, c.Bitrate)
}

// durationSeconds is the contact window length in seconds, as a float to let a sub-second
// window still register a nonzero capacity product with a high enough bitrate.
func (c *Contact) durationSeconds() float64 {
	return float64(c.To-c.From) / 1000.0
}

// RecalculateCapacity recomputes TotalCapacity from the current From/To/Bitrate and adds the
// delta between the new and old total to every priority's residual counter. This is the
// correct rule for both a freshly created contact (old total implicitly zero) and an extended
// or re-rated one (old total non-zero): either way, only the capacity that appeared or
// disappeared since the last recalculation moves the residual counters.
func (c *Contact) RecalculateCapacity() {
	oldTotal := c.TotalCapacity
	c.TotalCapacity = computeTotalCapacity(c.durationSeconds(), c.Bitrate)

	delta := c.TotalCapacity - oldTotal
	for i := range c.Residual {
		c.Residual[i] += delta
	}
}

func computeTotalCapacity(durationS float64, bitrate int64) int64 {
	if durationS <= 0 || bitrate <= 0 {
		return 0
	}

	total := durationS * float64(bitrate)
	if total >= float64(InfiniteCapacity) || math.IsInf(total, 1) {
		return InfiniteCapacity
	}
	return int64(total)
}

// CurRemainingCapacity returns the remaining capacity for priority p at wall-clock time
// nowMs: the per-priority residual at nowMs <= From, zero once nowMs >= To, and otherwise the
// lesser of the residual and the capacity implied by the fraction of the contact still ahead.
func (c *Contact) CurRemainingCapacity(p Priority, nowMs int64) int64 {
	if nowMs >= c.To {
		return 0
	}
	if nowMs <= c.From {
		return c.Residual[p]
	}

	remainingFrac := float64(c.To-nowMs) / float64(c.To-c.From)
	timeBased := int64(float64(c.TotalCapacity) * remainingFrac)

	if c.Residual[p] < timeBased {
		return c.Residual[p]
	}
	return timeBased
}

// Overlaps reports whether the two half-open intervals [From, To) intersect.
func (c *Contact) Overlaps(other *Contact) bool {
	return c.From < other.To && other.From < c.To
}
