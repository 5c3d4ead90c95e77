// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package agent

import (
	"testing"

	"github.com/ud3tn/godtn/bpv7"
	"github.com/ud3tn/godtn/hal"
)

// TestManagementSetTimeScenario is spec scenario S4.
func TestManagementSetTimeScenario(t *testing.T) {
	local := bpv7.MustNewEndpointID("dtn://me/")
	clock := hal.NewManualClock(0)
	m := NewManagementAgent(local, false, clock)

	payload := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x2a}

	m.deliver(payload, nil, BpContext{Source: bpv7.MustNewEndpointID("dtn://me/mgmt")})
	if got := clock.Now(); got != 42_000 {
		t.Fatalf("expected clock set to 42s (42000ms), got %d", got)
	}

	clock2 := hal.NewManualClock(0)
	m2 := NewManagementAgent(local, false, clock2)
	m2.deliver(payload, nil, BpContext{Source: bpv7.MustNewEndpointID("dtn://other/mgmt")})
	if got := clock2.Now(); got != 0 {
		t.Fatalf("expected clock unchanged for a non-matching origin, got %d", got)
	}
}

func TestManagementOriginCheckScenario(t *testing.T) {
	local := bpv7.MustNewEndpointID("dtn://me/")
	clock := hal.NewManualClock(0)
	m := NewManagementAgent(local, false, clock)

	payload := []byte{0x01, 0, 0, 0, 0, 0, 0, 0, 1}
	m.deliver(payload, nil, BpContext{Source: bpv7.MustNewEndpointID("dtn://attacker/")})

	if clock.Now() != 0 {
		t.Fatalf("expected a mismatched source to leave the clock untouched")
	}
}

func TestManagementAllowsRemoteWhenConfigured(t *testing.T) {
	local := bpv7.MustNewEndpointID("dtn://me/")
	clock := hal.NewManualClock(0)
	m := NewManagementAgent(local, true, clock)

	payload := []byte{0x01, 0, 0, 0, 0, 0, 0, 0, 5}
	m.deliver(payload, nil, BpContext{Source: bpv7.MustNewEndpointID("dtn://anyone/")})

	if clock.Now() != 5000 {
		t.Fatalf("expected remote config to be honored when allowed, got %d", clock.Now())
	}
}

func TestManagementDropsEmptyPayload(t *testing.T) {
	local := bpv7.MustNewEndpointID("dtn://me/")
	clock := hal.NewManualClock(1234)
	m := NewManagementAgent(local, true, clock)

	m.deliver(nil, nil, BpContext{Source: local})
	if clock.Now() != 1234 {
		t.Fatalf("expected empty payload to be dropped without side effects")
	}
}

func TestManagementDropsWrongOperandLength(t *testing.T) {
	local := bpv7.MustNewEndpointID("dtn://me/")
	clock := hal.NewManualClock(1234)
	m := NewManagementAgent(local, true, clock)

	m.deliver([]byte{0x01, 0x00, 0x00}, nil, BpContext{Source: local})
	if clock.Now() != 1234 {
		t.Fatalf("expected a short SET_TIME operand to be dropped")
	}
}

func TestManagementDropsUnknownCommand(t *testing.T) {
	local := bpv7.MustNewEndpointID("dtn://me/")
	clock := hal.NewManualClock(1234)
	m := NewManagementAgent(local, true, clock)

	m.deliver([]byte{0xFF, 1, 2, 3, 4, 5, 6, 7, 8}, nil, BpContext{Source: local})
	if clock.Now() != 1234 {
		t.Fatalf("expected an unknown command to be dropped")
	}
}

func TestManagementSinkIDByScheme(t *testing.T) {
	dtnAgent := NewManagementAgent(bpv7.MustNewEndpointID("dtn://me/"), false, hal.NewManualClock(0))
	if dtnAgent.SinkID() != AgentIDManagementDTN {
		t.Fatalf("expected dtn scheme to use AgentIDManagementDTN")
	}

	ipnAgent := NewManagementAgent(bpv7.MustNewEndpointID("ipn:1.0"), false, hal.NewManualClock(0))
	if ipnAgent.SinkID() != AgentIDManagementIPN {
		t.Fatalf("expected ipn scheme to use AgentIDManagementIPN")
	}
}
