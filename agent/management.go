// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package agent

import (
	"encoding/binary"

	log "github.com/sirupsen/logrus"

	"github.com/ud3tn/godtn/bpv7"
	"github.com/ud3tn/godtn/hal"
)

const (
	// AgentIDManagementDTN is the sink identifier (dtn-scheme demux) the management agent
	// registers under on a dtn-scheme node.
	AgentIDManagementDTN = "mgmt"

	// AgentIDManagementIPN is the sink identifier (ipn-scheme service number) the management
	// agent registers under on an ipn-scheme node.
	AgentIDManagementIPN = "0"

	// commandSetTime is the management command code for SET_TIME.
	commandSetTime byte = 0x01

	// setTimePayloadLen is the total SET_TIME payload length: 1 command byte + 8 timestamp bytes.
	setTimePayloadLen = 9
)

// ManagementAgent is the built-in agent that interprets a small binary remote-administration
// command set. It registers itself as AgentIDManagementDTN or AgentIDManagementIPN, depending
// on the local node's EID scheme, via RegisterWith.
type ManagementAgent struct {
	localEID                 bpv7.EndpointID
	allowRemoteConfiguration bool
	clock                    hal.Clock
}

// NewManagementAgent creates a management agent bound to localEID and clock. If
// allowRemoteConfiguration is false, only bundles whose source node matches localEID's node are
// honored; all others are dropped.
func NewManagementAgent(localEID bpv7.EndpointID, allowRemoteConfiguration bool, clock hal.Clock) *ManagementAgent {
	return &ManagementAgent{
		localEID:                 localEID,
		allowRemoteConfiguration: allowRemoteConfiguration,
		clock:                    clock,
	}
}

// SinkID returns the sink identifier this agent must register under, matching localEID's scheme.
func (m *ManagementAgent) SinkID() string {
	if bpv7.SchemeOf(m.localEID.String()) == bpv7.SchemeIPN {
		return AgentIDManagementIPN
	}
	return AgentIDManagementDTN
}

// RegisterWith registers this agent's deliver method on reg under its scheme-appropriate sink
// identifier.
func (m *ManagementAgent) RegisterWith(reg *Registry) error {
	return reg.Register(m.SinkID(), m.deliver, nil, false)
}

// BpContext is the minimal piece of routing metadata the bundle processor is expected to
// attach when delivering to a local agent: the ADU's source EID.
type BpContext struct {
	Source bpv7.EndpointID
}

func (m *ManagementAgent) deliver(adu []byte, _ interface{}, bpContext interface{}) {
	ctx, _ := bpContext.(BpContext)

	if !m.allowRemoteConfiguration && !ctx.Source.SameNode(m.localEID) {
		log.WithField("source", ctx.Source).Warn("mgmt: origin check failed, dropping command")
		return
	}

	if len(adu) == 0 {
		log.Warn("mgmt: empty command payload, dropping")
		return
	}

	switch adu[0] {
	case commandSetTime:
		m.handleSetTime(adu)
	default:
		log.WithField("command", adu[0]).Warn("mgmt: unknown command, dropping")
	}
}

func (m *ManagementAgent) handleSetTime(adu []byte) {
	if len(adu) != setTimePayloadLen {
		log.WithField("length", len(adu)).Warn("mgmt: SET_TIME has wrong operand length, dropping")
		return
	}

	seconds := binary.BigEndian.Uint64(adu[1:9])
	m.clock.SetTime(seconds)
	log.WithField("dtn_time", seconds).Info("mgmt: clock set")
}
