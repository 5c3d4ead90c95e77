// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cla

import (
	"fmt"

	"github.com/ud3tn/godtn/bpv7"
)

// BoundaryMessageType tags the payload carried by a BoundaryMessage across the bundle
// processor's signaling queue.
type BoundaryMessageType int

const (
	// AgentRegister requests agent registration; Payload is an AgentRegisterMsg.
	AgentRegister BoundaryMessageType = iota
	// BundleReceived reports a fully parsed bundle arrived on a link; Payload is a
	// BundleReceivedMsg.
	BundleReceived
	// NewLinkEstablished reports a link became usable; Payload is a LinkAddrMsg.
	NewLinkEstablished
	// LinkDown reports a link tore down; Payload is a LinkAddrMsg.
	LinkDown
	// TxRequest hands a bundle off for transmission; Payload is a TxRequestMsg.
	TxRequest
)

func (t BoundaryMessageType) String() string {
	switch t {
	case AgentRegister:
		return "AGENT_REGISTER"
	case BundleReceived:
		return "BUNDLE_RECEIVED"
	case NewLinkEstablished:
		return "NEW_LINK_ESTABLISHED"
	case LinkDown:
		return "LINK_DOWN"
	case TxRequest:
		return "TX_REQUEST"
	default:
		return "UNKNOWN"
	}
}

// BoundaryMessage is the single tagged message type carried on the bundle processor's
// signaling queue, in both directions.
type BoundaryMessage struct {
	Type    BoundaryMessageType
	Payload interface{}
}

func (m BoundaryMessage) String() string {
	return fmt.Sprintf("BoundaryMessage(%v)", m.Type)
}

// AgentRegisterMsg requests that sinkID be registered with the given callback, param and
// subscriber hint. Callback's concrete type is left to the agent package; here it is carried
// opaquely to avoid an import cycle between cla and agent.
type AgentRegisterMsg struct {
	SinkID       string
	Callback     interface{}
	Param        interface{}
	IsSubscriber bool
}

// BundleReceivedMsg reports a bundle fully parsed on a link.
type BundleReceivedMsg struct {
	Bundle        *bpv7.Bundle
	SourceCLAAddr string
}

// LinkAddrMsg carries the CLA address a NewLinkEstablished or LinkDown notification refers to.
type LinkAddrMsg struct {
	CLAAddr string
}

// TxRequestMsg hands a bundle to the CLA layer for transmission toward destEID over claAddr.
type TxRequestMsg struct {
	Bundle  *bpv7.Bundle
	DestEID bpv7.EndpointID
	CLAAddr string
}
