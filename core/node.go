// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package core

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ud3tn/godtn/agent"
	"github.com/ud3tn/godtn/bpv7"
	"github.com/ud3tn/godtn/cgr"
	"github.com/ud3tn/godtn/cla"
	"github.com/ud3tn/godtn/hal"
)

// Node is this node's explicit, non-global context: its local identity, contact graph, agent
// registry and CLA managers. Graph and Registry are touched only from the goroutine running Run.
type Node struct {
	LocalEID bpv7.EndpointID
	Graph    *cgr.Graph
	Registry *agent.Registry
	Clock    hal.Clock

	// Inbox is the bundle processor's signaling queue: every cla.Link posts to it, and Run
	// drains it on the single bundle-processor goroutine.
	Inbox *hal.Queue

	// clas maps a CLA name prefix (e.g. "bibe") to the Manager responsible for it, used to
	// route a TX_REQUEST to the right driver.
	clas map[string]*cla.Manager

	// Forward is consulted for a BUNDLE_RECEIVED whose destination has no local agent
	// registered: the routing/forwarding policy itself is an external collaborator, so Node
	// only offers the hook and otherwise drops the bundle.
	Forward func(b *bpv7.Bundle)

	// Management is the built-in remote-administration agent, registered under this node's
	// scheme-appropriate sink identifier by NewNode.
	Management *agent.ManagementAgent
}

// NewNode creates a Node for localEID with a fresh graph, registry and inbox, and registers the
// built-in management agent with remote configuration disallowed (see NewNodeWithPolicy).
func NewNode(localEID bpv7.EndpointID, clock hal.Clock, inboxDepth int) *Node {
	return NewNodeWithPolicy(localEID, clock, inboxDepth, false)
}

// NewNodeWithPolicy is NewNode with explicit control over whether the management agent accepts
// commands from peers other than this node itself.
func NewNodeWithPolicy(localEID bpv7.EndpointID, clock hal.Clock, inboxDepth int, allowRemoteConfiguration bool) *Node {
	n := &Node{
		LocalEID:   localEID,
		Graph:      cgr.NewGraph(),
		Registry:   agent.NewRegistry(bpv7.SchemeOf(localEID.String())),
		Clock:      clock,
		Inbox:      hal.NewQueue(inboxDepth),
		clas:       make(map[string]*cla.Manager),
		Management: agent.NewManagementAgent(localEID, allowRemoteConfiguration, clock),
	}
	if err := n.Management.RegisterWith(n.Registry); err != nil {
		log.WithError(err).Error("core: failed to register built-in management agent")
	}
	return n
}

// RegisterCLA associates claName (e.g. "bibe") with the Manager that owns its links, so a
// TX_REQUEST whose CLA address starts with that name is routed there.
func (n *Node) RegisterCLA(claName string, mgr *cla.Manager) {
	n.clas[claName] = mgr
}

// managerFor resolves a CLA address's "<cla-name>:..." prefix to its Manager.
func (n *Node) managerFor(claAddr string) *cla.Manager {
	i := strings.IndexByte(claAddr, ':')
	if i < 0 {
		return nil
	}
	return n.clas[claAddr[:i]]
}

// sinkIDFor derives the agent sink identifier a bundle addressed to eid should be forwarded to:
// the bare demux for a dtn EID, or the bare service number for an ipn EID.
func sinkIDFor(eid bpv7.EndpointID) string {
	if bpv7.SchemeOf(eid.String()) == bpv7.SchemeIPN {
		return eid.Path()
	}
	return strings.TrimPrefix(eid.Path(), "/")
}

// Run drains Inbox until ctx is done, dispatching each BoundaryMessage. This is the single
// bundle-processor goroutine; Graph and Registry must not be touched from anywhere else.
func (n *Node) Run(ctx context.Context) {
	for {
		msg, err := n.Inbox.Receive(ctx)
		if err != nil {
			return
		}

		bm, ok := msg.(cla.BoundaryMessage)
		if !ok {
			continue
		}
		n.dispatch(bm)
	}
}

func (n *Node) dispatch(bm cla.BoundaryMessage) {
	switch bm.Type {
	case cla.AgentRegister:
		n.handleAgentRegister(bm.Payload.(cla.AgentRegisterMsg))
	case cla.BundleReceived:
		n.handleBundleReceived(bm.Payload.(cla.BundleReceivedMsg))
	case cla.NewLinkEstablished:
		log.WithField("cla_addr", bm.Payload.(cla.LinkAddrMsg).CLAAddr).Info("core: link established")
	case cla.LinkDown:
		log.WithField("cla_addr", bm.Payload.(cla.LinkAddrMsg).CLAAddr).Info("core: link down")
	case cla.TxRequest:
		n.handleTxRequest(bm.Payload.(cla.TxRequestMsg))
	default:
		log.WithField("type", bm.Type).Warn("core: unknown boundary message, dropping")
	}
}

func (n *Node) handleAgentRegister(m cla.AgentRegisterMsg) {
	callback, ok := m.Callback.(agent.Callback)
	if !ok {
		log.WithField("sink", m.SinkID).Error("core: AGENT_REGISTER callback has the wrong type")
		return
	}
	if err := n.Registry.Register(m.SinkID, callback, m.Param, m.IsSubscriber); err != nil {
		log.WithField("sink", m.SinkID).WithError(err).Warn("core: agent registration failed")
	}
}

func (n *Node) handleBundleReceived(m cla.BundleReceivedMsg) {
	sinkID := sinkIDFor(m.Bundle.Destination)

	if n.Registry.IsRegistered(sinkID) {
		bpCtx := agent.BpContext{Source: m.Bundle.Source}
		if err := n.Registry.Forward(sinkID, m.Bundle.Payload, bpCtx); err != nil {
			log.WithField("sink", sinkID).WithError(err).Warn("core: local delivery failed")
		}
		return
	}

	if n.Forward != nil {
		n.Forward(m.Bundle)
		return
	}
	log.WithField("destination", m.Bundle.Destination).Warn("core: no local agent and no forwarder configured, dropping bundle")
}

func (n *Node) handleTxRequest(m cla.TxRequestMsg) {
	mgr := n.managerFor(m.CLAAddr)
	if mgr == nil {
		log.WithField("cla_addr", m.CLAAddr).Warn("core: no CLA manager registered for this address, dropping")
		return
	}
	if !mgr.GetTxQueue(m.CLAAddr, cla.TxItem{Bundle: m.Bundle, DestEID: m.DestEID}) {
		log.WithField("cla_addr", m.CLAAddr).Warn("core: tx queue unavailable, dropping bundle")
	}
}
