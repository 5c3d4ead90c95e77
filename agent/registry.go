// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package agent

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ud3tn/godtn/bpv7"
)

// Callback is the delivery function a sink registers. adu is the bundle payload being
// delivered; param is the opaque value supplied at registration; bpContext carries whatever
// the bundle processor attaches for this delivery (e.g. the source EID).
type Callback func(adu []byte, param interface{}, bpContext interface{})

// agentEntry is one registered sink.
type agentEntry struct {
	sinkID       string
	callback     Callback
	param        interface{}
	isSubscriber bool
}

// Registry is the process-wide sink_id -> Agent mapping. It is not internally synchronized;
// per its contract it is only ever called from the bundle-processor goroutine.
type Registry struct {
	localScheme bpv7.Scheme
	agents      map[string]*agentEntry
}

// NewRegistry creates an empty Registry that validates sink identifiers against localScheme.
func NewRegistry(localScheme bpv7.Scheme) *Registry {
	return &Registry{
		localScheme: localScheme,
		agents:      make(map[string]*agentEntry),
	}
}

// Register adds a new sink. sinkID is validated against the local EID scheme's sink-identifier
// grammar (a demux for dtn, a bare service number for ipn). isSubscriber is a routing hint
// threaded through from the richer registration signature; the registry itself does not act on
// it. Register fails if sinkID is malformed or already registered.
func (r *Registry) Register(sinkID string, callback Callback, param interface{}, isSubscriber bool) error {
	if err := bpv7.ValidateSinkID(r.localScheme, sinkID); err != nil {
		return fmt.Errorf("agent: cannot register sink %q: %w", sinkID, err)
	}
	if _, exists := r.agents[sinkID]; exists {
		return fmt.Errorf("agent: sink %q is already registered", sinkID)
	}

	r.agents[sinkID] = &agentEntry{
		sinkID:       sinkID,
		callback:     callback,
		param:        param,
		isSubscriber: isSubscriber,
	}
	log.WithField("sink", sinkID).Debug("agent: registered")
	return nil
}

// Deregister removes sinkID, if present. Deregistering an unregistered sink is a no-op.
func (r *Registry) Deregister(sinkID string) {
	delete(r.agents, sinkID)
	log.WithField("sink", sinkID).Debug("agent: deregistered")
}

// Forward delivers adu to sinkID's callback, invoked synchronously on the caller's goroutine.
// The ADU's ownership is always surrendered on this call: whether or not a sink is registered,
// the caller must not touch adu again afterward. If no agent is registered for sinkID, the ADU
// is dropped and an error returned.
func (r *Registry) Forward(sinkID string, adu []byte, bpContext interface{}) error {
	entry, ok := r.agents[sinkID]
	if !ok {
		log.WithField("sink", sinkID).Warn("agent: forward to unregistered sink, dropping ADU")
		return fmt.Errorf("agent: no agent registered for sink %q", sinkID)
	}

	entry.callback(adu, entry.param, bpContext)
	return nil
}

// IsRegistered reports whether sinkID currently has an agent registered.
func (r *Registry) IsRegistered(sinkID string) bool {
	_, ok := r.agents[sinkID]
	return ok
}
