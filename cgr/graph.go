// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package cgr

import (
	"fmt"
	"sync"

	"github.com/ud3tn/godtn/bpv7"
)

// Graph is the process-wide contact graph: a registry of Nodes keyed by EID, guarded by a
// single mutex. A routing algorithm reads it; new contact schedules are merged into it as they
// arrive.
type Graph struct {
	mu    sync.Mutex
	nodes map[string]*Node
}

// NewGraph returns an empty contact graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// GetOrCreate returns the Node for eid, creating an empty one if this is the first time it is
// seen.
func (g *Graph) GetOrCreate(eid bpv7.EndpointID) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := eid.String()
	if n, ok := g.nodes[key]; ok {
		return n
	}

	n := NewNode(eid)
	g.nodes[key] = n
	return n
}

// Get returns the Node for eid, or nil if none has been registered.
func (g *Graph) Get(eid bpv7.EndpointID) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[eid.String()]
}

// Remove deletes the Node for eid. It refuses to remove a node with an active contact.
func (g *Graph) Remove(eid bpv7.EndpointID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := eid.String()
	n, ok := g.nodes[key]
	if !ok {
		return nil
	}
	for _, c := range n.Contacts {
		if c.Active {
			return fmt.Errorf("cgr: cannot remove node %v, has an active contact", eid)
		}
	}

	delete(g.nodes, key)
	return nil
}

// MergeContacts applies ContactListUnion between the EID's existing contact list and incoming,
// replacing it with the merged result and re-validating ordering. incoming's contacts are
// expected to already reference the same Node (via GetOrCreate) as their owner.
func (g *Graph) MergeContacts(eid bpv7.EndpointID, incoming []*Contact) (modified []*Contact, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[eid.String()]
	if !ok {
		n = NewNode(eid)
		g.nodes[eid.String()] = n
	}

	merged, mod := ContactListUnion(n.Contacts, incoming)
	n.Contacts = merged
	if !n.PrepareAndVerify() {
		return nil, fmt.Errorf("cgr: merge produced an inconsistent contact list for %v", eid)
	}
	return mod, nil
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}
