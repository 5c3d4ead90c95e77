// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package cgr

import (
	"fmt"
	"sort"

	"github.com/ud3tn/godtn/bpv7"
)

// NodeFlags is a bit set of node-wide capability flags.
type NodeFlags uint

const (
	// FlagInternetAccess marks a node as having a path to the public Internet, usable as a
	// last-resort relay by routing algorithms that consume this graph.
	FlagInternetAccess NodeFlags = 1 << iota
)

// Has reports whether all bits of other are set in flags.
func (flags NodeFlags) Has(other NodeFlags) bool {
	return flags&other == other
}

// Node is one contact-graph vertex: a peer reachable through zero or more scheduled contacts.
//
// A Node owns the storage for its Contacts; a Contact only holds a back-reference to its
// owning Node, never the other way around as a cyclic owning pointer.
type Node struct {
	EID     bpv7.EndpointID
	CLAAddr string
	Flags   NodeFlags

	// Endpoints lists the EIDs reachable through this node, sorted and deduplicated by
	// PrepareAndVerify.
	Endpoints []bpv7.EndpointID

	// Contacts is time-ordered by From once PrepareAndVerify has run.
	Contacts []*Contact
}

// NewNode creates a Node for the given EID with no contacts or reachable endpoints.
func NewNode(eid bpv7.EndpointID) *Node {
	return &Node{EID: eid}
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(%v, %d contacts)", n.EID, len(n.Contacts))
}

// PrepareAndVerify sorts this node's contacts by start time, strips and sorts both the node's
// own endpoint list and every contact's per-contact endpoint list, and reports whether the
// resulting contact list is internally consistent: every contact has From < To, and no two
// contacts of this node overlap.
func (n *Node) PrepareAndVerify() bool {
	sort.Slice(n.Contacts, func(i, j int) bool {
		return n.Contacts[i].From < n.Contacts[j].From
	})

	n.Endpoints = EndpointListStripAndSort(n.Endpoints)
	for _, c := range n.Contacts {
		c.Endpoints = EndpointListStripAndSort(c.Endpoints)
	}

	for i, c := range n.Contacts {
		if c.From >= c.To {
			return false
		}
		if i > 0 && n.Contacts[i-1].To > c.From {
			return false
		}
	}

	return true
}

// AddContact creates a new, zero-capacity Contact owned by this node and appends it to the
// node's contact list. The caller is responsible for setting From, To and Bitrate and then
// calling RecalculateCapacity (or PrepareAndVerify, which only sorts and validates).
func (n *Node) AddContact() *Contact {
	c := &Contact{Node: n}
	n.Contacts = append(n.Contacts, c)
	return c
}

// RemoveContact removes c from this node's contact list. It refuses to remove an active
// contact, mirroring the source invariant that an active contact must never be freed.
func (n *Node) RemoveContact(c *Contact) error {
	if c.Active {
		return fmt.Errorf("cgr: cannot remove an active contact of %v", n.EID)
	}

	for i, candidate := range n.Contacts {
		if candidate == c {
			n.Contacts = append(n.Contacts[:i], n.Contacts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("cgr: contact not found on node %v", n.EID)
}
