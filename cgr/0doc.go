// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

// Package cgr implements the contact graph data model: nodes keyed by Endpoint ID, each
// holding a time-ordered list of scheduled contacts, plus the union/difference algebra used
// to merge overlapping route descriptions and the residual-capacity bookkeeping a routing
// algorithm consults before committing a bundle to a contact.
//
// The upstream source represents this graph with hand-rolled intrusive linked lists for
// endpoints, contacts and routed bundles. Here those become ordinary sorted slices: the
// union/difference operations are standard merge passes over a slice sorted by start time,
// and the "modified"/"deleted" out-parameters become plain append-only slices of references
// instead of list splicing.
package cgr
