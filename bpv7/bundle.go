// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Bundle is a minimal descriptor of an already-parsed BPv6/BPv7 bundle: the addressing fields
// a convergence layer, the node/contact graph and the agent registry need, plus the payload
// bytes handed to or received from an application. The wire encoding of a Bundle is produced
// and consumed entirely outside this package.
type Bundle struct {
	Destination       EndpointID
	Source            EndpointID
	ReportTo          EndpointID
	CreationTimestamp CreationTimestamp
	Lifetime          uint64
	Payload           []byte
}

// NewBundle creates a Bundle descriptor for a locally originated ADU.
func NewBundle(destination, source EndpointID, payload []byte, lifetime uint64) Bundle {
	return Bundle{
		Destination:       destination,
		Source:            source,
		ReportTo:          source,
		CreationTimestamp: NewCreationTimestamp(DtnTimeNow(), 0),
		Lifetime:          lifetime,
		Payload:           payload,
	}
}

func (b Bundle) String() string {
	return fmt.Sprintf("Bundle(%v -> %v, %d byte payload)", b.Source, b.Destination, len(b.Payload))
}

// ID returns a string uniquely identifying this Bundle by its source and creation timestamp,
// in line with the BPv7 bundle identity rule (source node + creation timestamp).
func (b Bundle) ID() string {
	return fmt.Sprintf("%v-%d-%d", b.Source, b.CreationTimestamp[0], b.CreationTimestamp[1])
}

// CheckValid aggregates every addressing-field error into one, per the Valid interface's
// tree-of-sub-types contract: a malformed Bundle may fail more than one field's validation at
// once, and a caller deciding whether to drop it wants to see all of them, not just the first.
func (b Bundle) CheckValid() error {
	var result *multierror.Error
	result = multierror.Append(result, b.Destination.CheckValid())
	result = multierror.Append(result, b.Source.CheckValid())
	result = multierror.Append(result, b.ReportTo.CheckValid())
	return result.ErrorOrNil()
}

// BundleParser is the black-box streaming wire-format parser a convergence layer feeds raw
// octets into. Concrete BPv6/BPv7/BIBE parsers live outside this repository; this interface is
// only the shape the CLA receive path expects. Feed consumes bytes as they arrive off the
// link; whenever it has assembled a complete Bundle, it invokes the BundleReadyFunc it was
// constructed with and returns ready=true. Reset clears any partial parse state, used both
// between bundles and after a protocol error.
type BundleParser interface {
	// Feed consumes one chunk of bytes from the link. consumed is the number of bytes
	// actually used from p; a parser is free to consume less than len(p) in one call.
	Feed(p []byte) (consumed int, ready bool, err error)

	// Reset clears in-progress parse state, discarding any partial bundle.
	Reset()
}

// BundleReadyFunc is invoked by a BundleParser once a full Bundle has been assembled.
type BundleReadyFunc func(b Bundle)
