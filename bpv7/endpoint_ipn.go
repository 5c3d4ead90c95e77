// SPDX-FileCopyrightText: 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import (
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/dtn7/cboring"
)

const (
	ipnEndpointSchemeName string = "ipn"
	ipnEndpointSchemeNo   uint64 = 2
)

// ipnUriRegexp enforces the numeric grammar of RFC 6260: plain ASCII digits, no sign, no
// thousands separators and no leading zeros except the literal "0" itself.
var ipnUriRegexp = regexp.MustCompile(`^ipn:(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)$`)

// IpnEndpoint describes the ipn URI scheme for EndpointIDs, as defined in RFC 6260.
type IpnEndpoint struct {
	Node    uint64
	Service uint64
}

// NewIpnEndpoint parses an ipn-scheme URI into an IpnEndpoint.
func NewIpnEndpoint(uri string) (e EndpointType, err error) {
	matches := ipnUriRegexp.FindStringSubmatch(uri)
	if matches == nil {
		return nil, fmt.Errorf("eid: %q does not match an ipn endpoint", uri)
	}

	node, err := strconv.ParseUint(matches[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("eid: ipn node number overflow in %q: %w", uri, err)
	}

	service, err := strconv.ParseUint(matches[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("eid: ipn service number overflow in %q: %w", uri, err)
	}

	return IpnEndpoint{Node: node, Service: service}, nil
}

// SchemeName is "ipn" for IpnEndpoints.
func (e IpnEndpoint) SchemeName() string {
	return ipnEndpointSchemeName
}

// SchemeNo is 2 for IpnEndpoints.
func (e IpnEndpoint) SchemeNo() uint64 {
	return ipnEndpointSchemeNo
}

// Authority is the authority part of the Endpoint URI, e.g., "23" for "ipn:23.42".
func (e IpnEndpoint) Authority() string {
	return fmt.Sprintf("%d", e.Node)
}

// Path is the path part of the Endpoint URI, e.g., "42" for "ipn:23.42".
func (e IpnEndpoint) Path() string {
	return fmt.Sprintf("%d", e.Service)
}

// IsSingleton checks if this Endpoint represents a singleton.
//
// All IPN Endpoints are singletons by definition.
func (IpnEndpoint) IsSingleton() bool {
	return true
}

// CheckValid returns an error for incorrect data. Any pair of uint64 values is a structurally
// valid IpnEndpoint; the numeric-grammar constraints (no leading zeros, no sign, no overflow)
// only apply to the string form and are enforced by NewIpnEndpoint.
func (e IpnEndpoint) CheckValid() error {
	return nil
}

func (e IpnEndpoint) String() string {
	return fmt.Sprintf("%s:%d.%d", ipnEndpointSchemeName, e.Node, e.Service)
}

// MarshalCbor writes this IpnEndpoint's CBOR representation.
func (e IpnEndpoint) MarshalCbor(w io.Writer) error {
	if err := cboring.WriteArrayLength(2, w); err != nil {
		return err
	}

	for _, n := range []uint64{e.Node, e.Service} {
		if err := cboring.WriteUInt(n, w); err != nil {
			return err
		}
	}

	return nil
}

// ValidateIpnServiceNumber checks sinkID parses as a bare, non-negative decimal u64 with no
// sign, no separators and no leading zeros (besides the literal "0"), used to validate an
// agent sink identifier on an ipn-scheme node.
func ValidateIpnServiceNumber(sinkID string) (uint64, error) {
	if sinkID != "0" && (sinkID == "" || sinkID[0] == '0') {
		return 0, fmt.Errorf("eid: %q is not a valid ipn service number", sinkID)
	}
	for _, r := range sinkID {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("eid: %q is not a valid ipn service number", sinkID)
		}
	}

	n, err := strconv.ParseUint(sinkID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("eid: ipn service number overflow in %q: %w", sinkID, err)
	}
	return n, nil
}

// UnmarshalCbor reads a CBOR representation for an IpnEndpoint.
func (e *IpnEndpoint) UnmarshalCbor(r io.Reader) error {
	n, err := cboring.ReadArrayLength(r)
	if err != nil {
		return err
	} else if n != 2 {
		return fmt.Errorf("ipn uri expected array of 2 elements, not %d", n)
	}

	for _, f := range []*uint64{&e.Node, &e.Service} {
		v, err := cboring.ReadUInt(r)
		if err != nil {
			return err
		}
		*f = v
	}

	return nil
}
