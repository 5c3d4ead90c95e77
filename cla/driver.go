// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package cla

import "github.com/ud3tn/godtn/bpv7"

// Unlimited is the MBS sentinel a Driver returns when it imposes no serialized-bundle size
// limit.
const Unlimited int64 = -1

// Driver is the polymorphic convergence layer contract every wire-protocol transport
// implements. A Driver instance is shared by every Link it owns; per-link operations take the
// Link they apply to.
type Driver interface {
	// Name returns this driver's CLA address prefix, e.g. "bibe".
	Name() string

	// Launch starts any listener task(s) this driver needs. A purely outbound driver returns
	// nil without starting anything.
	Launch() error

	// MBS is the maximum serialized bundle size this driver can carry, or Unlimited.
	MBS() int64

	// Connect establishes (or re-establishes) the underlying transport for link, performing
	// whatever handshake the wire protocol requires. It does not return until the link is
	// either connected or the attempt has definitively failed.
	Connect(link *Link) error

	// BeginPacket writes any per-bundle framing header preceding a bundle of the given
	// serialized length.
	BeginPacket(link *Link, length int) error

	// SendPacketData streams a chunk of the serialized bundle to the peer.
	SendPacketData(link *Link, p []byte) error

	// EndPacket finalizes a per-bundle emission, if the wire format requires a trailer.
	EndPacket(link *Link) error

	// ResetParsers discards any in-progress RX parser state, e.g. after a completed message.
	ResetParsers(link *Link)

	// ForwardToSpecificParser feeds one received byte through the driver-specific framing and
	// on to the bundle parser. ready is true once a full bundle has been assembled.
	ForwardToSpecificParser(link *Link, b byte) (ready bool, bundle *bpv7.Bundle, err error)

	// Read blocks until at least one byte is available, or the link's transport is closed.
	Read(link *Link, buf []byte) (n int, err error)

	// DisconnectHandler cleans up any driver-owned per-link resources. The Link framework
	// handles queue draining and task signalling itself; this hook is for transport-specific
	// teardown (closing sockets, etc).
	DisconnectHandler(link *Link)
}

// ParseCLAAddr splits a CLA address of the form "<cla-name>:<transport-addr>[#<lower-eid>]"
// into its transport address and, if present, the peer's lower-EID suffix. The "<cla-name>:"
// prefix is not part of the returned transport address.
func ParseCLAAddr(claAddr string) (transportAddr string, lowerEID string, hasEID bool) {
	transportAddr = claAddr
	for i := 0; i < len(claAddr); i++ {
		if claAddr[i] == '#' {
			transportAddr, lowerEID, hasEID = claAddr[:i], claAddr[i+1:], true
			break
		}
	}
	for i := 0; i < len(transportAddr); i++ {
		if transportAddr[i] == ':' {
			return transportAddr[i+1:], lowerEID, hasEID
		}
	}
	return transportAddr, lowerEID, hasEID
}
