// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import (
	"fmt"
	"io"
	"regexp"

	"github.com/dtn7/cboring"
)

const (
	dtnEndpointSchemeName string = "dtn"
	dtnEndpointSchemeNo   uint64 = 1
	dtnEndpointDtnNoneSsp string = "none"
)

// dtnSspRegexp is the Ssp form "//node-name/demux" of a dtn EID other than dtn:none. The node-name is drawn from
// [A-Za-z0-9._-] and must be non-empty; the demux may be any run of VCHAR (0x21..0x7E).
var dtnSspRegexp = regexp.MustCompile(`^//([A-Za-z0-9._-]+)/([\x21-\x7e]*)$`)

var dtnUriRegexp = regexp.MustCompile(`^dtn:(.+)$`)

// dtnDemuxRegexp is the demux grammar on its own, without the leading "//node-name/".
var dtnDemuxRegexp = regexp.MustCompile(`^[\x21-\x7e]*$`)

// ValidateDtnDemux checks demux against the dtn-scheme demux grammar, used to validate an
// agent sink identifier on a dtn-scheme node.
func ValidateDtnDemux(demux string) error {
	if !dtnDemuxRegexp.MatchString(demux) {
		return fmt.Errorf("eid: %q is not a valid dtn demux", demux)
	}
	return nil
}

// DtnEndpoint describes the dtn URI scheme for EndpointIDs, as defined in ietf-dtn-bpbis.
//
// Validation is purely lexical: "dtn:none" or "dtn://<node-name>/<demux>". No resolution or
// normalization of the node name is performed.
type DtnEndpoint struct {
	Ssp string
}

// NewDtnEndpoint parses a dtn-scheme URI into a DtnEndpoint.
func NewDtnEndpoint(uri string) (e EndpointType, err error) {
	matches := dtnUriRegexp.FindStringSubmatch(uri)
	if matches == nil {
		return nil, fmt.Errorf("eid: %q does not match a dtn endpoint", uri)
	}

	ep := DtnEndpoint{Ssp: matches[1]}
	if err = ep.CheckValid(); err != nil {
		return nil, err
	}

	return ep, nil
}

// SchemeName is "dtn" for DtnEndpoints.
func (DtnEndpoint) SchemeName() string {
	return dtnEndpointSchemeName
}

// SchemeNo is 1 for DtnEndpoints.
func (DtnEndpoint) SchemeNo() uint64 {
	return dtnEndpointSchemeNo
}

// isNone reports whether this is the null endpoint dtn:none.
func (e DtnEndpoint) isNone() bool {
	return e.Ssp == dtnEndpointDtnNoneSsp
}

// nodeNameAndDemux splits a non-none Ssp into its node-name and demux parts. Only call this
// after CheckValid has succeeded.
func (e DtnEndpoint) nodeNameAndDemux() (nodeName, demux string, ok bool) {
	m := dtnSspRegexp.FindStringSubmatch(e.Ssp)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func (e DtnEndpoint) demux() string {
	_, demux, ok := e.nodeNameAndDemux()
	if !ok {
		return ""
	}
	return demux
}

// Authority is the authority part of the Endpoint URI, e.g., "foo" for "dtn://foo/bar".
func (e DtnEndpoint) Authority() string {
	if e.isNone() {
		return ""
	}
	nodeName, _, _ := e.nodeNameAndDemux()
	return nodeName
}

// Path is the path part of the Endpoint URI, e.g., "/bar" for "dtn://foo/bar".
func (e DtnEndpoint) Path() string {
	if e.isNone() {
		return ""
	}
	_, demux, _ := e.nodeNameAndDemux()
	return "/" + demux
}

// IsSingleton checks if this Endpoint represents a singleton. dtn-scheme endpoints are always
// singletons in this implementation; there is no group addressing.
func (DtnEndpoint) IsSingleton() bool {
	return true
}

// CheckValid returns an error for incorrect data.
func (e DtnEndpoint) CheckValid() error {
	if e.isNone() {
		return nil
	}
	if !dtnSspRegexp.MatchString(e.Ssp) {
		return fmt.Errorf("eid: %q is not a valid dtn endpoint; expected dtn:none or dtn://<node-name>/<demux>", "dtn:"+e.Ssp)
	}
	return nil
}

func (e DtnEndpoint) String() string {
	return fmt.Sprintf("%s:%s", dtnEndpointSchemeName, e.Ssp)
}

// MarshalCbor writes this DtnEndpoint's CBOR representation.
func (e DtnEndpoint) MarshalCbor(w io.Writer) error {
	if e.isNone() {
		return cboring.WriteUInt(0, w)
	}
	return cboring.WriteTextString(e.Ssp, w)
}

// UnmarshalCbor reads a CBOR representation.
func (e *DtnEndpoint) UnmarshalCbor(r io.Reader) error {
	m, n, err := cboring.ReadMajors(r)
	if err != nil {
		return err
	}

	switch m {
	case cboring.UInt:
		e.Ssp = dtnEndpointDtnNoneSsp

	case cboring.TextString:
		tmp, err := cboring.ReadRawBytes(n, r)
		if err != nil {
			return err
		}
		e.Ssp = string(tmp)

	default:
		return fmt.Errorf("DtnEndpoint: wrong major type 0x%X for unmarshalling", m)
	}

	return nil
}

// DtnNone returns the null endpoint "dtn:none".
func DtnNone() EndpointID {
	return EndpointID{DtnEndpoint{Ssp: dtnEndpointDtnNoneSsp}}
}
