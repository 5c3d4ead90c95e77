// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import (
	"encoding/gob"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"sync"

	"github.com/dtn7/cboring"
)

// EndpointType describes a discrete EndpointID scheme, e.g., "dtn" or "ipn".
// Because of Go's type system, the MarshalCbor function from the cboring library must be implemented as a
// value receiver in this interface. In addition, the UnmarshalCbor function MUST be implemented as a pointer
// receiver. Afaik, this is not possible to describe with a Golang interface..
type EndpointType interface {
	// SchemeName must return the static URI scheme type for this endpoint, e.g., "dtn" or "ipn".
	SchemeName() string

	// SchemeNo must return the static URI scheme type number for this endpoint, e.g., 1 for "dtn".
	SchemeNo() uint64

	// Authority is the authority part of the Endpoint URI, e.g., "foo" for "dtn://foo/bar".
	Authority() string

	// Path is the path part of the Endpoint URI, e.g., "/bar" for "dtn://foo/bar".
	Path() string

	// IsSingleton checks if this Endpoint represents a singleton.
	IsSingleton() bool

	// MarshalCbor is the marshalling CBOR function from the cboring library.
	MarshalCbor(io.Writer) error

	Valid
	fmt.Stringer
}

type endpointManager struct {
	typeMap map[uint64]reflect.Type
	newMap  map[string]func(string) (EndpointType, error)
}

var (
	endpointMngr  *endpointManager
	endpointMutex sync.Mutex
)

func getEndpointManager() *endpointManager {
	endpointMutex.Lock()
	defer endpointMutex.Unlock()

	if endpointMngr == nil {
		endpointMngr = &endpointManager{
			typeMap: make(map[uint64]reflect.Type),
			newMap:  make(map[string]func(string) (EndpointType, error)),
		}

		epTypes := []struct {
			schemeNo   uint64
			schemeName string
			impl       interface{}
			newFunc    func(string) (EndpointType, error)
		}{
			{dtnEndpointSchemeNo, dtnEndpointSchemeName, DtnEndpoint{}, NewDtnEndpoint},
			{ipnEndpointSchemeNo, ipnEndpointSchemeName, IpnEndpoint{}, NewIpnEndpoint},
		}

		for _, epType := range epTypes {
			endpointMngr.typeMap[epType.schemeNo] = reflect.TypeOf(epType.impl)
			endpointMngr.newMap[epType.schemeName] = epType.newFunc
			gob.Register(epType.impl)
		}
	}

	return endpointMngr
}

// EndpointID represents an Endpoint ID as defined in section 4.1.5.1 of RFC 9171.
// Its concrete form is specified by an EndpointType, e.g., DtnEndpoint or IpnEndpoint.
type EndpointID struct {
	EndpointType EndpointType
}

var schemeRegexp = regexp.MustCompile(`^([[:alpha:]][[:alnum:]]*):.+$`)

// NewEndpointID parses an EndpointID from its URI representation, e.g., "dtn://seven/" or "ipn:1.2".
//
// This is purely lexical validation against the grammars of the known schemes; it never resolves
// or normalizes a node name.
func NewEndpointID(uri string) (e EndpointID, err error) {
	matches := schemeRegexp.FindStringSubmatch(uri)
	if len(matches) == 0 {
		err = fmt.Errorf("eid: %q does not match any known scheme grammar", uri)
		return
	}

	scheme := matches[1]
	f, ok := getEndpointManager().newMap[scheme]
	if !ok {
		err = fmt.Errorf("eid: no handler registered for URI scheme %q", scheme)
		return
	}

	et, etErr := f(uri)
	if etErr != nil {
		err = etErr
		return
	}

	e = EndpointID{et}
	return
}

// MustNewEndpointID behaves like NewEndpointID, but panics on error. Intended for tests and literals.
func MustNewEndpointID(uri string) EndpointID {
	ep, err := NewEndpointID(uri)
	if err != nil {
		panic(err)
	}
	return ep
}

// MarshalCbor writes the CBOR representation of this Endpoint ID.
func (eid *EndpointID) MarshalCbor(w io.Writer) error {
	if err := cboring.WriteArrayLength(2, w); err != nil {
		return err
	}

	if err := cboring.WriteUInt(eid.EndpointType.SchemeNo(), w); err != nil {
		return err
	}

	return eid.EndpointType.MarshalCbor(w)
}

// UnmarshalCbor creates this Endpoint ID based on a CBOR representation.
func (eid *EndpointID) UnmarshalCbor(r io.Reader) error {
	if l, err := cboring.ReadArrayLength(r); err != nil {
		return err
	} else if l != 2 {
		return fmt.Errorf("EndpointID expects array of 2 elements, not %d", l)
	}

	var epType reflect.Type

	if scheme, err := cboring.ReadUInt(r); err != nil {
		return err
	} else if ept, ok := getEndpointManager().typeMap[scheme]; !ok {
		return fmt.Errorf("no URI scheme registered for scheme number %d", scheme)
	} else {
		epType = ept
	}

	tmpEt := reflect.New(epType)
	tmpEtUnmarshalCbor := tmpEt.MethodByName("UnmarshalCbor")
	if err := tmpEtUnmarshalCbor.Call([]reflect.Value{reflect.ValueOf(r)})[0].Interface(); err != nil {
		return err.(error)
	} else {
		eid.EndpointType = tmpEt.Elem().Interface().(EndpointType)
	}

	return nil
}

// Authority is the authority part of the Endpoint URI, e.g., "foo" for "dtn://foo/bar".
func (eid EndpointID) Authority() string {
	return eid.EndpointType.Authority()
}

// Path is the path part of the Endpoint URI, e.g., "/bar" for "dtn://foo/bar".
func (eid EndpointID) Path() string {
	return eid.EndpointType.Path()
}

// IsSingleton checks if this Endpoint represents a singleton.
func (eid EndpointID) IsSingleton() bool {
	return eid.EndpointType.IsSingleton()
}

// SameNode checks if two Endpoints refer to the same node, based on scheme and authority.
func (eid EndpointID) SameNode(other EndpointID) bool {
	return eid.EndpointType.SchemeName() == other.EndpointType.SchemeName() &&
		eid.EndpointType.Authority() == other.EndpointType.Authority()
}

// CheckValid returns an error for incorrect data.
func (eid EndpointID) CheckValid() error {
	if eid.EndpointType == nil {
		return fmt.Errorf("eid: zero-value EndpointID is not valid")
	}
	return eid.EndpointType.CheckValid()
}

// IsLocal reports whether this EndpointID may be used as this node's own local EID: an empty
// demux for a dtn EID, or a zero service number for an ipn EID.
func (eid EndpointID) IsLocal() bool {
	switch et := eid.EndpointType.(type) {
	case DtnEndpoint:
		return et.Ssp == dtnEndpointDtnNoneSsp || et.demux() == ""
	case IpnEndpoint:
		return et.Service == 0
	default:
		return false
	}
}

func (eid EndpointID) String() string {
	if eid.EndpointType == nil {
		return DtnNone().String()
	}
	return eid.EndpointType.String()
}

// Scheme identifies one of the known EndpointID URI schemes.
type Scheme string

const (
	SchemeDTN     Scheme = dtnEndpointSchemeName
	SchemeIPN     Scheme = ipnEndpointSchemeName
	SchemeUnknown Scheme = ""
)

// SchemeOf classifies the URI scheme of an EID string without fully validating its body.
// It returns SchemeUnknown if the string does not match any recognized scheme prefix.
func SchemeOf(eid string) Scheme {
	matches := schemeRegexp.FindStringSubmatch(eid)
	if len(matches) == 0 {
		return SchemeUnknown
	}

	switch matches[1] {
	case dtnEndpointSchemeName:
		return SchemeDTN
	case ipnEndpointSchemeName:
		return SchemeIPN
	default:
		return SchemeUnknown
	}
}

// ValidateEID checks eid against the lexical grammar of its scheme. It never resolves or
// normalizes the identifier; it only rejects malformed strings.
func ValidateEID(eid string) error {
	_, err := NewEndpointID(eid)
	return err
}

// ValidateLocalEID checks eid is both a well-formed EID and acceptable as this node's own
// local endpoint: an empty demux for dtn, or a zero service number for ipn.
func ValidateLocalEID(eid string) error {
	e, err := NewEndpointID(eid)
	if err != nil {
		return err
	}
	if !e.IsLocal() {
		return fmt.Errorf("eid: %q is not usable as a local endpoint", eid)
	}
	return nil
}

// ValidateSinkID checks sinkID against the agent-registration grammar for scheme: a bare demux
// string for dtn, or a bare decimal service number for ipn.
func ValidateSinkID(scheme Scheme, sinkID string) error {
	switch scheme {
	case SchemeDTN:
		return ValidateDtnDemux(sinkID)
	case SchemeIPN:
		_, err := ValidateIpnServiceNumber(sinkID)
		return err
	default:
		return fmt.Errorf("eid: unknown local scheme %q", scheme)
	}
}

// ParseIPN parses the node and service numbers out of an "ipn:N.S" EID string.
func ParseIPN(eid string) (node uint64, service uint64, err error) {
	e, err := NewEndpointID(eid)
	if err != nil {
		return 0, 0, err
	}
	ipn, ok := e.EndpointType.(IpnEndpoint)
	if !ok {
		return 0, 0, fmt.Errorf("eid: %q is not an ipn endpoint", eid)
	}
	return ipn.Node, ipn.Service, nil
}
