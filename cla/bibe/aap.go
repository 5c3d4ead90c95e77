// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package bibe

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ud3tn/godtn/bpv7"
)

// AAP message types this driver needs to speak and recognize. Full AAP framing is a black-box
// message codec; this is the minimal subset the BIBE handshake uses (REGISTER out, WELCOME
// back). The RX path, Driver.ForwardToSpecificParser, parses BIBE headers directly and does not
// decode AAP messages, so ACK and RECVBIBE are not handled there.
type aapMessageType byte

const (
	aapRegister aapMessageType = 1
	aapWelcome  aapMessageType = 2
	aapAck      aapMessageType = 3
	aapRecvBibe aapMessageType = 4
)

// registerSink chooses the AAP REGISTER sink for a BIBE handshake, depending on the partner's
// EID scheme: "bibe" for a dtn-scheme peer, "2925" (the well-known BIBE service number) for an
// ipn-scheme peer.
func registerSink(partner bpv7.EndpointID) string {
	if bpv7.SchemeOf(partner.String()) == bpv7.SchemeIPN {
		return "2925"
	}
	return "bibe"
}

// writeAAPMessage frames a message as [type byte][4-byte BE length][payload].
func writeAAPMessage(w io.Writer, t aapMessageType, payload []byte) error {
	header := make([]byte, 5)
	header[0] = byte(t)
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// writeRegister sends the AAP REGISTER handshake message for partner.
func writeRegister(w io.Writer, partner bpv7.EndpointID) error {
	return writeAAPMessage(w, aapRegister, []byte(registerSink(partner)))
}

// readAAPMessage reads one framed AAP message from r.
func readAAPMessage(r io.Reader) (aapMessageType, []byte, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}

	t := aapMessageType(header[0])
	length := binary.BigEndian.Uint32(header[1:])
	if length == 0 {
		return t, nil, nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return t, payload, nil
}

// expectHandshakeReply reads the peer's reply to REGISTER, accepting only WELCOME.
func expectHandshakeReply(r io.Reader) error {
	t, _, err := readAAPMessage(r)
	if err != nil {
		return fmt.Errorf("bibe: handshake read failed: %w", err)
	}
	if t != aapWelcome {
		return fmt.Errorf("bibe: expected WELCOME, got AAP message type %d", t)
	}
	return nil
}
