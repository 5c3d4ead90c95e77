// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package bibe

import (
	"bytes"
	"testing"

	"github.com/ud3tn/godtn/bpv7"
)

func TestRegisterSinkByScheme(t *testing.T) {
	if got := registerSink(bpv7.MustNewEndpointID("dtn://peer/")); got != "bibe" {
		t.Fatalf("expected dtn peer to register sink %q, got %q", "bibe", got)
	}
	if got := registerSink(bpv7.MustNewEndpointID("ipn:1.0")); got != "2925" {
		t.Fatalf("expected ipn peer to register sink %q, got %q", "2925", got)
	}
}

func TestAAPMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := writeAAPMessage(&buf, aapRegister, []byte("bibe")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	typ, payload, err := readAAPMessage(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ != aapRegister {
		t.Fatalf("expected aapRegister, got %v", typ)
	}
	if string(payload) != "bibe" {
		t.Fatalf("expected payload %q, got %q", "bibe", payload)
	}
}

func TestExpectHandshakeReplyRejectsNonWelcome(t *testing.T) {
	var buf bytes.Buffer
	_ = writeAAPMessage(&buf, aapAck, nil)

	if err := expectHandshakeReply(&buf); err == nil {
		t.Fatalf("expected a non-WELCOME reply to be rejected")
	}
}
