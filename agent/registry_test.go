// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package agent

import (
	"testing"

	"github.com/ud3tn/godtn/bpv7"
)

// TestForwardScenario is spec scenario S6: registering "app" then forwarding to it invokes the
// callback exactly once with the same ADU and param; forwarding to an unregistered sink fails.
func TestForwardScenario(t *testing.T) {
	reg := NewRegistry(bpv7.SchemeDTN)

	var calls int
	var gotADU []byte
	var gotParam interface{}
	param := "the-param"

	if err := reg.Register("app", func(adu []byte, param interface{}, _ interface{}) {
		calls++
		gotADU = adu
		gotParam = param
	}, param, false); err != nil {
		t.Fatalf("unexpected error registering: %v", err)
	}

	adu := []byte("hello")
	if err := reg.Forward("app", adu, nil); err != nil {
		t.Fatalf("unexpected error forwarding: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected callback invoked exactly once, got %d", calls)
	}
	if string(gotADU) != "hello" {
		t.Fatalf("expected the same ADU to reach the callback, got %q", gotADU)
	}
	if gotParam != param {
		t.Fatalf("expected the same param to reach the callback")
	}

	if err := reg.Forward("app2", adu, nil); err == nil {
		t.Fatalf("expected forwarding to an unregistered sink to fail")
	}
}

// TestAgentUniquenessScenario is spec property 6: a second register with the same sink fails;
// deregister followed by register succeeds.
func TestAgentUniquenessScenario(t *testing.T) {
	reg := NewRegistry(bpv7.SchemeDTN)
	noop := func([]byte, interface{}, interface{}) {}

	if err := reg.Register("app", noop, nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.Register("app", noop, nil, false); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}

	reg.Deregister("app")
	if err := reg.Register("app", noop, nil, false); err != nil {
		t.Fatalf("expected register after deregister to succeed, got %v", err)
	}
}

func TestRegisterValidatesSinkIDAgainstScheme(t *testing.T) {
	reg := NewRegistry(bpv7.SchemeIPN)
	noop := func([]byte, interface{}, interface{}) {}

	if err := reg.Register("7", noop, nil, false); err != nil {
		t.Fatalf("expected a bare service number to be accepted on an ipn node: %v", err)
	}
	if err := reg.Register("not-a-number", noop, nil, false); err == nil {
		t.Fatalf("expected a non-numeric sink id to be rejected on an ipn node")
	}
}

func TestForwardToUnregisteredSinkDropsADU(t *testing.T) {
	reg := NewRegistry(bpv7.SchemeDTN)
	if err := reg.Forward("nobody", []byte("adu"), nil); err == nil {
		t.Fatalf("expected forwarding to a never-registered sink to fail")
	}
}
