// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package bibe

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	header := encodeHeader("7", 1234)

	state := newHeaderState()
	var (
		done      bool
		lowerEID  string
		bundleLen int
		err       error
	)
	for _, b := range header {
		done, lowerEID, bundleLen, err = state.feed(b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if done {
			break
		}
	}

	if !done {
		t.Fatalf("expected header to be fully consumed")
	}
	if lowerEID != "7" {
		t.Fatalf("expected lower EID %q, got %q", "7", lowerEID)
	}
	if bundleLen != 1234 {
		t.Fatalf("expected bundle length 1234, got %d", bundleLen)
	}
}

func TestHeaderCRCMismatchRejected(t *testing.T) {
	header := encodeHeader("peer", 42)
	header[len(header)-1] ^= 0xFF

	state := newHeaderState()
	var err error
	for _, b := range header {
		var done bool
		done, _, _, err = state.feed(b)
		if err != nil {
			break
		}
		if done {
			break
		}
	}

	if err == nil {
		t.Fatalf("expected a corrupted header to be rejected")
	}
}
