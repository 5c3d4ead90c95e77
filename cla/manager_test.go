// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cla

import (
	"context"
	"testing"
	"time"

	"github.com/ud3tn/godtn/bpv7"
	"github.com/ud3tn/godtn/hal"
)

func TestManagerStartScheduledContactCreatesLink(t *testing.T) {
	driver := newMockDriver()
	out := hal.NewQueue(4)
	clock := hal.NewManualClock(0)
	mgr := NewManager(driver, out, clock, 4)

	peer := bpv7.MustNewEndpointID("dtn://peer/")
	already, err := mgr.StartScheduledContact(peer, "mock:peer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if already {
		t.Fatalf("expected a freshly created link to report not-already-connected")
	}
	if mgr.Len() != 1 {
		t.Fatalf("expected one registered link, got %d", mgr.Len())
	}

	already2, err := mgr.StartScheduledContact(peer, "mock:peer")
	if err != nil {
		t.Fatalf("unexpected error on second start: %v", err)
	}
	if !already2 {
		t.Fatalf("expected the second start_scheduled_contact to see an already-connected link")
	}
	if mgr.Get("mock:peer").InContact() != true {
		t.Fatalf("expected link to be marked in-contact")
	}
}

func TestManagerStartScheduledContactPropagatesConnectError(t *testing.T) {
	driver := newMockDriver()
	driver.connectErr = errMockSend
	out := hal.NewQueue(4)
	clock := hal.NewManualClock(0)
	mgr := NewManager(driver, out, clock, 4)

	_, err := mgr.StartScheduledContact(bpv7.MustNewEndpointID("dtn://peer/"), "mock:peer")
	if err == nil {
		t.Fatalf("expected connect failure to propagate")
	}
	if mgr.Len() != 0 {
		t.Fatalf("expected a failed connect to leave no registered link")
	}
}

func TestManagerGetTxQueueAcceptsOnlyKnownLinks(t *testing.T) {
	driver := newMockDriver()
	out := hal.NewQueue(4)
	clock := hal.NewManualClock(0)
	mgr := NewManager(driver, out, clock, 4)

	peer := bpv7.MustNewEndpointID("dtn://peer/")
	if _, err := mgr.StartScheduledContact(peer, "mock:peer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer mgr.Get("mock:peer").Stop()

	bundle := bpv7.NewBundle(peer, bpv7.MustNewEndpointID("dtn://me/"), []byte("x"), 1000)
	if !mgr.GetTxQueue("mock:peer", TxItem{Bundle: &bundle, DestEID: peer}) {
		t.Fatalf("expected GetTxQueue to find the link and accept the item")
	}

	if mgr.GetTxQueue("mock:other", TxItem{Bundle: &bundle, DestEID: peer}) {
		t.Fatalf("expected GetTxQueue on an unknown address to report false")
	}
}

func TestManagerEndScheduledContactTearsDownLink(t *testing.T) {
	driver := newMockDriver()
	out := hal.NewQueue(4)
	clock := hal.NewManualClock(0)
	mgr := NewManager(driver, out, clock, 4)

	peer := bpv7.MustNewEndpointID("dtn://peer/")
	if _, err := mgr.StartScheduledContact(peer, "mock:peer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mgr.EndScheduledContact("mock:peer")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := out.Receive(ctx)
	if err != nil {
		t.Fatalf("expected a LinkDown message after end_scheduled_contact, got error: %v", err)
	}
	if msg.(BoundaryMessage).Type != LinkDown {
		t.Fatalf("expected LinkDown, got %v", msg.(BoundaryMessage).Type)
	}

	deadline := time.Now().Add(time.Second)
	for mgr.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if mgr.Len() != 0 {
		t.Fatalf("expected the link to remove itself from the manager on teardown")
	}
}

func TestManagerCloseStopsEveryLink(t *testing.T) {
	driver := newMockDriver()
	out := hal.NewQueue(8)
	clock := hal.NewManualClock(0)
	mgr := NewManager(driver, out, clock, 4)

	peerA := bpv7.MustNewEndpointID("dtn://peer-a/")
	peerB := bpv7.MustNewEndpointID("dtn://peer-b/")
	if _, err := mgr.StartScheduledContact(peerA, "mock:a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := mgr.StartScheduledContact(peerB, "mock:b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mgr.Close()

	deadline := time.Now().Add(time.Second)
	for mgr.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if mgr.Len() != 0 {
		t.Fatalf("expected Close to tear down every registered link, %d remain", mgr.Len())
	}
}

func TestManagerCloseOnEmptyManagerIsSafe(t *testing.T) {
	driver := newMockDriver()
	out := hal.NewQueue(4)
	clock := hal.NewManualClock(0)
	mgr := NewManager(driver, out, clock, 4)

	mgr.Close()
}
