// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ud3tn/godtn/bpv7"
)

func randomAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func TestWebSocketFrontendRegistersAndDelivers(t *testing.T) {
	reg := NewRegistry(bpv7.SchemeDTN)
	addr := randomAddr(t)
	f := NewWebSocketFrontend(reg, addr)

	go f.Serve()
	defer f.Close()
	time.Sleep(50 * time.Millisecond)

	u := url.URL{Scheme: "ws", Host: addr, Path: "/sink/app"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("unexpected error dialing: %v", err)
	}
	defer conn.Close()

	time.Sleep(20 * time.Millisecond)
	if !reg.IsRegistered("app") {
		t.Fatalf("expected sink \"app\" to be registered once the websocket connects")
	}

	if err := reg.Forward("app", []byte("hi"), BpContext{Source: bpv7.MustNewEndpointID("dtn://peer/")}); err != nil {
		t.Fatalf("unexpected error forwarding: %v", err)
	}

	var got wsDelivery
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("unexpected error reading delivery: %v", err)
	}
	if string(got.Payload) != "hi" || got.Source != "dtn://peer/" {
		t.Fatalf("unexpected delivery: %+v", got)
	}
}

func TestWebSocketFrontendForwardsOutbound(t *testing.T) {
	reg := NewRegistry(bpv7.SchemeDTN)
	addr := randomAddr(t)
	f := NewWebSocketFrontend(reg, addr)

	go f.Serve()
	defer f.Close()
	time.Sleep(50 * time.Millisecond)

	u := url.URL{Scheme: "ws", Host: addr, Path: "/sink/app"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("unexpected error dialing: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsOutbound{Destination: "dtn://peer/", Payload: []byte("out")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case out := <-f.Outbound:
		if out.SinkID != "app" || out.Destination != "dtn://peer/" || string(out.Payload) != "out" {
			t.Fatalf("unexpected outbound: %+v", out)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for outbound message")
	}
}

func TestWebSocketFrontendRejectsDuplicateSink(t *testing.T) {
	reg := NewRegistry(bpv7.SchemeDTN)
	addr := randomAddr(t)
	f := NewWebSocketFrontend(reg, addr)

	go f.Serve()
	defer f.Close()
	time.Sleep(50 * time.Millisecond)

	u := url.URL{Scheme: "ws", Host: addr, Path: "/sink/app"}
	first, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("unexpected error dialing: %v", err)
	}
	defer first.Close()
	time.Sleep(20 * time.Millisecond)

	second, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("unexpected error dialing: %v", err)
	}
	defer second.Close()

	var errMsg map[string]string
	if err := second.ReadJSON(&errMsg); err != nil {
		t.Fatalf("unexpected error reading rejection: %v", err)
	}
	if errMsg["error"] == "" {
		t.Fatalf("expected a non-empty error for the duplicate registration")
	}
}
