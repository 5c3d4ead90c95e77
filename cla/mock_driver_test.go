// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cla

import (
	"errors"
	"io"
	"sync"

	"github.com/ud3tn/godtn/bpv7"
)

// mockDriver is a Driver backed by in-memory byte slices, standing in for a real socket
// transport in tests. Each call to feed() makes one more chunk available to the next Read.
// forwardToSpecificParser treats every byte 0x0A ("\n") as completing a one-byte-at-a-time
// framed bundle whose payload is everything since the previous delimiter.
type mockDriver struct {
	mu       sync.Mutex
	inbox    [][]byte
	readCond chan struct{}
	closed   bool

	pending []byte

	sent          [][]byte
	beginCalls    int
	disconnects   int
	connectCalls  int
	connectErr    error
	sendErr       error
}

func newMockDriver() *mockDriver {
	return &mockDriver{readCond: make(chan struct{}, 1)}
}

func (d *mockDriver) Name() string { return "mock" }
func (d *mockDriver) Launch() error { return nil }
func (d *mockDriver) MBS() int64 { return Unlimited }

func (d *mockDriver) Connect(*Link) error {
	d.mu.Lock()
	d.connectCalls++
	err := d.connectErr
	d.mu.Unlock()
	return err
}

func (d *mockDriver) BeginPacket(*Link, int) error {
	d.mu.Lock()
	d.beginCalls++
	d.mu.Unlock()
	return nil
}

func (d *mockDriver) SendPacketData(_ *Link, p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sendErr != nil {
		return d.sendErr
	}
	cp := append([]byte(nil), p...)
	d.sent = append(d.sent, cp)
	return nil
}

func (d *mockDriver) EndPacket(*Link) error { return nil }

func (d *mockDriver) ResetParsers(*Link) {
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()
}

func (d *mockDriver) ForwardToSpecificParser(_ *Link, b byte) (bool, *bpv7.Bundle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b == '\n' {
		payload := d.pending
		d.pending = nil
		return true, &bpv7.Bundle{Payload: payload}, nil
	}
	d.pending = append(d.pending, b)
	return false, nil, nil
}

func (d *mockDriver) Read(_ *Link, buf []byte) (int, error) {
	for {
		d.mu.Lock()
		if len(d.inbox) > 0 {
			chunk := d.inbox[0]
			d.inbox = d.inbox[1:]
			d.mu.Unlock()
			n := copy(buf, chunk)
			return n, nil
		}
		if d.closed {
			d.mu.Unlock()
			return 0, io.EOF
		}
		d.mu.Unlock()
		<-d.readCond
	}
}

func (d *mockDriver) DisconnectHandler(*Link) {
	d.mu.Lock()
	d.disconnects++
	d.closed = true
	d.mu.Unlock()
	select {
	case d.readCond <- struct{}{}:
	default:
	}
}

func (d *mockDriver) feed(chunk []byte) {
	d.mu.Lock()
	d.inbox = append(d.inbox, chunk)
	d.mu.Unlock()
	select {
	case d.readCond <- struct{}{}:
	default:
	}
}

func (d *mockDriver) close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	select {
	case d.readCond <- struct{}{}:
	default:
	}
}

var errMockSend = errors.New("mock send failure")
