// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package bibe

import (
	"fmt"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ud3tn/godtn/bpv7"
	"github.com/ud3tn/godtn/cla"
)

// Dialer opens the underlying transport connection for a CLA address's transport part. The
// default is net.Dial("tcp", addr); tests substitute a Dialer that fails deterministically.
type Dialer func(transportAddr string) (net.Conn, error)

func defaultDialer(transportAddr string) (net.Conn, error) {
	return net.Dial("tcp", transportAddr)
}

// peerConn is the live connection and RX parsing state for one BIBE peer, keyed by transport
// address in Driver.conns.
type peerConn struct {
	conn       net.Conn
	state      State
	retryCount int
	header     *headerState
	inHeader   bool
	bundleLeft int
	bundleBuf  []byte
}

// Driver is the BIBE CLA driver: the representative implementation of cla.Driver.
type Driver struct {
	Dial             Dialer
	MaxRetryAttempts int
	RetryInterval    time.Duration

	mu    sync.Mutex
	conns map[string]*peerConn
}

// NewDriver creates a BIBE driver with the given retry policy and the default TCP dialer.
func NewDriver(maxRetryAttempts int, retryInterval time.Duration) *Driver {
	return &Driver{
		Dial:             defaultDialer,
		MaxRetryAttempts: maxRetryAttempts,
		RetryInterval:    retryInterval,
		conns:            make(map[string]*peerConn),
	}
}

func (d *Driver) Name() string { return "bibe" }

func (d *Driver) Launch() error { return nil }

func (d *Driver) MBS() int64 { return cla.Unlimited }

// Connect runs the IDLE -> CONNECTING -> CONNECTED/RETRYING -> CONNECTED/TERMINATED state
// machine: up to MaxRetryAttempts+1 total connect-and-handshake attempts, separated by
// RetryInterval, before giving up. The retry counter exists only for the duration of this call;
// a successful connection always starts back at 0 on its next Connect.
func (d *Driver) Connect(link *cla.Link) error {
	transportAddr, _, _ := cla.ParseCLAAddr(link.CLAAddr)

	var lastErr error
	for attempt := 0; attempt <= d.MaxRetryAttempts; attempt++ {
		state := StateConnecting
		if attempt > 0 {
			state = StateRetrying
		}
		log.WithField("cla_addr", link.CLAAddr).WithField("attempt", attempt).WithField("state", state).Debug("bibe: connecting")

		conn, err := d.Dial(transportAddr)
		if err != nil {
			lastErr = err
			if attempt < d.MaxRetryAttempts {
				time.Sleep(d.RetryInterval)
			}
			continue
		}

		if err := writeRegister(conn, link.Peer); err != nil {
			lastErr = fmt.Errorf("bibe: REGISTER send failed: %w", err)
			conn.Close()
			if attempt < d.MaxRetryAttempts {
				time.Sleep(d.RetryInterval)
			}
			continue
		}
		if err := expectHandshakeReply(conn); err != nil {
			lastErr = err
			conn.Close()
			if attempt < d.MaxRetryAttempts {
				time.Sleep(d.RetryInterval)
			}
			continue
		}

		d.mu.Lock()
		d.conns[transportAddr] = &peerConn{conn: conn, state: StateConnected, header: newHeaderState()}
		d.mu.Unlock()
		log.WithField("cla_addr", link.CLAAddr).Info("bibe: connected")
		return nil
	}

	log.WithField("cla_addr", link.CLAAddr).WithField("attempts", d.MaxRetryAttempts+1).Warn("bibe: retry exhausted, terminating")
	return fmt.Errorf("bibe: connect to %s failed after %d attempts: %w", transportAddr, d.MaxRetryAttempts+1, lastErr)
}

func (d *Driver) peerFor(link *cla.Link) *peerConn {
	transportAddr, _, _ := cla.ParseCLAAddr(link.CLAAddr)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[transportAddr]
}

// BeginPacket writes the BIBE header (destination lower-EID + bundle length) ahead of a bundle
// of the given serialized length.
func (d *Driver) BeginPacket(link *cla.Link, length int) error {
	p := d.peerFor(link)
	if p == nil {
		return fmt.Errorf("bibe: no connection for %s", link.CLAAddr)
	}

	_, lowerEID, _ := cla.ParseCLAAddr(link.CLAAddr)
	_, err := p.conn.Write(encodeHeader(lowerEID, length))
	return err
}

// SendPacketData streams raw bundle bytes; BIBE has no additional per-chunk framing.
func (d *Driver) SendPacketData(link *cla.Link, data []byte) error {
	p := d.peerFor(link)
	if p == nil {
		return fmt.Errorf("bibe: no connection for %s", link.CLAAddr)
	}
	_, err := p.conn.Write(data)
	return err
}

// EndPacket is a no-op: BIBE's framing is entirely in the header written by BeginPacket.
func (d *Driver) EndPacket(*cla.Link) error { return nil }

// ResetParsers discards any in-progress RX parsing state for link's connection.
func (d *Driver) ResetParsers(link *cla.Link) {
	p := d.peerFor(link)
	if p == nil {
		return
	}
	p.header.reset()
	p.inHeader = false
	p.bundleLeft = 0
	p.bundleBuf = nil
}

// ForwardToSpecificParser implements the RX chain: header bytes are accumulated by headerState;
// once the header is complete, the following bundleLen bytes are accumulated as the
// encapsulated bundle's raw payload, then handed to the bundle parser (here, wrapped directly
// into a Bundle, since full BPv7 parsing is out of this driver's scope).
func (d *Driver) ForwardToSpecificParser(link *cla.Link, b byte) (bool, *bpv7.Bundle, error) {
	p := d.peerFor(link)
	if p == nil {
		return false, nil, fmt.Errorf("bibe: no connection for %s", link.CLAAddr)
	}

	if !p.inHeader && p.header.buf == nil && p.bundleLeft == 0 && p.bundleBuf == nil {
		p.inHeader = true
	}

	if p.inHeader {
		done, _, bundleLen, err := p.header.feed(b)
		if err != nil {
			return false, nil, err
		}
		if !done {
			return false, nil, nil
		}
		p.inHeader = false
		p.bundleLeft = bundleLen
		p.bundleBuf = make([]byte, 0, bundleLen)
		if bundleLen == 0 {
			return true, &bpv7.Bundle{Payload: append([]byte(nil), p.bundleBuf...)}, nil
		}
		return false, nil, nil
	}

	p.bundleBuf = append(p.bundleBuf, b)
	p.bundleLeft--
	if p.bundleLeft > 0 {
		return false, nil, nil
	}

	return true, &bpv7.Bundle{Payload: append([]byte(nil), p.bundleBuf...)}, nil
}

// Read blocks on the underlying connection.
func (d *Driver) Read(link *cla.Link, buf []byte) (int, error) {
	p := d.peerFor(link)
	if p == nil {
		return 0, fmt.Errorf("bibe: no connection for %s", link.CLAAddr)
	}
	return p.conn.Read(buf)
}

// DisconnectHandler closes the underlying connection and drops the peer's connection state.
func (d *Driver) DisconnectHandler(link *cla.Link) {
	transportAddr, _, _ := cla.ParseCLAAddr(link.CLAAddr)

	d.mu.Lock()
	p, ok := d.conns[transportAddr]
	delete(d.conns, transportAddr)
	d.mu.Unlock()

	if ok && p.conn != nil {
		_ = p.conn.Close()
	}
}
