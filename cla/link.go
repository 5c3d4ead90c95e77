// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package cla

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ud3tn/godtn/bpv7"
	"github.com/ud3tn/godtn/hal"
)

// TxItem is one outstanding piece of work on a Link's TX queue: a bundle and where it is headed.
type TxItem struct {
	Bundle  *bpv7.Bundle
	DestEID bpv7.EndpointID
}

// Link is one CLA peer connection: its driver, transport address, RX/TX tasks and TX queue.
//
// The upstream source's RX/TX completion semaphores and "please stop" semaphore become the
// hal.Task done handshake plus a single closeCh the TX task selects on; the tx_queue_sem
// guarding enqueue becomes an ordinary mutex, since unlike the upstream binary semaphore it is
// never used to signal a blocking consumer.
type Link struct {
	Driver  Driver
	CLAAddr string
	Peer    bpv7.EndpointID
	Clock   hal.Clock

	// IdleTimeout closes the link's RX task if no byte arrives for this long. Zero disables
	// the idle timeout.
	IdleTimeout time.Duration

	// out is the bundle processor's signaling queue; the RX task posts BundleReceived and
	// LinkDown on it.
	out *hal.Queue

	mu          sync.Mutex
	active      bool
	inContact   bool
	lastRXTime  int64
	txQueue     chan TxItem
	txQueueOpen bool
	tornDown    bool

	closeOnce sync.Once
	closeCh   chan struct{}

	rxTask *hal.Task
	txTask *hal.Task

	// onTeardown, if set by a Manager, removes this link's htab entry before DisconnectHandler
	// runs, matching the upstream rule that the teardown path removes its own entry before
	// freeing its parameters.
	onTeardown func()
}

// NewLink creates a Link for driver over claAddr, with its TX queue open and ready to accept
// items once started.
func NewLink(driver Driver, claAddr string, peer bpv7.EndpointID, clock hal.Clock, out *hal.Queue, txQueueDepth int) *Link {
	return &Link{
		Driver:      driver,
		CLAAddr:     claAddr,
		Peer:        peer,
		Clock:       clock,
		out:         out,
		txQueue:     make(chan TxItem, txQueueDepth),
		txQueueOpen: true,
		closeCh:     make(chan struct{}),
	}
}

// Active reports whether this link is currently eligible to carry bundles.
func (l *Link) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

func (l *Link) setActive(v bool) {
	l.mu.Lock()
	l.active = v
	l.mu.Unlock()
}

// InContact reports whether this link is in a scheduled contact, as opposed to opportunistic.
func (l *Link) InContact() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inContact
}

func (l *Link) setInContact(v bool) {
	l.mu.Lock()
	l.inContact = v
	l.mu.Unlock()
}

// Enqueue offers item to the TX queue. It reports false without blocking forever if the queue
// has already been closed for draining by teardown.
func (l *Link) Enqueue(item TxItem) bool {
	l.mu.Lock()
	if !l.txQueueOpen {
		l.mu.Unlock()
		return false
	}
	q := l.txQueue
	l.mu.Unlock()

	select {
	case q <- item:
		return true
	default:
		log.WithField("cla_addr", l.CLAAddr).Warn("cla: tx queue full, dropping bundle")
		return false
	}
}

// Start launches the RX and TX tasks for this link and marks it active.
func (l *Link) Start() {
	l.setActive(true)
	l.rxTask = hal.Spawn(l.runRX)
	l.txTask = hal.Spawn(l.runTX)
}

// runRX repeatedly reads bytes from the driver and feeds them through its parser chain until a
// read error or an idle timeout.
func (l *Link) runRX(t *hal.Task) {
	buf := make([]byte, 4096)

	for {
		n, err := l.Driver.Read(l, buf)
		if err != nil {
			log.WithField("cla_addr", l.CLAAddr).WithError(err).Info("cla: rx read failed, tearing down")
			l.teardown()
			return
		}

		now := l.Clock.Now()
		l.mu.Lock()
		l.lastRXTime = now
		l.mu.Unlock()

		for i := 0; i < n; i++ {
			ready, bundle, ferr := l.Driver.ForwardToSpecificParser(l, buf[i])
			if ferr != nil {
				log.WithField("cla_addr", l.CLAAddr).WithError(ferr).Warn("cla: rx parser error, resetting")
				l.Driver.ResetParsers(l)
				continue
			}
			if ready {
				l.deliverBundle(bundle)
				l.Driver.ResetParsers(l)
			}
		}

		if l.idleExpired(now) {
			log.WithField("cla_addr", l.CLAAddr).Info("cla: rx idle timeout, tearing down")
			l.teardown()
			return
		}
	}
}

func (l *Link) idleExpired(now int64) bool {
	if l.IdleTimeout <= 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return now-l.lastRXTime >= l.IdleTimeout.Milliseconds()
}

func (l *Link) deliverBundle(b *bpv7.Bundle) {
	if l.out == nil {
		return
	}
	msg := BoundaryMessage{
		Type: BundleReceived,
		Payload: BundleReceivedMsg{
			Bundle:        b,
			SourceCLAAddr: l.CLAAddr,
		},
	}
	// Best-effort: the signaling queue is sized generously; a full queue here indicates the
	// bundle processor has stalled, which is out of this package's scope to resolve.
	_ = l.out.Send(context.Background(), msg)
}

// runTX blocks on the TX queue, streaming each item through the driver's begin/send/end packet
// sequence, until teardown closes closeCh.
func (l *Link) runTX(t *hal.Task) {
	for {
		select {
		case <-l.closeCh:
			l.drainTxQueue()
			return
		case item := <-l.txQueue:
			l.sendItem(item)
		}
	}
}

func (l *Link) sendItem(item TxItem) {
	if !l.Active() {
		return
	}

	payload := item.Bundle.Payload
	if err := l.Driver.BeginPacket(l, len(payload)); err != nil {
		log.WithField("cla_addr", l.CLAAddr).WithError(err).Warn("cla: begin_packet failed, tearing down")
		l.teardown()
		return
	}
	if err := l.Driver.SendPacketData(l, payload); err != nil {
		log.WithField("cla_addr", l.CLAAddr).WithError(err).Warn("cla: send_packet_data failed, tearing down")
		l.teardown()
		return
	}
	if err := l.Driver.EndPacket(l); err != nil {
		log.WithField("cla_addr", l.CLAAddr).WithError(err).Warn("cla: end_packet failed, tearing down")
		l.teardown()
	}
}

// drainTxQueue stops accepting new items and discards whatever is left unsent, matching the
// upstream teardown order: stop accepting, drain without sending, then the queue itself goes
// out of scope.
func (l *Link) drainTxQueue() {
	l.mu.Lock()
	l.txQueueOpen = false
	l.mu.Unlock()

	for {
		select {
		case <-l.txQueue:
		default:
			return
		}
	}
}

// teardown runs DisconnectHandler, unblocks the TX task and reports LinkDown exactly once. It
// may be called from the RX task, the TX task, or an external caller (Stop); it never waits on
// either task, so it is always safe to call from inside one of them.
func (l *Link) teardown() {
	l.mu.Lock()
	if l.tornDown {
		l.mu.Unlock()
		return
	}
	l.tornDown = true
	l.active = false
	l.inContact = false
	l.mu.Unlock()

	if l.onTeardown != nil {
		l.onTeardown()
	}
	l.Driver.DisconnectHandler(l)
	l.closeOnce.Do(func() { close(l.closeCh) })

	if l.out != nil {
		_ = l.out.Send(context.Background(), BoundaryMessage{
			Type:    LinkDown,
			Payload: LinkAddrMsg{CLAAddr: l.CLAAddr},
		})
	}
}

// Stop tears the link down from the outside (e.g. end_scheduled_contact or shutdown) and waits
// for both tasks to exit.
func (l *Link) Stop() {
	l.teardown()
	if l.rxTask != nil {
		<-l.rxTask.Done()
	}
	if l.txTask != nil {
		<-l.txTask.Done()
	}
}
