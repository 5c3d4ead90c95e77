// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cla

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ud3tn/godtn/bpv7"
	"github.com/ud3tn/godtn/hal"
)

// Manager is a driver's per-peer link registry, keyed by socket address (the transport address
// ParseCLAAddr returns: the CLA address without its "<cla-name>:" prefix and "#<eid>" suffix).
//
// The upstream htab is guarded by a single binary semaphore held across both the lookup and
// the take of the link's own tx_queue_sem, to rule out a use-after-free race where the link is
// torn down between the two. Manager.GetTxQueue reproduces that by performing the lookup and
// the enqueue attempt under the same mutex hold, in that order (htab lock, then tx-queue
// enqueue) — never the reverse.
type Manager struct {
	driver Driver
	out    *hal.Queue
	clock  hal.Clock

	txQueueDepth int

	mu    sync.Mutex
	links map[string]*Link
}

// NewManager creates a Manager for driver, posting RX-side boundary messages to out.
func NewManager(driver Driver, out *hal.Queue, clock hal.Clock, txQueueDepth int) *Manager {
	return &Manager{
		driver:       driver,
		out:          out,
		clock:        clock,
		txQueueDepth: txQueueDepth,
		links:        make(map[string]*Link),
	}
}

func socketAddr(claAddr string) string {
	transportAddr, _, _ := ParseCLAAddr(claAddr)
	return transportAddr
}

// GetTxQueue looks up the Link for claAddr and enqueues item onto it, reporting whether an open
// link was found and accepted the item. It is the single entry point through which any other
// goroutine hands a bundle to a link, so the htab->tx-queue lock order is enforced in one
// place.
func (m *Manager) GetTxQueue(claAddr string, item TxItem) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[socketAddr(claAddr)]
	if !ok {
		return false
	}
	return link.Enqueue(item)
}

// StartScheduledContact transitions an existing link for peer at claAddr to in-contact, or
// creates and launches a new one. It reports whether the link was already connected, in which
// case the caller should notify the bundle processor of NewLinkEstablished itself (Manager does
// not hold a reference back to the processor's signaling queue beyond RX-produced messages).
func (m *Manager) StartScheduledContact(peer bpv7.EndpointID, claAddr string) (alreadyConnected bool, err error) {
	key := socketAddr(claAddr)

	m.mu.Lock()
	link, exists := m.links[key]
	if exists {
		link.setInContact(true)
		already := link.Active()
		m.mu.Unlock()
		return already, nil
	}

	link = NewLink(m.driver, claAddr, peer, m.clock, m.out, m.txQueueDepth)
	link.onTeardown = func() { m.remove(key) }
	link.setInContact(true)
	m.links[key] = link
	m.mu.Unlock()

	if err := m.driver.Connect(link); err != nil {
		m.remove(key)
		return false, err
	}
	link.Start()
	return false, nil
}

// EndScheduledContact marks the link for claAddr opportunistic; if it holds a live connection,
// the connection is torn down, which forces the peer-side registration to unwind too.
func (m *Manager) EndScheduledContact(claAddr string) {
	key := socketAddr(claAddr)

	m.mu.Lock()
	link, ok := m.links[key]
	m.mu.Unlock()
	if !ok {
		return
	}

	link.setInContact(false)
	if link.Active() {
		link.Stop()
	}
}

func (m *Manager) remove(key string) {
	m.mu.Lock()
	delete(m.links, key)
	m.mu.Unlock()
	log.WithField("cla_addr", key).Debug("cla: link removed from manager")
}

// Get returns the Link registered for claAddr, or nil.
func (m *Manager) Get(claAddr string) *Link {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.links[socketAddr(claAddr)]
}

// Len reports the number of currently registered links.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links)
}

// Close tears down every link currently registered with this Manager, for orderly process
// shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	links := make([]*Link, 0, len(m.links))
	for _, link := range m.links {
		links = append(links, link)
	}
	m.mu.Unlock()

	for _, link := range links {
		if link.Active() {
			link.Stop()
		}
	}
}
