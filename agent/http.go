// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// wsDelivery is one ADU framed for a WebSocket client: the raw payload plus the source EID it
// arrived from.
type wsDelivery struct {
	Source  string `json:"source"`
	Payload []byte `json:"payload"`
}

// wsOutbound is one ADU a WebSocket client hands back for transmission.
type wsOutbound struct {
	Destination string `json:"destination"`
	Payload     []byte `json:"payload"`
}

// Outbound is an ADU a connected WebSocket client asked this node to send onward.
type Outbound struct {
	SinkID      string
	Destination string
	Payload     []byte
}

// WebSocketFrontend exposes the agent registry to local processes over a single "/sink/{id}"
// WebSocket endpoint: a connection to sink "app" both registers the sink and serves as the
// delivery channel for any ADU forwarded to it, and it also carries that client's outbound
// bundles back to the node.
//
// This is a process-local convenience front-end, not a convergence layer: it never runs on a
// node-to-node link and is unrelated to the CLA framework's registration handshake.
type WebSocketFrontend struct {
	registry *Registry
	upgrader websocket.Upgrader
	server   *http.Server

	// Outbound receives every ADU a connected client sends back for onward delivery. It buffers
	// up to 64 entries and is drained by whoever owns the front-end; core.Node does not read it,
	// and a client's read loop blocks while it is full.
	Outbound chan Outbound
}

// NewWebSocketFrontend creates a front-end bound to reg, serving addr once Serve is called.
func NewWebSocketFrontend(reg *Registry, addr string) *WebSocketFrontend {
	f := &WebSocketFrontend{
		registry: reg,
		upgrader: websocket.Upgrader{},
		Outbound: make(chan Outbound, 64),
	}

	router := mux.NewRouter()
	router.HandleFunc("/sink/{id}", f.handleSink)

	f.server = &http.Server{Addr: addr, Handler: router}
	return f
}

// Serve starts the HTTP listener. It blocks until the server is closed.
func (f *WebSocketFrontend) Serve() error {
	err := f.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close shuts down the HTTP listener.
func (f *WebSocketFrontend) Close() error {
	close(f.Outbound)
	return f.server.Close()
}

func (f *WebSocketFrontend) handleSink(w http.ResponseWriter, r *http.Request) {
	sinkID := mux.Vars(r)["id"]

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("agent: websocket upgrade failed")
		return
	}
	defer conn.Close()

	deliver := func(adu []byte, _ interface{}, bpContext interface{}) {
		source := ""
		if ctx, ok := bpContext.(BpContext); ok {
			source = ctx.Source.String()
		}
		msg := wsDelivery{Source: source, Payload: adu}
		if err := conn.WriteJSON(msg); err != nil {
			log.WithField("sink", sinkID).WithError(err).Warn("agent: websocket delivery failed")
		}
	}

	var cb Callback = deliver
	if err := f.registry.Register(sinkID, cb, nil, true); err != nil {
		log.WithField("sink", sinkID).WithError(err).Warn("agent: websocket client registration failed")
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	defer f.registry.Deregister(sinkID)

	for {
		var out wsOutbound
		if err := conn.ReadJSON(&out); err != nil {
			return
		}
		f.Outbound <- Outbound{SinkID: sinkID, Destination: out.Destination, Payload: out.Payload}
	}
}
