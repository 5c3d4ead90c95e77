// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"github.com/ud3tn/godtn/agent"
	"github.com/ud3tn/godtn/bpv7"
	"github.com/ud3tn/godtn/cgr"
	"github.com/ud3tn/godtn/cla"
	"github.com/ud3tn/godtn/cla/bibe"
	"github.com/ud3tn/godtn/core"
	"github.com/ud3tn/godtn/hal"
)

// tomlConfig describes the TOML configuration file accepted by bpnoded.
type tomlConfig struct {
	Core    coreConf
	Logging logConf
	Agents  agentsConf
	Listen  []listenConf
	Contact []contactConf
}

// agentsConf describes the [agents] configuration block.
type agentsConf struct {
	WebSocketAddress string `toml:"websocket-address"`
}

// coreConf describes the [core] configuration block.
type coreConf struct {
	NodeID                   string `toml:"node-id"`
	AllowRemoteConfiguration bool   `toml:"allow-remote-configuration"`
	InboxDepth               int    `toml:"inbox-depth"`
}

// logConf describes the [logging] configuration block.
type logConf struct {
	Level        string
	ReportCaller bool `toml:"report-caller"`
	Format       string
}

// listenConf describes one [[listen]] CLA driver block.
type listenConf struct {
	Name             string
	MaxRetryAttempts int `toml:"max-retry-attempts"`
	RetryIntervalMs  int `toml:"retry-interval-ms"`
	TxQueueDepth     int `toml:"tx-queue-depth"`
	IdleTimeoutMs    int `toml:"idle-timeout-ms"`
}

// contactConf describes one [[contact]] scheduled-contact block, merged into the contact graph
// at startup.
type contactConf struct {
	Peer    string
	CLAAddr string `toml:"cla-addr"`
	Start   int64
	End     int64
	Bitrate uint64
}

func setupLogging(conf logConf) {
	if conf.Level != "" {
		lvl, err := log.ParseLevel(conf.Level)
		if err != nil {
			log.WithField("level", conf.Level).Warn("unknown log level, leaving default")
		} else {
			log.SetLevel(lvl)
		}
	}

	log.SetReportCaller(conf.ReportCaller)

	switch conf.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	case "json":
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	default:
		log.WithField("format", conf.Format).Warn("unknown logging format, leaving default")
	}
}

// buildDriver resolves a listenConf to a cla.Driver. bibe is presently the only driver in this
// tree; new convergence layers are added here as they are written.
func buildDriver(conf listenConf) (cla.Driver, error) {
	switch conf.Name {
	case "bibe":
		retryInterval := time.Duration(conf.RetryIntervalMs) * time.Millisecond
		if retryInterval <= 0 {
			retryInterval = time.Second
		}
		maxRetry := conf.MaxRetryAttempts
		if maxRetry <= 0 {
			maxRetry = 3
		}
		return bibe.NewDriver(maxRetry, retryInterval), nil
	default:
		return nil, fmt.Errorf("unknown listen.name %q", conf.Name)
	}
}

// parseNode builds a core.Node plus its CLA managers and local agent front-ends from a TOML
// configuration file. The returned cleanup func tears down every scheduled contact's link and
// any running agent front-end; it is safe to call once the caller has already stopped
// Node.Run.
func parseNode(filename string) (n *core.Node, cleanup func(), err error) {
	var conf tomlConfig
	if _, err = toml.DecodeFile(filename, &conf); err != nil {
		return nil, nil, err
	}

	setupLogging(conf.Logging)

	localEID, err := bpv7.NewEndpointID(conf.Core.NodeID)
	if err != nil {
		return nil, nil, fmt.Errorf("core.node-id: %w", err)
	}

	inboxDepth := conf.Core.InboxDepth
	if inboxDepth <= 0 {
		inboxDepth = 64
	}

	clock := hal.NewSystemClock()
	n = core.NewNodeWithPolicy(localEID, clock, inboxDepth, conf.Core.AllowRemoteConfiguration)

	var managers []*cla.Manager
	for _, lc := range conf.Listen {
		driver, derr := buildDriver(lc)
		if derr != nil {
			return nil, nil, derr
		}
		if err = driver.Launch(); err != nil {
			return nil, nil, fmt.Errorf("listen %q: launch failed: %w", lc.Name, err)
		}

		txQueueDepth := lc.TxQueueDepth
		if txQueueDepth <= 0 {
			txQueueDepth = 16
		}

		mgr := cla.NewManager(driver, n.Inbox, clock, txQueueDepth)
		n.RegisterCLA(driver.Name(), mgr)
		managers = append(managers, mgr)

		log.WithField("cla", driver.Name()).Info("convergence layer registered")
	}

	for _, cc := range conf.Contact {
		peer, perr := bpv7.NewEndpointID(cc.Peer)
		if perr != nil {
			return nil, nil, fmt.Errorf("contact.peer %q: %w", cc.Peer, perr)
		}

		node := n.Graph.GetOrCreate(peer)
		node.CLAAddr = cc.CLAAddr
		contact := &cgr.Contact{
			Node:    node,
			From:    cc.Start,
			To:      cc.End,
			Bitrate: int64(cc.Bitrate),
		}
		contact.RecalculateCapacity()

		if _, merr := n.Graph.MergeContacts(peer, []*cgr.Contact{contact}); merr != nil {
			return nil, nil, fmt.Errorf("contact.peer %q: %w", cc.Peer, merr)
		}

		log.WithFields(log.Fields{
			"peer":     cc.Peer,
			"cla_addr": cc.CLAAddr,
			"start":    cc.Start,
			"end":      cc.End,
		}).Info("scheduled contact added")
	}

	var wsFrontend *agent.WebSocketFrontend
	if conf.Agents.WebSocketAddress != "" {
		wsFrontend = agent.NewWebSocketFrontend(n.Registry, conf.Agents.WebSocketAddress)
		go func() {
			if serveErr := wsFrontend.Serve(); serveErr != nil {
				log.WithError(serveErr).Error("agent websocket front-end stopped")
			}
		}()
		log.WithField("address", conf.Agents.WebSocketAddress).Info("agent websocket front-end listening")
	}

	cleanup = func() {
		for _, mgr := range managers {
			mgr.Close()
		}
		if wsFrontend != nil {
			_ = wsFrontend.Close()
		}
	}
	return n, cleanup, nil
}
