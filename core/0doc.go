// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package core wires the contact graph, agent registry, management agent and CLA managers
// together behind a single bundle-processor goroutine that drains the cla.BoundaryMessage
// signaling queue.
//
// The upstream source reaches the agent registry and node graph through process-wide globals
// a connection-management task or RX task calls directly. Here both are fields of a single Node
// context object, touched only from the goroutine running Node.Run; every other goroutine
// reaches them exclusively by posting a BoundaryMessage, matching the concurrency model's rule
// that the registry and graph are "not thread-safe; accessed only from the bundle-processor
// thread."
package core
