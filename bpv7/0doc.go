// SPDX-FileCopyrightText: 2019, 2020, 2021 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package bpv7 provides the Endpoint ID (EID) grammar and a minimal Bundle descriptor shared
// across the node. Full BPv6/BPv7 wire serialization and parsing is treated as an external
// black-box: this package only carries the fields a convergence layer, the bundle processor
// boundary and the local agents need to address and route an already-parsed Bundle. A
// BundleParser is fed raw bytes and signals a completed Bundle through a callback; its
// internal framing is not specified here.
package bpv7
