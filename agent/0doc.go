// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package agent implements the process-wide agent registry that multiplexes delivered bundle
// ADUs to local sinks, plus the built-in management agent that interprets a small remote
// administrative command set.
//
// The registry is deliberately not internally synchronized: per its own contract it is only
// ever touched from the single bundle-processor goroutine, with every other goroutine routing
// register/deregister/forward requests to it as messages instead of calling it directly.
package agent
