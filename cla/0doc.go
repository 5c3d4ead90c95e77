// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cla is the convergence layer adapter framework: the polymorphic Driver contract
// every wire-protocol transport implements, the per-peer Link lifecycle (one RX task, one TX
// task) built on top of it, and the Manager registry that keeps the per-driver peer table.
//
// The bundle processor itself lives outside this package; cla only produces and consumes the
// BoundaryMessage values that cross the signaling queue between the two.
package cla
