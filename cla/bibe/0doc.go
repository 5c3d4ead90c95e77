// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

// Package bibe implements the representative CLA driver: BIBE (Bundle-in-Bundle Encapsulation)
// tunneled over a TCP connection to an AAP-speaking peer. It supplies the connection-management
// state machine (IDLE -> CONNECTING -> CONNECTED -> RETRYING -> TERMINATED), the AAP REGISTER
// handshake, and the BIBE header framing used by cla.Link's begin_packet/send_packet_data path.
package bibe
