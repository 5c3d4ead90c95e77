// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

// Package hal collects the minimal platform surface the node core consumes: a monotonic
// millisecond clock, a blocking FIFO queue and a thread-spawn helper.
//
// The upstream source exposes these as a C HAL built on binary semaphores, FreeRTOS queues and
// task handles. A binary semaphore used purely for mutual exclusion becomes a sync.Mutex; one
// used to signal a blocking consumer becomes a Go channel. There is no separate semaphore type
// here, only the two Go primitives that already cover both upstream use cases.
package hal
