// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package hal

import "context"

// Queue is a blocking, bounded FIFO of opaque messages, standing in for the upstream HAL's
// queue_create/queue_send/queue_receive trio. A zero-capacity Queue is unbuffered: every Send
// blocks until a Receive takes the message. Callers that need sends not to block should size
// capacity generously, matching the fixed-size queues the upstream HAL allocates.
type Queue struct {
	ch chan interface{}
}

// NewQueue creates a Queue buffering up to capacity pending messages before Send blocks.
func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan interface{}, capacity)}
}

// Send blocks until the message is enqueued or ctx is done.
func (q *Queue) Send(ctx context.Context, msg interface{}) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a message is available or ctx is done.
func (q *Queue) Receive(ctx context.Context) (interface{}, error) {
	select {
	case msg := <-q.ch:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryReceive returns immediately, reporting false if the queue was empty.
func (q *Queue) TryReceive() (interface{}, bool) {
	select {
	case msg := <-q.ch:
		return msg, true
	default:
		return nil, false
	}
}

// Len reports the number of messages currently buffered.
func (q *Queue) Len() int {
	return len(q.ch)
}
