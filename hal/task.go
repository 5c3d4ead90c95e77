// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package hal

import "sync"

// Task is a spawned goroutine with an explicit stop/ack handshake, standing in for the
// upstream HAL's task_create plus a task's own delete-self on exit. The stop channel signals
// the worker to unwind; the worker closes done when it actually has, which Stop waits on. A
// worker that observes a closed socket or other terminal condition on its own exits without
// waiting to be told, by returning from fn.
type Task struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Spawn starts fn in a new goroutine. fn must select on the returned Task's Stopped() channel
// at its blocking points and return once it fires; Spawn itself returns immediately.
func Spawn(fn func(t *Task)) *Task {
	t := &Task{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		fn(t)
	}()
	return t
}

// Stopped returns the channel a worker selects on to notice a stop request.
func (t *Task) Stopped() <-chan struct{} {
	return t.stop
}

// Stop requests the worker unwind and blocks until it has exited.
func (t *Task) Stop() {
	t.once.Do(func() { close(t.stop) })
	<-t.done
}

// Done reports whether the worker has exited, without blocking.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
