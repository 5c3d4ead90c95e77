// SPDX-License-Identifier: BSD-3-Clause OR Apache-2.0

package hal

import "testing"

func TestSpawnStop(t *testing.T) {
	started := make(chan struct{})

	task := Spawn(func(t *Task) {
		close(started)
		<-t.Stopped()
	})

	<-started
	task.Stop()

	select {
	case <-task.Done():
	default:
		t.Fatalf("expected task to be done after Stop returns")
	}
}

func TestSpawnSelfExit(t *testing.T) {
	task := Spawn(func(t *Task) {})

	<-task.Done()
	task.Stop()
}
