// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `
[core]
node-id = "dtn://node1/"
allow-remote-configuration = false
inbox-depth = 16

[logging]
level = "warn"

[[listen]]
name = "bibe"
max-retry-attempts = 2
retry-interval-ms = 50

[[contact]]
peer = "dtn://node2/"
cla-addr = "bibe:127.0.0.1:4223"
start = 1000
end = 2000
bitrate = 10000
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bpnoded.toml")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatalf("unexpected error writing test config: %v", err)
	}
	return path
}

func TestParseNodeWiresListenAndContact(t *testing.T) {
	n, cleanup, err := parseNode(writeTestConfig(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	if got := n.LocalEID.String(); got != "dtn://node1/" {
		t.Fatalf("expected local EID %q, got %q", "dtn://node1/", got)
	}

	if n.Graph.Len() != 1 {
		t.Fatalf("expected exactly one contact-graph node, got %d", n.Graph.Len())
	}
}

func TestParseNodeRejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	content := `
[core]
node-id = "dtn://node1/"

[[listen]]
name = "nonexistent"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := parseNode(path); err == nil {
		t.Fatalf("expected an unknown driver name to be rejected")
	}
}

func TestParseNodeRejectsMalformedNodeID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	content := `
[core]
node-id = "not-a-valid-eid"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := parseNode(path); err == nil {
		t.Fatalf("expected a malformed node-id to be rejected")
	}
}
