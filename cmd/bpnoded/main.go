// SPDX-FileCopyrightText: 2019, 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
)

// waitSigint blocks the current goroutine until a SIGINT arrives.
func waitSigint() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("Usage: %s configuration.toml", os.Args[0])
	}

	n, cancel, err := parseNode(os.Args[1])
	if err != nil {
		log.WithField("error", err).Fatal("failed to parse config")
	}

	ctx, stopRun := context.WithCancel(context.Background())
	go n.Run(ctx)

	log.WithField("node_id", n.LocalEID).Info("bpnoded started")
	waitSigint()
	log.Info("shutting down..")

	stopRun()
	cancel()
}
