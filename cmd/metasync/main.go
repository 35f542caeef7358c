// Package main provides the entry point for the metasync CLI tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/metastore-labs/metasync/cmd/metasync/cmd"
)

// Version information populated by the release pipeline.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, version, commit, date); err != nil {
		os.Exit(1)
	}
}
