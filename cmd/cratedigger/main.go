// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

// Command cratedigger analyzes marketplace listing exports from the shell.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/tomtom215/cratedigger/internal/api"
	"github.com/tomtom215/cratedigger/internal/cli"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		cli.NewRootCmd(),
		fang.WithVersion(api.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
