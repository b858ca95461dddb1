// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cratedigger",
		Short: "Find the best vinyl deals across marketplace listings",
		Long: `Cratedigger groups marketplace listings into canonical releases, scores
the sellers offering them and produces ranked purchase recommendations.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// A missing .env file is not an error.
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newAnalyzeCmd())
	return cmd
}
