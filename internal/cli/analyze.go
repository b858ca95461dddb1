// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cratedigger/internal/config"
	"github.com/tomtom215/cratedigger/internal/engine"
	"github.com/tomtom215/cratedigger/internal/models"
	"github.com/tomtom215/cratedigger/internal/validation"
)

type analyzeOptions struct {
	input        string
	sellers      string
	configPath   string
	location     string
	minCondition string
	minSleeve    string
	output       string
	limit        int
	timeout      time.Duration
	verbose      bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a file of marketplace listings",
		Long: `Analyze runs the matcher, seller analyzer and recommendation engine over
the listings in --input and prints the resulting report.

Input files may be JSON (a request object or an array of listings) or
Parquet (one listing per row, prices as decimal strings).`,
		Example: `  cratedigger analyze --input listings.json --location US
  cratedigger analyze -i export.parquet --min-condition VG+ -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "listings file (.json or .parquet)")
	f.StringVar(&opts.sellers, "sellers", "", "JSON file of seller profiles")
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (defaults to CONFIG_PATH or ./config.yaml)")
	f.StringVarP(&opts.location, "location", "l", "", "buyer location: country code, region or worldwide")
	f.StringVar(&opts.minCondition, "min-condition", "", "minimum record condition, e.g. VG+")
	f.StringVar(&opts.minSleeve, "min-sleeve", "", "minimum sleeve condition")
	f.StringVarP(&opts.output, "output", "o", "table", "output format: table, json or yaml")
	f.IntVarP(&opts.limit, "limit", "n", 10, "rows per table section, 0 for all")
	f.DurationVar(&opts.timeout, "timeout", 0, "abort the run after this long (0 uses analysis.run_timeout)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log engine activity to stderr")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runAnalyze(ctx context.Context, out, errOut io.Writer, opts *analyzeOptions) error {
	format, err := parseFormat(opts.output)
	if err != nil {
		return err
	}

	var cfg *config.Config
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.LoadWithKoanf()
	}
	if err != nil {
		return err
	}

	logger := zerolog.Nop()
	if opts.verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: errOut, TimeFormat: "15:04:05"}).
			With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}

	req, err := LoadRequest(opts.input)
	if err != nil {
		return err
	}
	if opts.sellers != "" {
		sellers, err := LoadSellers(opts.sellers)
		if err != nil {
			return err
		}
		req.Sellers = append(req.Sellers, sellers...)
	}
	if err := applyPreferenceFlags(&req.Preferences, opts); err != nil {
		return err
	}
	req.Preferences = cfg.Analysis.ApplyDefaults(req.Preferences)

	if err := validation.ValidateStruct(req); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	eng, err := engine.New(cfg.EngineConfig(), logger)
	if err != nil {
		return err
	}

	timeout := opts.timeout
	if timeout == 0 {
		timeout = cfg.Analysis.RunTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	report, err := eng.Run(ctx, *req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return writeReport(out, format, report, opts.limit)
}

// applyPreferenceFlags overrides request preferences with explicitly set flags.
func applyPreferenceFlags(p *models.Preferences, opts *analyzeOptions) error {
	if opts.location != "" {
		p.Location = opts.location
	}
	if opts.minCondition != "" {
		c := models.ParseCondition(opts.minCondition)
		if !c.Known() {
			return fmt.Errorf("unknown condition %q", opts.minCondition)
		}
		p.MinRecordCondition = c
	}
	if opts.minSleeve != "" {
		c := models.ParseCondition(opts.minSleeve)
		if !c.Known() {
			return fmt.Errorf("unknown condition %q", opts.minSleeve)
		}
		p.MinSleeveCondition = c
	}
	return nil
}
