// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tomtom215/cratedigger/internal/engine"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

func writeReport(w io.Writer, format outputFormat, report *engine.Report, limit int) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatYAML:
		return writeYAML(w, report)
	default:
		return writeTable(w, report, limit)
	}
}

// writeYAML goes through JSON first so keys match the API field names.
func writeYAML(w io.Writer, report *engine.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func writeTable(w io.Writer, report *engine.Report, limit int) error {
	s := report.Summary
	fmt.Fprintf(w, "Run %s\n", report.RunID)
	fmt.Fprintf(w, "Listings %d  duplicates %d  filtered %d  excluded %d  canonical items %d  sellers %d\n\n",
		s.Listings, s.Duplicates, s.FilteredByCondition, s.Excluded, s.CanonicalItems, s.Sellers)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "RECOMMENDATION\tDEAL\tSCORE\tSELLER\tITEMS\tTOTAL COST\tSAVINGS")
	for i, rec := range report.Recommendations {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%s\t%d\t%s\t%s\n",
			rec.Title, rec.DealScore.Label(), rec.ScoreValue, rec.SellerName,
			len(rec.ListingIDs), money(rec.TotalCost), money(rec.PotentialSavings))
	}
	if len(report.Recommendations) == 0 {
		fmt.Fprintln(tw, "(none)")
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "RANK\tSELLER\tREGION\tOVERALL\tPRICE\tREPUTATION\tINVENTORY\tLOCATION\tLISTINGS\tSHIPPING")
	for i, sa := range report.Sellers {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%d\t%s\n",
			sa.Rank, sa.SellerName, sa.Region, sa.OverallScore,
			sa.PriceScore, sa.ReputationScore, sa.InventoryScore, sa.LocationScore,
			sa.ListingCount, money(sa.ShippingCost))
	}
	return tw.Flush()
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}
