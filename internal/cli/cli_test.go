// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"

	"github.com/tomtom215/cratedigger/internal/engine"
	"github.com/tomtom215/cratedigger/internal/models"
)

const listingsJSON = `[
  {"platform":"discogs","external_id":"1","title":"Abbey Road","artist":"The Beatles","price":"25.99","seller_id":"alpha","location":"United States","in_wantlist":true,"record_condition":"VG+"},
  {"platform":"ebay","external_id":"2","title":"ABBEY ROAD","artist":"Beatles, The","price":"26.50","seller_id":"bravo","location":"United States","record_condition":"NM"},
  {"platform":"discogs","external_id":"3","title":"Kind of Blue","artist":"Miles Davis","price":"30.00","seller_id":"alpha","location":"United States","in_wantlist":true},
  {"platform":"discogs","external_id":"4","title":"Blue Train","artist":"John Coltrane","price":"22.00","seller_id":"charlie","location":"Germany","record_condition":"G"}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLoadRequest_JSON(t *testing.T) {
	t.Parallel()

	t.Run("array", func(t *testing.T) {
		t.Parallel()
		req, err := LoadRequest(writeFile(t, "listings.json", listingsJSON))
		if err != nil {
			t.Fatalf("LoadRequest: %v", err)
		}
		if len(req.Listings) != 4 {
			t.Fatalf("listings = %d, want 4", len(req.Listings))
		}
		if req.Listings[1].RecordCondition != models.ConditionNearMint {
			t.Errorf("condition = %v, want NM", req.Listings[1].RecordCondition)
		}
	})

	t.Run("request object", func(t *testing.T) {
		t.Parallel()
		body := `{"id":"run-1","listings":` + listingsJSON + `,"preferences":{"location":"US"}}`
		req, err := LoadRequest(writeFile(t, "request.json", body))
		if err != nil {
			t.Fatalf("LoadRequest: %v", err)
		}
		if req.ID != "run-1" || req.Preferences.Location != "US" || len(req.Listings) != 4 {
			t.Errorf("request = %+v", req)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadRequest(writeFile(t, "bad.json", `[{"platform":`)); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadRequest(writeFile(t, "listings.csv", "a,b")); err == nil {
			t.Error("expected unsupported format error")
		}
	})
}

func TestLoadRequest_Parquet(t *testing.T) {
	t.Parallel()

	rows := []listingRow{
		{Platform: "discogs", ExternalID: "1", Title: "Abbey Road", Artist: "The Beatles", Year: 1969, Price: "25.99", SellerID: "alpha", RecordCondition: "Very Good Plus (VG+)", InWantlist: true},
		{Platform: "ebay", ExternalID: "2", Title: "Kind of Blue", Artist: "Miles Davis", Price: "30", SellerID: "bravo", Location: "Germany"},
	}
	path := filepath.Join(t.TempDir(), "listings.parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	req, err := LoadRequest(path)
	if err != nil {
		t.Fatalf("LoadRequest: %v", err)
	}
	if len(req.Listings) != 2 {
		t.Fatalf("listings = %d, want 2", len(req.Listings))
	}
	first := req.Listings[0]
	if first.Platform != models.PlatformDiscogs || first.Year != 1969 || first.Price.String() != "25.99" {
		t.Errorf("first listing = %+v", first)
	}
	if first.RecordCondition != models.ConditionVeryGoodPlus || !first.InWantlist {
		t.Errorf("first listing flags = %+v", first)
	}
	if req.Listings[1].Platform != models.PlatformEbay || req.Listings[1].Location != "Germany" {
		t.Errorf("second listing = %+v", req.Listings[1])
	}
}

func TestListingRow_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  listingRow
	}{
		{"bad platform", listingRow{Platform: "bandcamp", ExternalID: "1", Price: "1"}},
		{"bad price", listingRow{Platform: "ebay", ExternalID: "1", Price: "ten"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := tt.row.listing(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "listings.json", listingsJSON)
	sellers := writeFile(t, "sellers.json", `[{"platform":"discogs","id":"alpha","name":"Alpha Records","feedback_score":99.5,"feedback_count":1200}]`)

	out, err := execute(t, "analyze", "--input", input, "--sellers", sellers, "--location", "US", "-o", "json")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var report engine.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.RunID == "" {
		t.Error("run id is empty")
	}
	if report.Summary.Listings != 4 {
		t.Errorf("summary listings = %d, want 4", report.Summary.Listings)
	}
	if report.Preferences.Location != "US" {
		t.Errorf("location = %q, want US", report.Preferences.Location)
	}
	for _, sa := range report.Sellers {
		if sa.SellerKey == "discogs:alpha" && sa.SellerName != "Alpha Records" {
			t.Errorf("seller profile not applied: %+v", sa)
		}
	}
}

func TestAnalyzeCommand_TableAndYAML(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "listings.json", listingsJSON)

	table, err := execute(t, "analyze", "-i", input, "--limit", "2")
	if err != nil {
		t.Fatalf("analyze table: %v", err)
	}
	for _, want := range []string{"Run ", "RECOMMENDATION", "RANK"} {
		if !strings.Contains(table, want) {
			t.Errorf("table output missing %q:\n%s", want, table)
		}
	}

	yamlOut, err := execute(t, "analyze", "-i", input, "-o", "yaml")
	if err != nil {
		t.Fatalf("analyze yaml: %v", err)
	}
	if !strings.Contains(yamlOut, "run_id:") || !strings.Contains(yamlOut, "summary:") {
		t.Errorf("yaml output missing keys:\n%s", yamlOut)
	}
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "listings.json", listingsJSON)

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"analyze"}},
		{"bad format", []string{"analyze", "-i", input, "-o", "xml"}},
		{"unknown condition", []string{"analyze", "-i", input, "--min-condition", "shiny"}},
		{"missing file", []string{"analyze", "-i", filepath.Join(t.TempDir(), "nope.json")}},
		{"invalid listing", []string{"analyze", "-i", writeFile(t, "invalid.json", `[{"platform":"discogs","price":"1"}]`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("analyze %v succeeded", tt.args)
			}
		})
	}
}

func TestApplyPreferenceFlags(t *testing.T) {
	t.Parallel()

	p := models.Preferences{Location: "DE", MinRecordCondition: models.ConditionGood}
	err := applyPreferenceFlags(&p, &analyzeOptions{minSleeve: "VG"})
	if err != nil {
		t.Fatalf("applyPreferenceFlags: %v", err)
	}
	if p.Location != "DE" || p.MinRecordCondition != models.ConditionGood || p.MinSleeveCondition != models.ConditionVeryGood {
		t.Errorf("preferences = %+v", p)
	}
}
