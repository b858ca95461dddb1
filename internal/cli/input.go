// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/cratedigger/internal/engine"
	"github.com/tomtom215/cratedigger/internal/models"
)

// listingRow is the columnar layout of a listings parquet file. Prices are
// decimal strings so no precision is lost to floats.
type listingRow struct {
	Platform        string `parquet:"platform"`
	ExternalID      string `parquet:"external_id"`
	Title           string `parquet:"title,optional"`
	Artist          string `parquet:"artist,optional"`
	Year            int32  `parquet:"year,optional"`
	Price           string `parquet:"price"`
	Currency        string `parquet:"currency,optional"`
	RecordCondition string `parquet:"record_condition,optional"`
	SleeveCondition string `parquet:"sleeve_condition,optional"`
	SellerID        string `parquet:"seller_id"`
	Location        string `parquet:"location,optional"`
	InCollection    bool   `parquet:"in_collection,optional"`
	InWantlist      bool   `parquet:"in_wantlist,optional"`
}

func (r *listingRow) listing() (models.Listing, error) {
	platform, err := models.ParsePlatform(r.Platform)
	if err != nil {
		return models.Listing{}, err
	}
	price := decimal.Zero
	if s := strings.TrimSpace(r.Price); s != "" {
		if price, err = decimal.NewFromString(s); err != nil {
			return models.Listing{}, fmt.Errorf("price %q: %w", r.Price, err)
		}
	}
	return models.Listing{
		Platform:        platform,
		ExternalID:      r.ExternalID,
		Title:           r.Title,
		Artist:          r.Artist,
		Year:            int(r.Year),
		Price:           price,
		Currency:        r.Currency,
		RecordCondition: models.ParseCondition(r.RecordCondition),
		SleeveCondition: models.ParseCondition(r.SleeveCondition),
		SellerID:        r.SellerID,
		Location:        r.Location,
		InCollection:    r.InCollection,
		InWantlist:      r.InWantlist,
	}, nil
}

// LoadRequest reads an analysis request from path. A .json file holds either
// a full request object or a bare array of listings. A .parquet file holds
// one listing per row.
func LoadRequest(path string) (*engine.Request, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".parquet":
		listings, err := loadParquet(path)
		if err != nil {
			return nil, err
		}
		return &engine.Request{Listings: listings}, nil
	default:
		return nil, fmt.Errorf("unsupported input format %q (supported: .json, .parquet)", filepath.Ext(path))
	}
}

func loadJSON(path string) (*engine.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var listings []models.Listing
		if err := json.Unmarshal(data, &listings); err != nil {
			return nil, fmt.Errorf("decode listings: %w", err)
		}
		return &engine.Request{Listings: listings}, nil
	}
	var req engine.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return &req, nil
}

func loadParquet(path string) ([]models.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[listingRow](pf)
	defer reader.Close()

	var listings []models.Listing
	rows := make([]listingRow, 128)
	for {
		n, err := reader.Read(rows)
		for i := 0; i < n; i++ {
			l, convErr := rows[i].listing()
			if convErr != nil {
				return nil, fmt.Errorf("row %d: %w", len(listings)+1, convErr)
			}
			listings = append(listings, l)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
	return listings, nil
}

// LoadSellers reads a JSON array of seller profiles.
func LoadSellers(path string) ([]models.Seller, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sellers: %w", err)
	}
	var sellers []models.Seller
	if err := json.Unmarshal(data, &sellers); err != nil {
		return nil, fmt.Errorf("decode sellers: %w", err)
	}
	return sellers, nil
}
