// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package store

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/tomtom215/cratedigger/internal/engine"
	"github.com/tomtom215/cratedigger/internal/metrics"
	"github.com/tomtom215/cratedigger/internal/models"
	"github.com/tomtom215/cratedigger/internal/recommend"
)

// Errors
var (
	ErrRunNotFound       = errors.New("analysis run not found")
	ErrCanonicalNotFound = errors.New("canonical item not found")
	ErrStoreClosed       = errors.New("store is closed")
)

const (
	prefixRun       = "run:"
	prefixRunTime   = "runts:"
	prefixRec       = "rec:"
	prefixSeller    = "seller:"
	prefixCanonical = "canon:"
)

// RunInfo is the index entry listed by Runs.
type RunInfo struct {
	RunID     string         `json:"run_id"`
	CreatedAt time.Time      `json:"created_at"`
	Summary   engine.Summary `json:"summary"`
}

// CanonicalRecord is the latest view of a fingerprint across runs.
type CanonicalRecord struct {
	Item      models.CanonicalItem `json:"item"`
	RunID     string               `json:"run_id"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Store is a badger-backed run store. It is safe for concurrent use.
type Store struct {
	db     *badger.DB
	config Config
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg *Config, logger zerolog.Logger) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("store config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger = logger.With().Str("component", "store").Logger()

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("store opened")

	return &Store{db: db, config: *cfg, logger: logger}, nil
}

// SaveRun writes a completed report atomically. Keys from an earlier save
// of the same run id are removed in the same transaction.
func (s *Store) SaveRun(ctx context.Context, report *engine.Report) (err error) {
	if report == nil || report.RunID == "" {
		return errors.New("report with a run id is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	start := time.Now()
	defer func() { metrics.RecordStoreWrite(time.Since(start), err) }()

	runData, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	infoData, err := json.Marshal(RunInfo{RunID: report.RunID, CreatedAt: report.CreatedAt, Summary: report.Summary})
	if err != nil {
		return fmt.Errorf("marshal run info: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := deleteRunKeys(txn, report.RunID); err != nil {
			return err
		}
		if err := txn.Set([]byte(prefixRun+report.RunID), runData); err != nil {
			return fmt.Errorf("set run: %w", err)
		}
		if err := txn.Set(runTimeKey(report.CreatedAt, report.RunID), infoData); err != nil {
			return fmt.Errorf("set run index: %w", err)
		}
		for i := range report.Recommendations {
			rec := &report.Recommendations[i]
			if err := setJSON(txn, recKey(report.RunID, rec.ID), rec); err != nil {
				return fmt.Errorf("set recommendation %s: %w", rec.ID, err)
			}
		}
		for i := range report.Sellers {
			a := &report.Sellers[i]
			if err := setJSON(txn, sellerKey(report.RunID, a.SellerKey), a); err != nil {
				return fmt.Errorf("set seller %s: %w", a.SellerKey, err)
			}
		}
		for i := range report.CanonicalItems {
			item := report.CanonicalItems[i]
			record := CanonicalRecord{Item: item, RunID: report.RunID, UpdatedAt: report.CreatedAt}
			if err := setJSON(txn, canonicalKey(item.Fingerprint), record); err != nil {
				return fmt.Errorf("set canonical item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrTxnTooBig) {
			return fmt.Errorf("run %s too large for one transaction: %w", report.RunID, err)
		}
		return err
	}

	s.logger.Debug().
		Str("run_id", report.RunID).
		Int("recommendations", len(report.Recommendations)).
		Int("sellers", len(report.Sellers)).
		Int("canonical_items", len(report.CanonicalItems)).
		Msg("run stored")
	return nil
}

// GetRun returns the stored report for runID.
func (s *Store) GetRun(ctx context.Context, runID string) (*engine.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var report engine.Report
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, []byte(prefixRun+runID), &report, ErrRunNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Recommendations returns a run's recommendations in ranked order.
func (s *Store) Recommendations(ctx context.Context, runID string) ([]models.Recommendation, error) {
	var recs []models.Recommendation
	err := s.scanRun(ctx, runID, prefixRec, func(val []byte) error {
		var rec models.Recommendation
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	recommend.Sort(recs)
	return recs, nil
}

// Sellers returns a run's seller analyses ordered by rank.
func (s *Store) Sellers(ctx context.Context, runID string) ([]models.SellerAnalysis, error) {
	var sellers []models.SellerAnalysis
	err := s.scanRun(ctx, runID, prefixSeller, func(val []byte) error {
		var a models.SellerAnalysis
		if err := json.Unmarshal(val, &a); err != nil {
			return err
		}
		sellers = append(sellers, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sellers, func(i, j int) bool { return sellers[i].Rank < sellers[j].Rank })
	return sellers, nil
}

// CanonicalItem returns the latest stored record for a fingerprint.
func (s *Store) CanonicalItem(ctx context.Context, fingerprint string) (*CanonicalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var record CanonicalRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, canonicalKey(fingerprint), &record, ErrCanonicalNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Runs lists up to limit runs, newest first. A limit of zero lists all.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var runs []RunInfo
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixRunTime)
		seek := append(append([]byte(nil), prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var info RunInfo
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &info)
			}); err != nil {
				return err
			}
			runs = append(runs, info)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes every key of a run. Canonical records are kept since
// later runs may have updated them.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(prefixRun + runID)); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRunNotFound
		} else if err != nil {
			return err
		}
		return deleteRunKeys(txn, runID)
	})
}

// Ping reports whether the store is open.
func (s *Store) Ping() error {
	return s.checkOpen()
}

// RunGC runs value log GC until nothing is left to rewrite.
func (s *Store) RunGC() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.config.InMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(s.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Serve runs periodic GC until ctx is done. It implements suture.Service.
func (s *Store) Serve(ctx context.Context) error {
	if s.config.GCInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(s.config.GCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("value log GC failed")
			}
		}
	}
}

func (s *Store) String() string {
	return "store-gc"
}

// Close closes the database. Further calls return ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	s.logger.Info().Msg("store closed")
	return nil
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// scanRun iterates one per-run prefix. A run with no report is not found.
func (s *Store) scanRun(ctx context.Context, runID, prefix string, fn func([]byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(prefixRun + runID)); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRunNotFound
		} else if err != nil {
			return err
		}

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix + runID + ":")
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
		}
		return nil
	})
}

func deleteRunKeys(txn *badger.Txn, runID string) error {
	var keys [][]byte

	item, err := txn.Get([]byte(prefixRun + runID))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("get run: %w", err)
	}
	var previous RunInfo
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &previous) }); err != nil {
		return fmt.Errorf("decode previous run: %w", err)
	}
	keys = append(keys, []byte(prefixRun+runID), runTimeKey(previous.CreatedAt, runID))

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	for _, prefix := range []string{prefixRec, prefixSeller} {
		p := []byte(prefix + runID + ":")
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
	}
	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

func setJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func getJSON(txn *badger.Txn, key []byte, v interface{}, notFound error) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return notFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func runTimeKey(t time.Time, runID string) []byte {
	key := make([]byte, 0, len(prefixRunTime)+8+1+len(runID))
	key = append(key, prefixRunTime...)
	key = binary.BigEndian.AppendUint64(key, uint64(t.UnixNano())) //nolint:gosec // timestamps after 1970
	key = append(key, ':')
	return append(key, runID...)
}

func recKey(runID, recID string) []byte {
	return []byte(prefixRec + runID + ":" + recID)
}

func sellerKey(runID, key string) []byte {
	return []byte(prefixSeller + runID + ":" + key)
}

func canonicalKey(fingerprint string) []byte {
	sum := blake2b.Sum256([]byte(fingerprint))
	return []byte(prefixCanonical + hex.EncodeToString(sum[:]))
}
