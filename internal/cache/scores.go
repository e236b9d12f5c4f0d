// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/featstab/internal/config"
	"github.com/tomtom215/featstab/internal/metrics"
	"github.com/tomtom215/featstab/internal/models"
)

// scoreKeyPrefix namespaces score entries in the badger keyspace.
const scoreKeyPrefix = "score:"

// ScoreCache persists classifier scores in BadgerDB with an in-process LRU
// in front of it. It is safe for concurrent use.
type ScoreCache struct {
	db     *badger.DB
	memory *LRU[models.ClassifierScores]
	logger zerolog.Logger
}

// Open opens (or creates) the score cache at cfg.Path.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func Open(cfg *config.CacheConfig, logger zerolog.Logger) (*ScoreCache, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: empty cache path", models.ErrInvalidArgument)
	}

	opts := badger.DefaultOptions(cfg.Path)
	// Badger's own logger is noisy at info; errors surface through returns.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open score cache %s: %w", cfg.Path, err)
	}

	c := &ScoreCache{
		db:     db,
		memory: NewLRU[models.ClassifierScores](cfg.MemoryEntries),
		logger: logger.With().Str("component", "cache").Logger(),
	}
	c.logger.Info().Str("path", cfg.Path).Int("memory_entries", cfg.MemoryEntries).Msg("Score cache opened")
	return c, nil
}

// Key derives the cache key of one scored selection. Feature order is kept:
// column order can change tie-breaking inside the classifiers. Callers pass
// subsets in ascending order so equal subsets share a key.
func Key(fingerprint, dataset string, features []int) string {
	var b strings.Builder
	b.WriteString(fingerprint)
	b.WriteByte(0)
	b.WriteString(dataset)
	b.WriteByte(0)
	for i, f := range features {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(f))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return scoreKeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached scores for key.
func (c *ScoreCache) Get(key string) (models.ClassifierScores, bool, error) {
	if scores, ok := c.memory.Get(key); ok {
		metrics.RecordCacheLookup(true)
		return scores, true, nil
	}

	var scores models.ClassifierScores
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &scores)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		metrics.RecordCacheLookup(false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}

	metrics.RecordCacheLookup(true)
	c.memory.Add(key, scores)
	return scores, true, nil
}

// Put stores scores under key.
func (c *ScoreCache) Put(key string, scores models.ClassifierScores) error {
	data, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	c.memory.Add(key, scores)
	return nil
}

// Len counts the persisted score entries.
func (c *ScoreCache) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(scoreKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count scores: %w", err)
	}
	return n, nil
}

// Purge removes every score entry.
func (c *ScoreCache) Purge() error {
	if err := c.db.DropPrefix([]byte(scoreKeyPrefix)); err != nil {
		return fmt.Errorf("purge scores: %w", err)
	}
	c.memory.Clear()
	c.logger.Info().Msg("Score cache purged")
	return nil
}

// Close flushes and closes the underlying database.
func (c *ScoreCache) Close() error {
	return c.db.Close()
}
