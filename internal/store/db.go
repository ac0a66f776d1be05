// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

// Package store persists users, songs and songlists in BadgerDB.
//
// Every entity is a JSON document under a typed key ("user:42", "song:7",
// "songlist:3"). Read-modify-write mutations on one entity are serialized by
// a keyed lock table so that concurrent plays, ratings and songlist edits of
// the same entity never lose an update, while different entities proceed in
// parallel. Only SaveRecommendations holds several entity locks, and it takes
// them in key order.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tuneisland/internal/metrics"
	"github.com/tomtom215/tuneisland/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	userKeyPrefix     = "user:"
	songKeyPrefix     = "song:"
	songlistKeyPrefix = "songlist:"
)

var (
	// ErrInvalidRating is returned for a rating outside 0..models.MaxRating.
	ErrInvalidRating = errors.New("rating out of range")

	// ErrAlreadyRated is returned when a user rates the same song twice.
	ErrAlreadyRated = errors.New("song already rated by user")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")
)

// Config configures the underlying BadgerDB.
type Config struct {
	Path        string
	InMemory    bool
	SyncWrites  bool
	Compression bool

	// GCRatio is the value log discard ratio used by RunGC.
	GCRatio float64
}

// DB is the shared handle used by every entity store.
type DB struct {
	db      *badger.DB
	locks   *KeyedMutex
	gcRatio float64
	logger  zerolog.Logger
}

// Open opens (or creates) the database described by cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("storage path is required unless in_memory is set")
	}

	path := cfg.Path
	if cfg.InMemory {
		path = ""
	}
	opts := badger.DefaultOptions(path).WithInMemory(cfg.InMemory)
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Compression {
		opts.Compression = options.Snappy
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	gcRatio := cfg.GCRatio
	if gcRatio <= 0 || gcRatio >= 1 {
		gcRatio = 0.5
	}

	logger = logger.With().Str("component", "store").Logger()
	logger.Info().
		Str("path", path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("store opened")

	return &DB{
		db:      db,
		locks:   NewKeyedMutex(),
		gcRatio: gcRatio,
		logger:  logger,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	if d.db.IsClosed() {
		return nil
	}
	return d.db.Close()
}

// RunGC reclaims value log space until no more rewrite is possible.
// In-memory databases have no value log and return immediately.
func (d *DB) RunGC() error {
	if d.db.IsClosed() {
		return ErrClosed
	}
	if d.db.Opts().InMemory {
		return nil
	}

	start := time.Now()
	for {
		err := d.db.RunValueLogGC(d.gcRatio)
		// ErrRejected means another GC pass is already running.
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
	d.logger.Debug().Dur("duration", time.Since(start)).Msg("value log GC complete")
	return nil
}

func entityKey(prefix string, id int64) []byte {
	return []byte(prefix + strconv.FormatInt(id, 10))
}

// observe records the duration and outcome of a store call.
func observe(op, entity string, start time.Time, err error) {
	if errors.Is(err, models.ErrNotFound) {
		err = nil
	}
	metrics.RecordStoreOperation(op, entity, time.Since(start), err)
}

// getJSON decodes the value at key into v, mapping a missing key to
// models.ErrNotFound.
func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func putJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := txn.Set(key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// get reads one entity.
func get[T any](ctx context.Context, d *DB, key []byte) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var v T
	if err := d.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, key, &v)
	}); err != nil {
		return nil, err
	}
	return &v, nil
}

// put writes one entity unconditionally.
func put(ctx context.Context, d *DB, key []byte, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, key, v)
	})
}

// listPrefix decodes every value under prefix in key order.
func listPrefix[T any](ctx context.Context, d *DB, prefix string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*T
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			var v T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, &v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mutate applies fn to the entity at key under the entity's lock and writes
// the result back. fn returning an error aborts the write.
func mutate[T any](ctx context.Context, d *DB, key []byte, fn func(*T) error) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock := d.locks.Lock(string(key))
	defer unlock()

	var v T
	err := d.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, key, &v); err != nil {
			return err
		}
		if err := fn(&v); err != nil {
			return err
		}
		return putJSON(txn, key, &v)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// upsert is mutate that starts from a zero T when key is absent. fn is told
// whether the entity is new.
func upsert[T any](ctx context.Context, d *DB, key []byte, fn func(v *T, created bool)) (*T, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	unlock := d.locks.Lock(string(key))
	defer unlock()

	var (
		v       T
		created bool
	)
	err := d.db.Update(func(txn *badger.Txn) error {
		err := getJSON(txn, key, &v)
		switch {
		case errors.Is(err, models.ErrNotFound):
			created = true
		case err != nil:
			return err
		}
		fn(&v, created)
		return putJSON(txn, key, &v)
	})
	if err != nil {
		return nil, false, err
	}
	return &v, created, nil
}

// Ping reports whether the database is open.
func (d *DB) Ping() error {
	if d.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// exists reports whether key is present.
func exists(d *DB, key []byte) (bool, error) {
	found := false
	err := d.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}
