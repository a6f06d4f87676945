// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package archive persists variation graph snapshots in an embedded
// BadgerDB store.
//
// Each snapshot is the graph serialized as GFA 1.0 plus a metadata
// record (UUID, name, creation time, summary counts). Snapshots are
// immutable: saving the same name again creates a new snapshot rather
// than overwriting, and Latest resolves a name to its most recent save.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/vargraph/gfa"
	"github.com/AleutianAI/vargraph/graph"
)

// ErrSnapshotNotFound indicates an ID or name that resolves to no stored
// snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

const (
	metaPrefix = "meta:"
	dataPrefix = "gfa:"
)

// Snapshot describes one stored graph.
type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	Paths     int       `json:"paths"`
	Length    int       `json:"length"`
}

// Store is a snapshot archive backed by BadgerDB.
//
// Thread Safety: all methods are safe for concurrent use.
type Store struct {
	db     *badger.DB
	gc     *gcRunner
	logger *slog.Logger
}

// Open opens or creates an archive with the given configuration. Call
// Close when done.
func Open(cfg Config) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, logger: cfg.Logger}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.gc = newGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
		s.gc.start()
	}
	return s, nil
}

// Close stops background GC and closes the database.
func (s *Store) Close() error {
	if s.gc != nil {
		s.gc.stop()
	}
	return s.db.Close()
}

// Save stores the graph under a fresh snapshot ID and returns its
// metadata. The graph is serialized outside the transaction; the
// metadata and data records commit atomically.
func (s *Store) Save(ctx context.Context, name string, g *graph.Graph) (Snapshot, error) {
	var buf bytes.Buffer
	if err := gfa.Write(&buf, g); err != nil {
		return Snapshot{}, fmt.Errorf("serialize graph: %w", err)
	}
	snap := Snapshot{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		Paths:     g.PathCount(),
		Length:    g.TotalSequenceLength(),
	}
	meta, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal snapshot metadata: %w", err)
	}

	err = withTxn(ctx, s.db, func(txn *badger.Txn) error {
		if err := txn.Set([]byte(metaPrefix+snap.ID), meta); err != nil {
			return err
		}
		return txn.Set([]byte(dataPrefix+snap.ID), buf.Bytes())
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("store snapshot %s: %w", snap.ID, err)
	}
	if s.logger != nil {
		s.logger.Info("snapshot saved",
			slog.String("id", snap.ID),
			slog.String("name", name),
			slog.Int("nodes", snap.Nodes),
			slog.Int("edges", snap.Edges))
	}
	return snap, nil
}

// Load rebuilds the graph stored under the snapshot ID.
func (s *Store) Load(ctx context.Context, id string, opts ...graph.Option) (*graph.Graph, error) {
	var data []byte
	err := withReadTxn(ctx, s.db, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(dataPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	g, err := gfa.ReadGraph(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("deserialize snapshot %s: %w", id, err)
	}
	return g, nil
}

// Get returns the metadata for one snapshot.
func (s *Store) Get(ctx context.Context, id string) (Snapshot, error) {
	var snap Snapshot
	err := withReadTxn(ctx, s.db, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &snap)
		})
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// List returns metadata for every stored snapshot, newest first.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	var snaps []Snapshot
	err := withReadTxn(ctx, s.db, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(metaPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var snap Snapshot
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &snap)
			})
			if err != nil {
				return fmt.Errorf("decode snapshot metadata: %w", err)
			}
			snaps = append(snaps, snap)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	return snaps, nil
}

// Latest resolves a snapshot name to the metadata of its most recent
// save.
func (s *Store) Latest(ctx context.Context, name string) (Snapshot, error) {
	snaps, err := s.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	for _, snap := range snaps {
		if snap.Name == name {
			return snap, nil
		}
	}
	return Snapshot{}, fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
}

// Delete removes a snapshot's data and metadata.
func (s *Store) Delete(ctx context.Context, id string) error {
	return withTxn(ctx, s.db, func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(metaPrefix + id)); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		} else if err != nil {
			return err
		}
		if err := txn.Delete([]byte(metaPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(dataPrefix + id))
	})
}
