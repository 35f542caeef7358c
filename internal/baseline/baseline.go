// Package baseline keeps the snapshot of remote state captured at the
// last successful pull. Reconciliation uses it to attribute a drifted
// entity to the side that changed it.
package baseline

import (
	"encoding/json"
	stderrors "errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/metadata"
)

// Options configures the snapshot database.
type Options struct {
	// Path to the database directory. If empty, uses in-memory mode.
	Path string
	// InMemory forces in-memory mode even if Path is set.
	InMemory bool
}

// Snapshot is a Badger-backed key-value store of entities keyed by URN.
type Snapshot struct {
	db *badger.DB
}

type envelope struct {
	Entity     metadata.Entity `json:"entity"`
	CapturedAt time.Time       `json:"capturedAt"`
}

// Open opens the snapshot database.
func Open(opts Options) (*Snapshot, error) {
	badgerOpts := badger.DefaultOptions(opts.Path).WithLogger(nil)
	if opts.Path == "" || opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, errors.WrapStore("badger", "open", opts.Path, err)
	}
	return &Snapshot{db: db}, nil
}

// Close closes the snapshot database.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

// Put records an entity's state under its URN.
func (s *Snapshot) Put(entity metadata.Entity) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	value, err := json.Marshal(envelope{Entity: entity, CapturedAt: time.Now().UTC()})
	if err != nil {
		return errors.WrapStore("badger", "encode", entity.URN, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(entity.URN), value)
	})
	if err != nil {
		return errors.WrapStore("badger", "put", entity.URN, err)
	}
	return nil
}

// PutAll records a full set of entities in one transaction batch.
func (s *Snapshot) PutAll(entities []metadata.Entity) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	now := time.Now().UTC()
	for _, entity := range entities {
		if err := entity.Validate(); err != nil {
			return err
		}
		value, err := json.Marshal(envelope{Entity: entity, CapturedAt: now})
		if err != nil {
			return errors.WrapStore("badger", "encode", entity.URN, err)
		}
		if err := wb.Set([]byte(entity.URN), value); err != nil {
			return errors.WrapStore("badger", "put", entity.URN, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return errors.WrapStore("badger", "flush", "", err)
	}
	return nil
}

// Get returns the snapshotted entity for a URN.
func (s *Snapshot) Get(urn string) (metadata.Entity, error) {
	var env envelope
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(urn))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &env)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return metadata.Entity{}, &errors.NotFoundError{Resource: "baseline", URN: urn}
	}
	if err != nil {
		return metadata.Entity{}, errors.WrapStore("badger", "get", urn, err)
	}
	return env.Entity, nil
}

// Delete removes a URN from the snapshot. Deleting an absent key is not
// an error.
func (s *Snapshot) Delete(urn string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(urn))
	})
	if err != nil {
		return errors.WrapStore("badger", "delete", urn, err)
	}
	return nil
}

// Entities returns every snapshotted entity keyed by URN. The map feeds
// reconciliation directly.
func (s *Snapshot) Entities() (map[string]metadata.Entity, error) {
	entities := make(map[string]metadata.Entity)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var env envelope
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &env)
			})
			if err != nil {
				return err
			}
			entities[env.Entity.URN] = env.Entity
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapStore("badger", "scan", "", err)
	}
	return entities, nil
}

// URNs returns every snapshotted URN in sorted order.
func (s *Snapshot) URNs() ([]string, error) {
	var urns []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			urns = append(urns, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapStore("badger", "scan", "", err)
	}
	sort.Strings(urns)
	return urns, nil
}

// Replace swaps the snapshot for a kind: the given entities are written
// and every other snapshotted URN of that kind is dropped. Called after
// a successful pull so stale remote deletions do not linger.
func (s *Snapshot) Replace(kind metadata.Kind, entities []metadata.Entity) error {
	keep := make(map[string]bool, len(entities))
	for _, entity := range entities {
		keep[entity.URN] = true
	}

	existing, err := s.Entities()
	if err != nil {
		return err
	}
	for urn, entity := range existing {
		if entity.Kind == kind && !keep[urn] {
			if err := s.Delete(urn); err != nil {
				return err
			}
		}
	}
	return s.PutAll(entities)
}
