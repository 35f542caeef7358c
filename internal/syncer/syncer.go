// Package syncer orchestrates the flow between the local record store,
// the pull baseline, and the remote catalog: pull, diff, push, stage.
package syncer

import (
	"context"

	"github.com/metastore-labs/metasync/internal/baseline"
	"github.com/metastore-labs/metasync/internal/store"
	"github.com/metastore-labs/metasync/pkg/metadata"
)

// Remote is the slice of the catalog client the syncer needs.
type Remote interface {
	ListEntities(ctx context.Context, kind metadata.Kind) ([]metadata.Entity, error)
	UpsertEntity(ctx context.Context, entity metadata.Entity) error
	DeleteEntity(ctx context.Context, kind metadata.Kind, urn string, hard bool) error
}

// Syncer coordinates pull, diff, push, and stage operations.
type Syncer struct {
	remote   Remote
	store    *store.Store
	baseline *baseline.Snapshot

	kinds         []metadata.Kind
	ignoreAspects []string
	dryRun        bool
	prune         bool
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithKinds restricts operations to the given entity kinds. Defaults to
// every kind.
func WithKinds(kinds ...metadata.Kind) Option {
	return func(s *Syncer) {
		if len(kinds) > 0 {
			s.kinds = kinds
		}
	}
}

// WithIgnoreAspects excludes aspects from drift comparison.
func WithIgnoreAspects(names ...string) Option {
	return func(s *Syncer) { s.ignoreAspects = names }
}

// WithDryRun reports what push would do without writing to the remote.
func WithDryRun(dryRun bool) Option {
	return func(s *Syncer) { s.dryRun = dryRun }
}

// WithPrune makes push soft-delete remote entities that have no local
// record.
func WithPrune(prune bool) Option {
	return func(s *Syncer) { s.prune = prune }
}

// New builds a Syncer over the given remote, record store, and baseline
// snapshot.
func New(remote Remote, records *store.Store, snap *baseline.Snapshot, opts ...Option) *Syncer {
	s := &Syncer{
		remote:   remote,
		store:    records,
		baseline: snap,
		kinds:    metadata.Kinds(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
