package syncer

import (
	"context"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/logging"
	"github.com/metastore-labs/metasync/pkg/metadata"
	"github.com/metastore-labs/metasync/pkg/reconcile"
)

// Diff classifies local records against the remote catalog, one result
// per kind. When a kind's remote listing fails with a connectivity
// error the kind is classified against an empty remote set and the
// error is carried on that kind's result instead of aborting the diff.
// Record statuses are updated to match the classification, except for
// degraded kinds whose stored statuses stay untouched.
func (s *Syncer) Diff(ctx context.Context) (*DiffResult, error) {
	snapshot, err := s.baseline.Entities()
	if err != nil {
		return nil, err
	}
	classifier := reconcile.New(
		reconcile.WithBaseline(snapshot),
		reconcile.WithIgnoreAspects(s.ignoreAspects...),
	)

	diff := &DiffResult{Kinds: make(map[metadata.Kind]*reconcile.Result)}
	for _, kind := range s.kinds {
		local, err := s.store.Entities(ctx, kind)
		if err != nil {
			return nil, err
		}

		var result *reconcile.Result
		remote, err := s.remote.ListEntities(ctx, kind)
		switch {
		case err == nil:
			result = classifier.Classify(local, remote)
		case errors.IsConnectivity(err):
			logging.Warn().
				Str("kind", string(kind)).
				Err(err).
				Msg("Remote listing failed, classifying against empty remote")
			result = classifier.Degraded(local, err)
		default:
			return nil, err
		}

		// Degraded classifications are provisional; stored statuses keep
		// their last settled values until the remote is reachable again.
		if !result.Degraded() {
			if err := s.recordStatuses(ctx, result); err != nil {
				return nil, err
			}
		}
		diff.Kinds[kind] = result
		logging.Debug().Str("kind", string(kind)).Str("summary", result.Summary()).Msg("Classified kind")
	}
	return diff, nil
}

// recordStatuses writes classification outcomes back onto the local
// records. Remote-only entities have no record to update.
func (s *Syncer) recordStatuses(ctx context.Context, result *reconcile.Result) error {
	byStatus := make(map[metadata.SyncStatus][]string)
	for _, c := range result.Classifications {
		if c.Local == nil {
			continue
		}
		byStatus[c.Status] = append(byStatus[c.Status], c.URN)
	}
	for status, urns := range byStatus {
		if err := s.store.SetStatus(ctx, urns, status); err != nil {
			return err
		}
	}
	return nil
}
