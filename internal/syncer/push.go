package syncer

import (
	"context"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/logging"
	"github.com/metastore-labs/metasync/pkg/metadata"
	"github.com/metastore-labs/metasync/pkg/reconcile"
)

// Push applies local state to the remote catalog: LOCAL_ONLY records
// are created, MODIFIED records are updated, and with pruning enabled
// REMOTE_ONLY entities are soft-deleted. Items are pushed one at a
// time and a failure never stops the batch; a partial failure is
// reported through the returned error while the result carries every
// per-item outcome.
func (s *Syncer) Push(ctx context.Context) (*PushResult, error) {
	diff, err := s.Diff(ctx)
	if err != nil {
		return nil, err
	}
	if diff.Degraded() {
		return nil, &errors.SyncError{
			Operation: "push",
			Err:       errors.New("remote state is unknown, refusing to push"),
		}
	}

	result := &PushResult{DryRun: s.dryRun}
	for _, c := range diff.Classifications() {
		item := s.pushOne(ctx, c)
		if item.Action == "" {
			continue
		}
		result.Items = append(result.Items, item)

		if item.Err != nil {
			logging.Error().Str("urn", item.URN).Err(item.Err).Msg("Push item failed")
		}
	}

	logging.Info().Bool("dry_run", s.dryRun).Str("summary", result.Summary()).Msg("Push complete")
	if failed := result.FailedURNs(); len(failed) > 0 {
		return result, &errors.SyncError{
			Operation: "push",
			URNs:      failed,
			Err:       errors.New("some entities failed to push"),
		}
	}
	return result, nil
}

// pushOne applies a single classification. An empty action means the
// classification needs no push at all and is left out of the result.
func (s *Syncer) pushOne(ctx context.Context, c reconcile.Classification) ItemResult {
	switch c.Status {
	case metadata.StatusSynced:
		return ItemResult{}
	case metadata.StatusLocalOnly:
		return s.upsert(ctx, c, ActionCreate)
	case metadata.StatusModified:
		return s.upsert(ctx, c, ActionUpdate)
	case metadata.StatusRemoteOnly:
		if !s.prune {
			return ItemResult{URN: c.URN, Kind: c.Remote.Kind, Action: ActionSkip}
		}
		return s.delete(ctx, c)
	default:
		return ItemResult{}
	}
}

func (s *Syncer) upsert(ctx context.Context, c reconcile.Classification, action Action) ItemResult {
	item := ItemResult{URN: c.URN, Kind: c.Local.Kind, Action: action}
	if s.dryRun {
		return item
	}

	if err := s.remote.UpsertEntity(ctx, *c.Local); err != nil {
		item.Err = err
		return item
	}
	if err := s.baseline.Put(*c.Local); err != nil {
		item.Err = err
		return item
	}
	item.Err = s.store.SetStatus(ctx, []string{c.URN}, metadata.StatusSynced)
	return item
}

func (s *Syncer) delete(ctx context.Context, c reconcile.Classification) ItemResult {
	item := ItemResult{URN: c.URN, Kind: c.Remote.Kind, Action: ActionDelete}
	if s.dryRun {
		return item
	}

	if err := s.remote.DeleteEntity(ctx, c.Remote.Kind, c.URN, false); err != nil {
		item.Err = err
		return item
	}
	item.Err = s.baseline.Delete(c.URN)
	return item
}
