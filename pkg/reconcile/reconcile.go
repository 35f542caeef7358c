// Package reconcile classifies locally-managed metadata entities against the
// live remote state of a DataHub instance. For each URN it produces one of
// four classifications: SYNCED, MODIFIED, LOCAL_ONLY, REMOTE_ONLY.
//
// Presence is decided by the remote (a URN the remote does not know is
// LOCAL_ONLY no matter what the local record claims), while payload diffs
// are reported from the local side's perspective. An optional baseline
// snapshot, the state recorded at the last successful sync, attributes each
// MODIFIED pair to the side that drifted.
package reconcile

import (
	"sort"

	"github.com/metastore-labs/metasync/pkg/metadata"
)

// Classifier computes sync classifications for entity sets.
type Classifier struct {
	baseline      map[string]metadata.Entity
	ignoreAspects map[string]bool
}

// New creates a Classifier with the given options.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		ignoreAspects: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify partitions the local and remote entity sets by URN and compares
// the intersection field by field. The returned result covers every URN in
// either set exactly once. Duplicate URNs within a set collapse to the last
// occurrence.
func (c *Classifier) Classify(local, remote []metadata.Entity) *Result {
	localMap := make(map[string]metadata.Entity, len(local))
	for _, entity := range local {
		localMap[entity.URN] = entity
	}
	remoteMap := make(map[string]metadata.Entity, len(remote))
	for _, entity := range remote {
		remoteMap[entity.URN] = entity
	}

	result := &Result{}

	for urn, localEntity := range localMap {
		remoteEntity, present := remoteMap[urn]
		if !present {
			result.Classifications = append(result.Classifications, Classification{
				URN:    urn,
				Status: metadata.StatusLocalOnly,
				Local:  ref(localEntity),
			})
			continue
		}
		result.Classifications = append(result.Classifications, c.compare(urn, localEntity, remoteEntity))
	}

	for urn, remoteEntity := range remoteMap {
		if _, present := localMap[urn]; present {
			continue
		}
		result.Classifications = append(result.Classifications, Classification{
			URN:    urn,
			Status: metadata.StatusRemoteOnly,
			Remote: ref(remoteEntity),
		})
	}

	sort.Slice(result.Classifications, func(i, j int) bool {
		return result.Classifications[i].URN < result.Classifications[j].URN
	})
	return result
}

// Degraded builds the result used when the remote state could not be
// fetched: every local record classifies LOCAL_ONLY and the fetch error is
// carried on the result for the caller to surface.
func (c *Classifier) Degraded(local []metadata.Entity, fetchErr error) *Result {
	result := c.Classify(local, nil)
	result.Err = fetchErr
	return result
}

// compare runs the secondary field-by-field comparison for a URN present on
// both sides.
func (c *Classifier) compare(urn string, local, remote metadata.Entity) Classification {
	localAspects := c.visibleAspects(local)
	remoteAspects := c.visibleAspects(remote)

	if local.Kind == remote.Kind && localAspects.Equal(remoteAspects) {
		return Classification{
			URN:    urn,
			Status: metadata.StatusSynced,
			Local:  ref(local),
			Remote: ref(remote),
		}
	}

	return Classification{
		URN:     urn,
		Status:  metadata.StatusModified,
		Local:   ref(local),
		Remote:  ref(remote),
		Changes: diffAspects(localAspects, remoteAspects),
		Origin:  c.origin(urn, local, remote),
	}
}

// visibleAspects normalizes an entity's aspects and drops the ignored ones.
func (c *Classifier) visibleAspects(entity metadata.Entity) metadata.Aspects {
	normalized := metadata.NormalizeAspects(entity.Aspects)
	for name := range c.ignoreAspects {
		delete(normalized, name)
	}
	return normalized
}

// origin attributes a modification to the side that drifted from the
// baseline snapshot. Without a baseline entry the origin is unknown.
func (c *Classifier) origin(urn string, local, remote metadata.Entity) Origin {
	base, ok := c.baseline[urn]
	if !ok {
		return OriginUnknown
	}
	localChanged := !metadata.Equivalent(local, base)
	remoteChanged := !metadata.Equivalent(remote, base)
	switch {
	case localChanged && remoteChanged:
		return OriginBoth
	case localChanged:
		return OriginLocal
	case remoteChanged:
		return OriginRemote
	default:
		// Both sides equal the baseline yet differ from each other; only
		// possible when the baseline itself is stale.
		return OriginUnknown
	}
}

func ref(e metadata.Entity) *metadata.Entity {
	return &e
}
