package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/metadata"
	"github.com/metastore-labs/metasync/pkg/reconcile"
)

func makeTag(name, description string) metadata.Entity {
	entity := metadata.NewEntity("urn:li:tag:"+name, metadata.KindTag, name)
	entity.SetAspect(metadata.AspectProperties, metadata.Document{
		"name":        name,
		"description": description,
	})
	return entity
}

func TestClassifyPartitions(t *testing.T) {
	local := []metadata.Entity{
		makeTag("PII", "personal data"),
		makeTag("Deprecated", "scheduled for removal"),
		makeTag("Gold", "curated"),
	}
	remote := []metadata.Entity{
		makeTag("PII", "personal data"),
		makeTag("Gold", "certified"), // differs
		makeTag("Silver", "reviewed"),
	}

	result := reconcile.New().Classify(local, remote)

	assert.Equal(t, 1, result.Count(metadata.StatusSynced))
	assert.Equal(t, 1, result.Count(metadata.StatusModified))
	assert.Equal(t, 1, result.Count(metadata.StatusLocalOnly))
	assert.Equal(t, 1, result.Count(metadata.StatusRemoteOnly))

	statuses := map[string]metadata.SyncStatus{}
	for _, c := range result.Classifications {
		statuses[c.URN] = c.Status
	}
	assert.Equal(t, metadata.StatusSynced, statuses["urn:li:tag:PII"])
	assert.Equal(t, metadata.StatusModified, statuses["urn:li:tag:Gold"])
	assert.Equal(t, metadata.StatusLocalOnly, statuses["urn:li:tag:Deprecated"])
	assert.Equal(t, metadata.StatusRemoteOnly, statuses["urn:li:tag:Silver"])
}

// Every URN in L ∪ R must appear exactly once, so the four partitions can
// never overlap and never drop an entity.
func TestClassifyPartitionProperty(t *testing.T) {
	local := []metadata.Entity{
		makeTag("a", "1"), makeTag("b", "2"), makeTag("c", "3"), makeTag("d", "4"),
	}
	remote := []metadata.Entity{
		makeTag("c", "3"), makeTag("d", "changed"), makeTag("e", "5"), makeTag("f", "6"),
	}

	result := reconcile.New().Classify(local, remote)

	expected := map[string]bool{}
	for _, e := range local {
		expected[e.URN] = true
	}
	for _, e := range remote {
		expected[e.URN] = true
	}

	seen := map[string]int{}
	for _, c := range result.Classifications {
		seen[c.URN]++
		assert.True(t, c.Status.Valid())
	}

	assert.Len(t, seen, len(expected))
	for urn, count := range seen {
		assert.Equal(t, 1, count, "urn %s classified more than once", urn)
		assert.True(t, expected[urn], "urn %s not in either input", urn)
	}
}

func TestClassifyIsOrderIndependent(t *testing.T) {
	local := []metadata.Entity{makeTag("a", "1"), makeTag("b", "2")}
	remote := []metadata.Entity{makeTag("b", "changed"), makeTag("c", "3")}

	forward := reconcile.New().Classify(local, remote)

	reversedLocal := []metadata.Entity{local[1], local[0]}
	reversedRemote := []metadata.Entity{remote[1], remote[0]}
	backward := reconcile.New().Classify(reversedLocal, reversedRemote)

	assert.Equal(t, forward.URNs(), backward.URNs())
	assert.Equal(t, forward.Summary(), backward.Summary())
}

func TestClassifyNormalization(t *testing.T) {
	t.Run("whitespace-only drift stays synced", func(t *testing.T) {
		local := makeTag("PII", "personal data")
		remote := makeTag("PII", "  personal data \n")

		result := reconcile.New().Classify(
			[]metadata.Entity{local}, []metadata.Entity{remote})
		assert.Equal(t, 1, result.Count(metadata.StatusSynced))
	})

	t.Run("timestamp drift stays synced", func(t *testing.T) {
		local := makeTag("PII", "personal data")
		remote := makeTag("PII", "personal data")
		remote.Aspects[metadata.AspectProperties]["lastModified"] = map[string]any{
			"time": float64(1712000000000), "actor": "urn:li:corpuser:ingestion",
		}

		result := reconcile.New().Classify(
			[]metadata.Entity{local}, []metadata.Entity{remote})
		assert.Equal(t, 1, result.Count(metadata.StatusSynced))
	})
}

func TestClassifyModifiedChanges(t *testing.T) {
	local := makeTag("Gold", "curated")
	remote := makeTag("Gold", "certified")

	result := reconcile.New().Classify(
		[]metadata.Entity{local}, []metadata.Entity{remote})

	modified := result.ByStatus(metadata.StatusModified)
	require.Len(t, modified, 1)
	require.Len(t, modified[0].Changes, 1)

	change := modified[0].Changes[0]
	assert.Equal(t, metadata.AspectProperties, change.Aspect)
	assert.Equal(t, "description", change.Path)
	assert.Equal(t, "curated", change.Local)
	assert.Equal(t, "certified", change.Remote)
}

func TestClassifyWithBaseline(t *testing.T) {
	base := makeTag("Gold", "curated")
	baseline := map[string]metadata.Entity{base.URN: base}

	t.Run("local drift", func(t *testing.T) {
		local := makeTag("Gold", "edited locally")
		remote := makeTag("Gold", "curated")

		result := reconcile.New(reconcile.WithBaseline(baseline)).Classify(
			[]metadata.Entity{local}, []metadata.Entity{remote})
		modified := result.ByStatus(metadata.StatusModified)
		require.Len(t, modified, 1)
		assert.Equal(t, reconcile.OriginLocal, modified[0].Origin)
	})

	t.Run("remote drift", func(t *testing.T) {
		local := makeTag("Gold", "curated")
		remote := makeTag("Gold", "changed upstream")

		result := reconcile.New(reconcile.WithBaseline(baseline)).Classify(
			[]metadata.Entity{local}, []metadata.Entity{remote})
		modified := result.ByStatus(metadata.StatusModified)
		require.Len(t, modified, 1)
		assert.Equal(t, reconcile.OriginRemote, modified[0].Origin)
	})

	t.Run("both drifted", func(t *testing.T) {
		local := makeTag("Gold", "edited locally")
		remote := makeTag("Gold", "changed upstream")

		result := reconcile.New(reconcile.WithBaseline(baseline)).Classify(
			[]metadata.Entity{local}, []metadata.Entity{remote})
		modified := result.ByStatus(metadata.StatusModified)
		require.Len(t, modified, 1)
		assert.Equal(t, reconcile.OriginBoth, modified[0].Origin)
	})

	t.Run("no baseline entry", func(t *testing.T) {
		local := makeTag("Silver", "a")
		remote := makeTag("Silver", "b")

		result := reconcile.New(reconcile.WithBaseline(baseline)).Classify(
			[]metadata.Entity{local}, []metadata.Entity{remote})
		modified := result.ByStatus(metadata.StatusModified)
		require.Len(t, modified, 1)
		assert.Equal(t, reconcile.OriginUnknown, modified[0].Origin)
	})
}

func TestClassifyIgnoreAspects(t *testing.T) {
	local := makeTag("Gold", "curated")
	remote := makeTag("Gold", "curated")
	remote.SetAspect(metadata.AspectOwnership, metadata.Document{
		"owners": []any{map[string]any{"owner": "urn:li:corpuser:bot"}},
	})

	plain := reconcile.New().Classify(
		[]metadata.Entity{local}, []metadata.Entity{remote})
	assert.Equal(t, 1, plain.Count(metadata.StatusModified))

	ignoring := reconcile.New(reconcile.WithIgnoreAspects(metadata.AspectOwnership)).Classify(
		[]metadata.Entity{local}, []metadata.Entity{remote})
	assert.Equal(t, 1, ignoring.Count(metadata.StatusSynced))
}

func TestDegraded(t *testing.T) {
	local := []metadata.Entity{makeTag("a", "1"), makeTag("b", "2")}
	fetchErr := errors.NewAPIError("/api/graphql", 503, "unreachable")

	result := reconcile.New().Degraded(local, fetchErr)

	assert.True(t, result.Degraded())
	assert.ErrorIs(t, result.Err, errors.ErrRemoteUnavailable)
	assert.Equal(t, len(local), result.Count(metadata.StatusLocalOnly))
	assert.Equal(t, 0, result.Count(metadata.StatusRemoteOnly))
	assert.Equal(t, 0, result.Count(metadata.StatusSynced))
}

func TestClassifyEmptySets(t *testing.T) {
	result := reconcile.New().Classify(nil, nil)
	assert.Empty(t, result.Classifications)
	assert.False(t, result.Degraded())
	assert.Equal(t, "synced=0 modified=0 local_only=0 remote_only=0", result.Summary())
}
