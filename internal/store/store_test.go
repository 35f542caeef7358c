package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metastore-labs/metasync/internal/store"
	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/metadata"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	// Named in-memory database so the connection pool shares one schema
	// without colliding with other tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	s, err := store.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func tagEntity(name, description string) metadata.Entity {
	entity := metadata.NewEntity("urn:li:tag:"+name, metadata.KindTag, name)
	entity.SetAspect(metadata.AspectProperties, metadata.Document{
		"name":        name,
		"description": description,
	})
	return entity
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record, err := s.Save(ctx, tagEntity("PII", "personal data"), metadata.StatusLocalOnly)
	require.NoError(t, err)
	assert.NotEqual(t, "", record.ID.String())

	got, err := s.Get(ctx, "urn:li:tag:PII")
	require.NoError(t, err)
	assert.Equal(t, "PII", got.Name)
	assert.Equal(t, metadata.StatusLocalOnly, got.Status())

	entity, err := got.Entity()
	require.NoError(t, err)
	desc, _ := entity.Aspect(metadata.AspectProperties).String("description")
	assert.Equal(t, "personal data", desc)
}

func TestSaveUpsertsByURN(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, tagEntity("PII", "v1"), metadata.StatusLocalOnly)
	require.NoError(t, err)
	second, err := s.Save(ctx, tagEntity("PII", "v2"), metadata.StatusModified)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, metadata.StatusModified, records[0].Status())
}

func TestSaveRejectsInvalidStatus(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save(context.Background(), tagEntity("PII", ""), metadata.SyncStatus("BOGUS"))
	assert.True(t, errors.IsValidation(err))
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "urn:li:tag:missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestListByKindOrdersByURN(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, tagEntity("zeta", ""), metadata.StatusSynced)
	require.NoError(t, err)
	_, err = s.Save(ctx, tagEntity("alpha", ""), metadata.StatusSynced)
	require.NoError(t, err)

	domain := metadata.NewEntity("urn:li:domain:finance", metadata.KindDomain, "finance")
	domain.SetAspect(metadata.AspectProperties, metadata.Document{"name": "finance"})
	_, err = s.Save(ctx, domain, metadata.StatusSynced)
	require.NoError(t, err)

	tags, err := s.ListByKind(ctx, metadata.KindTag)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "urn:li:tag:alpha", tags[0].URN)
	assert.Equal(t, "urn:li:tag:zeta", tags[1].URN)

	entities, err := s.Entities(ctx, metadata.KindDomain)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, metadata.KindDomain, entities[0].Kind)
}

func TestSetStatusBulk(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, tagEntity("a", ""), metadata.StatusLocalOnly)
	require.NoError(t, err)
	_, err = s.Save(ctx, tagEntity("b", ""), metadata.StatusLocalOnly)
	require.NoError(t, err)
	_, err = s.Save(ctx, tagEntity("c", ""), metadata.StatusLocalOnly)
	require.NoError(t, err)

	err = s.SetStatus(ctx, []string{"urn:li:tag:a", "urn:li:tag:b"}, metadata.StatusSynced)
	require.NoError(t, err)

	synced, err := s.ListByStatus(ctx, metadata.StatusSynced)
	require.NoError(t, err)
	assert.Len(t, synced, 2)

	remaining, err := s.ListByStatus(ctx, metadata.StatusLocalOnly)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "urn:li:tag:c", remaining[0].URN)

	assert.NoError(t, s.SetStatus(ctx, nil, metadata.StatusSynced))
}

func TestSetConnectionSurvivesSave(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, tagEntity("PII", "v1"), metadata.StatusLocalOnly)
	require.NoError(t, err)
	require.NoError(t, s.SetConnection(ctx, "urn:li:tag:PII", "prod-datahub"))

	// A later upsert of the same URN keeps the connection reference.
	_, err = s.Save(ctx, tagEntity("PII", "v2"), metadata.StatusModified)
	require.NoError(t, err)

	got, err := s.Get(ctx, "urn:li:tag:PII")
	require.NoError(t, err)
	assert.Equal(t, "prod-datahub", got.Connection)

	assert.True(t, errors.IsNotFound(s.SetConnection(ctx, "urn:li:tag:missing", "x")))
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, tagEntity("PII", ""), metadata.StatusSynced)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "urn:li:tag:PII"))
	assert.True(t, errors.IsNotFound(s.Delete(ctx, "urn:li:tag:PII")))
}

func TestCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, tagEntity("a", ""), metadata.StatusSynced)
	require.NoError(t, err)
	_, err = s.Save(ctx, tagEntity("b", ""), metadata.StatusSynced)
	require.NoError(t, err)

	counts, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[metadata.KindTag])
}
