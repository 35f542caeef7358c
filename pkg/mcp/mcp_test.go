package mcp_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metastore-labs/metasync/pkg/mcp"
	"github.com/metastore-labs/metasync/pkg/metadata"
	"github.com/metastore-labs/metasync/pkg/urn"
)

func sampleTag() metadata.Entity {
	entity := metadata.NewEntity("urn:li:tag:PII", metadata.KindTag, "PII")
	entity.SetAspect(metadata.AspectProperties, metadata.Document{
		"name":        "PII",
		"description": "Personally identifiable information",
		"colorHex":    "#B71C1C",
	})
	entity.SetAspect(metadata.AspectOwnership, metadata.Document{
		"owners": []any{
			map[string]any{"owner": "urn:li:corpuser:jdoe", "type": "BUSINESS_OWNER"},
		},
	})
	return entity
}

func TestFromEntity(t *testing.T) {
	entity := sampleTag()
	proposals := mcp.FromEntity(entity)

	require.Len(t, proposals, 2)
	// AspectNames sorts, so ownership precedes properties.
	assert.Equal(t, metadata.AspectOwnership, proposals[0].AspectName)
	assert.Equal(t, metadata.AspectProperties, proposals[1].AspectName)
	for _, p := range proposals {
		assert.Equal(t, "tag", p.EntityType)
		assert.Equal(t, entity.URN, p.EntityURN)
		assert.Equal(t, mcp.ChangeUpsert, p.ChangeType)
	}

	t.Run("empty aspects are skipped", func(t *testing.T) {
		withEmpty := entity.Clone()
		withEmpty.SetAspect(metadata.AspectStatus, metadata.Document{})
		assert.Len(t, mcp.FromEntity(withEmpty), 2)
	})

	t.Run("display name lands in properties when absent", func(t *testing.T) {
		bare := metadata.NewEntity("urn:li:tag:PII", metadata.KindTag, "PII")
		bare.SetAspect(metadata.AspectOwnership, metadata.Document{"owners": []any{}})

		proposals := mcp.FromEntity(bare)
		require.Len(t, proposals, 2)
		assert.Equal(t, metadata.AspectProperties, proposals[1].AspectName)
		name, ok := proposals[1].Aspect.String("name")
		require.True(t, ok)
		assert.Equal(t, "PII", name)
		// The source entity is left untouched.
		assert.Nil(t, bare.Aspect(metadata.AspectProperties))
	})
}

func TestToEntity(t *testing.T) {
	t.Run("round-trip yields an equivalent entity", func(t *testing.T) {
		entity := sampleTag()
		rebuilt, err := mcp.ToEntity(mcp.FromEntity(entity))
		require.NoError(t, err)

		assert.Equal(t, entity.URN, rebuilt.URN)
		assert.Equal(t, entity.Kind, rebuilt.Kind)
		assert.Equal(t, entity.Name, rebuilt.Name)
		assert.True(t, metadata.Equivalent(entity, rebuilt))
	})

	t.Run("name falls back to urn id", func(t *testing.T) {
		proposals := []mcp.Proposal{{
			EntityType: "domain",
			EntityURN:  "urn:li:domain:finance",
			AspectName: metadata.AspectOwnership,
			Aspect:     metadata.Document{"owners": []any{}},
			ChangeType: mcp.ChangeUpsert,
		}}
		entity, err := mcp.ToEntity(proposals)
		require.NoError(t, err)
		assert.Equal(t, "finance", entity.Name)
	})

	t.Run("empty batch errors", func(t *testing.T) {
		_, err := mcp.ToEntity(nil)
		assert.Error(t, err)
	})

	t.Run("mixed urns error", func(t *testing.T) {
		batch := mcp.FromEntity(sampleTag())
		batch = append(batch, mcp.Proposal{
			EntityType: "tag",
			EntityURN:  "urn:li:tag:Other",
			AspectName: metadata.AspectProperties,
			Aspect:     metadata.Document{"name": "Other"},
			ChangeType: mcp.ChangeUpsert,
		})
		_, err := mcp.ToEntity(batch)
		assert.Error(t, err)
	})

	t.Run("unknown entity type errors", func(t *testing.T) {
		_, err := mcp.ToEntity([]mcp.Proposal{{
			EntityType: "dataset",
			EntityURN:  "urn:li:dataset:foo",
			AspectName: metadata.AspectProperties,
			Aspect:     metadata.Document{"name": "foo"},
		}})
		assert.Error(t, err)
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	root := t.TempDir()
	entity := sampleTag()
	// Timestamps present on export must not break round-trip equivalence.
	entity.Aspects[metadata.AspectProperties]["lastModified"] = map[string]any{
		"time": float64(1712000000000), "actor": "urn:li:corpuser:jdoe",
	}

	path, err := mcp.Export(root, "dev", entity)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "dev", "tags", "PII.json"), path)

	rebuilt, err := mcp.ImportFile(path)
	require.NoError(t, err)
	assert.True(t, metadata.Equivalent(entity, rebuilt))
}

func TestExportKeysFilesByURNID(t *testing.T) {
	root := t.TempDir()

	canonical := metadata.NewEntity(urn.Generate(metadata.KindTag, "PII", ""), metadata.KindTag, "PII")
	canonical.SetAspect(metadata.AspectProperties, metadata.Document{"description": "canonical"})
	hashed := metadata.NewEntity(urn.Generate(metadata.KindTag, "PII", "staging"), metadata.KindTag, "PII")
	hashed.SetAspect(metadata.AspectProperties, metadata.Document{"description": "staging"})

	canonicalPath, err := mcp.Export(root, "dev", canonical)
	require.NoError(t, err)
	hashedPath, err := mcp.Export(root, "dev", hashed)
	require.NoError(t, err)

	// Same display name, distinct URNs: neither file may shadow the other.
	assert.NotEqual(t, canonicalPath, hashedPath)

	entities, err := mcp.ImportDir(root, "dev", metadata.KindTag)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	for _, entity := range entities {
		assert.Equal(t, "PII", entity.Name)
	}
}

func TestRoundTripKeepsNameForHashedURN(t *testing.T) {
	root := t.TempDir()
	hashedURN := urn.Generate(metadata.KindGlossaryTerm, "Net Revenue", "prod")
	entity := metadata.NewEntity(hashedURN, metadata.KindGlossaryTerm, "Net Revenue")
	entity.SetAspect(metadata.AspectOwnership, metadata.Document{
		"owners": []any{map[string]any{"owner": "urn:li:corpuser:jdoe"}},
	})

	path, err := mcp.Export(root, "prod", entity)
	require.NoError(t, err)

	rebuilt, err := mcp.ImportFile(path)
	require.NoError(t, err)
	assert.Equal(t, hashedURN, rebuilt.URN)
	assert.Equal(t, "Net Revenue", rebuilt.Name)
}

func TestImportDir(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"Zeta", "Alpha"} {
		entity := metadata.NewEntity("urn:li:tag:"+name, metadata.KindTag, name)
		entity.SetAspect(metadata.AspectProperties, metadata.Document{"name": name})
		_, err := mcp.Export(root, "dev", entity)
		require.NoError(t, err)
	}
	// Non-JSON files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(root, "dev", "tags", "README.md"), []byte("x"), 0o644))

	entities, err := mcp.ImportDir(root, "dev", metadata.KindTag)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "urn:li:tag:Alpha", entities[0].URN)
	assert.Equal(t, "urn:li:tag:Zeta", entities[1].URN)

	t.Run("missing directory reads as empty", func(t *testing.T) {
		entities, err := mcp.ImportDir(root, "prod", metadata.KindTag)
		require.NoError(t, err)
		assert.Empty(t, entities)
	})
}

func TestPathSanitizesNames(t *testing.T) {
	path := mcp.Path("metadata-manager", "dev", metadata.KindGlossaryTerm, "Net Revenue / EMEA")
	assert.Equal(t,
		filepath.Join("metadata-manager", "dev", "glossaryTerms", "Net_Revenue___EMEA.json"),
		path)
}
