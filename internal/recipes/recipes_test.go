package recipes_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metastore-labs/metasync/internal/recipes"
	"github.com/metastore-labs/metasync/pkg/errors"
)

func TestReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingestion", "postgres.yml")
	recipe := recipes.Recipe{
		PipelineName: "postgres-prod",
		Source: recipes.Source{
			Type: "postgres",
			Config: map[string]any{
				"host_port": "db.internal:5432",
				"database":  "warehouse",
			},
		},
		Sink: &recipes.Sink{
			Type:   "datahub-rest",
			Config: map[string]any{"server": "${DATAHUB_URL}"},
		},
	}

	require.NoError(t, recipes.Write(path, recipe))

	got, err := recipes.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres-prod", got.PipelineName)
	assert.Equal(t, "postgres", got.Source.Type)
	assert.Equal(t, "warehouse", got.Source.Config["database"])
	require.NotNil(t, got.Sink)
	assert.Equal(t, "${DATAHUB_URL}", got.Sink.Config["server"])
}

func TestReadRejectsMissingSourceType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline_name: broken\n"), 0o644))

	_, err := recipes.Read(path)
	assert.True(t, errors.IsValidation(err))
}

func TestReadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unclosed\n"), 0o644))

	_, err := recipes.Read(path)
	require.Error(t, err)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParamsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params", "prod.yml")
	params := recipes.Params{
		"DATAHUB_URL": "https://datahub.internal",
		"SCHEDULE":    "0 2 * * *",
	}

	require.NoError(t, recipes.WriteParams(path, params))

	got, err := recipes.ReadParams(path)
	require.NoError(t, err)
	assert.Equal(t, "https://datahub.internal", got["DATAHUB_URL"])
}

func TestListSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yml", "a.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x: 1\n"), 0o644))
	}

	paths, err := recipes.List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yml")}, paths)

	missing, err := recipes.List(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}
