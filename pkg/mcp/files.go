package mcp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/metadata"
	"github.com/metastore-labs/metasync/pkg/urn"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Path returns the batch file location for an entity under the standard
// layout: <root>/<env>/<kind>s/<id>.json. Files are keyed by the URN id,
// not the display name; distinct entities can share a name.
func Path(root, env string, kind metadata.Kind, id string) string {
	return filepath.Join(root, env, string(kind)+"s", sanitizeFilename(id)+".json")
}

// Write writes a proposal batch as indented JSON, creating directories as
// needed.
func Write(path string, proposals []Proposal) error {
	data, err := json.MarshalIndent(proposals, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), filePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Read reads a proposal batch file.
func Read(path string) ([]Proposal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var proposals []Proposal
	if err := json.Unmarshal(data, &proposals); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return proposals, nil
}

// Export writes an entity's proposal batch under the standard layout and
// returns the file path.
func Export(root, env string, entity metadata.Entity) (string, error) {
	if err := entity.Validate(); err != nil {
		return "", err
	}
	parsed, err := urn.Parse(entity.URN)
	if err != nil {
		return "", err
	}
	path := Path(root, env, entity.Kind, parsed.ID)
	if err := Write(path, FromEntity(entity)); err != nil {
		return "", err
	}
	return path, nil
}

// ImportFile reads one batch file back into an entity.
func ImportFile(path string) (metadata.Entity, error) {
	proposals, err := Read(path)
	if err != nil {
		return metadata.Entity{}, err
	}
	return ToEntity(proposals)
}

// ImportDir reads every batch file for a kind under the standard layout.
// Entities come back sorted by URN. A missing directory is not an error;
// it reads as an empty set.
func ImportDir(root, env string, kind metadata.Kind) ([]metadata.Entity, error) {
	dir := filepath.Join(root, env, string(kind)+"s")
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read", dir, err)
	}

	var entities []metadata.Entity
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		entity, err := ImportFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	sort.Slice(entities, func(i, j int) bool {
		return entities[i].URN < entities[j].URN
	})
	return entities, nil
}

// sanitizeFilename keeps batch file names filesystem-safe without losing
// the ability to tell entities apart.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		" ", "_",
	)
	return replacer.Replace(name)
}
