package syncer

import (
	"context"

	"github.com/metastore-labs/metasync/pkg/logging"
	"github.com/metastore-labs/metasync/pkg/mcp"
	"github.com/metastore-labs/metasync/pkg/metadata"
)

// Stage writes every local record out as a change proposal file under
// root/env, one file per entity. Returns the written paths in order.
func (s *Syncer) Stage(ctx context.Context, root, env string) ([]string, error) {
	var paths []string
	for _, kind := range s.kinds {
		entities, err := s.store.Entities(ctx, kind)
		if err != nil {
			return nil, err
		}
		for _, entity := range entities {
			path, err := mcp.Export(root, env, entity)
			if err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
	}

	logging.Info().Int("files", len(paths)).Str("root", root).Str("env", env).Msg("Staged proposal files")
	return paths, nil
}

// Load reads change proposal files under root/env back into the local
// record store. Loaded records start LOCAL_ONLY; a following diff settles
// their real status.
func (s *Syncer) Load(ctx context.Context, root, env string) (int, error) {
	loaded := 0
	for _, kind := range s.kinds {
		entities, err := mcp.ImportDir(root, env, kind)
		if err != nil {
			return loaded, err
		}
		for _, entity := range entities {
			if _, err := s.store.Save(ctx, entity, metadata.StatusLocalOnly); err != nil {
				return loaded, err
			}
			loaded++
		}
	}

	logging.Info().Int("entities", loaded).Str("root", root).Str("env", env).Msg("Loaded proposal files")
	return loaded, nil
}
