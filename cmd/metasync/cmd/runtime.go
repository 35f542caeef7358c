package cmd

import (
	"github.com/spf13/viper"

	"github.com/metastore-labs/metasync/internal/baseline"
	"github.com/metastore-labs/metasync/internal/config"
	"github.com/metastore-labs/metasync/internal/datahub"
	"github.com/metastore-labs/metasync/internal/store"
	"github.com/metastore-labs/metasync/internal/syncer"
	"github.com/metastore-labs/metasync/pkg/metadata"
)

// runtime bundles the wired components a command operates on.
type runtime struct {
	cfg      *config.Config
	records  *store.Store
	snapshot *baseline.Snapshot
	client   *datahub.Client
}

// newRuntime loads configuration and opens the local stores. The DataHub
// client is only built when the command talks to the remote.
func newRuntime(needRemote bool) (*runtime, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	records, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	snapshot, err := baseline.Open(baseline.Options{Path: cfg.BaselinePath})
	if err != nil {
		_ = records.Close()
		return nil, err
	}

	r := &runtime{cfg: cfg, records: records, snapshot: snapshot}
	if needRemote {
		if err := cfg.RequireRemote(); err != nil {
			r.close()
			return nil, err
		}
		client, err := datahub.New(datahub.Config{
			BaseURL: cfg.DataHubURL,
			Token:   cfg.DataHubToken,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			r.close()
			return nil, err
		}
		r.client = client
	}
	return r, nil
}

func (r *runtime) close() {
	_ = r.snapshot.Close()
	_ = r.records.Close()
}

// syncer builds the orchestrator with the configured kinds plus any
// command-specific options.
func (r *runtime) syncer(opts ...syncer.Option) (*syncer.Syncer, error) {
	kinds, err := selectedKinds()
	if err != nil {
		return nil, err
	}
	opts = append([]syncer.Option{syncer.WithKinds(kinds...)}, opts...)
	return syncer.New(r.client, r.records, r.snapshot, opts...), nil
}

// selectedKinds resolves the --kinds flag, defaulting to every kind.
func selectedKinds() ([]metadata.Kind, error) {
	names := viper.GetStringSlice("kinds")
	if len(names) == 0 {
		return metadata.Kinds(), nil
	}

	kinds := make([]metadata.Kind, 0, len(names))
	for _, name := range names {
		kind, err := metadata.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
