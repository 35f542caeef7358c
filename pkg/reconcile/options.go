package reconcile

import "github.com/metastore-labs/metasync/pkg/metadata"

// Option configures a Classifier.
type Option func(*Classifier)

// WithBaseline supplies the last-synced snapshot, keyed by URN. With a
// baseline present, MODIFIED classifications carry an Origin attributing
// the drift to the local side, the remote side, or both.
func WithBaseline(baseline map[string]metadata.Entity) Option {
	return func(c *Classifier) {
		c.baseline = baseline
	}
}

// WithIgnoreAspects excludes the named aspects from comparison. Useful for
// aspects a connected system rewrites on every ingestion run.
func WithIgnoreAspects(names ...string) Option {
	return func(c *Classifier) {
		for _, name := range names {
			c.ignoreAspects[name] = true
		}
	}
}
