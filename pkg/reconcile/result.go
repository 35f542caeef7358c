package reconcile

import (
	"fmt"

	"github.com/metastore-labs/metasync/pkg/metadata"
)

// Origin attributes a MODIFIED classification to the side that drifted
// from the last-synced baseline.
type Origin string

// Origin values.
const (
	OriginUnknown Origin = ""
	OriginLocal   Origin = "local"
	OriginRemote  Origin = "remote"
	OriginBoth    Origin = "both"
)

// Classification is the reconciliation verdict for a single URN.
type Classification struct {
	URN     string              `json:"urn"`
	Status  metadata.SyncStatus `json:"status"`
	Local   *metadata.Entity    `json:"local,omitempty"`
	Remote  *metadata.Entity    `json:"remote,omitempty"`
	Changes []FieldChange       `json:"changes,omitempty"`
	Origin  Origin              `json:"origin,omitempty"`
}

// FieldChange records one differing field inside a synced pair. Local is
// listed first: local values are authoritative when reporting payload
// diffs, remote only decides presence.
type FieldChange struct {
	Aspect string `json:"aspect"`
	Path   string `json:"path"`
	Local  any    `json:"local,omitempty"`
	Remote any    `json:"remote,omitempty"`
}

// Result is the full classification of a local set against a remote set.
// Err is set when the remote fetch failed and the result was degraded to an
// empty remote; the classifications are still valid in that case.
type Result struct {
	Classifications []Classification `json:"classifications"`
	Err             error            `json:"-"`
}

// Degraded reports whether this result was produced without remote data.
func (r *Result) Degraded() bool {
	return r.Err != nil
}

// ByStatus returns the classifications carrying the given status, in URN
// order.
func (r *Result) ByStatus(status metadata.SyncStatus) []Classification {
	var out []Classification
	for _, c := range r.Classifications {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many classifications carry the given status.
func (r *Result) Count(status metadata.SyncStatus) int {
	n := 0
	for _, c := range r.Classifications {
		if c.Status == status {
			n++
		}
	}
	return n
}

// URNs returns every classified URN in order.
func (r *Result) URNs() []string {
	urns := make([]string, len(r.Classifications))
	for i, c := range r.Classifications {
		urns[i] = c.URN
	}
	return urns
}

// Summary renders a one-line overview suitable for CLI output and logs.
func (r *Result) Summary() string {
	return fmt.Sprintf("synced=%d modified=%d local_only=%d remote_only=%d",
		r.Count(metadata.StatusSynced),
		r.Count(metadata.StatusModified),
		r.Count(metadata.StatusLocalOnly),
		r.Count(metadata.StatusRemoteOnly))
}
