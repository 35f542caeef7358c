package syncer

import (
	"fmt"

	"github.com/metastore-labs/metasync/pkg/metadata"
	"github.com/metastore-labs/metasync/pkg/reconcile"
)

// Action is what push decided to do with one entity.
type Action string

// Push actions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionSkip   Action = "skip"
)

// ItemResult is the outcome of pushing one entity.
type ItemResult struct {
	URN    string
	Kind   metadata.Kind
	Action Action
	Err    error
}

// PushResult collects per-item outcomes of a push run. Push keeps going
// past individual failures, so a result can hold both.
type PushResult struct {
	Items  []ItemResult
	DryRun bool
}

// Succeeded returns the items that were applied.
func (r *PushResult) Succeeded() []ItemResult {
	return r.filter(func(item ItemResult) bool { return item.Err == nil && item.Action != ActionSkip })
}

// Failed returns the items that errored.
func (r *PushResult) Failed() []ItemResult {
	return r.filter(func(item ItemResult) bool { return item.Err != nil })
}

// FailedURNs returns the URNs of the items that errored, in push order.
func (r *PushResult) FailedURNs() []string {
	failed := r.Failed()
	urns := make([]string, len(failed))
	for i, item := range failed {
		urns[i] = item.URN
	}
	return urns
}

func (r *PushResult) filter(keep func(ItemResult) bool) []ItemResult {
	var items []ItemResult
	for _, item := range r.Items {
		if keep(item) {
			items = append(items, item)
		}
	}
	return items
}

// Summary renders a one-line outcome for logs and CLI output.
func (r *PushResult) Summary() string {
	return fmt.Sprintf("pushed=%d failed=%d skipped=%d",
		len(r.Succeeded()), len(r.Failed()), r.count(ActionSkip))
}

func (r *PushResult) count(action Action) int {
	n := 0
	for _, item := range r.Items {
		if item.Action == action && item.Err == nil {
			n++
		}
	}
	return n
}

// PullResult reports how many entities each kind contributed.
type PullResult struct {
	Counts map[metadata.Kind]int
}

// Total returns the number of entities pulled across all kinds.
func (r *PullResult) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// DiffResult is the reconciliation outcome for a set of kinds.
type DiffResult struct {
	Kinds map[metadata.Kind]*reconcile.Result
}

// Degraded reports whether any kind's remote listing failed and was
// classified against an empty remote set.
func (r *DiffResult) Degraded() bool {
	for _, result := range r.Kinds {
		if result.Degraded() {
			return true
		}
	}
	return false
}

// Classifications returns every classification across kinds, in kind
// order.
func (r *DiffResult) Classifications() []reconcile.Classification {
	var all []reconcile.Classification
	for _, kind := range metadata.Kinds() {
		if result, ok := r.Kinds[kind]; ok {
			all = append(all, result.Classifications...)
		}
	}
	return all
}
