package reconcile

import (
	"reflect"
	"sort"

	"github.com/metastore-labs/metasync/pkg/metadata"
)

// diffAspects walks the union of two normalized aspect collections and
// records every top-level field that differs. Finer-grained paths are not
// tracked; the UI shows the full aspect when a field inside it changed.
func diffAspects(local, remote metadata.Aspects) []FieldChange {
	var changes []FieldChange

	for _, aspect := range aspectUnion(local, remote) {
		localDoc := local[aspect]
		remoteDoc := remote[aspect]

		for _, field := range fieldUnion(localDoc, remoteDoc) {
			localVal := value(localDoc, field)
			remoteVal := value(remoteDoc, field)
			if reflect.DeepEqual(localVal, remoteVal) {
				continue
			}
			changes = append(changes, FieldChange{
				Aspect: aspect,
				Path:   field,
				Local:  localVal,
				Remote: remoteVal,
			})
		}
	}

	return changes
}

func aspectUnion(a, b metadata.Aspects) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for name := range a {
		seen[name] = true
	}
	for name := range b {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func fieldUnion(a, b metadata.Document) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for field := range a {
		seen[field] = true
	}
	for field := range b {
		seen[field] = true
	}
	fields := make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func value(doc metadata.Document, field string) any {
	if doc == nil {
		return nil
	}
	return doc[field]
}
