// Package metadata defines the entity model shared by the sync engine, the
// DataHub client, and the local stores. An entity is a URN plus a set of
// named aspects, where each aspect is a JSON document DataHub understands.
package metadata

import (
	"strings"

	"github.com/metastore-labs/metasync/pkg/errors"
)

// Kind identifies a DataHub entity type managed by this tool.
type Kind string

// Entity kinds managed by metasync. The values match DataHub's entity type
// names as they appear in URNs and the openapi entity endpoints.
const (
	KindTag                Kind = "tag"
	KindDomain             Kind = "domain"
	KindGlossaryTerm       Kind = "glossaryTerm"
	KindGlossaryNode       Kind = "glossaryNode"
	KindStructuredProperty Kind = "structuredProperty"
	KindDataProduct        Kind = "dataProduct"
	KindDataContract       Kind = "dataContract"
	KindAssertion          Kind = "assertion"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether the kind is one metasync manages.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Kinds returns all managed entity kinds in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindTag,
		KindDomain,
		KindGlossaryTerm,
		KindGlossaryNode,
		KindStructuredProperty,
		KindDataProduct,
		KindDataContract,
		KindAssertion,
	}
}

// ParseKind parses a kind from user input. Lookup is case-insensitive,
// ignores underscores and hyphens, and accepts the plural forms used in
// directory names and API paths.
func ParseKind(s string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", "", "-", "").Replace(normalized)
	if strings.HasSuffix(normalized, "ies") {
		normalized = strings.TrimSuffix(normalized, "ies") + "y"
	} else {
		normalized = strings.TrimSuffix(normalized, "s")
	}
	for _, k := range Kinds() {
		singular := strings.ToLower(strings.TrimSuffix(string(k), "s"))
		if normalized == singular {
			return k, nil
		}
	}
	return "", &errors.ValidationError{
		Field:   "kind",
		Value:   s,
		Message: "unknown entity kind",
	}
}

// SyncStatus classifies a local record relative to the remote DataHub state.
type SyncStatus string

// Classification values produced by the reconciliation engine.
const (
	StatusSynced     SyncStatus = "SYNCED"
	StatusModified   SyncStatus = "MODIFIED"
	StatusLocalOnly  SyncStatus = "LOCAL_ONLY"
	StatusRemoteOnly SyncStatus = "REMOTE_ONLY"
)

// String returns the string representation of the status.
func (s SyncStatus) String() string {
	return string(s)
}

// Valid reports whether the status is one of the four classifications.
func (s SyncStatus) Valid() bool {
	switch s {
	case StatusSynced, StatusModified, StatusLocalOnly, StatusRemoteOnly:
		return true
	}
	return false
}
