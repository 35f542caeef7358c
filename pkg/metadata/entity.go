package metadata

import (
	"sort"

	"github.com/metastore-labs/metasync/pkg/errors"
)

// Aspect names used across the managed entity kinds. Each kind carries a
// subset of these; the key aspect and properties aspect are the common core.
const (
	AspectProperties    = "properties"
	AspectOwnership     = "ownership"
	AspectStatus        = "status"
	AspectGlobalTags    = "globalTags"
	AspectGlossaryTerms = "glossaryTerms"
	AspectDomains       = "domains"
	AspectInfo          = "info"
)

// Entity is a single DataHub entity: a URN plus its named aspects.
// Entities are value types; the sync engine copies them freely.
type Entity struct {
	URN     string              `json:"urn" yaml:"urn"`
	Kind    Kind                `json:"kind" yaml:"kind"`
	Name    string              `json:"name" yaml:"name"`
	Aspects map[string]Document `json:"aspects,omitempty" yaml:"aspects,omitempty"`
}

// NewEntity creates an entity with an initialized aspect map.
func NewEntity(urn string, kind Kind, name string) Entity {
	return Entity{
		URN:     urn,
		Kind:    kind,
		Name:    name,
		Aspects: make(map[string]Document),
	}
}

// Aspect returns the named aspect document, or nil if absent.
func (e Entity) Aspect(name string) Document {
	if e.Aspects == nil {
		return nil
	}
	return e.Aspects[name]
}

// SetAspect sets the named aspect document, allocating the map if needed.
func (e *Entity) SetAspect(name string, doc Document) {
	if e.Aspects == nil {
		e.Aspects = make(map[string]Document)
	}
	e.Aspects[name] = doc
}

// AspectNames returns the entity's aspect names in sorted order.
func (e Entity) AspectNames() []string {
	names := make([]string, 0, len(e.Aspects))
	for name := range e.Aspects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Description returns the description field from the properties aspect,
// falling back to the info aspect for glossary terms.
func (e Entity) Description() string {
	for _, aspect := range []string{AspectProperties, AspectInfo} {
		if doc := e.Aspect(aspect); doc != nil {
			if desc, ok := doc.String("description"); ok {
				return desc
			}
			// Glossary term info uses "definition" instead of "description".
			if def, ok := doc.String("definition"); ok {
				return def
			}
		}
	}
	return ""
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	clone := e
	if e.Aspects != nil {
		clone.Aspects = make(map[string]Document, len(e.Aspects))
		for name, doc := range e.Aspects {
			clone.Aspects[name] = doc.Clone()
		}
	}
	return clone
}

// Validate checks that the entity carries the minimum fields the sync
// engine relies on.
func (e Entity) Validate() error {
	if e.URN == "" {
		return &errors.ValidationError{Field: "urn", Message: "cannot be empty"}
	}
	if !e.Kind.Valid() {
		return &errors.ValidationError{Field: "kind", Value: string(e.Kind), Message: "unknown entity kind"}
	}
	if e.Name == "" {
		return &errors.ValidationError{Field: "name", Message: "cannot be empty"}
	}
	return nil
}

// Equivalent reports whether two entities carry the same metadata after
// normalization. Timestamps, audit stamps, and whitespace-only differences
// in string fields do not count as differences.
func Equivalent(a, b Entity) bool {
	if a.Kind != b.Kind {
		return false
	}
	return NormalizeAspects(a.Aspects).Equal(NormalizeAspects(b.Aspects))
}
