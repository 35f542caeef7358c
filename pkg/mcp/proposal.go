// Package mcp reads and writes Metadata Change Proposal batch files, the
// JSON format DataHub ingests to apply metadata changes. A batch file holds
// one entity: one proposal per aspect, all sharing the entity's URN.
package mcp

import (
	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/metadata"
	"github.com/metastore-labs/metasync/pkg/urn"
)

// ChangeType is the operation a proposal applies.
type ChangeType string

// Change types understood by DataHub's ingestion endpoint.
const (
	ChangeUpsert ChangeType = "UPSERT"
	ChangeCreate ChangeType = "CREATE"
	ChangeDelete ChangeType = "DELETE"
)

// Proposal is a single metadata change proposal.
type Proposal struct {
	EntityType string            `json:"entityType"`
	EntityURN  string            `json:"entityUrn"`
	AspectName string            `json:"aspectName"`
	Aspect     metadata.Document `json:"aspect,omitempty"`
	ChangeType ChangeType        `json:"changeType"`
}

// FromEntity renders an entity as an ordered proposal batch, one UPSERT per
// non-empty aspect. The display name is carried in the properties aspect so
// a hashed URN id never becomes the name on re-import.
func FromEntity(entity metadata.Entity) []Proposal {
	entity = withDisplayName(entity)
	proposals := make([]Proposal, 0, len(entity.Aspects))
	for _, name := range entity.AspectNames() {
		doc := entity.Aspects[name]
		if len(doc) == 0 {
			continue
		}
		proposals = append(proposals, Proposal{
			EntityType: string(entity.Kind),
			EntityURN:  entity.URN,
			AspectName: name,
			Aspect:     doc.Clone(),
			ChangeType: ChangeUpsert,
		})
	}
	return proposals
}

// withDisplayName records the entity name in the properties aspect when no
// aspect carries one.
func withDisplayName(entity metadata.Entity) metadata.Entity {
	if entity.Name == "" {
		return entity
	}
	for _, aspect := range []string{metadata.AspectProperties, metadata.AspectInfo} {
		if doc := entity.Aspect(aspect); doc != nil {
			if _, ok := doc.String("name"); ok {
				return entity
			}
		}
	}

	entity = entity.Clone()
	props := entity.Aspect(metadata.AspectProperties)
	if props == nil {
		props = metadata.Document{}
	}
	props["name"] = entity.Name
	entity.SetAspect(metadata.AspectProperties, props)
	return entity
}

// ToEntity rebuilds an entity from a proposal batch. All proposals must
// share one URN; the entity name is taken from the properties aspect when
// present and the URN id otherwise.
func ToEntity(proposals []Proposal) (metadata.Entity, error) {
	if len(proposals) == 0 {
		return metadata.Entity{}, &errors.ValidationError{
			Field: "proposals", Message: "empty proposal batch",
		}
	}

	first := proposals[0]
	parsed, err := urn.Parse(first.EntityURN)
	if err != nil {
		return metadata.Entity{}, err
	}

	kind := metadata.Kind(first.EntityType)
	if !kind.Valid() {
		return metadata.Entity{}, &errors.ValidationError{
			Field: "entityType", Value: first.EntityType, Message: "unknown entity kind",
		}
	}

	entity := metadata.NewEntity(first.EntityURN, kind, parsed.ID)
	for _, p := range proposals {
		if p.EntityURN != first.EntityURN {
			return metadata.Entity{}, &errors.ValidationError{
				Field:   "entityUrn",
				Value:   p.EntityURN,
				Message: "proposal batch mixes multiple entities",
			}
		}
		if p.ChangeType == ChangeDelete || len(p.Aspect) == 0 {
			continue
		}
		entity.SetAspect(p.AspectName, p.Aspect.Clone())
	}

	for _, aspect := range []string{metadata.AspectProperties, metadata.AspectInfo} {
		if doc := entity.Aspect(aspect); doc != nil {
			if name, ok := doc.String("name"); ok {
				entity.Name = name
				break
			}
		}
	}

	return entity, nil
}
