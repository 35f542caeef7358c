package datahub

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/mcp"
	"github.com/metastore-labs/metasync/pkg/metadata"
	"github.com/metastore-labs/metasync/pkg/urn"
)

// scrollPageSize is the page size used when listing entities. DataHub caps
// scroll pages at 1000; staying well below keeps response bodies small.
const scrollPageSize = 200

type aspectEnvelope struct {
	Value metadata.Document `json:"value"`
}

type scrollResponse struct {
	ScrollID string            `json:"scrollId"`
	Entities []json.RawMessage `json:"entities"`
}

// GetEntity fetches a single entity with all of its aspects.
func (c *Client) GetEntity(ctx context.Context, kind metadata.Kind, entityURN string) (metadata.Entity, error) {
	path := fmt.Sprintf("/openapi/v3/entity/%s/%s", kind, url.PathEscape(entityURN))
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var apiErr *errors.APIError
		if stderrors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return metadata.Entity{}, errors.NewNotFoundError(string(kind), entityURN)
		}
		return metadata.Entity{}, err
	}

	var raw json.RawMessage
	if err := decode(resp, &raw); err != nil {
		return metadata.Entity{}, err
	}
	return decodeWireEntity(kind, raw)
}

// ListEntities pages through every entity of a kind via the scroll API.
func (c *Client) ListEntities(ctx context.Context, kind metadata.Kind) ([]metadata.Entity, error) {
	var entities []metadata.Entity
	scrollID := ""

	for {
		path := fmt.Sprintf("/openapi/v3/entity/%s?count=%d", kind, scrollPageSize)
		if scrollID != "" {
			path += "&scrollId=" + url.QueryEscape(scrollID)
		}

		resp, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		var page scrollResponse
		if err := decode(resp, &page); err != nil {
			return nil, err
		}

		for _, raw := range page.Entities {
			entity, err := decodeWireEntity(kind, raw)
			if err != nil {
				return nil, err
			}
			entities = append(entities, entity)
		}

		if page.ScrollID == "" || len(page.Entities) == 0 {
			return entities, nil
		}
		scrollID = page.ScrollID
	}
}

// UpsertEntity pushes an entity's aspects as a metadata change proposal
// batch through the ingestion endpoint.
func (c *Client) UpsertEntity(ctx context.Context, entity metadata.Entity) error {
	if err := entity.Validate(); err != nil {
		return err
	}
	proposals := mcp.FromEntity(entity)
	if len(proposals) == 0 {
		return &errors.ValidationError{
			Field: "aspects", Message: "entity has no aspects to push",
		}
	}

	body := map[string]any{"proposals": proposals}
	resp, err := c.do(ctx, http.MethodPost, "/openapi/v1/platform/entities/v1/ingestProposalBatch", body)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// DeleteEntity removes an entity. Soft deletion flips the status aspect;
// hard deletion removes the entity and its aspects entirely.
func (c *Client) DeleteEntity(ctx context.Context, kind metadata.Kind, entityURN string, hard bool) error {
	path := fmt.Sprintf("/openapi/v3/entity/%s/%s", kind, url.PathEscape(entityURN))
	if !hard {
		return c.UpsertEntity(ctx, softDeleted(kind, entityURN))
	}
	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// softDeleted builds the status-aspect-only entity that marks a soft
// delete.
func softDeleted(kind metadata.Kind, entityURN string) metadata.Entity {
	name := entityURN
	if parsed, err := urn.Parse(entityURN); err == nil {
		name = parsed.ID
	}
	entity := metadata.NewEntity(entityURN, kind, name)
	entity.SetAspect(metadata.AspectStatus, metadata.Document{"removed": true})
	return entity
}

// decodeWireEntity maps the openapi v3 entity envelope onto the internal
// entity model.
func decodeWireEntity(kind metadata.Kind, raw json.RawMessage) (metadata.Entity, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return metadata.Entity{}, errors.WrapParse("json", "entity", err)
	}

	urnRaw, ok := fields["urn"]
	if !ok {
		return metadata.Entity{}, &errors.ParseError{Format: "json", Message: "entity missing urn"}
	}
	var entityURN string
	if err := json.Unmarshal(urnRaw, &entityURN); err != nil {
		return metadata.Entity{}, errors.WrapParse("json", "entity urn", err)
	}

	name := entityURN
	if parsed, err := urn.Parse(entityURN); err == nil {
		name = parsed.ID
	}

	entity := metadata.NewEntity(entityURN, kind, name)
	for field, value := range fields {
		if field == "urn" {
			continue
		}
		var envelope aspectEnvelope
		if err := json.Unmarshal(value, &envelope); err != nil {
			return metadata.Entity{}, errors.WrapParse("json", "aspect "+field, err)
		}
		if len(envelope.Value) == 0 {
			continue
		}
		entity.SetAspect(field, envelope.Value)
	}

	// Prefer the display name recorded in the properties.
	for _, aspect := range []string{metadata.AspectProperties, metadata.AspectInfo} {
		if doc := entity.Aspect(aspect); doc != nil {
			if displayName, ok := doc.String("name"); ok {
				entity.Name = displayName
				break
			}
		}
	}

	return entity, nil
}
