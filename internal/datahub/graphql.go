package datahub

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/metadata"
)

// graphqlRequest is the request envelope for /api/graphql.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// Query executes a GraphQL query and decodes the data field into target.
// GraphQL-level errors are mapped to API errors so the caller's degrade
// logic treats them like any other remote failure.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any, target any) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/graphql", graphqlRequest{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return err
	}

	var envelope graphqlResponse
	if err := decode(resp, &envelope); err != nil {
		return err
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, gqlErr := range envelope.Errors {
			messages[i] = gqlErr.Message
		}
		return &errors.APIError{
			Endpoint: "/api/graphql",
			Message:  strings.Join(messages, "; "),
		}
	}

	if target == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		return errors.WrapParse("json", "/api/graphql", err)
	}
	return nil
}

const searchURNsQuery = `query scrollUrns($type: EntityType!, $query: String!, $count: Int!, $scrollId: String) {
  scrollAcrossEntities(input: {types: [$type], query: $query, count: $count, scrollId: $scrollId}) {
    nextScrollId
    searchResults {
      entity {
        urn
      }
    }
  }
}`

// graphqlEntityTypes maps entity kinds onto the GraphQL EntityType enum.
var graphqlEntityTypes = map[metadata.Kind]string{
	metadata.KindTag:                "TAG",
	metadata.KindDomain:             "DOMAIN",
	metadata.KindGlossaryTerm:       "GLOSSARY_TERM",
	metadata.KindGlossaryNode:       "GLOSSARY_NODE",
	metadata.KindStructuredProperty: "STRUCTURED_PROPERTY",
	metadata.KindDataProduct:        "DATA_PRODUCT",
	metadata.KindDataContract:       "DATA_CONTRACT",
	metadata.KindAssertion:          "ASSERTION",
}

type scrollURNsData struct {
	ScrollAcrossEntities struct {
		NextScrollID string `json:"nextScrollId"`
		SearchResults []struct {
			Entity struct {
				URN string `json:"urn"`
			} `json:"entity"`
		} `json:"searchResults"`
	} `json:"scrollAcrossEntities"`
}

// SearchURNs returns every URN of a kind matching the query string via the
// GraphQL search surface. An empty query matches everything.
func (c *Client) SearchURNs(ctx context.Context, kind metadata.Kind, query string) ([]string, error) {
	entityType, ok := graphqlEntityTypes[kind]
	if !ok {
		return nil, &errors.ValidationError{
			Field: "kind", Value: string(kind), Message: "kind has no GraphQL entity type",
		}
	}
	if query == "" {
		query = "*"
	}

	var urns []string
	scrollID := ""
	for {
		variables := map[string]any{
			"type":  entityType,
			"query": query,
			"count": scrollPageSize,
		}
		if scrollID != "" {
			variables["scrollId"] = scrollID
		}

		var data scrollURNsData
		if err := c.Query(ctx, searchURNsQuery, variables, &data); err != nil {
			return nil, err
		}

		for _, result := range data.ScrollAcrossEntities.SearchResults {
			urns = append(urns, result.Entity.URN)
		}

		scrollID = data.ScrollAcrossEntities.NextScrollID
		if scrollID == "" || len(data.ScrollAcrossEntities.SearchResults) == 0 {
			return urns, nil
		}
	}
}
