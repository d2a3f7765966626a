package uspacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/uspacy-tools/uspacy-update/internal/constants"
)

// Entity is a raw CRM record as returned by the search endpoint.
type Entity map[string]any

// ID returns the record identifier, or an empty string when absent.
func (e Entity) ID() string {
	return asString(e["id"])
}

// SearchEntities returns the entities whose field matches the given value.
func (c Client) SearchEntities(ctx context.Context, field, value string) ([]Entity, error) {
	params := url.Values{}
	params.Set("boolean_operator", "AND")
	params.Set("page", "1")
	params.Set("list", strconv.Itoa(constants.SearchPageSize))
	params.Set(field, value)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.entityURL("")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search entities by %s: %w", field, err)
	}

	var entities []Entity
	if err := unmarshalEnveloped(body, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %v", err)
	}
	return entities, nil
}

// PatchEntity applies the payload to the entity with the given id.
func (c Client) PatchEntity(ctx context.Context, id string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.entityURL(id), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("failed to update entity %s: %w", id, err)
	}
	return nil
}
