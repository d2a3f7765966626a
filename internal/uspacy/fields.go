package uspacy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// FieldTypeList is the type tag of fields whose valid values are a finite
// label/value enumeration.
const FieldTypeList = "list"

// FieldInfo describes one field of the entity schema.
type FieldInfo struct {
	Name string
	Type string

	// ListValues maps a human-readable label to its underlying value.
	// Only populated for fields of type list.
	ListValues map[string]string
}

// IsList reports whether the field values are constrained to an enumeration.
func (f FieldInfo) IsList() bool {
	return f.Type == FieldTypeList
}

type fieldPayload struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	Values []valuePayload `json:"values"`
}

type valuePayload struct {
	Title any `json:"title"`
	Value any `json:"value"`
}

// FetchFields retrieves the field schema for the configured entity type.
// The label lookup tables for list fields are built here, once per run.
func (c Client) FetchFields(ctx context.Context) (map[string]FieldInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.entityURL("fields"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch field schema: %w", err)
	}

	var payload []fieldPayload
	if err := unmarshalEnveloped(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse field schema: %v", err)
	}

	fields := make(map[string]FieldInfo, len(payload))
	for _, f := range payload {
		if f.ID == "" {
			continue
		}
		info := FieldInfo{Name: f.Name, Type: f.Type}
		if info.IsList() {
			info.ListValues = make(map[string]string, len(f.Values))
			for _, v := range f.Values {
				title := strings.TrimSpace(asString(v.Title))
				if title == "" {
					continue
				}
				info.ListValues[title] = strings.TrimSpace(asString(v.Value))
			}
		}
		fields[f.ID] = info
	}

	c.log.Debug("Fetched field schema", "entity", c.config.Entity, "fields", len(fields))
	return fields, nil
}

// unmarshalEnveloped decodes a response that is either a bare JSON array or
// wrapped in a {"data": [...]} envelope.
func unmarshalEnveloped(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}
	if envelope.Data == nil {
		return fmt.Errorf("response has neither a list nor a data envelope")
	}
	return json.Unmarshal(envelope.Data, v)
}

// asString renders a decoded JSON scalar the way it was written in the file,
// avoiding the float suffix on whole numbers.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
