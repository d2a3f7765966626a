// Package normalize turns a raw file row into an update payload, resolving
// list-field labels to their underlying values through the fetched schema.
package normalize

import (
	"fmt"
	"strings"

	"github.com/uspacy-tools/uspacy-update/internal/uspacy"
)

// UnknownValueError is returned when a list field cell does not match any of
// the labels enumerated in the schema. It is scoped to a single row.
type UnknownValueError struct {
	Field string
	Label string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("list field %q has no value labeled %q", e.Field, e.Label)
}

// Payload builds the update payload for one row.
//
// The first header occurrence of searchField is the lookup key and is left out
// of the payload; any later occurrence is a normal update target. Cells are
// trimmed, and an empty cell is an explicit value, not a skip. List field
// labels are matched case-sensitively.
func Payload(header, row []string, searchField string, fields map[string]uspacy.FieldInfo) (map[string]string, error) {
	payload := make(map[string]string, len(header))

	searchSeen := false
	for i, fieldID := range header {
		if fieldID == "" {
			continue
		}
		if fieldID == searchField && !searchSeen {
			searchSeen = true
			continue
		}

		value := ""
		if i < len(row) {
			value = strings.TrimSpace(row[i])
		}

		info, ok := fields[fieldID]
		if !ok || !info.IsList() || value == "" {
			payload[fieldID] = value
			continue
		}

		mapped, ok := info.ListValues[value]
		if !ok {
			return nil, &UnknownValueError{Field: fieldID, Label: value}
		}
		payload[fieldID] = mapped
	}

	return payload, nil
}

// SearchKey extracts the lookup value of the row, using the first header
// occurrence of searchField.
func SearchKey(header, row []string, searchField string) string {
	for i, fieldID := range header {
		if fieldID != searchField {
			continue
		}
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return ""
}
