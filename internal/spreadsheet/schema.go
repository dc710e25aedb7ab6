// Package spreadsheet turns uploaded workbooks into typed rows according to a
// column schema.
package spreadsheet

import (
	"fmt"
	"strings"
)

// FieldType determines how a column's cells are converted.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
)

// FieldDefinition describes one expected column of the workbook.
type FieldDefinition struct {
	Title       string    `json:"title"`
	Type        FieldType `json:"type"`
	ValidValues []string  `json:"validValues,omitempty"`
	Optional    bool      `json:"optional,omitempty"`
}

// ParsedRow maps a column title to its converted value. Numbers are float64,
// booleans are bool, dates are ISO-8601 strings and everything else is a string.
// Empty cells are not present.
type ParsedRow map[string]any

// String returns the trimmed textual form of a column, or "" when it is absent.
func (r ParsedRow) String(title string) string {
	v, ok := r[title]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return formatNumber(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// ValidateSchema checks that every title is set and unique.
func ValidateSchema(schema []FieldDefinition) error {
	seen := make(map[string]bool, len(schema))
	for i, field := range schema {
		if strings.TrimSpace(field.Title) == "" {
			return fmt.Errorf("field %d has no title", i)
		}
		if seen[field.Title] {
			return fmt.Errorf("duplicate field title %q", field.Title)
		}
		seen[field.Title] = true
		switch field.Type {
		case FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate:
		default:
			return fmt.Errorf("field %q has unknown type %q", field.Title, field.Type)
		}
	}
	return nil
}

func schemaIndex(schema []FieldDefinition) map[string]FieldDefinition {
	index := make(map[string]FieldDefinition, len(schema))
	for _, field := range schema {
		index[field.Title] = field
	}
	return index
}
