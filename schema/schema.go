// Package schema declares the types of indexed document fields.
//
// Stored field values are always strings. The declared type decides how a
// value is interpreted by operators (numeric, temporal or textual ordering)
// and which operators are meaningful for the field at all.
package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldType defines the data type of an indexed field.
type FieldType uint8

const (
	// FieldTypeAny is used for undeclared fields. Values are compared
	// numerically when both sides parse as numbers, else as strings.
	FieldTypeAny FieldType = iota
	// FieldTypeKeyword is an exact, untokenized string.
	FieldTypeKeyword
	// FieldTypeText is a tokenized, case-insensitive string.
	FieldTypeText
	FieldTypeInt
	FieldTypeFloat
	// FieldTypeDate holds RFC 3339 timestamps or YYYY-MM-DD dates.
	FieldTypeDate
	FieldTypeBool
)

// String returns the string representation of the FieldType.
func (t FieldType) String() string {
	switch t {
	case FieldTypeAny:
		return "Any"
	case FieldTypeKeyword:
		return "Keyword"
	case FieldTypeText:
		return "Text"
	case FieldTypeInt:
		return "Int"
	case FieldTypeFloat:
		return "Float"
	case FieldTypeDate:
		return "Date"
	case FieldTypeBool:
		return "Bool"
	default:
		return "Unknown"
	}
}

// ParseFieldType parses the case-insensitive name of a field type.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "any", "":
		return FieldTypeAny, nil
	case "keyword", "exacttext":
		return FieldTypeKeyword, nil
	case "text":
		return FieldTypeText, nil
	case "int", "integer", "long":
		return FieldTypeInt, nil
	case "float", "double":
		return FieldTypeFloat, nil
	case "date", "datetime":
		return FieldTypeDate, nil
	case "bool", "boolean":
		return FieldTypeBool, nil
	}
	return FieldTypeAny, fmt.Errorf("unknown field type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *FieldType) UnmarshalText(b []byte) error {
	ft, err := ParseFieldType(string(b))
	if err != nil {
		return err
	}
	*t = ft
	return nil
}

// Ordinal reports whether values of the type have a natural total order
// that range-style operators can rely on.
func (t FieldType) Ordinal() bool {
	switch t {
	case FieldTypeInt, FieldTypeFloat, FieldTypeDate:
		return true
	}
	return false
}

// Textual reports whether the type stores free-form strings.
func (t FieldType) Textual() bool {
	switch t {
	case FieldTypeAny, FieldTypeKeyword, FieldTypeText:
		return true
	}
	return false
}

// Schema maps field names to declared types. A nil Schema is valid and
// treats every field as FieldTypeAny.
type Schema map[string]FieldType

// Type returns the declared type of field, or FieldTypeAny.
func (s Schema) Type(field string) FieldType {
	if s == nil {
		return FieldTypeAny
	}
	return s[field]
}

// Validate checks that every declared field of the document parses as its
// declared type. Undeclared fields are ignored.
func (s Schema) Validate(fields map[string]string) error {
	if s == nil {
		return nil
	}
	for k, v := range fields {
		ft, ok := s[k]
		if !ok {
			continue
		}
		if err := CheckValue(ft, v); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	return nil
}

// CheckValue reports whether v is a valid literal of type t.
func CheckValue(t FieldType, v string) error {
	switch t {
	case FieldTypeInt:
		if _, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err != nil {
			return fmt.Errorf("invalid %s value %q", t, v)
		}
	case FieldTypeFloat:
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return fmt.Errorf("invalid %s value %q", t, v)
		}
	case FieldTypeDate:
		if _, err := ParseDate(v); err != nil {
			return fmt.Errorf("invalid %s value %q", t, v)
		}
	case FieldTypeBool:
		if _, err := strconv.ParseBool(strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("invalid %s value %q", t, v)
		}
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a date literal in one of the accepted layouts.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	var lastErr error
	for _, layout := range dateLayouts {
		ts, err := time.Parse(layout, v)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
