package model

import (
	"fmt"
	"maps"

	"github.com/hupe1980/flexquery/codec"
)

// Document is a stored document.
type Document struct {
	// ID identifies the document. It is the ordering tie-break for equal
	// scores.
	ID string `json:"Id,omitempty"`
	// Score is the relevance of a matched document.
	Score float64 `json:"Score,omitempty"`
	// Fields maps field names to stored values.
	Fields map[string]string `json:"Fields"`
}

// NewDocument creates a document with the given id and fields.
func NewDocument(id string, fields map[string]string) Document {
	return Document{ID: id, Fields: fields}
}

// Lookup returns the stored value of a field.
func (d Document) Lookup(field string) (string, bool) {
	v, ok := d.Fields[field]
	return v, ok
}

// Project returns a copy holding only the given columns. No columns or a
// single "*" selects every field.
func (d Document) Project(columns []string) Document {
	out := Document{ID: d.ID, Score: d.Score}
	if AllColumns(columns) {
		out.Fields = maps.Clone(d.Fields)
		if out.Fields == nil {
			out.Fields = map[string]string{}
		}
		return out
	}
	out.Fields = make(map[string]string, len(columns))
	for _, c := range columns {
		if v, ok := d.Fields[c]; ok {
			out.Fields[c] = v
		}
	}
	return out
}

// AllColumns reports whether columns selects every field.
func AllColumns(columns []string) bool {
	if len(columns) == 0 {
		return true
	}
	for _, c := range columns {
		if c == "*" {
			return true
		}
	}
	return false
}

// DecodeField decodes a structured field payload into v.
// If c is nil, codec.Default is used.
func (d Document) DecodeField(field string, c codec.Codec, v any) error {
	raw, ok := d.Fields[field]
	if !ok {
		return fmt.Errorf("document %q has no field %q", d.ID, field)
	}
	if c == nil {
		c = codec.Default
	}
	if err := c.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode field %q of document %q: %w", field, d.ID, err)
	}
	return nil
}

// ResultSet is one page of query matches.
type ResultSet struct {
	// Documents are the matches of the requested page, best first.
	Documents []Document `json:"Documents"`
	// TotalAvailable is the number of matches before pagination.
	TotalAvailable int `json:"TotalAvailable"`
}

// Len returns the number of documents on the page.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Documents)
}

// IDs returns the document ids in page order.
func (r *ResultSet) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, len(r.Documents))
	for i, d := range r.Documents {
		ids[i] = d.ID
	}
	return ids
}
