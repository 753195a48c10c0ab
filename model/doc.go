// Package model defines the shapes exchanged with callers.
//
//   - Document: a stored document, exposing its fields as strings
//   - ResultSet: one page of matches plus the total match count
//
// Field values are opaque strings. Callers that store structured payloads
// (for example a JSON-encoded "sessionproperties" field) decode them with
// Document.DecodeField.
package model
