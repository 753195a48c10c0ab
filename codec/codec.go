// Package codec centralizes encoding of wire shapes and field payloads.
//
// Stored field values are opaque strings; documents that carry structured
// payloads (for example a JSON-encoded "sessionproperties" field) are
// decoded with a Codec. Conditions, result sets and JSONL document dumps
// are encoded with one as well.
package codec

import (
	"fmt"
	"strings"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Appender is implemented by codecs that can encode into a caller-owned
// buffer.
type Appender interface {
	Append(dst []byte, v any) ([]byte, error)
}

// Names lists the built-in codecs accepted by ByName.
func Names() []string { return []string{"go-json", "json"} }

// ByName returns a built-in codec by its stable name. The empty name
// selects Default.
func ByName(name string) (Codec, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return Default, true
	case "json":
		return JSON{}, true
	case "go-json", "gojson":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Append encodes v with c and appends it to dst. Codecs that do not
// implement Appender are marshaled and copied.
func Append(c Codec, dst []byte, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}
	if a, ok := c.(Appender); ok {
		return a.Append(dst, v)
	}
	b, err := c.Marshal(v)
	if err != nil {
		return dst, err
	}
	return append(dst, b...), nil
}

// MustMarshal is a helper for tests and examples.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
