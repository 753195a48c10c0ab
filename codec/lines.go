package codec

import (
	"fmt"
	"io"
)

// LineEncoder writes one encoded value per line (JSON Lines), the format
// read by document loaders.
// A LineEncoder is not safe for concurrent use.
type LineEncoder struct {
	w   io.Writer
	c   Codec
	buf []byte
	n   int
}

// NewLineEncoder returns an encoder writing to w. If c is nil, Default is
// used.
func NewLineEncoder(w io.Writer, c Codec) *LineEncoder {
	if c == nil {
		c = Default
	}
	return &LineEncoder{w: w, c: c}
}

// Encode writes v followed by a newline.
func (e *LineEncoder) Encode(v any) error {
	buf, err := Append(e.c, e.buf[:0], v)
	if err != nil {
		return fmt.Errorf("codec %s: line %d: %w", e.c.Name(), e.n+1, err)
	}
	buf = append(buf, '\n')
	e.buf = buf
	if _, err := e.w.Write(buf); err != nil {
		return err
	}
	e.n++
	return nil
}

// Lines returns the number of lines written.
func (e *LineEncoder) Lines() int { return e.n }
