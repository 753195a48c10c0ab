package index

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/flexquery/model"
	"github.com/hupe1980/flexquery/query"
	"github.com/hupe1980/flexquery/schema"
)

// ErrInvalidDocument is returned for documents that do not conform to the
// index schema.
var ErrInvalidDocument = errors.New("invalid document")

// Reader is the read side of an index consumed by the search engine.
type Reader interface {
	// Schema returns the declared field types. It may be nil.
	Schema() schema.Schema
	// Snapshot returns an immutable view of the current documents.
	Snapshot() *Snapshot
}

// Snapshot is an immutable, ID-ordered view of an index.
// Documents are addressed by their position in ID order.
type Snapshot struct {
	version  uint64
	docs     []model.Document
	present  map[string]*roaring.Bitmap            // field -> positions holding it
	postings map[string]map[string]*roaring.Bitmap // keyword field -> value -> positions
}

// NewSnapshot builds a snapshot over docs. Postings are kept for the
// Keyword fields of sch. docs is sorted in place by ID.
func NewSnapshot(sch schema.Schema, docs []model.Document) *Snapshot {
	slices.SortFunc(docs, func(a, b model.Document) int { return cmp.Compare(a.ID, b.ID) })

	s := &Snapshot{
		docs:     docs,
		present:  make(map[string]*roaring.Bitmap),
		postings: make(map[string]map[string]*roaring.Bitmap),
	}
	for pos, d := range docs {
		for field, v := range d.Fields {
			bitmapFor(s.present, field).Add(uint32(pos))

			if sch.Type(field) != schema.FieldTypeKeyword {
				continue
			}
			values, ok := s.postings[field]
			if !ok {
				values = make(map[string]*roaring.Bitmap)
				s.postings[field] = values
			}
			bitmapFor(values, v).Add(uint32(pos))
		}
	}
	for _, bm := range s.present {
		bm.RunOptimize()
	}
	return s
}

func bitmapFor(m map[string]*roaring.Bitmap, key string) *roaring.Bitmap {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}
	return bm
}

// Version identifies the index state the snapshot was taken from.
func (s *Snapshot) Version() uint64 { return s.version }

// Len returns the number of documents.
func (s *Snapshot) Len() int { return len(s.docs) }

// Doc returns the document at position pos.
func (s *Snapshot) Doc(pos int) model.Document { return s.docs[pos] }

// All iterates over the documents in ID order.
func (s *Snapshot) All() iter.Seq2[int, model.Document] {
	return func(yield func(int, model.Document) bool) {
		for i, d := range s.docs {
			if !yield(i, d) {
				return
			}
		}
	}
}

// Coverage returns the number of documents holding field.
func (s *Snapshot) Coverage(field string) int {
	bm, ok := s.present[field]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// Candidates returns the positions of the documents that may match a query
// with the given pruning. ok is false when no document can be skipped and
// every position must be evaluated.
func (s *Snapshot) Candidates(pr query.Pruning) (positions []uint32, ok bool) {
	if len(pr.Requirements) == 0 {
		return nil, false
	}
	for _, field := range pr.Required {
		if s.Coverage(field) != len(s.docs) {
			return nil, false
		}
	}

	var result *roaring.Bitmap
	for _, req := range pr.Requirements {
		union := roaring.New()
		for _, v := range req.Values {
			if bm, ok := s.postings[req.Field][v]; ok {
				union.Or(bm)
			}
		}
		if result == nil {
			result = union
		} else {
			result.And(union)
		}
		if result.IsEmpty() {
			return []uint32{}, true
		}
	}
	return result.ToArray(), true
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("Snapshot(version=%d, docs=%d, fields=%d)", s.version, len(s.docs), len(s.present))
}
