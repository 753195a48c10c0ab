package index

import (
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/flexquery/model"
	"github.com/hupe1980/flexquery/schema"
)

// MemoryIndex is an in-memory document index.
// It is safe for concurrent use. Readers work on immutable snapshots and
// never block writers for longer than a snapshot rebuild.
type MemoryIndex struct {
	mu      sync.RWMutex
	schema  schema.Schema
	docs    map[string]model.Document
	version uint64
	snap    *Snapshot
}

// NewMemoryIndex creates an empty index. sch may be nil.
func NewMemoryIndex(sch schema.Schema) *MemoryIndex {
	return &MemoryIndex{
		schema: maps.Clone(sch),
		docs:   make(map[string]model.Document),
	}
}

// Schema returns the declared field types.
func (ix *MemoryIndex) Schema() schema.Schema { return ix.schema }

// Add inserts or replaces a document and returns its ID. A document
// without an ID gets a generated one. Declared fields must parse as their
// declared types.
func (ix *MemoryIndex) Add(doc model.Document) (string, error) {
	if err := ix.schema.Validate(doc.Fields); err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidDocument, doc.ID, err)
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.Score = 0
	doc.Fields = maps.Clone(doc.Fields)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.docs[doc.ID] = doc
	ix.version++
	return doc.ID, nil
}

// AddBatch adds documents in order. It stops at the first invalid
// document and returns the IDs added so far.
func (ix *MemoryIndex) AddBatch(docs []model.Document) ([]string, error) {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		id, err := ix.Add(d)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes a document. It reports whether the document existed.
func (ix *MemoryIndex) Delete(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.docs[id]; !ok {
		return false
	}
	delete(ix.docs, id)
	ix.version++
	return true
}

// Get returns a copy of a document.
func (ix *MemoryIndex) Get(id string) (model.Document, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	d, ok := ix.docs[id]
	if !ok {
		return model.Document{}, false
	}
	d.Fields = maps.Clone(d.Fields)
	return d, true
}

// Len returns the number of documents.
func (ix *MemoryIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Snapshot returns an immutable view of the current documents. Snapshots
// are cached until the next write.
func (ix *MemoryIndex) Snapshot() *Snapshot {
	ix.mu.RLock()
	if ix.snap != nil && ix.snap.version == ix.version {
		s := ix.snap
		ix.mu.RUnlock()
		return s
	}
	ix.mu.RUnlock()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.snap != nil && ix.snap.version == ix.version {
		return ix.snap
	}
	docs := make([]model.Document, 0, len(ix.docs))
	for _, d := range ix.docs {
		docs = append(docs, d)
	}
	s := NewSnapshot(ix.schema, docs)
	s.version = ix.version
	ix.snap = s
	return s
}
