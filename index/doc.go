// Package index provides the document index queried by the search engine.
//
// MemoryIndex keeps documents in memory and serves immutable snapshots in
// document ID order. A snapshot keeps Roaring bitmaps of field presence and
// postings of Keyword fields, which let the engine skip documents that
// cannot satisfy the exact-match conditions of a query:
//
//	ix := index.NewMemoryIndex(schema.Schema{"type": schema.FieldTypeKeyword})
//	ix.Add(model.NewDocument("1", map[string]string{"type": "session"}))
//
//	snap := ix.Snapshot()
//	if pr, ok := plan.Pruning(); ok {
//	    positions, pruned := snap.Candidates(pr)
//	    ...
//	}
//
// Skipping is only used when it cannot change the query outcome: no
// predicate of the query may fail and every field tested under the
// ThrowError policy must be present in every document.
package index
