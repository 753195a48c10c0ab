// Package testutil provides testing utilities for flexquery.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG, synthetic document generators and a
// sequential reference search to verify engine results against.
//
// # Synthetic Documents
//
//	rng := testutil.NewRNG(seed)
//	docs := rng.Documents(10_000, testutil.DocSpec{MissingRate: 0.2})
//	ix := index.NewMemoryIndex(testutil.DocumentSchema())
//
// # Reference Results
//
//	want, err := testutil.ReferenceSearch(plan, docs)
package testutil
