// Package cache provides a bounded LRU cache.
//
// The engine uses it to keep compiled query plans keyed by query text, so
// repeated textual searches skip parsing and validation. Plans are
// immutable and safe to share between searches.
package cache
