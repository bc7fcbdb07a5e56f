// internal/krakendb/doc.go

// Package krakendb is the read-only k-mer → taxon lookup oracle.
//
// A database file holds canonical squashed k-mers sorted within minimizer
// bins; the index file holds the offset of each bin. Both are either
// memory-mapped or read fully into memory, and never mutated, so one DB
// serves any number of goroutines without locking.
//
// Consecutive queries from one strand scan usually land in the same bin.
// Callers thread a Cursor through Query to reuse the bin's search range;
// the cursor's contents are private to this package.
package krakendb
