// internal/pipeline/doc.go

// Package pipeline drives a fixed pool of workers over one sequence stream.
//
// Workers take turns pulling batches (bounded by total bases) from the
// shared Source under a mutex, classify their batch without any
// synchronisation, and hand the rendered text to a single writer goroutine.
// The writer is the only code that touches the sinks and the Totals.
//
// Batches reach the writer in completion order, so with more than one
// worker the report lines of different batches may interleave out of input
// order. Lines inside one batch keep their input order.
package pipeline
