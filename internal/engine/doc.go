// internal/engine/doc.go

// Package engine classifies one read: it scans both strands, looks every
// unambiguous spaced-seed k-mer up in the oracle, and resolves the votes
// through the taxonomy. It never imports app, cli, pipeline or output; keep
// it domain-only.
package engine
