// internal/pipeline/sim.go
package pipeline

import (
	"kclassify/internal/engine"
	"kclassify/internal/seqio"
)

// Classifier is the minimal capability the pipeline needs.
// Any engine (including fakes in tests) can satisfy this.
type Classifier interface {
	Classify(seq []byte) engine.Result
}

// Source yields reads in order and io.EOF after the last one. The pipeline
// serialises calls to Next.
type Source interface {
	Next() (seqio.Record, error)
}
