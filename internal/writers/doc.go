// internal/writers/doc.go

// Package writers opens the output destinations of a run.
//
// Design:
//   • "-" names standard output; every "-" shares one buffered sink.
//   • Sinks are buffered and flushed once, when the run closes them.
//   • The pipeline writer goroutine is the only caller of Write.
package writers
