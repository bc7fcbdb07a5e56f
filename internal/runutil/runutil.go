// internal/runutil/runutil.go

// Package runutil holds small sizing rules shared by the CLI and scheduler.
package runutil

import "runtime"

// MaxThreads is the largest accepted worker count: one per processor.
func MaxThreads() int { return runtime.NumCPU() }

// ResultDepth is the buffer size of the finished-batch channel:
// two batches per worker.
func ResultDepth(threads int) int {
	if threads < 1 {
		threads = 1
	}
	return 2 * threads
}
