// internal/krakendb/mmap_other.go

//go:build !unix

package krakendb

func mapFile(path string) ([]byte, func() error, error) { return readFile(path) }
