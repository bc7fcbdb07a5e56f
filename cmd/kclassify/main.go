// cmd/kclassify/main.go

// Command kclassify assigns sequencing reads to taxa using a Kraken-format
// spaced-seed k-mer database.
package main

import (
	"kclassify/internal/app"
	"kclassify/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
