// internal/app/app.go

// Package app is the kclassify command: argument parsing, usage errors and
// hand-off to appcore.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"kclassify/internal/appcore"
	"kclassify/internal/cli"
	"kclassify/internal/cmdutil"
)

// RunContext runs the command with argv (without the program name) and
// returns the exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(argv, stdout)
	if errors.Is(err, cli.ErrHelp) {
		return appcore.ExitOK
	}
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		_, _ = fmt.Fprint(stderr, cli.Usage())
		return appcore.ExitUsage
	}

	log := cmdutil.NewLogger(stderr, cmdutil.LogOptions{
		Level:   cmdutil.LevelFor(opts.Verbose, opts.Quiet),
		NoColor: !isTerminal(stderr),
	})
	return appcore.Run(parent, stdout, stderr, log, opts)
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
