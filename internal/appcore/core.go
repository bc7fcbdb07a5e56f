// internal/appcore/core.go

// Package appcore runs one classification job from validated options.
package appcore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"kclassify/internal/cli"
	"kclassify/internal/engine"
	"kclassify/internal/krakendb"
	"kclassify/internal/output"
	"kclassify/internal/pipeline"
	"kclassify/internal/seed"
	"kclassify/internal/seqio"
	"kclassify/internal/taxonomy"
	"kclassify/internal/writers"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitIO       = 3
	ExitCanceled = 130
)

// Run loads the taxonomy and database, classifies every input and prints the
// summary to stderr. It returns the process exit code.
func Run(ctx context.Context, stdout, stderr io.Writer, log zerolog.Logger, o cli.Options) int {
	pattern, err := seed.Compile(o.Seed)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitUsage
	}
	log.Info().Str("seed", pattern.String()).Int("span", pattern.Span()).Int("weight", pattern.Weight()).Msg("spaced seed")

	var tax *taxonomy.ParentMap
	if !o.Quick {
		tax, err = taxonomy.LoadParentMap(o.Nodes)
		if err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return ExitIO
		}
		log.Debug().Int("taxa", tax.Len()).Msg("taxonomy loaded")
	}

	log.Info().Str("db", o.DB).Bool("preload", o.Preload).Msg("loading database")
	db, err := krakendb.Open(krakendb.Options{DBPath: o.DB, IndexPath: o.Index, Preload: o.Preload})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitIO
	}
	defer func() { _ = db.Close() }()
	log.Info().Int("k", db.K()).Uint64("keys", db.KeyCount()).Int("index_version", db.IndexVersion()).Msg("database ready")
	if pattern.Weight() != db.K() {
		log.Warn().Int("weight", pattern.Weight()).Int("db_k", db.K()).
			Msg("seed weight differs from database k; lookups will mostly miss")
	}

	eng, err := engine.New(engine.Config{
		Seed:     pattern,
		Mode:     modeOf(o),
		MinHits:  uint32(o.MinHits),
		Taxonomy: tax,
	}, db)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitUsage
	}

	opener := writers.NewOpener(stdout)
	sinks, err := openSinks(opener, o)
	if err != nil {
		_ = opener.Close()
		fmt.Fprintln(stderr, "error:", err)
		return ExitIO
	}

	cfg := pipeline.Config{
		Threads:        o.Threads,
		WorkUnit:       o.WorkUnit,
		Quick:          o.Quick,
		OnlyClassified: o.OnlyClassified,
		FASTQ:          o.FASTQ,
		Log:            &log,
	}
	totals := pipeline.NewTotals()
	start := time.Now()
	runErr := classifyAll(ctx, cfg, o.Inputs, eng, sinks, totals, log)
	closeErr := opener.Close()

	switch {
	case runErr != nil && errors.Is(runErr, context.Canceled):
		return ExitCanceled
	case writers.IsBrokenPipe(runErr) || writers.IsBrokenPipe(closeErr):
		return ExitOK
	case runErr != nil:
		fmt.Fprintln(stderr, "error:", runErr)
		return ExitIO
	case closeErr != nil:
		fmt.Fprintln(stderr, "error:", closeErr)
		return ExitIO
	}

	log.Debug().Uint64("distinct_taxa", totals.Taxa.GetCardinality()).Msg("run complete")
	_ = output.WriteSummary(stderr, output.Summary{
		Sequences:  totals.Sequences,
		Bases:      totals.Bases,
		Classified: totals.Classified,
		Elapsed:    time.Since(start),
	})
	return ExitOK
}

func modeOf(o cli.Options) engine.Mode {
	switch {
	case o.Quick:
		return engine.Quick
	case o.Combined:
		return engine.Combined
	}
	return engine.StrandSeparated
}

func openSinks(op *writers.Opener, o cli.Options) (pipeline.Sinks, error) {
	var s pipeline.Sinks
	for _, t := range []struct {
		path string
		dst  *io.Writer
	}{
		{o.Output, &s.Report},
		{o.ClassifiedOut, &s.Classified},
		{o.UnclassifiedOut, &s.Unclassified},
	} {
		sink, err := op.Open(t.path)
		if err != nil {
			return s, err
		}
		if sink != nil {
			*t.dst = sink
		}
	}
	return s, nil
}

// classifyAll runs one worker pool per input file, in order.
func classifyAll(ctx context.Context, cfg pipeline.Config, inputs []string, eng *engine.Engine, sinks pipeline.Sinks, totals *pipeline.Totals, log zerolog.Logger) error {
	for _, path := range inputs {
		rd, err := seqio.Open(path, cfg.FASTQ)
		if err != nil {
			return err
		}
		log.Debug().Str("input", path).Msg("classifying")
		err = pipeline.Run(ctx, cfg, rd, eng, sinks, totals)
		rd.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
