// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"io"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"kclassify/internal/output"
	"kclassify/internal/runutil"
	"kclassify/internal/seqio"
)

// DefaultWorkUnit is the batch size in bases.
const DefaultWorkUnit = 500_000

// Config controls the scheduler and what each batch renders.
type Config struct {
	Threads        int  // worker goroutines (>=1); the CLI caps it at NumCPU
	WorkUnit       int  // bases per batch (>=1)
	Quick          bool // report "Q:<hits>" instead of hit lists
	OnlyClassified bool // drop report lines for unclassified reads
	FASTQ          bool // re-emit reads as FASTQ instead of FASTA
	Log            *zerolog.Logger
}

// Sinks receive rendered output. A nil sink disables that output.
type Sinks struct {
	Report       io.Writer
	Classified   io.Writer
	Unclassified io.Writer
}

// Totals accumulates counts across runs. Only the writer goroutine of a
// running Run mutates it.
type Totals struct {
	Sequences  uint64
	Bases      uint64
	Classified uint64
	Taxa       *roaring.Bitmap // distinct nonzero calls
}

// NewTotals returns zeroed totals.
func NewTotals() *Totals { return &Totals{Taxa: roaring.New()} }

type batch struct {
	report       []byte
	classified   []byte
	unclassified []byte
	seqs         uint64
	bases        uint64
	hits         uint64
	taxa         []uint32
}

type scheduler struct {
	cfg   Config
	sinks Sinks
	cls   Classifier

	mu   sync.Mutex // guards src and done
	src  Source
	done bool
}

// Run classifies every read of src and writes the results to sinks,
// adding counts to totals. The first read, classification or write error
// stops all workers and is returned.
func Run(ctx context.Context, cfg Config, src Source, cls Classifier, sinks Sinks, totals *Totals) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.WorkUnit < 1 {
		cfg.WorkUnit = DefaultWorkUnit
	}
	if cfg.Log == nil {
		nop := zerolog.Nop()
		cfg.Log = &nop
	}
	if totals.Taxa == nil {
		totals.Taxa = roaring.New()
	}
	s := &scheduler{cfg: cfg, sinks: sinks, cls: cls, src: src}

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan *batch, runutil.ResultDepth(cfg.Threads))

	var workers sync.WaitGroup
	workers.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		g.Go(func() error {
			defer workers.Done()
			return s.work(gctx, results)
		})
	}
	g.Go(func() error {
		workers.Wait()
		close(results)
		return nil
	})
	g.Go(func() error { return s.write(results, totals) })

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *scheduler) work(ctx context.Context, out chan<- *batch) error {
	for {
		recs, err := s.pull(ctx)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			return nil
		}
		b := s.classify(recs)
		select {
		case out <- b:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pull takes reads from the source until the batch holds WorkUnit bases or
// the source is exhausted.
func (s *scheduler) pull(ctx context.Context) ([]seqio.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, nil
	}
	var (
		recs  []seqio.Record
		bases int
	)
	for bases < s.cfg.WorkUnit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.src.Next()
		if err == io.EOF {
			s.done = true
			break
		}
		if err != nil {
			s.done = true
			return nil, errors.Wrap(err, "read sequences")
		}
		recs = append(recs, rec)
		bases += len(rec.Seq)
	}
	return recs, nil
}

func (s *scheduler) classify(recs []seqio.Record) *batch {
	b := &batch{seqs: uint64(len(recs))}
	for i := range recs {
		rec := &recs[i]
		b.bases += uint64(len(rec.Seq))
		res := s.cls.Classify(rec.Seq)
		if res.Classified() {
			b.hits++
			b.taxa = append(b.taxa, res.Call)
		}
		if s.sinks.Report != nil && (res.Classified() || !s.cfg.OnlyClassified) {
			b.report = output.AppendReport(b.report, rec.ID, &res, s.cfg.Quick)
		}
		if res.Classified() && s.sinks.Classified != nil {
			b.classified = s.appendRecord(b.classified, rec)
		}
		if !res.Classified() && s.sinks.Unclassified != nil {
			b.unclassified = s.appendRecord(b.unclassified, rec)
		}
	}
	return b
}

func (s *scheduler) appendRecord(buf []byte, rec *seqio.Record) []byte {
	if s.cfg.FASTQ {
		return output.AppendFASTQ(buf, rec.Header, rec.Seq, rec.Qual)
	}
	return output.AppendFASTA(buf, rec.Header, rec.Seq)
}

// write is the single consumer of finished batches. Returning an error
// cancels the workers, which stop blocking on a full channel.
func (s *scheduler) write(in <-chan *batch, totals *Totals) error {
	for b := range in {
		if err := s.emit(b); err != nil {
			return err
		}
		totals.Sequences += b.seqs
		totals.Bases += b.bases
		totals.Classified += b.hits
		totals.Taxa.AddMany(b.taxa)
		s.cfg.Log.Debug().
			Uint64("sequences", totals.Sequences).
			Uint64("bases", totals.Bases).
			Msg("processed")
	}
	return nil
}

func (s *scheduler) emit(b *batch) error {
	if err := writeAll(s.sinks.Report, b.report); err != nil {
		return errors.Wrap(err, "write report")
	}
	if err := writeAll(s.sinks.Classified, b.classified); err != nil {
		return errors.Wrap(err, "write classified reads")
	}
	if err := writeAll(s.sinks.Unclassified, b.unclassified); err != nil {
		return errors.Wrap(err, "write unclassified reads")
	}
	return nil
}

func writeAll(w io.Writer, p []byte) error {
	if w == nil || len(p) == 0 {
		return nil
	}
	_, err := w.Write(p)
	return err
}
