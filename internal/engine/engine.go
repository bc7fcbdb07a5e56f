// internal/engine/engine.go
package engine

import (
	"github.com/pkg/errors"

	"kclassify/internal/kmer"
	"kclassify/internal/krakendb"
	"kclassify/internal/seed"
	"kclassify/internal/taxonomy"
)

// Mode selects how per-strand votes become a call.
type Mode int

const (
	// StrandSeparated resolves each strand alone and keeps the strand with
	// more hits (ties go to the forward strand).
	StrandSeparated Mode = iota
	// Combined merges both strands' votes and resolves once.
	Combined
	// Quick stops a strand at MinHits hits and calls its last hit taxon.
	Quick
)

func (m Mode) String() string {
	switch m {
	case Combined:
		return "combined"
	case Quick:
		return "quick"
	default:
		return "strand-separated"
	}
}

// Oracle is the read-only k-mer lookup the engine needs. cur belongs to
// one strand scan and is threaded through its successive calls.
type Oracle interface {
	Query(kmer uint64, cur *krakendb.Cursor) (taxon uint32, ok bool)
}

// Config holds classification parameters.
type Config struct {
	Seed     *seed.Pattern
	Mode     Mode
	MinHits  uint32              // quick mode threshold (>=1)
	Taxonomy *taxonomy.ParentMap // required unless Mode == Quick
}

// Engine classifies reads. It holds no per-read state and is safe for
// concurrent use.
type Engine struct {
	cfg Config
	kp  kmer.Params
	db  Oracle
}

// New validates cfg and binds it to db.
func New(cfg Config, db Oracle) (*Engine, error) {
	if cfg.Seed == nil {
		return nil, errors.New("engine: spaced seed is required")
	}
	if db == nil {
		return nil, errors.New("engine: oracle is required")
	}
	if cfg.Mode != Quick && cfg.Taxonomy == nil {
		return nil, errors.Errorf("engine: %s mode needs a taxonomy", cfg.Mode)
	}
	if cfg.MinHits == 0 {
		cfg.MinHits = 1
	}
	kp, err := kmer.New(cfg.Seed.Span())
	if err != nil {
		return nil, errors.Wrap(err, "engine")
	}
	return &Engine{cfg: cfg, kp: kp, db: db}, nil
}

// K is the raw window width (the seed span).
func (e *Engine) K() int { return e.kp.K() }

// Mode reports the configured resolution mode.
func (e *Engine) Mode() Mode { return e.cfg.Mode }
