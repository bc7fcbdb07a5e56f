// internal/cli/options.go

// Package cli parses and validates the command line.
package cli

import (
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kclassify/internal/cliutil"
	"kclassify/internal/pipeline"
	"kclassify/internal/runutil"
	"kclassify/internal/seed"
	"kclassify/internal/version"
	"kclassify/internal/writers"
)

// ErrHelp is returned by Parse after usage or version text was printed.
var ErrHelp = pflag.ErrHelp

// Options holds all CLI flags and arguments.
type Options struct {
	// Database
	DB      string `flag:"db" validate:"required"`
	Index   string `flag:"index" validate:"required"`
	Seed    string `flag:"spaced-seed" validate:"required,spacedseed"`
	Nodes   string `flag:"nodes" validate:"required_unless=Quick true"`
	Preload bool   `flag:"preload"`

	// Classification
	Quick    bool `flag:"quick"`
	MinHits  int  `flag:"min-hits" validate:"gte=1"`
	Combined bool `flag:"combined"`

	// Performance
	Threads  int `flag:"threads" validate:"gte=1"`
	WorkUnit int `flag:"work-unit" validate:"gte=1"`

	// Input / output
	Inputs          []string `flag:"inputs" validate:"min=1"`
	FASTQ           bool     `flag:"fastq"`
	Output          string   `flag:"output"`
	ClassifiedOut   string   `flag:"classified-out"`
	UnclassifiedOut string   `flag:"unclassified-out"`
	OnlyClassified  bool     `flag:"only-classified"`

	// Diagnostics
	Verbose bool `flag:"verbose"`
	Quiet   bool `flag:"quiet"`
}

// Defaults returns the options in effect before any flag is applied.
func Defaults() Options {
	return Options{
		MinHits:  1,
		Threads:  1,
		WorkUnit: pipeline.DefaultWorkUnit,
		Output:   writers.Stdout,
	}
}

// NewCommand builds the root command bound to opt. The command's RunE only
// records positional inputs; the app does the work.
func NewCommand(opt *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kclassify -d DB -i INDEX -Z SEED [-n NODES] [flags] <reads>...",
		Short: "Assign sequencing reads to taxa by exact spaced-seed k-mer lookup",
		Long: `kclassify: spaced-seed k-mer taxonomic read classifier

Every k-mer of a read is squashed through the spaced seed and looked up in a
Kraken-format database. Hits are resolved to one taxon per strand by majority
descent of the taxonomy tree and written one report line per read.`,
		Example: `  # classify several files with 4 workers, report to a file
  kclassify -d db.kdb -i db.idx -Z '##_#######_##' -n nodes.dmp -t 4 -o report.txt reads_*.fa

  # quick mode on gzipped FASTQ from stdin, keep unclassified reads
  zcat reads.fq.gz | kclassify -d db.kdb -i db.idx -Z '#############' -q -m 2 -f -U unclassified.fq -`,
		Version:       version.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			opt.Inputs = args
			return nil
		},
	}
	cmd.SetVersionTemplate("kclassify version {{.Version}}\n")

	f := cmd.Flags()
	f.SortFlags = false
	f.StringVarP(&opt.DB, "db", "d", opt.DB, "database file [*]")
	f.StringVarP(&opt.Index, "index", "i", opt.Index, "database index file [*]")
	f.StringVarP(&opt.Seed, "spaced-seed", "Z", opt.Seed, "spaced-seed pattern, '#' marks included positions [*]")
	f.StringVarP(&opt.Nodes, "nodes", "n", opt.Nodes, "taxonomy nodes file (required unless --quick)")
	f.StringVarP(&opt.Output, "output", "o", opt.Output, "report destination ('-' = stdout)")
	f.IntVarP(&opt.Threads, "threads", "t", opt.Threads, "worker threads (1..CPUs)")
	f.IntVarP(&opt.WorkUnit, "work-unit", "u", opt.WorkUnit, "bases per work unit")
	f.BoolVarP(&opt.Quick, "quick", "q", opt.Quick, "quick mode: stop a strand after --min-hits hits")
	f.IntVarP(&opt.MinHits, "min-hits", "m", opt.MinHits, "hits needed to call a strand in quick mode")
	f.StringVarP(&opt.ClassifiedOut, "classified-out", "C", opt.ClassifiedOut, "write classified reads here ('-' = stdout)")
	f.StringVarP(&opt.UnclassifiedOut, "unclassified-out", "U", opt.UnclassifiedOut, "write unclassified reads here ('-' = stdout)")
	f.BoolVarP(&opt.FASTQ, "fastq", "f", opt.FASTQ, "input is FASTQ; re-emit reads as FASTQ")
	f.BoolVarP(&opt.OnlyClassified, "only-classified", "c", opt.OnlyClassified, "omit report lines of unclassified reads")
	f.BoolVarP(&opt.Preload, "preload", "M", opt.Preload, "read database and index into memory instead of mapping them")
	f.BoolVarP(&opt.Combined, "combined", "a", opt.Combined, "resolve both strands together")
	f.BoolVar(&opt.Verbose, "verbose", opt.Verbose, "debug diagnostics")
	f.BoolVar(&opt.Quiet, "quiet", opt.Quiet, "warnings and errors only")
	return cmd
}

// Usage returns the usage text.
func Usage() string {
	opt := Defaults()
	return NewCommand(&opt).UsageString()
}

// Parse parses argv into validated Options. Help and version text go to
// out and yield ErrHelp. Every other error is a usage error.
func Parse(argv []string, out io.Writer) (Options, error) {
	opt := Defaults()
	ran := false
	cmd := NewCommand(&opt)
	run := cmd.RunE
	cmd.RunE = func(c *cobra.Command, args []string) error {
		ran = true
		return run(c, args)
	}
	if argv == nil {
		argv = []string{} // cobra falls back to os.Args on nil
	}
	cmd.SetArgs(argv)
	cmd.SetOut(out)
	cmd.SetErr(out)
	if err := cmd.Execute(); err != nil {
		return opt, err
	}
	if !ran {
		return opt, ErrHelp
	}

	inputs, err := cliutil.ExpandPositionals(opt.Inputs)
	if err != nil {
		return opt, err
	}
	opt.Inputs = inputs
	if opt.Output == "" {
		opt.Output = writers.Stdout
	}
	if err := Validate(opt); err != nil {
		return opt, err
	}
	return opt, nil
}

type checker struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	checkOnce sync.Once
	check     checker
)

func getChecker() checker {
	checkOnce.Do(func() {
		enLoc := en.New()
		trans, _ := ut.New(enLoc, enLoc).GetTranslator("en")
		v := validator.New(validator.WithRequiredStructEnabled())
		// report fields by their long flag name
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("flag"); name != "" {
				return "--" + name
			}
			return fld.Name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		_ = v.RegisterValidation("spacedseed", func(fl validator.FieldLevel) bool {
			_, err := seed.Compile(fl.Field().String())
			return err == nil
		})
		check = checker{v: v, trans: trans}
	})
	return check
}

// Validate checks a fully populated Options value.
func Validate(opt Options) error {
	c := getChecker()
	if err := c.v.Struct(opt); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Wrap(err, "validate options")
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe, c.trans))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	if limit := runutil.MaxThreads(); opt.Threads > limit {
		return errors.Errorf("--threads must be at most %d (processor count)", limit)
	}
	if opt.Verbose && opt.Quiet {
		return errors.New("--verbose conflicts with --quiet")
	}
	return nil
}

func fieldMessage(fe validator.FieldError, trans ut.Translator) string {
	switch fe.Tag() {
	case "spacedseed":
		if _, err := seed.Compile(fe.Value().(string)); err != nil {
			return fe.Field() + ": " + err.Error()
		}
	case "required_unless":
		return fe.Field() + " is required unless --quick is set"
	case "min":
		if fe.Field() == "--inputs" {
			return "at least one input file is required"
		}
	}
	return fe.Translate(trans)
}
