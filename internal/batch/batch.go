// Package batch runs the lookup-match-merge pipeline over many entries with
// a bounded number of concurrent requests.
package batch

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/stream"

	"github.com/matsen/betterbib/internal/logging"
	"github.com/matsen/betterbib/internal/match"
	"github.com/matsen/betterbib/internal/merge"
	"github.com/matsen/betterbib/internal/reference"
	"github.com/matsen/betterbib/internal/source"
)

// DefaultConcurrency is the number of entries looked up at once.
const DefaultConcurrency = 10

// Status classifies the outcome for one entry.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusAmbiguous
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not found"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return "failed"
	}
}

// Outcome is the result for the entry at the same position in the input.
type Outcome struct {
	Entry   reference.Entry   // merged entry, or the original when no match
	Match   *source.Candidate // nil unless Status is StatusFound
	Status  Status
	Err     error
	Changed []string // fields the merge changed
}

// Report tallies outcomes.
type Report struct {
	Total     int
	Found     int
	NotFound  int
	Ambiguous int
	Failed    int
}

// Options configures Run.
type Options struct {
	Concurrency int
	Matcher     match.Matcher
	Merge       merge.Options
	Logger      *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Matcher == (match.Matcher{}) {
		o.Matcher = match.Default()
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

func classify(err error) Status {
	var httpErr *source.HTTPError
	switch {
	case err == nil:
		return StatusFound
	case errors.As(err, &httpErr):
		return StatusFailed
	case source.IsNotUnique(err):
		return StatusAmbiguous
	case source.IsNotFound(err):
		return StatusNotFound
	default:
		return StatusFailed
	}
}

// Run resolves every entry against src and returns one outcome per entry,
// in input order. Per-entry failures are recorded in the outcome and never
// stop the other lookups.
func Run(ctx context.Context, src source.Source, entries []reference.Entry, opts Options) ([]Outcome, Report) {
	opts = opts.withDefaults()

	outcomes := make([]Outcome, len(entries))
	report := Report{Total: len(entries)}

	s := stream.New().WithMaxGoroutines(opts.Concurrency)
	for i := range entries {
		s.Go(func() stream.Callback {
			e := &entries[i]
			out := &outcomes[i]

			cand, err := opts.Matcher.FindUnique(ctx, src, *e)
			out.Status = classify(err)
			out.Err = err
			if err == nil {
				out.Match = &cand
				out.Entry = merge.Merge(e, &cand.Entry, opts.Merge)
				out.Changed = merge.Changed(e, &out.Entry)
			} else {
				out.Entry = e.Clone()
			}

			// Callbacks run one at a time in submission order.
			return func() {
				logger := opts.Logger.With("key", e.Key)
				switch out.Status {
				case StatusFound:
					report.Found++
					logger.Debug("updated", "source", cand.Source, "fields", out.Changed)
				case StatusNotFound:
					report.NotFound++
					logger.Info("no match found")
				case StatusAmbiguous:
					report.Ambiguous++
					logger.Warn("ambiguous match", "err", out.Err)
				default:
					report.Failed++
					logger.Error("lookup failed", "err", out.Err)
				}
			}
		})
	}
	s.Wait()

	return outcomes, report
}

// Entries returns the resulting entries in input order.
func Entries(outcomes []Outcome) []reference.Entry {
	entries := make([]reference.Entry, len(outcomes))
	for i, o := range outcomes {
		entries[i] = o.Entry
	}
	return entries
}
