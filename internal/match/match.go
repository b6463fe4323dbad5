// Package match decides which, if any, of a source's candidates is the
// unique correct match for an incomplete bibliography entry.
package match

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/matsen/betterbib/internal/doi"
	"github.com/matsen/betterbib/internal/reference"
	"github.com/matsen/betterbib/internal/source"
)

// Kind classifies the outcome of a match.
type Kind int

const (
	NotFound Kind = iota
	Unique
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not found"
	}
}

// Matcher holds the acceptance thresholds.
type Matcher struct {
	// Tau is the primary score the best candidate must exceed.
	Tau float64
	// Epsilon is the combined-score gap below which a runner-up ties.
	Epsilon float64
	// AuthorWeight and TypeWeight scale the tie-breaking signals.
	AuthorWeight float64
	TypeWeight   float64
}

// Default returns the matcher used when nothing is configured.
func Default() Matcher {
	return Matcher{
		Tau:          0.8,
		Epsilon:      0.05,
		AuthorWeight: 0.1,
		TypeWeight:   0.05,
	}
}

// Score breaks down how well one candidate matches the input.
type Score struct {
	Candidate source.Candidate
	Primary   float64
	Authors   float64
	TypeBonus float64
	Combined  float64
}

// Result is the outcome of matching an entry against candidates.
type Result struct {
	Kind   Kind
	Best   source.Candidate   // valid when Kind is Unique
	Ties   []source.Candidate // best first, when Kind is Ambiguous
	Scores []Score            // ranked by Combined, descending
	input  string
}

// Err converts a non-unique result into the matching error.
func (r Result) Err() error {
	switch r.Kind {
	case Unique:
		return nil
	case Ambiguous:
		return &source.UniqueError{Candidates: r.Ties}
	default:
		return fmt.Errorf("%w: %s", source.ErrNotFound, r.input)
	}
}

// describe names an entry in error messages.
func describe(e *reference.Entry) string {
	if t := e.Get("title"); t != "" {
		return fmt.Sprintf("%q", t)
	}
	if e.Key != "" {
		return e.Key
	}
	return "entry"
}

// ScoreCandidate computes the per-candidate scores for input.
func (m Matcher) ScoreCandidate(input *reference.Entry, c source.Candidate) Score {
	s := Score{Candidate: c}
	if input.Has("title") {
		s.Primary = titleScore(input, &c.Entry)
	} else {
		s.Primary = metadataScore(input, &c.Entry)
	}
	s.Authors = AuthorOverlap(input, &c.Entry)
	if sameType(input.Type, c.Entry.Type) {
		s.TypeBonus = 1
	}
	s.Combined = s.Primary + m.AuthorWeight*s.Authors + m.TypeWeight*s.TypeBonus
	return s
}

// Match picks the unique candidate for input, if there is one.
func (m Matcher) Match(input reference.Entry, candidates []source.Candidate) Result {
	res := Result{input: describe(&input)}
	if len(candidates) == 0 {
		return res
	}

	// A DOI match is decisive whatever the other scores say.
	if d := input.Get("doi"); d != "" {
		for _, c := range candidates {
			if doi.Equal(d, c.Entry.Get("doi")) {
				res.Kind = Unique
				res.Best = c
				res.Scores = []Score{m.ScoreCandidate(&input, c)}
				return res
			}
		}
	}

	res.Scores = make([]Score, len(candidates))
	for i, c := range candidates {
		res.Scores[i] = m.ScoreCandidate(&input, c)
	}
	sort.SliceStable(res.Scores, func(i, j int) bool {
		return res.Scores[i].Combined > res.Scores[j].Combined
	})

	// The best candidate is the highest-ranked one clearing tau; any other
	// candidate within epsilon of it ties, whether or not it clears tau.
	bestIdx := -1
	for i, s := range res.Scores {
		if s.Primary > m.Tau {
			bestIdx = i
			break
		}
	}
	if bestIdx < 0 {
		return res
	}
	best := res.Scores[bestIdx]

	res.Ties = []source.Candidate{best.Candidate}
	for i, s := range res.Scores {
		if i != bestIdx && math.Abs(best.Combined-s.Combined) <= m.Epsilon {
			res.Ties = append(res.Ties, s.Candidate)
		}
	}
	if len(res.Ties) > 1 {
		res.Kind = Ambiguous
		return res
	}

	res.Kind = Unique
	res.Best = best.Candidate
	res.Ties = nil
	return res
}

// FindUnique looks up the unique match for e in src. An entry with a DOI
// is resolved by identifier first, falling back to search when the source
// does not know the DOI.
func (m Matcher) FindUnique(ctx context.Context, src source.Source, e reference.Entry) (source.Candidate, error) {
	if d := e.Get("doi"); d != "" {
		c, err := src.GetByID(ctx, d)
		if err == nil {
			return c, nil
		}
		if !source.IsNotFound(err) {
			return source.Candidate{}, err
		}
	}

	if !source.Searchable(&e) {
		return source.Candidate{}, fmt.Errorf("%w: %s has no title, authors or container", source.ErrNotFound, describe(&e))
	}

	candidates, err := src.Search(ctx, e)
	if err != nil {
		return source.Candidate{}, err
	}
	res := m.Match(e, candidates)
	if err := res.Err(); err != nil {
		return source.Candidate{}, err
	}
	return res.Best, nil
}

// FindUnique resolves e against src with the default thresholds.
func FindUnique(ctx context.Context, src source.Source, e reference.Entry) (source.Candidate, error) {
	return Default().FindUnique(ctx, src, e)
}
