// Package source defines the interface shared by the remote metadata
// sources (Crossref, DBLP), the candidate type they return, and the error
// taxonomy used by the matching pipeline.
package source

import (
	"context"
	"strings"

	"github.com/matsen/betterbib/internal/reference"
	"github.com/matsen/betterbib/internal/textnorm"
)

// Source names accepted on the command line.
const (
	NameCrossref = "crossref"
	NameDBLP     = "dblp"
)

// Names lists the supported sources.
var Names = []string{NameCrossref, NameDBLP}

// Source looks up bibliography entries in a remote metadata service.
// Implementations are stateless and safe for concurrent use.
type Source interface {
	// Name returns the provenance tag written to the "source" field.
	Name() string

	// Search returns candidates for a possibly incomplete entry, ranked by
	// the source's own relevance score.
	Search(ctx context.Context, e reference.Entry) ([]Candidate, error)

	// GetByID looks up a single work by identifier (a DOI). It returns
	// ErrNotFound if the identifier is unknown.
	GetByID(ctx context.Context, id string) (Candidate, error)
}

// Candidate is an entry proposed by a source as a possible match.
type Candidate struct {
	Entry  reference.Entry `json:"entry"`
	Score  float64         `json:"score"`  // source-assigned relevance
	Source string          `json:"source"` // provenance, e.g. "Crossref"
}

// FamilyNames returns the family names of the entry's authors (or editors
// when there are no authors), with protective braces removed.
func FamilyNames(e *reference.Entry) []string {
	people := e.Authors()
	names := make([]string, 0, len(people))
	for _, p := range people {
		if n := textnorm.StripBraces(p.FamilyName()); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// QueryTerms builds the free-text query for an entry: the title (or, when
// it is missing, the container title) followed by all family names.
func QueryTerms(e *reference.Entry) string {
	var parts []string
	if t := e.Get("title"); t != "" {
		parts = append(parts, textnorm.StripBraces(t))
	} else if c := e.Container(); c != "" {
		parts = append(parts, textnorm.StripBraces(c))
	}
	parts = append(parts, FamilyNames(e)...)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Searchable reports whether an entry carries enough to build a query.
func Searchable(e *reference.Entry) bool {
	return QueryTerms(e) != ""
}
