// Package merge folds a matched candidate into the user's original entry.
package merge

import (
	"slices"

	"github.com/matsen/betterbib/internal/reference"
)

// DefaultProtected lists fields that only the user writes; a source never
// overwrites them.
var DefaultProtected = []string{"note", "annote", "abstract", "keywords", "file", "comment"}

// Options configures a merge.
type Options struct {
	// Protected fields keep the original's value even if the candidate
	// has one. Nil means DefaultProtected.
	Protected []string
}

func (o Options) protected(name string) bool {
	p := o.Protected
	if p == nil {
		p = DefaultProtected
	}
	return slices.Contains(p, name)
}

// Merge returns original updated with the candidate's data. Candidate
// fields win except protected ones, fields only in the original survive,
// and the entry type and citation key never change. Neither argument is
// modified. A nil candidate returns a copy of original.
func Merge(original, candidate *reference.Entry, opts Options) reference.Entry {
	out := original.Clone()
	if candidate == nil {
		return out
	}

	for _, f := range candidate.Fields {
		name := f.Name
		if opts.protected(name) {
			continue
		}
		// For a chapter the work's title is the chapter title; the book
		// title stays as the user wrote it.
		if name == "title" && original.Type == reference.TypeInBook {
			name = "chapter"
		}
		out.Set(name, f.Value)
	}

	for _, role := range reference.Roles {
		if people := candidate.People(role); len(people) > 0 {
			out.SetPeople(role, slices.Clone(people))
		}
	}

	return out
}

// Changed returns the names of fields whose value differs between before
// and after, in the order they appear in after. Removed fields follow.
func Changed(before, after *reference.Entry) []string {
	var names []string
	for _, f := range after.Fields {
		if before.Get(f.Name) != f.Value {
			names = append(names, f.Name)
		}
	}
	for _, f := range before.Fields {
		if !after.Has(f.Name) {
			names = append(names, f.Name)
		}
	}
	for _, role := range reference.Roles {
		if reference.FormatPersons(before.People(role)) != reference.FormatPersons(after.People(role)) {
			names = append(names, role)
		}
	}
	return names
}
