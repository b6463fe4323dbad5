package export

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/nickng/bibtex"

	"github.com/matsen/betterbib/internal/reference"
)

// personFields are parsed into name lists rather than stored as text.
var personFields = map[string]bool{
	reference.RoleAuthor: true,
	reference.RoleEditor: true,
}

// Parse reads BibTeX entries from r in file order. String macros are
// expanded. Entry types outside the known vocabulary become misc; one
// warning per such entry is returned alongside the collection.
func Parse(r io.Reader) (reference.Collection, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return reference.Collection{}, nil, fmt.Errorf("reading BibTeX: %w", err)
	}
	bib, err := bibtex.Parse(strings.NewReader(stripComments(string(data))))
	if err != nil {
		return reference.Collection{}, nil, fmt.Errorf("parsing BibTeX: %w", err)
	}

	var warnings []string
	coll := reference.Collection{Entries: make([]reference.Entry, 0, len(bib.Entries))}
	for _, be := range bib.Entries {
		t, err := reference.ParseEntryType(be.Type)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: unknown entry type %q, using misc", be.CiteName, be.Type))
			t = reference.TypeMisc
		}
		e := reference.NewEntry(t, strings.TrimSpace(be.CiteName))

		// The parser stores fields in a map; sort for a stable order.
		names := make([]string, 0, len(be.Fields))
		for name := range be.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			value := normalizeSpace(be.Fields[name].String())
			lower := strings.ToLower(name)
			if personFields[lower] {
				e.SetPeople(lower, reference.ParsePersons(value))
				continue
			}
			e.Set(lower, value)
		}
		coll.Entries = append(coll.Entries, e)
	}
	return coll, warnings, nil
}

// ParseFile reads a BibTeX file. A path of "-" reads standard input.
func ParseFile(path string) (reference.Collection, []string, error) {
	if path == "-" || path == "" {
		return Parse(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return reference.Collection{}, nil, err
	}
	defer f.Close()
	return Parse(f)
}

// stripComments drops whole-line "%" comments such as the header written
// by Write, which BibTeX ignores but the parser rejects.
func stripComments(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "%") {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// normalizeSpace collapses the line breaks and indentation of wrapped
// field values into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
