// Package export reads and writes BibTeX.
package export

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/matsen/betterbib/internal/reference"
)

// Delimiter selects how field values are enclosed.
type Delimiter string

const (
	Braces Delimiter = "braces"
	Quotes Delimiter = "quotes"
)

// ParseDelimiter validates a delimiter name.
func ParseDelimiter(s string) (Delimiter, error) {
	switch d := Delimiter(strings.ToLower(s)); d {
	case Braces, Quotes:
		return d, nil
	case "":
		return Braces, nil
	}
	return "", fmt.Errorf("unknown delimiter type %q (want braces or quotes)", s)
}

// WriteOptions configures BibTeX output.
type WriteOptions struct {
	Delimiter Delimiter
	Tabs      bool   // indent with a tab instead of two spaces
	SortByKey bool   // order entries by citation key
	Header    string // comment written before the first entry
}

// fieldOrder is the order in which well-known fields are written. Other
// fields follow alphabetically.
var fieldOrder = []string{
	"title", "subtitle", "chapter", "journal", "booktitle", "series",
	"volume", "number", "pages", "year", "month", "day", "edition",
	"publisher", "institution", "school", "organization", "address",
	"isbn", "issn", "doi", "url", "eprint", "archiveprefix",
	"primaryclass", "source", "note",
}

func orderedFields(e *reference.Entry) []reference.Field {
	fields := slices.Clone(e.Fields)
	rank := func(name string) int {
		if i := slices.Index(fieldOrder, name); i >= 0 {
			return i
		}
		return len(fieldOrder)
	}
	sort.SliceStable(fields, func(i, j int) bool {
		ri, rj := rank(fields[i].Name), rank(fields[j].Name)
		if ri != rj {
			return ri < rj
		}
		return fields[i].Name < fields[j].Name
	})
	return fields
}

// verbatimFields hold identifiers that must not be escaped.
var verbatimFields = map[string]bool{"url": true, "doi": true, "file": true, "eprint": true}

// escapeLatex escapes LaTeX specials that are not already escaped. Braces
// are left alone since field values carry LaTeX markup.
func escapeLatex(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		if (r == '&' || r == '%' || r == '#') && prev != '\\' {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func enclose(value string, d Delimiter) string {
	if d == Quotes {
		// A bare double quote would end the value.
		return `"` + strings.ReplaceAll(value, `"`, `{"}`) + `"`
	}
	return "{" + value + "}"
}

// ToBibTeX converts an entry to BibTeX format.
func ToBibTeX(e *reference.Entry, opts WriteOptions) string {
	indent := "  "
	if opts.Tabs {
		indent = "\t"
	}
	d := opts.Delimiter
	if d == "" {
		d = Braces
	}

	var lines []string
	for _, role := range reference.Roles {
		if people := e.People(role); len(people) > 0 {
			lines = append(lines, fmt.Sprintf("%s%s = %s", indent, role, enclose(reference.FormatPersons(people), d)))
		}
	}
	for _, f := range orderedFields(e) {
		value := f.Value
		if !verbatimFields[f.Name] {
			value = escapeLatex(value)
		}
		lines = append(lines, fmt.Sprintf("%s%s = %s", indent, f.Name, enclose(value, d)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s", e.Type, e.Key)
	if len(lines) > 0 {
		b.WriteString(",\n")
		b.WriteString(strings.Join(lines, ",\n"))
	}
	b.WriteString(",\n}\n")
	return b.String()
}

// ToBibTeXList converts multiple entries to BibTeX format, separated by
// blank lines.
func ToBibTeXList(entries []reference.Entry, opts WriteOptions) string {
	if opts.SortByKey {
		entries = slices.Clone(entries)
		sort.SliceStable(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].Key) < strings.ToLower(entries[j].Key)
		})
	}

	var parts []string
	if opts.Header != "" {
		parts = append(parts, headerComment(opts.Header))
	}
	for i := range entries {
		parts = append(parts, ToBibTeX(&entries[i], opts))
	}
	return strings.Join(parts, "\n")
}

func headerComment(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		b.WriteString("% " + line + "\n")
	}
	return b.String()
}

// Write writes entries as BibTeX to w.
func Write(w io.Writer, entries []reference.Entry, opts WriteOptions) error {
	_, err := io.WriteString(w, ToBibTeXList(entries, opts))
	return err
}
