package reference

import (
	"strings"
	"unicode"

	"github.com/matsen/betterbib/internal/textnorm"
)

// Person represents an author or editor in BibTeX name structure.
type Person struct {
	First  string `json:"first,omitempty"`  // Given name(s)
	Prefix string `json:"prefix,omitempty"` // "von" part, e.g. "van der"
	Last   string `json:"last"`             // Family name
	Suffix string `json:"suffix,omitempty"` // "Jr.", "III"
}

// ParsePerson parses a single BibTeX name in one of the forms
// "First von Last", "von Last, First" or "von Last, Jr, First".
func ParsePerson(name string) Person {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return Person{}
	}

	parts := splitTopLevel(name, ',')
	switch len(parts) {
	case 1:
		return parseFirstVonLast(parts[0])
	case 2:
		prefix, last := splitVonLast(parts[0])
		return Person{First: parts[1], Prefix: prefix, Last: last}
	default:
		prefix, last := splitVonLast(parts[0])
		return Person{
			First:  strings.Join(parts[2:], ", "),
			Prefix: prefix,
			Last:   last,
			Suffix: parts[1],
		}
	}
}

// ParsePersons splits a BibTeX name list on top-level " and ".
func ParsePersons(list string) []Person {
	words := splitTopLevel(strings.Join(strings.Fields(list), " "), ' ')
	var people []Person
	var current []string
	flush := func() {
		if len(current) > 0 {
			people = append(people, ParsePerson(strings.Join(current, " ")))
			current = nil
		}
	}
	for _, w := range words {
		if strings.EqualFold(w, "and") {
			flush()
			continue
		}
		current = append(current, w)
	}
	flush()
	return people
}

// parseFirstVonLast handles "First von Last": the von part starts at the
// first lower-case word that is not the final word.
func parseFirstVonLast(s string) Person {
	words := splitTopLevel(s, ' ')
	if len(words) == 1 {
		return Person{Last: words[0]}
	}

	vonStart, vonEnd := -1, -1
	for i := 0; i < len(words)-1; i++ {
		if isLowerWord(words[i]) {
			if vonStart < 0 {
				vonStart = i
			}
			vonEnd = i + 1
		}
	}
	if vonStart < 0 {
		return Person{
			First: strings.Join(words[:len(words)-1], " "),
			Last:  words[len(words)-1],
		}
	}
	return Person{
		First:  strings.Join(words[:vonStart], " "),
		Prefix: strings.Join(words[vonStart:vonEnd], " "),
		Last:   strings.Join(words[vonEnd:], " "),
	}
}

// splitVonLast splits "von Last" where the leading lower-case words are
// the von part.
func splitVonLast(s string) (prefix, last string) {
	words := splitTopLevel(s, ' ')
	i := 0
	for i < len(words)-1 && isLowerWord(words[i]) {
		i++
	}
	return strings.Join(words[:i], " "), strings.Join(words[i:], " ")
}

func isLowerWord(w string) bool {
	for _, r := range w {
		if unicode.IsLetter(r) {
			return unicode.IsLower(r)
		}
	}
	return false
}

// splitTopLevel splits s on sep, ignoring separators inside braces, and
// trims each part.
func splitTopLevel(s string, sep rune) []string {
	var parts []string
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case r == sep && depth == 0:
			if p := strings.TrimSpace(b.String()); p != "" {
				parts = append(parts, p)
			}
			b.Reset()
			continue
		}
		b.WriteRune(r)
	}
	if p := strings.TrimSpace(b.String()); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// FamilyName returns the von part and last name, e.g. "van der Waals".
func (p Person) FamilyName() string {
	if p.Prefix == "" {
		return p.Last
	}
	return p.Prefix + " " + p.Last
}

// String renders the person in BibTeX "von Last, Jr, First" form.
func (p Person) String() string {
	s := p.FamilyName()
	if p.Suffix != "" {
		s += ", " + p.Suffix
	}
	if p.First != "" {
		s += ", " + p.First
	}
	return s
}

// NormalizedLast returns the folded family name used for comparisons.
func (p Person) NormalizedLast() string {
	return textnorm.Fold(p.Last)
}

// FormatPersons joins persons with " and " for a BibTeX name field.
func FormatPersons(people []Person) string {
	names := make([]string, len(people))
	for i, p := range people {
		names[i] = p.String()
	}
	return strings.Join(names, " and ")
}
