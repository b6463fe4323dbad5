// Package doi handles Digital Object Identifiers: normalization, extraction
// from URLs and text, and short-DOI lookups.
package doi

import (
	"regexp"
	"strings"
)

// Pattern matches a DOI: 10.XXXX/... where XXXX is 4-9 digits.
var Pattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// urlPattern matches resolver URLs such as https://doi.org/10.1137/110820713
// or http://dx.doi.org/10.1137/110820713.
var urlPattern = regexp.MustCompile(`(?i)^https?://(?:dx\.)?doi\.org/(.+)$`)

// Normalize normalizes a DOI for comparison.
// Removes common prefixes like "https://doi.org/" and lowercases.
func Normalize(d string) string {
	d = strings.TrimSpace(d)
	if m := urlPattern.FindStringSubmatch(d); m != nil {
		d = m[1]
	}
	d = strings.TrimPrefix(d, "doi.org/")
	if len(d) >= 4 && strings.EqualFold(d[:4], "doi:") {
		d = strings.TrimSpace(d[4:])
	}
	return strings.ToLower(d)
}

// Equal reports whether two DOIs identify the same object.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na != "" && na == nb
}

// FromURL extracts the DOI from a resolver URL. It returns "" when the URL
// is not a DOI URL.
func FromURL(u string) string {
	m := urlPattern.FindStringSubmatch(strings.TrimSpace(u))
	if m == nil {
		return ""
	}
	return m[1]
}

// URL returns the canonical resolver URL for a DOI.
func URL(d string) string {
	return "https://doi.org/" + d
}

// Find returns the first DOI in free text, with trailing punctuation
// removed, or "" if there is none.
func Find(text string) string {
	match := Pattern.FindString(text)
	return strings.TrimRight(match, ".,;:)")
}

// IsDOI reports whether s looks like a bare DOI.
func IsDOI(s string) bool {
	s = strings.TrimSpace(s)
	loc := Pattern.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}
