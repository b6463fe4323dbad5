// Package textnorm folds bibliographic text (titles, names, venues) into a
// comparable form: LaTeX markup removed, accents stripped, lower-cased.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// latexCommand matches control sequences such as \emph, \"{o} or \'e.
var latexCommand = regexp.MustCompile(`\\([a-zA-Z]+|[^a-zA-Z\s])\s*`)

// latexLetter matches LaTeX commands that stand for a letter, e.g. \ss or \o.
var latexLetter = regexp.MustCompile(`\\(ss|ae|AE|oe|OE|aa|AA|o|O|l|L|i|j)\b`)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "and": true, "in": true,
	"on": true, "for": true, "to": true, "with": true, "by": true, "at": true,
	"from": true, "via": true, "its": true, "is": true, "as": true, "or": true,
}

// Fold returns s lower-cased with LaTeX markup, accents and punctuation
// removed and whitespace collapsed.
func Fold(s string) string {
	s = latexLetter.ReplaceAllString(s, "$1")
	s = latexCommand.ReplaceAllString(s, "")
	s = StripBraces(s)
	s, _, _ = transform.String(stripAccents, s)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens returns the folded words of s without stop words.
func Tokens(s string) []string {
	words := strings.Fields(Fold(s))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if stopWords[w] {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// StripBraces removes the protective braces BibTeX uses to keep case, e.g.
// "{IP} Datagrams" becomes "IP Datagrams".
func StripBraces(s string) string {
	return strings.NewReplacer("{", "", "}", "").Replace(s)
}
