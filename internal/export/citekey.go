package export

import (
	"strconv"
	"unicode"

	"github.com/matsen/betterbib/internal/reference"
	"github.com/matsen/betterbib/internal/textnorm"
)

// CiteKey generates a citation key of the form Last2013-ab from the first
// author, the year and the initials of the first two significant title
// words.
func CiteKey(e *reference.Entry) string {
	lastName := "Unknown"
	if authors := e.Authors(); len(authors) > 0 {
		if s := sanitizeForCiteKey(textnorm.Fold(authors[0].Last)); s != "" {
			lastName = capitalize(s)
		}
	}

	year := e.Year()
	if year == 0 {
		year = 9999
	}

	key := lastName + strconv.Itoa(year)
	if suffix := generateTitleSuffix(e.Get("title")); suffix != "" {
		key += "-" + suffix
	}
	return key
}

// UniqueKey returns key, or key with a letter appended, such that it is
// not yet in idx. The returned key is recorded in idx.
func UniqueKey(idx *Index, key string) string {
	candidate := key
	for i := 0; idx.Keys[candidate]; i++ {
		candidate = key + suffixLetters(i)
	}
	idx.Keys[candidate] = true
	return candidate
}

// suffixLetters returns a, b, ..., z, aa, ab, ...
func suffixLetters(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return suffixLetters(i/26-1) + string(rune('a'+i%26))
}

// sanitizeForCiteKey removes non-alphanumeric characters.
func sanitizeForCiteKey(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

func capitalize(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// generateTitleSuffix creates a 2-letter suffix from the title.
func generateTitleSuffix(title string) string {
	var suffix []rune
	for _, word := range textnorm.Tokens(title) {
		suffix = append(suffix, []rune(word)[0])
		if len(suffix) >= 2 {
			break
		}
	}
	return string(suffix)
}

// AssignKeys gives every entry without a key a generated one, unique
// within entries and idx.
func AssignKeys(entries []reference.Entry, idx *Index) {
	for i := range entries {
		if entries[i].Key != "" {
			idx.Keys[entries[i].Key] = true
		}
	}
	for i := range entries {
		if entries[i].Key == "" {
			entries[i].Key = UniqueKey(idx, CiteKey(&entries[i]))
		}
	}
}
