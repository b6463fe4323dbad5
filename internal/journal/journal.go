// Package journal provides the journal-name abbreviation dictionary.
//
// The dictionary is embedded in the binary, parsed on first use and
// read-only afterwards, so it can be shared freely between goroutines.
package journal

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/matsen/betterbib/internal/textnorm"
)

//go:embed journals.yaml
var journalsYAML []byte

// Dictionary maps full journal names to abbreviations and back.
type Dictionary struct {
	abbrev map[string]string // folded full name -> abbreviation
	full   map[string]string // folded abbreviation -> full name
}

// Default returns the embedded dictionary, loading it on first call.
var Default = sync.OnceValues(func() (*Dictionary, error) {
	return Parse(journalsYAML)
})

// Parse builds a dictionary from a YAML mapping of full name to abbreviation.
func Parse(data []byte) (*Dictionary, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing journal dictionary: %w", err)
	}

	d := &Dictionary{
		abbrev: make(map[string]string, len(raw)),
		full:   make(map[string]string, len(raw)),
	}
	for full, abbrev := range raw {
		d.abbrev[textnorm.Fold(full)] = abbrev
		d.full[textnorm.Fold(abbrev)] = full
	}
	return d, nil
}

// Len returns the number of journals in the dictionary.
func (d *Dictionary) Len() int {
	return len(d.abbrev)
}

// Abbreviate returns the abbreviation for a full journal name.
func (d *Dictionary) Abbreviate(name string) (string, bool) {
	a, ok := d.abbrev[textnorm.Fold(name)]
	return a, ok
}

// Expand returns the full name for an abbreviated journal name.
func (d *Dictionary) Expand(abbrev string) (string, bool) {
	f, ok := d.full[textnorm.Fold(abbrev)]
	return f, ok
}

// Same reports whether two journal names refer to the same journal, either
// literally (after folding) or as an abbreviation/full-name pair.
func (d *Dictionary) Same(a, b string) bool {
	fa, fb := textnorm.Fold(a), textnorm.Fold(b)
	if fa == "" || fb == "" {
		return false
	}
	if fa == fb {
		return true
	}
	return d.canonical(fa) == d.canonical(fb)
}

// canonical maps a folded name to the folded full name when known.
func (d *Dictionary) canonical(folded string) string {
	if full, ok := d.full[folded]; ok {
		return textnorm.Fold(full)
	}
	return folded
}
