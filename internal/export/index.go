package export

import (
	"os"

	"github.com/matsen/betterbib/internal/doi"
	"github.com/matsen/betterbib/internal/reference"
)

// Index records the citation keys and DOIs of existing entries so new
// entries can be deduplicated against them.
type Index struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// DOIs maps normalized DOI values to citation keys
	DOIs map[string]string
}

// NewIndex creates an index over the given entries.
func NewIndex(entries []reference.Entry) *Index {
	idx := &Index{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
	for i := range entries {
		idx.Add(&entries[i])
	}
	return idx
}

// Add records an entry.
func (idx *Index) Add(e *reference.Entry) {
	if e.Key != "" {
		idx.Keys[e.Key] = true
	}
	if d := doi.Normalize(e.Get("doi")); d != "" && e.Key != "" {
		idx.DOIs[d] = e.Key
	}
}

// HasEntry returns true if the entry already exists (by DOI or key).
// DOI is the primary match; citation key is the fallback if no DOI.
func (idx *Index) HasEntry(key, d string) bool {
	if d != "" {
		if _, exists := idx.DOIs[doi.Normalize(d)]; exists {
			return true
		}
	}
	return idx.Keys[key]
}

// IndexFile builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist.
func IndexFile(path string) (*Index, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewIndex(nil), nil
	}
	coll, _, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return NewIndex(coll.Entries), nil
}

// AppendToBibFile appends BibTeX content to a file.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Ensure we start on a new line
	_, err = file.WriteString("\n" + content)
	return err
}
