// Package reference defines the core domain types for bibliography entries.
package reference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
)

// EntryType is a BibTeX entry type from a closed vocabulary.
type EntryType string

const (
	TypeArticle       EntryType = "article"
	TypeBook          EntryType = "book"
	TypeBooklet       EntryType = "booklet"
	TypeConference    EntryType = "conference"
	TypeInBook        EntryType = "inbook"
	TypeInCollection  EntryType = "incollection"
	TypeInProceedings EntryType = "inproceedings"
	TypeManual        EntryType = "manual"
	TypeMastersThesis EntryType = "mastersthesis"
	TypeMisc          EntryType = "misc"
	TypeOnline        EntryType = "online"
	TypePhDThesis     EntryType = "phdthesis"
	TypeProceedings   EntryType = "proceedings"
	TypeTechReport    EntryType = "techreport"
	TypeUnpublished   EntryType = "unpublished"
)

// EntryTypes lists every valid entry type.
var EntryTypes = []EntryType{
	TypeArticle, TypeBook, TypeBooklet, TypeConference, TypeInBook,
	TypeInCollection, TypeInProceedings, TypeManual, TypeMastersThesis,
	TypeMisc, TypeOnline, TypePhDThesis, TypeProceedings, TypeTechReport,
	TypeUnpublished,
}

// ParseEntryType parses a BibTeX entry type case-insensitively.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range EntryTypes {
		if t == valid {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entry type %q", s)
}

// Person roles.
const (
	RoleAuthor = "author"
	RoleEditor = "editor"
)

// Roles lists person roles in output order.
var Roles = []string{RoleAuthor, RoleEditor}

// Field is a single BibTeX field. Name is always lower case.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Entry represents a bibliography entry.
type Entry struct {
	Type    EntryType           `json:"type"`
	Key     string              `json:"key"` // BibTeX citation key
	Fields  []Field             `json:"fields,omitempty"`
	Persons map[string][]Person `json:"persons,omitempty"` // role -> people, in input order
}

// NewEntry creates an empty entry of the given type.
func NewEntry(t EntryType, key string) Entry {
	return Entry{Type: t, Key: key}
}

func fieldKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (e *Entry) index(name string) int {
	name = fieldKey(name)
	for i, f := range e.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the value of a field, or "" if it is absent.
func (e *Entry) Get(name string) string {
	if i := e.index(name); i >= 0 {
		return e.Fields[i].Value
	}
	return ""
}

// Has reports whether the entry carries a non-empty field.
func (e *Entry) Has(name string) bool {
	return e.Get(name) != ""
}

// Set replaces a field in place, or appends it if absent. An empty value
// deletes the field.
func (e *Entry) Set(name, value string) {
	if value == "" {
		e.Delete(name)
		return
	}
	if i := e.index(name); i >= 0 {
		e.Fields[i].Value = value
		return
	}
	e.Fields = append(e.Fields, Field{Name: fieldKey(name), Value: value})
}

// Delete removes a field. Deleting an absent field is a no-op.
func (e *Entry) Delete(name string) {
	if i := e.index(name); i >= 0 {
		e.Fields = append(e.Fields[:i], e.Fields[i+1:]...)
	}
}

// FieldNames returns the field names in entry order.
func (e *Entry) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// People returns the persons for a role.
func (e *Entry) People(role string) []Person {
	if e.Persons == nil {
		return nil
	}
	return e.Persons[role]
}

// SetPeople replaces the persons for a role.
func (e *Entry) SetPeople(role string, people []Person) {
	if len(people) == 0 {
		delete(e.Persons, role)
		return
	}
	if e.Persons == nil {
		e.Persons = make(map[string][]Person)
	}
	e.Persons[role] = people
}

// Authors returns the author list, falling back to editors when an entry
// has no authors (e.g. edited volumes).
func (e *Entry) Authors() []Person {
	if a := e.People(RoleAuthor); len(a) > 0 {
		return a
	}
	return e.People(RoleEditor)
}

// Year returns the publication year, or 0 if missing or malformed.
func (e *Entry) Year() int {
	y, err := strconv.Atoi(strings.TrimSpace(e.Get("year")))
	if err != nil {
		return 0
	}
	return y
}

// Container returns the journal or book title the work appeared in.
func (e *Entry) Container() string {
	if j := e.Get("journal"); j != "" {
		return j
	}
	return e.Get("booktitle")
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() Entry {
	var out Entry
	if err := copier.CopyWithOption(&out, e, copier.Option{DeepCopy: true}); err != nil {
		panic(fmt.Sprintf("cloning entry %s: %v", e.Key, err))
	}
	return out
}

// Collection is an ordered set of entries as read from a BibTeX file.
type Collection struct {
	Entries []Entry
}

// Keys returns the citation keys in collection order.
func (c *Collection) Keys() []string {
	keys := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		keys[i] = e.Key
	}
	return keys
}
