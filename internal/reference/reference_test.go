package reference

import (
	"testing"
)

func TestParseEntryType(t *testing.T) {
	tests := []struct {
		input   string
		want    EntryType
		wantErr bool
	}{
		{"article", TypeArticle, false},
		{"Article", TypeArticle, false},
		{" INPROCEEDINGS ", TypeInProceedings, false},
		{"techreport", TypeTechReport, false},
		{"patent", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEntryType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEntryType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseEntryType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEntry_FieldsCaseInsensitive(t *testing.T) {
	e := NewEntry(TypeArticle, "key")
	e.Set("Title", "First")
	e.Set("TITLE", "Second")
	e.Set("journal", "J")

	if len(e.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(e.Fields), e.Fields)
	}
	if got := e.Get("title"); got != "Second" {
		t.Errorf("Get(title) = %q, want Second", got)
	}
	if e.Fields[0].Name != "title" {
		t.Errorf("field name not lower-cased: %q", e.Fields[0].Name)
	}

	e.Delete("Journal")
	if e.Has("journal") {
		t.Error("journal should be deleted")
	}

	e.Set("title", "")
	if e.Has("title") {
		t.Error("setting empty value should delete the field")
	}
}

func TestEntry_FieldOrderPreserved(t *testing.T) {
	e := NewEntry(TypeBook, "key")
	for _, name := range []string{"title", "publisher", "year", "isbn"} {
		e.Set(name, "x")
	}
	e.Set("publisher", "y")

	got := e.FieldNames()
	want := []string{"title", "publisher", "year", "isbn"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FieldNames() = %v, want %v", got, want)
		}
	}
}

func TestEntry_Clone(t *testing.T) {
	e := NewEntry(TypeArticle, "Liesen2013")
	e.Set("title", "Original")
	e.SetPeople(RoleAuthor, []Person{{First: "Jörg", Last: "Liesen"}})

	c := e.Clone()
	c.Set("title", "Changed")
	c.Persons[RoleAuthor][0].Last = "Changed"
	c.SetPeople(RoleEditor, []Person{{Last: "Editor"}})

	if e.Get("title") != "Original" {
		t.Errorf("clone shares fields with original: %q", e.Get("title"))
	}
	if e.Persons[RoleAuthor][0].Last != "Liesen" {
		t.Errorf("clone shares persons with original: %q", e.Persons[RoleAuthor][0].Last)
	}
	if len(e.People(RoleEditor)) != 0 {
		t.Error("clone shares persons map with original")
	}
	if c.Type != e.Type || c.Key != e.Key {
		t.Errorf("clone lost type/key: %+v", c)
	}
}

func TestEntry_AuthorsFallsBackToEditors(t *testing.T) {
	e := NewEntry(TypeProceedings, "p")
	e.SetPeople(RoleEditor, []Person{{Last: "Meurant"}})
	if got := e.Authors(); len(got) != 1 || got[0].Last != "Meurant" {
		t.Errorf("Authors() = %v, want editors", got)
	}
}

func TestEntry_YearAndContainer(t *testing.T) {
	e := NewEntry(TypeInProceedings, "p")
	e.Set("year", " 2008 ")
	e.Set("booktitle", "2008 IEEE Aerospace Conference")
	if e.Year() != 2008 {
		t.Errorf("Year() = %d, want 2008", e.Year())
	}
	if e.Container() != "2008 IEEE Aerospace Conference" {
		t.Errorf("Container() = %q", e.Container())
	}

	e.Set("year", "in press")
	if e.Year() != 0 {
		t.Errorf("Year() = %d for malformed year, want 0", e.Year())
	}
}
