package crossref

import (
	"html"
	"strconv"
	"strings"

	strip "github.com/grokify/html-strip-tags-go"
	"github.com/tidwall/gjson"

	"github.com/matsen/betterbib/internal/doi"
	"github.com/matsen/betterbib/internal/reference"
)

// workTypes maps Crossref work types to BibTeX entry types.
var workTypes = map[string]reference.EntryType{
	"journal-article":     reference.TypeArticle,
	"book":                reference.TypeBook,
	"monograph":           reference.TypeBook,
	"edited-book":         reference.TypeBook,
	"reference-book":      reference.TypeBook,
	"book-chapter":        reference.TypeInBook,
	"book-section":        reference.TypeInBook,
	"book-part":           reference.TypeInBook,
	"reference-entry":     reference.TypeInCollection,
	"proceedings-article": reference.TypeInProceedings,
	"proceedings":         reference.TypeProceedings,
	"report":              reference.TypeTechReport,
	"report-series":       reference.TypeTechReport,
	"dissertation":        reference.TypePhDThesis,
	"posted-content":      reference.TypeUnpublished,
}

// EntryType returns the BibTeX type for a Crossref work type.
func EntryType(workType string) reference.EntryType {
	if t, ok := workTypes[workType]; ok {
		return t
	}
	return reference.TypeMisc
}

// cleanText strips markup Crossref embeds in titles (<i>, <sub>, MathML)
// and collapses whitespace.
func cleanText(s string) string {
	s = html.UnescapeString(strip.StripTags(s))
	return strings.Join(strings.Fields(s), " ")
}

func first(r gjson.Result) string {
	if r.IsArray() {
		return r.Get("0").String()
	}
	return r.String()
}

func joinStrings(r gjson.Result) string {
	var parts []string
	for _, v := range r.Array() {
		if s := strings.TrimSpace(v.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func mapPeople(r gjson.Result) []reference.Person {
	var people []reference.Person
	for _, a := range r.Array() {
		family := strings.TrimSpace(a.Get("family").String())
		given := strings.TrimSpace(a.Get("given").String())
		if family == "" {
			// Organizations only carry "name"; keep them as one unit.
			if name := strings.TrimSpace(a.Get("name").String()); name != "" {
				people = append(people, reference.Person{Last: "{" + name + "}"})
			}
			continue
		}
		people = append(people, reference.Person{
			First:  given,
			Last:   family,
			Suffix: strings.TrimSpace(a.Get("suffix").String()),
		})
	}
	return people
}

// mapWork converts a Crossref work object into an entry.
func (c *Client) mapWork(w gjson.Result) reference.Entry {
	t := EntryType(w.Get("type").String())
	e := reference.NewEntry(t, "")

	e.SetPeople(reference.RoleAuthor, mapPeople(w.Get("author")))
	e.SetPeople(reference.RoleEditor, mapPeople(w.Get("editor")))

	e.Set("title", cleanText(first(w.Get("title"))))
	e.Set("subtitle", cleanText(first(w.Get("subtitle"))))

	container := cleanText(first(w.Get("container-title")))
	if short := cleanText(first(w.Get("short-container-title"))); short != "" && !c.longNames {
		container = short
	}
	switch t {
	case reference.TypeArticle:
		e.Set("journal", container)
	case reference.TypeInProceedings, reference.TypeInBook, reference.TypeInCollection:
		e.Set("booktitle", container)
	}

	parts := w.Get("issued.date-parts.0").Array()
	if len(parts) > 0 && parts[0].Int() > 0 {
		e.Set("year", strconv.FormatInt(parts[0].Int(), 10))
	}
	if len(parts) > 1 && parts[1].Int() > 0 {
		e.Set("month", strconv.FormatInt(parts[1].Int(), 10))
	}

	e.Set("volume", w.Get("volume").String())
	e.Set("number", w.Get("issue").String())
	e.Set("pages", w.Get("page").String())

	publisher := w.Get("publisher").String()
	switch t {
	case reference.TypeTechReport:
		e.Set("institution", publisher)
	case reference.TypePhDThesis:
		e.Set("school", publisher)
	default:
		e.Set("publisher", publisher)
	}

	e.Set("issn", joinStrings(w.Get("ISSN")))
	e.Set("isbn", joinStrings(w.Get("ISBN")))

	if d := doi.Normalize(w.Get("DOI").String()); d != "" {
		e.Set("doi", d)
		e.Set("url", doi.URL(d))
	}
	e.Set("source", Name)

	return e
}
