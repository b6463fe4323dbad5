package merge

import (
	"reflect"
	"slices"
	"testing"

	"github.com/matsen/betterbib/internal/reference"
)

func original() reference.Entry {
	e := reference.NewEntry(reference.TypeArticle, "gaul2013")
	e.Set("title", "A framework for deflated and augmented {Krylov} subspace methods")
	e.Set("note", "read this twice")
	e.Set("keywords", "krylov, deflation")
	e.Set("owner", "erik")
	e.Set("year", "2012")
	e.SetPeople(reference.RoleAuthor, []reference.Person{{First: "A.", Last: "Gaul"}, {Last: "Liesen"}})
	return e
}

func crossrefCandidate() reference.Entry {
	e := reference.NewEntry(reference.TypeMisc, "")
	e.Set("title", "A Framework for Deflated and Augmented Krylov Subspace Methods")
	e.Set("journal", "SIAM J. Matrix Anal. & Appl.")
	e.Set("year", "2013")
	e.Set("doi", "10.1137/110820713")
	e.Set("note", "from the publisher")
	e.SetPeople(reference.RoleAuthor, []reference.Person{
		{First: "A.", Last: "Gaul"}, {First: "M. H.", Last: "Gutknecht"},
		{First: "J.", Last: "Liesen"}, {First: "R.", Last: "Nabben"},
	})
	return e
}

func TestMerge_NilCandidate(t *testing.T) {
	orig := original()
	got := Merge(&orig, nil, Options{})
	if !reflect.DeepEqual(got, orig) {
		t.Errorf("Merge(e, nil) = %+v, want %+v", got, orig)
	}
}

func TestMerge(t *testing.T) {
	orig := original()
	cand := crossrefCandidate()
	got := Merge(&orig, &cand, Options{})

	if got.Type != reference.TypeArticle || got.Key != "gaul2013" {
		t.Errorf("type/key changed: %s %s", got.Type, got.Key)
	}
	if got.Get("year") != "2013" || got.Get("doi") != "10.1137/110820713" {
		t.Errorf("candidate fields should win: year %q doi %q", got.Get("year"), got.Get("doi"))
	}
	if got.Get("title") != "A Framework for Deflated and Augmented Krylov Subspace Methods" {
		t.Errorf("title = %q", got.Get("title"))
	}
	if got.Get("note") != "read this twice" {
		t.Errorf("protected note overwritten: %q", got.Get("note"))
	}
	if got.Get("owner") != "erik" || got.Get("keywords") != "krylov, deflation" {
		t.Error("fields only in the original must survive")
	}
	if n := len(got.People(reference.RoleAuthor)); n != 4 {
		t.Errorf("expected candidate's 4 authors, got %d", n)
	}
}

func TestMerge_NeverLosesOriginalFields(t *testing.T) {
	orig := original()
	cand := crossrefCandidate()
	got := Merge(&orig, &cand, Options{})
	for _, name := range orig.FieldNames() {
		if !got.Has(name) {
			t.Errorf("field %q lost in merge", name)
		}
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	orig := original()
	cand := crossrefCandidate()
	origCopy, candCopy := orig.Clone(), cand.Clone()

	got := Merge(&orig, &cand, Options{})
	got.Set("title", "changed")
	got.People(reference.RoleAuthor)[0].Last = "Changed"

	if !reflect.DeepEqual(orig, origCopy) {
		t.Error("original was modified")
	}
	if !reflect.DeepEqual(cand, candCopy) {
		t.Error("candidate was modified")
	}
}

func TestMerge_CustomProtected(t *testing.T) {
	orig := original()
	cand := crossrefCandidate()
	got := Merge(&orig, &cand, Options{Protected: []string{"year"}})

	if got.Get("year") != "2012" {
		t.Errorf("year should be protected, got %q", got.Get("year"))
	}
	if got.Get("note") != "from the publisher" {
		t.Errorf("note is not protected here, got %q", got.Get("note"))
	}
}

func TestMerge_InBookChapter(t *testing.T) {
	orig := reference.NewEntry(reference.TypeInBook, "chap")
	orig.Set("title", "Handbook of Numerical Analysis")
	cand := reference.NewEntry(reference.TypeInBook, "")
	cand.Set("title", "Finite Element Methods")
	cand.Set("booktitle", "Handbook of Numerical Analysis")

	got := Merge(&orig, &cand, Options{})
	if got.Get("title") != "Handbook of Numerical Analysis" {
		t.Errorf("title = %q", got.Get("title"))
	}
	if got.Get("chapter") != "Finite Element Methods" {
		t.Errorf("chapter = %q", got.Get("chapter"))
	}
}

func TestChanged(t *testing.T) {
	orig := original()
	cand := crossrefCandidate()
	got := Merge(&orig, &cand, Options{})

	changed := Changed(&orig, &got)
	for _, want := range []string{"title", "year", "journal", "doi", "author"} {
		if !slices.Contains(changed, want) {
			t.Errorf("Changed() = %v, missing %q", changed, want)
		}
	}
	for _, unchanged := range []string{"note", "owner"} {
		if slices.Contains(changed, unchanged) {
			t.Errorf("Changed() = %v should not contain %q", changed, unchanged)
		}
	}
	if len(Changed(&orig, &orig)) != 0 {
		t.Error("an entry compared with itself has no changes")
	}
}
