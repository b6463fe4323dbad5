package dblp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/matsen/betterbib/internal/reference"
	"github.com/matsen/betterbib/internal/source"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func serveSearch(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/publ/api" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q", r.URL.Query().Get("format"))
		}
		data, err := os.ReadFile("testdata/search.json")
		if err != nil {
			t.Fatal(err)
		}
		w.Write(data)
	}
}

func TestQuery(t *testing.T) {
	e := reference.NewEntry(reference.TypeArticle, "k")
	e.Set("title", "Congestion {Avoidance} and Control")
	e.SetPeople(reference.RoleAuthor, []reference.Person{
		{First: "Van", Last: "Jacobson"},
		{First: "Ludwig", Prefix: "van", Last: "Beethoven"},
	})

	want := "Congestion Avoidance and Control author:Jacobson: author:van_Beethoven:"
	if got := Query(&e); got != want {
		t.Errorf("Query() = %q, want %q", got, want)
	}
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, serveSearch(t))

	e := reference.NewEntry(reference.TypeArticle, "jacobson88")
	e.Set("title", "Congestion avoidance and control")

	got, err := c.Search(context.Background(), e)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}

	first := got[0].Entry
	if first.Type != reference.TypeArticle {
		t.Errorf("Type = %s", first.Type)
	}
	if first.Get("title") != "Congestion avoidance and control" {
		t.Errorf("title = %q", first.Get("title"))
	}
	if first.Get("journal") != "SIGCOMM Comput. Commun. Rev." {
		t.Errorf("journal = %q", first.Get("journal"))
	}
	if first.Get("doi") != "10.1145/52325.52356" || first.Get("url") != "https://doi.org/10.1145/52325.52356" {
		t.Errorf("doi = %q, url = %q", first.Get("doi"), first.Get("url"))
	}
	if authors := first.People(reference.RoleAuthor); len(authors) != 1 || authors[0].Last != "Jacobson" {
		t.Errorf("single author object not mapped: %+v", authors)
	}
	if got[0].Score != 9 || got[0].Source != "DBLP" {
		t.Errorf("unexpected candidate metadata %+v", got[0])
	}

	second := got[1].Entry
	if second.Type != reference.TypeInProceedings || second.Get("booktitle") != "NSDI" {
		t.Errorf("Type = %s, booktitle = %q", second.Type, second.Get("booktitle"))
	}
	authors := second.People(reference.RoleAuthor)
	if len(authors) != 2 {
		t.Fatalf("expected 2 authors, got %+v", authors)
	}
	if authors[0].First != "Wei" || authors[0].Last != "Wang" {
		t.Errorf("homonym number not stripped: %+v", authors[0])
	}
	if authors[1].Prefix != "van" || authors[1].Last != "Beethoven" {
		t.Errorf("von part not parsed: %+v", authors[1])
	}
	if second.Has("doi") {
		t.Error("hit without doi should not get one")
	}
	if second.Get("url") != "https://www.usenix.org/conference/nsdi19/presentation/wang" {
		t.Errorf("url = %q", second.Get("url"))
	}
}

func TestGetByID(t *testing.T) {
	c := newTestClient(t, serveSearch(t))

	got, err := c.GetByID(context.Background(), "doi:10.1145/52325.52356")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Entry.Get("year") != "1988" {
		t.Errorf("year = %q", got.Entry.Get("year"))
	}

	_, err = c.GetByID(context.Background(), "10.1145/0000000")
	if !source.IsNotFound(err) {
		t.Errorf("expected ErrNotFound for DOI absent from hits, got %v", err)
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"hits":{"@total":"0"}}}`))
	})
	e := reference.NewEntry(reference.TypeArticle, "k")
	e.Set("title", "qwxzv plorkt")

	got, err := c.Search(context.Background(), e)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no candidates, got %d", len(got))
	}
}

func TestSearch_BadResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"nope"}`))
	})
	e := reference.NewEntry(reference.TypeArticle, "k")
	e.Set("title", "anything")

	if _, err := c.Search(context.Background(), e); !source.IsHTTP(err) {
		t.Errorf("expected HTTPError, got %v", err)
	}
}

func TestEntryType(t *testing.T) {
	tests := map[string]reference.EntryType{
		"Journal Articles":              reference.TypeArticle,
		"Parts in Books or Collections": reference.TypeInCollection,
		"Editorship":                    reference.TypeProceedings,
		"Data and Artifacts":            reference.TypeMisc,
	}
	for in, want := range tests {
		if got := EntryType(in); got != want {
			t.Errorf("EntryType(%q) = %s, want %s", in, got, want)
		}
	}
}
