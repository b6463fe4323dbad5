package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/carlmjohnson/requests"

	"github.com/matsen/betterbib/internal/reference"
)

func TestQueryTerms(t *testing.T) {
	e := reference.NewEntry(reference.TypeArticle, "k")
	e.Set("title", "Framework Deflation {Krylov} Augmented")
	e.SetPeople(reference.RoleAuthor, []reference.Person{
		{Last: "Liesen"}, {Last: "Gaul"}, {Prefix: "van der", Last: "Vorst"},
	})

	got := QueryTerms(&e)
	want := "Framework Deflation Krylov Augmented Liesen Gaul van der Vorst"
	if got != want {
		t.Errorf("QueryTerms() = %q, want %q", got, want)
	}
}

func TestQueryTerms_NoTitleUsesContainer(t *testing.T) {
	e := reference.NewEntry(reference.TypeArticle, "k")
	e.Set("journal", "Boundary-Layer Meteorology")
	e.Set("pages", "375--396")
	e.SetPeople(reference.RoleAuthor, []reference.Person{{Last: "Mahrt"}})

	if got := QueryTerms(&e); got != "Boundary-Layer Meteorology Mahrt" {
		t.Errorf("QueryTerms() = %q", got)
	}
	if !Searchable(&e) {
		t.Error("entry with journal and author should be searchable")
	}

	empty := reference.NewEntry(reference.TypeMisc, "empty")
	empty.Set("note", "nothing to search on")
	if Searchable(&empty) {
		t.Error("entry without title, container or people should not be searchable")
	}
}

func TestErrors(t *testing.T) {
	uniq := &UniqueError{Candidates: []Candidate{
		{Entry: entryWithTitle("Introduction")},
		{Entry: entryWithTitle("Introduction")},
	}}
	if !IsNotUnique(uniq) || !errors.Is(uniq, ErrNotUnique) {
		t.Error("UniqueError should unwrap to ErrNotUnique")
	}
	if IsNotFound(uniq) {
		t.Error("UniqueError is not a not-found error")
	}
	if !strings.Contains(uniq.Error(), "2 plausible matches") {
		t.Errorf("UniqueError.Error() = %q", uniq.Error())
	}

	wrapped := fmt.Errorf("looking up key: %w", ErrNotFound)
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should see through wrapping")
	}

	httpErr := &HTTPError{Source: "Crossref", StatusCode: 503, Message: "Service Unavailable"}
	if !IsHTTP(fmt.Errorf("x: %w", httpErr)) || !errors.Is(httpErr, ErrHTTP) {
		t.Error("HTTPError should be detectable")
	}
	if httpErr.Error() != "Crossref: HTTP 503: Service Unavailable" {
		t.Errorf("HTTPError.Error() = %q", httpErr.Error())
	}
}

func entryWithTitle(title string) reference.Entry {
	e := reference.NewEntry(reference.TypeArticle, "")
	e.Set("title", title)
	return e
}

func TestFetchJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if !strings.HasPrefix(r.Header.Get("User-Agent"), "betterbib") {
				t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
			}
			w.Write([]byte(`{"status":"ok"}`))
		case "/broken":
			w.Write([]byte(`{"status":`))
		default:
			http.Error(w, "Resource not found.", http.StatusNotFound)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewHTTPClient(5*time.Second, 0)

	body, err := FetchJSON(ctx, "Test", requests.URL(server.URL+"/ok").Client(client))
	if err != nil {
		t.Fatalf("FetchJSON() error = %v", err)
	}
	if body != `{"status":"ok"}` {
		t.Errorf("FetchJSON() body = %q", body)
	}

	_, err = FetchJSON(ctx, "Test", requests.URL(server.URL+"/missing").Client(client))
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusNotFound || httpErr.Message != "Resource not found." {
		t.Errorf("unexpected error %+v", httpErr)
	}

	_, err = FetchJSON(ctx, "Test", requests.URL(server.URL+"/broken").Client(client))
	if !IsHTTP(err) {
		t.Errorf("malformed body should be an HTTPError, got %v", err)
	}
}

func TestFetchJSON_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := FetchJSON(context.Background(), "Test", requests.URL(url).Client(NewHTTPClient(time.Second, 0)))
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != 0 {
		t.Errorf("transport failure should have status 0, got %d", httpErr.StatusCode)
	}
}

func TestNewHTTPClient_RateLimited(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewHTTPClient(5*time.Second, 20)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := FetchJSON(context.Background(), "Test", requests.URL(server.URL).Client(client)); err != nil {
			t.Fatal(err)
		}
	}
	// burst 1 at 20 rps: the 2nd and 3rd requests wait ~50ms each
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("requests were not rate limited (took %v)", elapsed)
	}
	if hits != 3 {
		t.Errorf("expected 3 hits, got %d", hits)
	}
}
