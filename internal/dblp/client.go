// Package dblp implements the DBLP publication search API as a metadata
// source.
package dblp

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"

	"github.com/matsen/betterbib/internal/doi"
	"github.com/matsen/betterbib/internal/reference"
	"github.com/matsen/betterbib/internal/source"
	"github.com/matsen/betterbib/internal/textnorm"
)

const (
	// BaseURL is the DBLP API base URL.
	BaseURL = "https://dblp.org"

	// Name is the provenance tag written to the "source" field.
	Name = "DBLP"

	// RateLimit is the default request rate. DBLP throttles aggressively.
	RateLimit = 1.0

	// DefaultHits is the number of candidates requested per search.
	DefaultHits = 5
)

// Client is a rate-limited DBLP client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	hits       int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHits sets how many candidates a search requests.
func WithHits(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.hits = n
		}
	}
}

// NewClient creates a new DBLP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: source.NewHTTPClient(source.DefaultTimeout, RateLimit),
		baseURL:    BaseURL,
		hits:       DefaultHits,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements source.Source.
func (c *Client) Name() string {
	return Name
}

// CacheKey describes the settings that change what Search returns.
func (c *Client) CacheKey() string {
	return fmt.Sprintf("hits=%d", c.hits)
}

// Query builds a DBLP query: title words as plain terms and one
// author:Family: restriction per author.
func Query(e *reference.Entry) string {
	var terms []string
	title := e.Get("title")
	if title == "" {
		title = e.Container()
	}
	terms = append(terms, strings.Fields(textnorm.StripBraces(title))...)
	for _, name := range source.FamilyNames(e) {
		// DBLP field terms cannot contain spaces.
		terms = append(terms, "author:"+strings.Join(strings.Fields(name), "_")+":")
	}
	return strings.Join(terms, " ")
}

func (c *Client) search(ctx context.Context, q string) ([]source.Candidate, error) {
	b := requests.URL(c.baseURL+"/search/publ/api").
		Client(c.httpClient).
		Param("q", q).
		Param("format", "json").
		ParamInt("h", c.hits)

	body, err := source.FetchJSON(ctx, Name, b)
	if err != nil {
		return nil, err
	}

	result := gjson.Get(body, "result")
	if !result.Exists() {
		return nil, &source.HTTPError{Source: Name, Message: "response has no result"}
	}

	var candidates []source.Candidate
	result.Get("hits.hit").ForEach(func(_, hit gjson.Result) bool {
		candidates = append(candidates, source.Candidate{
			Entry:  mapHit(hit.Get("info")),
			Score:  hit.Get("@score").Float(),
			Source: Name,
		})
		return true
	})
	return candidates, nil
}

// Search queries the publication index with the entry's title and authors.
func (c *Client) Search(ctx context.Context, e reference.Entry) ([]source.Candidate, error) {
	q := Query(&e)
	if q == "" {
		return nil, fmt.Errorf("%w: entry %s has nothing to search on", source.ErrNotFound, e.Key)
	}
	return c.search(ctx, q)
}

// GetByID searches for a DOI and returns the hit carrying exactly that DOI.
func (c *Client) GetByID(ctx context.Context, id string) (source.Candidate, error) {
	d := doi.Normalize(id)
	if d == "" {
		return source.Candidate{}, fmt.Errorf("%w: empty DOI", source.ErrNotFound)
	}

	candidates, err := c.search(ctx, d)
	if err != nil {
		return source.Candidate{}, err
	}
	for _, cand := range candidates {
		if doi.Equal(cand.Entry.Get("doi"), d) {
			return cand, nil
		}
	}
	return source.Candidate{}, fmt.Errorf("%w: DOI %s", source.ErrNotFound, d)
}

// hitTypes maps DBLP publication types to BibTeX entry types.
var hitTypes = map[string]reference.EntryType{
	"Journal Articles":                reference.TypeArticle,
	"Conference and Workshop Papers":  reference.TypeInProceedings,
	"Books and Theses":                reference.TypeBook,
	"Parts in Books or Collections":   reference.TypeInCollection,
	"Editorship":                      reference.TypeProceedings,
	"Informal and Other Publications": reference.TypeMisc,
}

// EntryType returns the BibTeX type for a DBLP publication type.
func EntryType(hitType string) reference.EntryType {
	if t, ok := hitTypes[hitType]; ok {
		return t
	}
	return reference.TypeMisc
}

// homonymSuffix matches DBLP's disambiguation number, as in "Wei Wang 0001".
var homonymSuffix = regexp.MustCompile(`\s+\d{4}$`)

func mapAuthors(r gjson.Result) []reference.Person {
	var people []reference.Person
	add := func(a gjson.Result) {
		name := a.Get("text").String()
		if name == "" {
			name = a.String()
		}
		name = strings.TrimSpace(homonymSuffix.ReplaceAllString(name, ""))
		if name != "" {
			people = append(people, reference.ParsePerson(name))
		}
	}
	// A single author is an object, several are an array.
	if r.IsArray() {
		for _, a := range r.Array() {
			add(a)
		}
	} else if r.Exists() {
		add(r)
	}
	return people
}

func mapHit(info gjson.Result) reference.Entry {
	t := EntryType(info.Get("type").String())
	e := reference.NewEntry(t, "")

	e.SetPeople(reference.RoleAuthor, mapAuthors(info.Get("authors.author")))
	e.Set("title", strings.TrimSuffix(strings.TrimSpace(info.Get("title").String()), "."))

	venue := info.Get("venue")
	if venue.IsArray() {
		venue = venue.Get("0")
	}
	switch t {
	case reference.TypeArticle:
		e.Set("journal", venue.String())
	case reference.TypeInProceedings, reference.TypeInCollection:
		e.Set("booktitle", venue.String())
	}

	e.Set("year", info.Get("year").String())
	e.Set("volume", info.Get("volume").String())
	e.Set("number", info.Get("number").String())
	e.Set("pages", info.Get("pages").String())
	e.Set("publisher", info.Get("publisher").String())

	if d := doi.Normalize(info.Get("doi").String()); d != "" {
		e.Set("doi", d)
		e.Set("url", doi.URL(d))
	} else if ee := info.Get("ee"); ee.Exists() {
		if ee.IsArray() {
			ee = ee.Get("0")
		}
		e.Set("url", ee.String())
	}
	e.Set("source", Name)

	return e
}
