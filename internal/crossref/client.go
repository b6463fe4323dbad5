// Package crossref implements the Crossref works API as a metadata source.
package crossref

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"

	"github.com/matsen/betterbib/internal/doi"
	"github.com/matsen/betterbib/internal/reference"
	"github.com/matsen/betterbib/internal/source"
)

const (
	// BaseURL is the Crossref REST API base URL.
	BaseURL = "https://api.crossref.org"

	// Name is the provenance tag written to the "source" field.
	Name = "Crossref"

	// RateLimit is the default request rate for the public pool.
	RateLimit = 50.0

	// DefaultRows is the number of candidates requested per search.
	DefaultRows = 5

	// selectFields restricts search responses to the fields we map.
	selectFields = "DOI,title,subtitle,author,editor,container-title,short-container-title," +
		"issued,page,volume,issue,publisher,ISBN,ISSN,type,score"
)

// Client is a rate-limited Crossref client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	mailto     string
	rows       int
	longNames  bool
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

// WithMailto sets the contact address sent to Crossref's polite pool.
func WithMailto(addr string) ClientOption {
	return func(c *Client) {
		c.mailto = addr
	}
}

// WithRows sets how many candidates a search requests.
func WithRows(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.rows = n
		}
	}
}

// WithLongJournalName prefers full container titles over abbreviations.
func WithLongJournalName(long bool) ClientOption {
	return func(c *Client) {
		c.longNames = long
	}
}

// NewClient creates a new Crossref client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: source.NewHTTPClient(source.DefaultTimeout, RateLimit),
		baseURL:    BaseURL,
		rows:       DefaultRows,
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

// CacheKey describes the settings that change what Search and GetByID
// return, so cached responses are only reused under the same settings.
func (c *Client) CacheKey() string {
	long := 0
	if c.longNames {
		long = 1
	}
	return fmt.Sprintf("long=%d,rows=%d", long, c.rows)
}

func (c *Client) request(path string) *requests.Builder {
	b := requests.URL(c.baseURL + path).Client(c.httpClient)
	if c.mailto != "" {
		b = b.Param("mailto", c.mailto)
	}
	return b
}

// Search queries /works with the entry's title and author names.
func (c *Client) Search(ctx context.Context, e reference.Entry) ([]source.Candidate, error) {
	query := source.QueryTerms(&e)
	if query == "" {
		return nil, fmt.Errorf("%w: entry %s has nothing to search on", source.ErrNotFound, e.Key)
	}

	b := c.request("/works").
		Param("query.bibliographic", query).
		ParamInt("rows", c.rows).
		Param("select", selectFields)
	if names := source.FamilyNames(&e); len(names) > 0 {
		b = b.Param("query.author", strings.Join(names, " "))
	}
	if !e.Has("title") && e.Container() != "" {
		b = b.Param("query.container-title", e.Container())
	}

	body, err := source.FetchJSON(ctx, Name, b)
	if err != nil {
		return nil, err
	}

	items := gjson.Get(body, "message.items")
	if !items.IsArray() {
		return nil, &source.HTTPError{Source: Name, Message: "response has no message.items"}
	}

	var candidates []source.Candidate
	items.ForEach(func(_, item gjson.Result) bool {
		candidates = append(candidates, source.Candidate{
			Entry:  c.mapWork(item),
			Score:  item.Get("score").Float(),
			Source: Name,
		})
		return true
	})
	return candidates, nil
}

// GetByID fetches a single work by DOI.
func (c *Client) GetByID(ctx context.Context, id string) (source.Candidate, error) {
	d := doi.Normalize(id)
	if d == "" {
		return source.Candidate{}, fmt.Errorf("%w: empty DOI", source.ErrNotFound)
	}

	body, err := source.FetchJSON(ctx, Name, c.request("/works/"+d))
	if err != nil {
		if httpErr, ok := err.(*source.HTTPError); ok && httpErr.StatusCode == http.StatusNotFound {
			return source.Candidate{}, fmt.Errorf("%w: DOI %s", source.ErrNotFound, d)
		}
		return source.Candidate{}, err
	}

	work := gjson.Get(body, "message")
	if !work.IsObject() || work.Get("DOI").String() == "" {
		return source.Candidate{}, fmt.Errorf("%w: DOI %s", source.ErrNotFound, d)
	}

	return source.Candidate{Entry: c.mapWork(work), Score: work.Get("score").Float(), Source: Name}, nil
}
