package doi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"
)

// ShortDOIBaseURL is the shortDOI service base URL.
const ShortDOIBaseURL = "https://shortdoi.org"

// ShortClient looks up short DOIs (e.g. 10/f44kd7) from shortdoi.org.
type ShortClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewShortClient creates a shortDOI client.
func NewShortClient(baseURL string) *ShortClient {
	if baseURL == "" {
		baseURL = ShortDOIBaseURL
	}
	return &ShortClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

// Short returns the short form of a DOI. The service creates one on demand,
// so an empty result means the response did not contain it.
func (c *ShortClient) Short(ctx context.Context, d string) (string, error) {
	var body string
	err := requests.
		URL(c.baseURL + "/" + Normalize(d)).
		Client(c.httpClient).
		Param("format", "json").
		Accept("application/json").
		ToString(&body).
		Fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching short DOI for %s: %w", d, err)
	}
	if !gjson.Valid(body) {
		return "", fmt.Errorf("fetching short DOI for %s: invalid JSON response", d)
	}
	return gjson.Get(body, "ShortDOI").String(), nil
}
