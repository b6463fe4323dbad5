package source

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by sources and the matcher.
var (
	// ErrNotFound indicates no candidate was a confident match, or an
	// identifier lookup found nothing.
	ErrNotFound = errors.New("no matching entry found")

	// ErrNotUnique indicates several candidates matched equally well.
	ErrNotUnique = errors.New("no unique match")

	// ErrHTTP indicates a transport or protocol failure talking to a source.
	ErrHTTP = errors.New("source request failed")
)

// UniqueError reports that more than one candidate is plausibly correct.
type UniqueError struct {
	Candidates []Candidate // the tied candidates, best first
}

func (e *UniqueError) Error() string {
	titles := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		t := c.Entry.Get("title")
		if t == "" {
			t = "(untitled)"
		}
		if d := c.Entry.Get("doi"); d != "" {
			t += " [" + d + "]"
		}
		titles = append(titles, t)
	}
	return fmt.Sprintf("%d plausible matches: %s", len(e.Candidates), strings.Join(titles, "; "))
}

func (e *UniqueError) Unwrap() error {
	return ErrNotUnique
}

// HTTPError represents a failed request to a source.
type HTTPError struct {
	Source     string
	StatusCode int // 0 for transport failures and malformed bodies
	Message    string
}

func (e *HTTPError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return ErrHTTP
}

// IsNotFound returns true if the error indicates no match was found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNotUnique returns true if the error indicates an ambiguous match.
func IsNotUnique(err error) bool {
	return errors.Is(err, ErrNotUnique)
}

// IsHTTP returns true if the error is a source transport failure.
func IsHTTP(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}
