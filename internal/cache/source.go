package cache

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matsen/betterbib/internal/doi"
	"github.com/matsen/betterbib/internal/logging"
	"github.com/matsen/betterbib/internal/reference"
	"github.com/matsen/betterbib/internal/source"
)

// Keyer is implemented by sources whose results depend on client
// settings, such as the number of rows or the journal-name style.
type Keyer interface {
	CacheKey() string
}

// Source serves lookups from the cache and forwards misses to the wrapped
// source. Failed lookups are never stored.
type Source struct {
	inner    source.Source
	db       *DB
	settings string
	logger   *log.Logger
}

// Option configures a caching Source.
type Option func(*Source)

// WithLogger sets the logger that reports cache write failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// Wrap returns a caching source in front of inner. Responses are only
// shared between sources with the same name and settings.
func Wrap(inner source.Source, db *DB, opts ...Option) *Source {
	s := &Source{inner: inner, db: db, logger: logging.Discard()}
	if k, ok := inner.(Keyer); ok {
		s.settings = k.CacheKey()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements source.Source.
func (s *Source) Name() string {
	return s.inner.Name()
}

// searchKey identifies a search by everything the sources put in a query.
func searchKey(e *reference.Entry) string {
	return strings.Join([]string{
		source.QueryTerms(e),
		e.Container(),
		string(e.Type),
	}, "\x1f")
}

func (s *Source) key(k string) string {
	return s.settings + "\x1f" + k
}

func (s *Source) put(kind, key string, cands []source.Candidate) {
	// A failed write only costs a future request.
	if err := s.db.Put(s.Name(), kind, key, cands); err != nil {
		s.logger.Debug("cache write failed", "source", s.Name(), "kind", kind, "err", err)
	}
}

// Search implements source.Source.
func (s *Source) Search(ctx context.Context, e reference.Entry) ([]source.Candidate, error) {
	key := s.key(searchKey(&e))
	if cands, ok, err := s.db.Get(s.Name(), KindSearch, key); err == nil && ok {
		return cands, nil
	}

	cands, err := s.inner.Search(ctx, e)
	if err != nil {
		return nil, err
	}
	s.put(KindSearch, key, cands)
	return cands, nil
}

// GetByID implements source.Source.
func (s *Source) GetByID(ctx context.Context, id string) (source.Candidate, error) {
	key := s.key(doi.Normalize(id))
	if cands, ok, err := s.db.Get(s.Name(), KindID, key); err == nil && ok && len(cands) == 1 {
		return cands[0], nil
	}

	c, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return source.Candidate{}, err
	}
	s.put(KindID, key, []source.Candidate{c})
	return c, nil
}
