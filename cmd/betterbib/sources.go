package main

import (
	"fmt"

	"github.com/matsen/betterbib/internal/cache"
	"github.com/matsen/betterbib/internal/config"
	"github.com/matsen/betterbib/internal/crossref"
	"github.com/matsen/betterbib/internal/dblp"
	"github.com/matsen/betterbib/internal/source"
)

// newSource builds the client for a source name. Tests replace it.
var newSource = func(name string, cfg *config.Config) (source.Source, error) {
	hc := source.NewHTTPClient(cfg.Timeout, cfg.RateLimit(name))
	switch name {
	case source.NameCrossref:
		return crossref.NewClient(
			crossref.WithHTTPClient(hc),
			crossref.WithMailto(cfg.Mailto),
			crossref.WithRows(cfg.Rows),
			crossref.WithLongJournalName(cfg.LongJournalName),
		), nil
	case source.NameDBLP:
		return dblp.NewClient(
			dblp.WithHTTPClient(hc),
			dblp.WithHits(cfg.Rows),
		), nil
	}
	return nil, withCode(ExitConfigError, "unknown source %q", name)
}

// openSource builds the configured source, wrapped in the response cache
// when a cache path is set. The returned close function is never nil.
func (a *app) openSource(name string) (source.Source, func(), error) {
	src, err := newSource(name, a.cfg)
	if err != nil {
		return nil, func() {}, err
	}
	if a.cfg.CachePath == "" {
		return src, func() {}, nil
	}

	db, err := cache.OpenDB(a.cfg.CachePath, a.cfg.CacheTTL)
	if err != nil {
		return nil, func() {}, withCode(ExitConfigError, "opening cache: %v", err)
	}
	if n, err := db.Prune(); err != nil {
		a.logger.Warn("pruning cache", "err", err)
	} else if n > 0 {
		a.logger.Debug("pruned cache", "expired", n)
	}
	a.logger.Debug("using response cache", "path", a.cfg.CachePath)
	return cache.Wrap(src, db, cache.WithLogger(a.logger)), func() { db.Close() }, nil
}

// sourceLabel names a source in user-facing messages.
func sourceLabel(name string) string {
	switch name {
	case source.NameDBLP:
		return dblp.Name
	case source.NameCrossref:
		return crossref.Name
	}
	return fmt.Sprintf("%q", name)
}
