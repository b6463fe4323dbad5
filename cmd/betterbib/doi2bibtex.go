package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/betterbib/internal/doi"
	"github.com/matsen/betterbib/internal/export"
	"github.com/matsen/betterbib/internal/match"
	"github.com/matsen/betterbib/internal/pdf"
	"github.com/matsen/betterbib/internal/reference"
	"github.com/matsen/betterbib/internal/source"
)

type doi2bibtexFlags struct {
	formatFlags
	source string
	append string
}

func newDOI2BibTeXCmd(a *app) *cobra.Command {
	f := &doi2bibtexFlags{}
	cmd := &cobra.Command{
		Use:   "doi2bibtex <doi|pdf>...",
		Short: "Turn DOIs or article PDFs into BibTeX entries",
		Long: `Look up each DOI and print a BibTeX entry with a generated citation key.
An argument naming a PDF file is scanned for its DOI; if the PDF has none,
its title is searched for instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDOI2BibTeX(cmd, f, args)
		},
	}
	cmd.Flags().BoolVarP(&f.sortByKey, "sort-by-bibkey", "b", false, "Sort entries by citation key")
	cmd.Flags().BoolVarP(&f.tabs, "tabs-indent", "t", false, "Indent fields with tabs instead of spaces")
	cmd.Flags().StringVarP(&f.delimiter, "delimiter-type", "d", "braces", "Field delimiters: braces or quotes")
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Source to query: crossref or dblp")
	cmd.Flags().StringVarP(&f.append, "append", "a", "", "Append new entries to this .bib file, skipping DOIs it already has")
	return cmd
}

// identifier is one resolved command-line argument: a DOI, or a title
// when a PDF has no DOI.
type identifier struct {
	arg   string
	doi   string
	title string
}

func resolveArg(arg string) (identifier, error) {
	id := identifier{arg: arg}
	if strings.EqualFold(filepath.Ext(arg), ".pdf") {
		if _, err := os.Stat(arg); err != nil {
			return id, err
		}
		d, err := pdf.ExtractDOI(arg)
		if err != nil {
			return id, err
		}
		if d != "" {
			id.doi = d
			return id, nil
		}
		id.title, err = pdf.ExtractTitle(arg)
		if err != nil || id.title == "" {
			return id, withCode(ExitLookupError, "%s: no DOI or title found in PDF", arg)
		}
		return id, nil
	}
	id.doi = doi.Normalize(arg)
	if !doi.IsDOI(id.doi) {
		return id, withCode(ExitLookupError, "%s: not a DOI", arg)
	}
	return id, nil
}

func (a *app) runDOI2BibTeX(cmd *cobra.Command, f *doi2bibtexFlags, args []string) error {
	name := a.cfg.Source
	if f.source != "" {
		name = f.source
	}
	opts, err := f.options()
	if err != nil {
		return err
	}

	idx := export.NewIndex(nil)
	if f.append != "" {
		if idx, err = export.IndexFile(f.append); err != nil {
			return withCode(ExitDataError, "reading %s: %v", f.append, err)
		}
		opts.Header = ""
	}

	src, closeSource, err := a.openSource(name)
	if err != nil {
		return err
	}
	defer closeSource()

	m := match.Default()
	m.Tau, m.Epsilon = a.cfg.Tau, a.cfg.Epsilon

	var entries []reference.Entry
	var failed int
	seen := make(map[string]bool)
	for _, arg := range args {
		logger := a.logger.With("arg", arg)
		id, err := resolveArg(arg)
		if err != nil {
			logger.Error("cannot resolve", "err", err)
			failed++
			continue
		}

		var c source.Candidate
		if id.doi != "" {
			c, err = src.GetByID(cmd.Context(), id.doi)
		} else {
			logger.Info("no DOI in PDF, searching by title", "title", id.title)
			probe := reference.NewEntry(reference.TypeMisc, "")
			probe.Set("title", id.title)
			c, err = m.FindUnique(cmd.Context(), src, probe)
		}
		if err != nil {
			logger.Error("lookup failed", "err", err)
			failed++
			continue
		}

		d := doi.Normalize(c.Entry.Get("doi"))
		if idx.HasEntry("", d) || (d != "" && seen[d]) {
			logger.Info("already present, skipping", "doi", d)
			continue
		}
		seen[d] = true
		entries = append(entries, c.Entry)
	}

	export.AssignKeys(entries, idx)

	if f.append != "" {
		if len(entries) > 0 {
			if err := export.AppendToBibFile(f.append, export.ToBibTeXList(entries, opts)); err != nil {
				return withCode(ExitDataError, "writing %s: %v", f.append, err)
			}
		}
	} else if err := a.writeOutput("-", entries, opts); err != nil {
		return err
	}

	if failed > 0 {
		return withCode(ExitLookupError, "%d of %d identifiers could not be resolved", failed, len(args))
	}
	return nil
}
