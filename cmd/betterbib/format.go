package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/betterbib/internal/doi"
	"github.com/matsen/betterbib/internal/reference"
)

// DOI URL styles for format -u.
const (
	doiURLUnchanged = "unchanged"
	doiURLNew       = "new"
	doiURLShort     = "short"
)

type formatCmdFlags struct {
	formatFlags
	doiURLType string
}

// shortDOIBaseURL is overridden in tests.
var shortDOIBaseURL = doi.ShortDOIBaseURL

func newFormatCmd(a *app) *cobra.Command {
	f := &formatCmdFlags{}
	cmd := &cobra.Command{
		Use:   "format [in] [out]",
		Short: "Reformat a BibTeX file without querying metadata sources",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFormat(cmd.Context(), f, args)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&f.doiURLType, "doi-url-type", "u", doiURLUnchanged, "DOI URL style: unchanged, new or short")
	return cmd
}

func (a *app) runFormat(ctx context.Context, f *formatCmdFlags, args []string) error {
	switch f.doiURLType {
	case doiURLUnchanged, doiURLNew, doiURLShort:
	default:
		return withCode(ExitError, "invalid --doi-url-type %q (want unchanged, new or short)", f.doiURLType)
	}
	in, out, err := f.ioPaths(args)
	if err != nil {
		return err
	}
	opts, err := f.options()
	if err != nil {
		return err
	}
	coll, err := a.readInput(in)
	if err != nil {
		return err
	}

	var shorten func(context.Context, string) (string, error)
	if f.doiURLType == doiURLShort {
		shorten = doi.NewShortClient(shortDOIBaseURL).Short
	}
	for i := range coll.Entries {
		if err := rewriteDOIURL(ctx, &coll.Entries[i], f.doiURLType, shorten); err != nil {
			a.logger.Warn("keeping url", "key", coll.Entries[i].Key, "err", err)
		}
	}
	return a.writeOutput(out, coll.Entries, opts)
}

// rewriteDOIURL sets the url of an entry with a DOI to the resolver URL in
// the requested style. A url that points somewhere other than a DOI
// resolver is left alone.
func rewriteDOIURL(ctx context.Context, e *reference.Entry, style string, shorten func(context.Context, string) (string, error)) error {
	if style == doiURLUnchanged {
		return nil
	}
	url := e.Get("url")
	d := e.Get("doi")
	if d == "" {
		d = doi.FromURL(url)
	}
	if d == "" || (url != "" && doi.FromURL(url) == "") {
		return nil
	}

	target := doi.Normalize(d)
	if style == doiURLShort {
		short, err := shorten(ctx, target)
		if err != nil {
			return err
		}
		if short == "" {
			return fmt.Errorf("no short DOI for %s", target)
		}
		target = short
	}
	e.Set("url", doi.URL(target))
	return nil
}
