package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/betterbib/internal/doi"
	"github.com/matsen/betterbib/internal/reference"
)

type dedupFlags struct {
	formatFlags
	keepDOI bool
}

func newDedupDOICmd(a *app) *cobra.Command {
	f := &dedupFlags{}
	cmd := &cobra.Command{
		Use:   "dedup-doi [in] [out]",
		Short: "Drop DOI fields that duplicate the url",
		Long: `When an entry's url is the resolver URL of its own DOI, one of the two
fields is redundant. By default the doi field is dropped; with --keep-doi
the url is dropped instead.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			var n int
			for i := range coll.Entries {
				if dedupDOI(&coll.Entries[i], f.keepDOI) {
					n++
				}
			}
			a.logger.Info("deduplicated", "entries", n)
			return a.writeOutput(out, coll.Entries, opts)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVarP(&f.keepDOI, "keep-doi", "k", false, "Drop the url instead of the doi")
	return cmd
}

// dedupDOI removes the redundant field and reports whether it did.
func dedupDOI(e *reference.Entry, keepDOI bool) bool {
	d, url := e.Get("doi"), e.Get("url")
	if d == "" || url == "" || !doi.Equal(d, doi.FromURL(url)) {
		return false
	}
	if keepDOI {
		e.Delete("url")
	} else {
		e.Delete("doi")
	}
	return true
}
