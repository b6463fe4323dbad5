package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/betterbib/internal/journal"
)

type journalFlags struct {
	formatFlags
	long bool
}

func newJournalAbbrevCmd(a *app) *cobra.Command {
	f := &journalFlags{}
	cmd := &cobra.Command{
		Use:   "journal-abbrev [in] [out]",
		Short: "Abbreviate journal names",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out, err := f.ioPaths(args)
			if err != nil {
				return err
			}
			opts, err := f.options()
			if err != nil {
				return err
			}
			dict, err := journal.Default()
			if err != nil {
				return withCode(ExitError, "loading journal dictionary: %v", err)
			}
			coll, err := a.readInput(in)
			if err != nil {
				return err
			}

			lookup := dict.Abbreviate
			if f.long {
				lookup = dict.Expand
			}
			for i := range coll.Entries {
				e := &coll.Entries[i]
				name := e.Get("journal")
				if name == "" {
					continue
				}
				if repl, ok := lookup(name); ok {
					e.Set("journal", repl)
				} else {
					a.logger.Debug("journal not in dictionary", "key", e.Key, "journal", name)
				}
			}
			return a.writeOutput(out, coll.Entries, opts)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.long, "long", false, "Expand abbreviations to full journal names")
	return cmd
}
