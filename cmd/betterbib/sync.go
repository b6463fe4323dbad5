package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/betterbib/internal/batch"
	"github.com/matsen/betterbib/internal/cache"
	"github.com/matsen/betterbib/internal/match"
	"github.com/matsen/betterbib/internal/merge"
)

type syncFlags struct {
	formatFlags
	source      string
	longJournal bool
	concurrency int
	tau         float64
	epsilon     float64
	cachePath   string
	noCache     bool
	json        bool
}

func newSyncCmd(a *app) *cobra.Command {
	f := &syncFlags{}
	cmd := &cobra.Command{
		Use:   "sync [in] [out]",
		Short: "Update entries with data from an online source",
		Long: `Look up every entry in Crossref (default) or DBLP and merge the unique
match into it. Entries without a confident unique match are left as they
are. Reads stdin and writes stdout when no files are given.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSync(cmd, f, args)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Source to query: crossref or dblp")
	cmd.Flags().BoolVarP(&f.longJournal, "long-journal-name", "l", false, "Prefer long journal names")
	cmd.Flags().IntVarP(&f.concurrency, "num-concurrent-requests", "c", 0, "Number of concurrent requests (default from config, 10)")
	cmd.Flags().Float64Var(&f.tau, "tau", 0, "Minimum score for a match (default from config, 0.8)")
	cmd.Flags().Float64Var(&f.epsilon, "epsilon", 0, "Score gap below which matches are ambiguous (default from config, 0.05)")
	cmd.Flags().StringVar(&f.cachePath, "cache", "", "SQLite response cache path")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Do not use the response cache")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print the summary as JSON")
	return cmd
}

// applyFlags overrides config values with the flags the user set.
func (f *syncFlags) applyFlags(a *app, cmd *cobra.Command) error {
	c := a.cfg
	flags := cmd.Flags()
	if flags.Changed("source") {
		c.Source = f.source
	}
	if flags.Changed("long-journal-name") {
		c.LongJournalName = f.longJournal
	}
	if flags.Changed("num-concurrent-requests") {
		c.Concurrency = f.concurrency
	}
	if flags.Changed("tau") {
		c.Tau = f.tau
	}
	if flags.Changed("epsilon") {
		c.Epsilon = f.epsilon
	}
	switch {
	case f.noCache:
		c.CachePath = ""
	case flags.Changed("cache"):
		if f.cachePath == "default" {
			p, err := cache.DefaultPath()
			if err != nil {
				return withCode(ExitConfigError, "%v", err)
			}
			c.CachePath = p
		} else {
			c.CachePath = f.cachePath
		}
	}
	if err := c.Validate(); err != nil {
		return withCode(ExitConfigError, "%v", err)
	}
	return nil
}

// syncSummary is the --json form of the report.
type syncSummary struct {
	Source    string        `json:"source"`
	Report    batch.Report  `json:"report"`
	Unmatched []syncProblem `json:"unmatched,omitempty"`
}

type syncProblem struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (a *app) runSync(cmd *cobra.Command, f *syncFlags, args []string) error {
	if err := f.applyFlags(a, cmd); err != nil {
		return err
	}
	opts, err := f.options()
	if err != nil {
		return err
	}
	in, out, err := f.ioPaths(args)
	if err != nil {
		return err
	}

	coll, err := a.readInput(in)
	if err != nil {
		return err
	}

	src, closeSource, err := a.openSource(a.cfg.Source)
	if err != nil {
		return err
	}
	defer closeSource()

	m := match.Default()
	m.Tau, m.Epsilon = a.cfg.Tau, a.cfg.Epsilon

	outcomes, report := batch.Run(cmd.Context(), src, coll.Entries, batch.Options{
		Concurrency: a.cfg.Concurrency,
		Matcher:     m,
		Merge:       merge.Options{Protected: a.cfg.ProtectedFields},
		Logger:      a.logger,
	})

	if err := a.writeOutput(out, batch.Entries(outcomes), opts); err != nil {
		return err
	}

	if f.json {
		summary := syncSummary{Source: src.Name(), Report: report}
		for i, o := range outcomes {
			if o.Status != batch.StatusFound {
				p := syncProblem{Key: coll.Entries[i].Key, Status: o.Status.String()}
				if o.Err != nil {
					p.Error = o.Err.Error()
				}
				summary.Unmatched = append(summary.Unmatched, p)
			}
		}
		return outputJSON(a.stderr, summary)
	}

	fmt.Fprintf(a.stderr, "%s: found %d of %d entries", sourceLabel(a.cfg.Source), report.Found, report.Total)
	fmt.Fprintf(a.stderr, " (%d not found, %d ambiguous, %d failed)\n", report.NotFound, report.Ambiguous, report.Failed)
	if report.Failed > 0 && report.Found == 0 {
		a.logger.Warn("every lookup failed; check your network connection", "source", src.Name())
	}
	return nil
}
