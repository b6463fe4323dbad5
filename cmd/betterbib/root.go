package main

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/betterbib/internal/config"
	"github.com/matsen/betterbib/internal/logging"
)

// app holds state shared by all subcommands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "betterbib",
		Short: "Fetch complete bibliography data from online sources",
		Long: `betterbib completes and corrects BibTeX entries.

It looks up each entry in Crossref or DBLP, accepts a match only when a
single candidate clearly fits, and merges the authoritative metadata into
the entry while keeping your own notes and citation keys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.setup()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/betterbib/config.yml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newSyncCmd(a),
		newDOI2BibTeXCmd(a),
		newFormatCmd(a),
		newDedupDOICmd(a),
		newJournalAbbrevCmd(a),
	)
	return cmd
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return withCode(ExitConfigError, "%v", err)
	}
	// Copy so flag overrides do not leak into the cached config.
	c := *cfg
	a.cfg = &c

	level := a.cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger, err := logging.New(a.stderr, level)
	if err != nil {
		return withCode(ExitConfigError, "%v", err)
	}
	a.logger = logger
	return nil
}
