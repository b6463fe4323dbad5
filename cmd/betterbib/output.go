package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/betterbib/internal/export"
	"github.com/matsen/betterbib/internal/reference"
)

// formatFlags are the output options shared by commands that write BibTeX.
type formatFlags struct {
	sortByKey bool
	tabs      bool
	delimiter string
	inPlace   bool
}

func (f *formatFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.sortByKey, "sort-by-bibkey", "b", false, "Sort entries by citation key")
	cmd.Flags().BoolVarP(&f.tabs, "tabs-indent", "t", false, "Indent fields with tabs instead of spaces")
	cmd.Flags().StringVarP(&f.delimiter, "delimiter-type", "d", "braces", "Field delimiters: braces or quotes")
	cmd.Flags().BoolVarP(&f.inPlace, "in-place", "i", false, "Overwrite the input file")
}

func (f *formatFlags) options() (export.WriteOptions, error) {
	d, err := export.ParseDelimiter(f.delimiter)
	if err != nil {
		return export.WriteOptions{}, withCode(ExitError, "%v", err)
	}
	return export.WriteOptions{
		Delimiter: d,
		Tabs:      f.tabs,
		SortByKey: f.sortByKey,
		Header:    fmt.Sprintf("This file was created with betterbib %s.", Version),
	}, nil
}

// ioPaths resolves the [in] [out] arguments. A missing or "-" input reads
// stdin; a missing output writes stdout unless editing in place.
func (f *formatFlags) ioPaths(args []string) (in, out string, err error) {
	in, out = "-", "-"
	if len(args) > 0 {
		in = args[0]
	}
	if len(args) > 1 {
		out = args[1]
	}
	if f.inPlace {
		if in == "-" || len(args) > 1 {
			return "", "", withCode(ExitError, "--in-place needs exactly one input file")
		}
		out = in
	}
	return in, out, nil
}

// readInput parses BibTeX from a file or stdin and logs parser warnings.
func (a *app) readInput(path string) (reference.Collection, error) {
	var (
		coll     reference.Collection
		warnings []string
		err      error
	)
	if path == "-" {
		coll, warnings, err = export.Parse(a.stdin)
	} else {
		coll, warnings, err = export.ParseFile(path)
	}
	if err != nil {
		return reference.Collection{}, withCode(ExitDataError, "reading %s: %v", path, err)
	}
	for _, w := range warnings {
		a.logger.Warn(w)
	}
	return coll, nil
}

// writeOutput writes entries to a file or stdout.
func (a *app) writeOutput(path string, entries []reference.Entry, opts export.WriteOptions) error {
	var buf bytes.Buffer
	if err := export.Write(&buf, entries, opts); err != nil {
		return withCode(ExitDataError, "formatting output: %v", err)
	}
	if path == "-" {
		_, err := io.Copy(a.stdout, &buf)
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return withCode(ExitDataError, "writing %s: %v", path, err)
	}
	return nil
}

// outputJSON writes a value as formatted JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
