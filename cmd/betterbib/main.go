// Package main provides the betterbib CLI entry point.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)

	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	)
	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(ExitError)
	}
}
