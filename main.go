// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dotandev/wasmgraph/internal/cmd"
	"github.com/dotandev/wasmgraph/internal/errors"
)

// version is injected via -ldflags at release build time.
var version = "dev"

func main() {
	cmd.Version = version
	os.Exit(run(cmd.Execute, os.Stderr))
}

// run maps the root command's error to a process exit code. A filter
// that matched nothing fails without output, like grep.
func run(exec func() error, stderr io.Writer) int {
	err := exec()
	switch {
	case err == nil:
		return 0
	case cmd.IsInterrupted(err), cmd.IsCancellation(err):
		fmt.Fprintln(stderr, "Interrupted. Shutting down...")
		return cmd.InterruptExitCode
	case errors.Is(err, errors.ErrNoMatch):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}
