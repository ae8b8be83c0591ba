// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

// Package analyze runs the decode-resolve-graph-emit pipeline: once
// per input file for the CLI, once per posted module for the daemon.
package analyze

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/dotandev/wasmgraph/internal/callgraph"
	"github.com/dotandev/wasmgraph/internal/chains"
	"github.com/dotandev/wasmgraph/internal/demangle"
	"github.com/dotandev/wasmgraph/internal/errors"
	"github.com/dotandev/wasmgraph/internal/logger"
	"github.com/dotandev/wasmgraph/internal/pathtree"
	"github.com/dotandev/wasmgraph/internal/wasm"
)

// Options captures one CLI invocation.
type Options struct {
	Files         []string
	Src           []string
	Dst           []string
	EnvSymbols    string   // path to the symbol-translation JSON, "" for none
	ImplicitCalls []string // raw import:export hint specs
	PathsMode     bool     // --paths was given, with or without a pattern
	Pattern       string   // pattern following --paths=, "" for none
	LeavesOnly    bool
	ShowFilename  *bool // nil = prefix when more than one file
	Demangle      bool
}

// ModuleOptions is the parsed, per-module form of Options. The daemon
// builds one straight from a request; Run builds one and reuses it for
// every file.
type ModuleOptions struct {
	Symbols    callgraph.SymbolTable
	Hints      []callgraph.Hint
	Src        callgraph.NameSet
	Dst        callgraph.NameSet
	Pattern    pathtree.Pattern
	PathsMode  bool
	LeavesOnly bool
	Demangle   bool
}

// Result is one module's analysis output.
type Result struct {
	Lines     []string
	Functions int
	Edges     int
}

var failureColor = color.New(color.FgRed)

// Run analyzes every file in opts sequentially. Configuration errors
// abort before the first file; a file that cannot be read or decoded
// is reported to errOut and skipped, and the run fails after the
// remaining files finish. With a src/dst/pattern filter active and no
// output produced at all, the error is ErrNoMatch.
func Run(opts Options, out, errOut io.Writer) error {
	mo, err := opts.parse()
	if err != nil {
		return err
	}

	show := len(opts.Files) > 1
	if opts.ShowFilename != nil {
		show = *opts.ShowFilename
	}

	total := 0
	failed := 0
	for _, file := range opts.Files {
		data, err := os.ReadFile(file)
		if err != nil {
			failureColor.Fprintf(errOut, "wasmgraph: %v\n", err)
			failed++
			continue
		}
		res, err := RunModule(data, mo)
		if err != nil {
			failureColor.Fprintf(errOut, "wasmgraph: %s: %v\n", file, err)
			failed++
			continue
		}
		logger.Logger.Debug("analyzed module",
			"file", file, "functions", res.Functions, "edges", res.Edges, "lines", len(res.Lines))
		prefix := ""
		if show {
			prefix = filepath.Base(file) + ":"
		}
		for _, line := range res.Lines {
			fmt.Fprintln(out, prefix+line)
		}
		total += len(res.Lines)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(opts.Files))
	}
	if opts.hasFilter() && total == 0 {
		return errors.ErrNoMatch
	}
	return nil
}

// hasFilter reports whether the invocation narrows output. Bare
// --paths and --leaves-only reshape output without narrowing it.
func (o Options) hasFilter() bool {
	return len(o.Src) > 0 || len(o.Dst) > 0 || o.Pattern != ""
}

// parse resolves everything that can fail before any file is touched.
func (o Options) parse() (ModuleOptions, error) {
	mo := ModuleOptions{
		Src:        callgraph.NewNameSet(o.Src),
		Dst:        callgraph.NewNameSet(o.Dst),
		PathsMode:  o.PathsMode,
		LeavesOnly: o.LeavesOnly,
		Demangle:   o.Demangle,
	}
	if o.EnvSymbols != "" {
		table, err := callgraph.LoadSymbolTable(o.EnvSymbols)
		if err != nil {
			return ModuleOptions{}, err
		}
		mo.Symbols = table
	}
	hints, err := callgraph.ParseHints(o.ImplicitCalls)
	if err != nil {
		return ModuleOptions{}, err
	}
	mo.Hints = hints
	pattern, err := pathtree.ParsePattern(o.Pattern)
	if err != nil {
		return ModuleOptions{}, err
	}
	mo.Pattern = pattern
	return mo, nil
}

// RunModule runs the pipeline on one module's raw bytes.
func RunModule(data []byte, o ModuleOptions) (Result, error) {
	mod, err := wasm.ParseModule(data)
	if err != nil {
		return Result{}, err
	}
	callgraph.ResolveNames(mod, o.Symbols)
	if o.Demangle {
		for i := range mod.Functions {
			mod.Functions[i].Resolved = demangle.DemangleSymbol(mod.Functions[i].Resolved)
		}
	}
	g, err := callgraph.Build(mod)
	if err != nil {
		return Result{}, err
	}
	g.ApplyHints(o.Hints)

	res := Result{Functions: len(mod.Functions)}
	for _, ee := range g.Edges {
		res.Edges += len(ee)
	}

	switch {
	case o.PathsMode:
		for _, tree := range pathtree.Build(g, o.Src) {
			if pruned := o.Pattern.Filter(tree); pruned != nil {
				res.Lines = append(res.Lines, pruned.String())
			}
		}
	case o.LeavesOnly:
		chains.WalkLeaves(g, o.Src, o.Dst, func(start, leaf uint32) {
			res.Lines = append(res.Lines,
				mod.Functions[start].Resolved+","+mod.Functions[leaf].Resolved)
		})
	default:
		chains.Walk(g, o.Src, o.Dst, func(chain []uint32) {
			names := make([]string, len(chain))
			for i, idx := range chain {
				names[i] = mod.Functions[idx].Resolved
			}
			res.Lines = append(res.Lines, strings.Join(names, ","))
		})
	}
	return res, nil
}
