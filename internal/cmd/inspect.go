// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotandev/wasmgraph/internal/callgraph"
	"github.com/dotandev/wasmgraph/internal/contractspec"
	"github.com/dotandev/wasmgraph/internal/wasm"
)

var inspectHeading = color.New(color.Bold)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.wasm>...",
	Short: "Summarize a module without printing its chains",
	Long: `Print a per-module summary: function and edge counts, exports, and the
start function. Modules carrying a Soroban "contractspecv0" custom
section additionally get their declared contract functions, decoded
from the embedded XDR spec entries and checked against the module's
exports.

Example:
  wasmgraph inspect app.wasm
  wasmgraph inspect target/wasm32-unknown-unknown/release/*.wasm`,
	Args: cobra.MinimumNArgs(1),
	RunE: inspectExec,
}

func inspectExec(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	failed := 0
	printed := false
	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			failurePrint.Fprintf(errOut, "wasmgraph: %v\n", err)
			failed++
			continue
		}

		report, err := inspectReport(data)
		if err != nil {
			failurePrint.Fprintf(errOut, "wasmgraph: %s: %v\n", file, err)
			failed++
			continue
		}

		if printed {
			fmt.Fprintln(out)
		}
		inspectHeading.Fprintln(out, file)
		fmt.Fprint(out, report)
		printed = true
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

// inspectReport renders the summary body for one decoded module.
func inspectReport(data []byte) (string, error) {
	mod, err := wasm.ParseModule(data)
	if err != nil {
		return "", err
	}
	callgraph.ResolveNames(mod, callgraph.SymbolTable{})

	g, err := callgraph.Build(mod)
	if err != nil {
		return "", err
	}

	edges := 0
	for _, out := range g.Edges {
		edges += len(out)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  Functions: %d (%d imported, %d defined)\n",
		len(mod.Functions), mod.NumImports, mod.NumDefined())
	fmt.Fprintf(&b, "  Edges:     %d\n", edges)
	if mod.Start != nil && int(*mod.Start) < len(mod.Functions) {
		fmt.Fprintf(&b, "  Start:     %s\n", mod.Functions[*mod.Start].Resolved)
	}

	// Exported functions, by display name. The raw export names also
	// feed the contract spec cross-reference below.
	exported := make(map[string]bool)
	var exports []string
	for i := range mod.Functions {
		fn := &mod.Functions[i]
		if fn.ExportName == "" {
			continue
		}
		exports = append(exports, fn.Resolved)
		exported[fn.ExportName] = true
		exported[fn.Resolved] = true
	}
	if len(exports) > 0 {
		fmt.Fprintf(&b, "\nExports (%d):\n", len(exports))
		for _, name := range exports {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}

	section, err := contractspec.ExtractCustomSection(data, contractspec.SpecSectionName)
	if err != nil {
		return "", err
	}
	if section == nil {
		return b.String(), nil
	}

	spec, err := contractspec.DecodeContractSpec(section)
	if err != nil {
		return "", err
	}
	if len(spec.Functions) > 0 {
		fmt.Fprintf(&b, "\nContract functions (%d):\n", len(spec.Functions))
		for _, fn := range spec.Functions {
			line := contractspec.FormatFunction(fn)
			if !exported[string(fn.Name)] {
				line += "  (not exported)"
			}
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	return b.String(), nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
