// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotandev/wasmgraph/internal/callgraph"
	"github.com/dotandev/wasmgraph/internal/db"
	"github.com/dotandev/wasmgraph/internal/logger"
	"github.com/dotandev/wasmgraph/internal/wasm"
)

var exportDBFlag string

var exportCmd = &cobra.Command{
	Use:   "export [flags] <file.wasm>...",
	Short: "Persist call graphs to a SQLite database",
	Long: `Decode each module, build its call graph, and append it to a SQLite
database for offline querying. Re-exporting a file inserts a new module
row; earlier exports are kept.

Example:
  wasmgraph export --db graphs.db app.wasm
  wasmgraph export app.wasm lib.wasm`,
	Args: cobra.MinimumNArgs(1),
	RunE: exportExec,
}

func exportExec(cmd *cobra.Command, args []string) error {
	dbPath := exportDBFlag
	if dbPath == "" {
		dbPath = loadedConfig().DatabasePath
	}

	store, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	failed := 0
	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			failurePrint.Fprintf(errOut, "wasmgraph: %v\n", err)
			failed++
			continue
		}

		id, err := exportModule(store, file, data)
		if err != nil {
			failurePrint.Fprintf(errOut, "wasmgraph: %s: %v\n", file, err)
			failed++
			continue
		}

		logger.Logger.Debug("exported module", "file", file, "module_id", id)
		fmt.Fprintf(out, "%s: saved as module %d in %s\n", file, id, dbPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

// exportModule decodes one binary and persists its resolved graph.
func exportModule(store *db.Store, file string, data []byte) (int64, error) {
	mod, err := wasm.ParseModule(data)
	if err != nil {
		return 0, err
	}
	callgraph.ResolveNames(mod, callgraph.SymbolTable{})

	g, err := callgraph.Build(mod)
	if err != nil {
		return 0, err
	}

	return store.SaveGraph(file, g)
}

func init() {
	exportCmd.Flags().StringVar(&exportDBFlag, "db", "", "SQLite database path (default from config, ~/.wasmgraph/graphs.db)")
	rootCmd.AddCommand(exportCmd)
}
