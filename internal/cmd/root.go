// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotandev/wasmgraph/internal/analyze"
	"github.com/dotandev/wasmgraph/internal/config"
	"github.com/dotandev/wasmgraph/internal/errors"
	"github.com/dotandev/wasmgraph/internal/logger"
	"github.com/dotandev/wasmgraph/internal/shutdown"
	"github.com/dotandev/wasmgraph/internal/updater"
)

// Analysis flag variables
var (
	srcFlag          []string
	dstFlag          []string
	envSymbolsFlag   string
	implicitCallFlag []string
	pathsFlag        string
	leavesOnlyFlag   bool
	filenameFlag     string
	demangleFlag     bool
)

// Persistent flag variables
var (
	verboseFlag bool
	noColorFlag bool
)

// pathsAll is what a bare --paths parses to: print every tree unpruned.
const pathsAll = "*"

// failurePrint renders per-file failure reports on stderr.
var failurePrint = color.New(color.FgRed)

// currentConfig is loaded once per invocation in PersistentPreRunE.
var currentConfig *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wasmgraph [flags] <file.wasm>...",
	Short: "Static call-graph analyzer for WebAssembly modules",
	Long: `Wasmgraph decodes WebAssembly binaries and prints their static call
graph, one call chain per line, without executing any code.

Key features:
  - Enumerate every acyclic call chain, or only those touching given functions
  - Unroll the graph into per-function call trees and prune them with
    ".."-separated path patterns
  - Translate host import names through a JSON symbol table
  - Model host-side callbacks with --implicit-call import:export edges
  - Persist graphs to SQLite and serve analyses over JSON-RPC

Examples:
  wasmgraph app.wasm                          All call chains
  wasmgraph -s main -d env.log app.wasm       Chains from main into env.log
  wasmgraph --paths app.wasm                  One call tree per function
  wasmgraph --paths=main..log app.wasm        Trees pruned to main..log paths
  wasmgraph --leaves-only -s main app.wasm    Only start,import endpoints

Get started with 'wasmgraph --help' or 'wasmgraph inspect <file.wasm>'.`,
	Args: cobra.MinimumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			// Non-fatal: run with defaults rather than refusing to start.
			logger.Logger.Warn("Falling back to default config", "error", err)
			cfg = config.DefaultConfig()
		}
		currentConfig = cfg

		if verboseFlag {
			logger.SetLevel(slog.LevelDebug)
		} else if cfg.LogLevel != "" {
			logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
		}

		if noColorFlag || cfg.NoColor {
			color.NoColor = true
		}

		// Check for updates asynchronously (non-blocking)
		checkForUpdatesAsync()

		return nil
	},
	RunE:          analyzeExec,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command under a signal-aware context. This is
// called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	coordinator := shutdown.NewCoordinator()
	setShutdownCoordinator(coordinator)
	defer clearShutdownCoordinator()

	return executeWithSignals(ctx, cancel, sigCh, coordinator, func(execCtx context.Context) error {
		return rootCmd.ExecuteContext(execCtx)
	})
}

// executeWithSignals cancels the command context on the first signal,
// gives the command shutdownTimeout to wind down, and always runs the
// registered shutdown hooks exactly once before returning.
func executeWithSignals(ctx context.Context, cancel context.CancelFunc, sigCh <-chan os.Signal, coordinator *shutdown.Coordinator, exec func(context.Context) error) error {
	execDone := make(chan error, 1)
	go func() {
		execDone <- exec(ctx)
	}()

	select {
	case sig := <-sigCh:
		logger.Logger.Debug("Interrupt received", "signal", fmt.Sprint(sig))
		cancel()
		select {
		case <-execDone:
		case <-time.After(shutdownTimeout):
			logger.Logger.Warn("Command did not stop after interrupt", "timeout", shutdownTimeout)
		}
		runShutdownHooksWithTimeout(coordinator, shutdownTimeout)
		return ErrInterrupted
	case err := <-execDone:
		runShutdownHooksWithTimeout(coordinator, shutdownTimeout)
		return err
	}
}

// loadedConfig returns the invocation config, or defaults when a
// command function is called without going through Execute.
func loadedConfig() *config.Config {
	if currentConfig != nil {
		return currentConfig
	}
	return config.DefaultConfig()
}

// checkForUpdatesAsync runs the update check in a goroutine to not block CLI startup
func checkForUpdatesAsync() {
	go func() {
		checker := updater.NewChecker(Version)
		checker.CheckForUpdates()
	}()
}

func analyzeExec(cmd *cobra.Command, args []string) error {
	opts := analyze.Options{
		Files:         args,
		Src:           srcFlag,
		Dst:           dstFlag,
		EnvSymbols:    envSymbolsFlag,
		ImplicitCalls: implicitCallFlag,
		PathsMode:     cmd.Flags().Changed("paths"),
		Pattern:       pathsFlag,
		LeavesOnly:    leavesOnlyFlag,
		Demangle:      demangleFlag,
	}
	if opts.Pattern == pathsAll {
		opts.Pattern = ""
	}

	if cmd.Flags().Changed("filename") {
		show, err := parseBoolFlag("filename", filenameFlag)
		if err != nil {
			return err
		}
		opts.ShowFilename = &show
	}

	return analyze.Run(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// parseBoolFlag parses the value of a --flag[=BOOL] style flag.
func parseBoolFlag(name, raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, errors.WrapValidationError(
		fmt.Sprintf("--%s wants true/1/yes or false/0/no, got %q", name, raw))
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored diagnostics")

	rootCmd.Flags().StringArrayVarP(&srcFlag, "src", "s", nil, "Keep chains starting at this function (repeatable)")
	rootCmd.Flags().StringArrayVarP(&dstFlag, "dst", "d", nil, "Keep chains ending at this function (repeatable)")
	rootCmd.Flags().StringVar(&envSymbolsFlag, "env-symbols", "", "JSON table translating import names for display")
	rootCmd.Flags().StringArrayVar(&implicitCallFlag, "implicit-call", nil, "Add an implicit edge import:export (repeatable)")
	rootCmd.Flags().StringVar(&pathsFlag, "paths", "", "Print call trees; --paths=PATTERN prunes them to matching paths")
	rootCmd.Flags().Lookup("paths").NoOptDefVal = pathsAll
	rootCmd.Flags().BoolVar(&leavesOnlyFlag, "leaves-only", false, "Print only the start,import endpoints of chains")
	rootCmd.Flags().StringVar(&filenameFlag, "filename", "", "Prefix output lines with the file name")
	rootCmd.Flags().Lookup("filename").NoOptDefVal = "true"
	rootCmd.Flags().BoolVar(&demangleFlag, "demangle", false, "Demangle Rust symbol names for display")
}
