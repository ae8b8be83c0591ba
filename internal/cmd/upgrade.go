// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotandev/wasmgraph/internal/updater"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Check whether a newer release is available",
	Long: `Query the wasmgraph GitHub releases and compare against the running
version. Nothing is downloaded; when an upgrade exists the install
command is printed.

Example:
  wasmgraph upgrade`,
	Args: cobra.NoArgs,
	RunE: upgradeExec,
}

func upgradeExec(cmd *cobra.Command, args []string) error {
	checker := updater.NewChecker(Version)

	latest, err := checker.LatestVersion(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching latest release: %w", err)
	}

	needsUpdate, err := checker.NeedsUpdate(latest)
	if err != nil {
		return fmt.Errorf("comparing versions: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), formatUpgradeReport(Version, latest, needsUpdate))
	return nil
}

func formatUpgradeReport(current, latest string, needsUpdate bool) string {
	if !needsUpdate {
		return fmt.Sprintf("wasmgraph %s is up to date (latest release: %s)\n", current, latest)
	}
	return fmt.Sprintf("A new version is available: %s (running %s)\n"+
		"Run 'go install github.com/dotandev/wasmgraph@latest' to upgrade.\n", latest, current)
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
}
