// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotandev/wasmgraph/internal/daemon"
	"github.com/dotandev/wasmgraph/internal/telemetry"
)

var (
	servePort      string
	serveAuthToken string
	serveTracing   bool
	serveOTLPURL   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a JSON-RPC server for remote graph analysis",
	Long: `Start a JSON-RPC 2.0 server that exposes wasmgraph analyses to remote tools
and CI pipelines.

Endpoints:
  - Graph.Analyze: run the chain or tree analysis on a posted module
  - /health: liveness probe

Example:
  wasmgraph serve --port 8080
  wasmgraph serve --port 8080 --auth-token secret123
  wasmgraph serve --tracing --otlp-url http://localhost:4318`,
	Args: cobra.NoArgs,
	RunE: serveExec,
}

func serveExec(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadedConfig()

	port := servePort
	if port == "" {
		port = cfg.DaemonPort
	}
	authToken := serveAuthToken
	if authToken == "" {
		authToken = cfg.DaemonAuthToken
	}
	tracing := serveTracing || cfg.Tracing
	otlpURL := serveOTLPURL
	if otlpURL == "" {
		otlpURL = cfg.OTLPURL
	}

	// Initialize OpenTelemetry if enabled
	if tracing {
		cleanup, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     true,
			ExporterURL: otlpURL,
			ServiceName: "wasmgraph-daemon",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		registerShutdownHook("telemetry-flush", func(context.Context) error {
			cleanup()
			return nil
		})
	}

	server := daemon.NewServer(daemon.Config{
		Port:      port,
		AuthToken: authToken,
	})

	fmt.Printf("Starting wasmgraph daemon on port %s\n", port)
	if authToken != "" {
		fmt.Println("Authentication: enabled")
	}
	if tracing {
		fmt.Printf("Tracing: exporting to %s\n", otlpURL)
	}

	// The root command cancels ctx on SIGINT/SIGTERM; Start shuts the
	// listener down when that happens.
	return server.Start(ctx, port)
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (default from config, 8080)")
	serveCmd.Flags().StringVar(&serveAuthToken, "auth-token", "", "Bearer token required on /rpc requests")
	serveCmd.Flags().BoolVar(&serveTracing, "tracing", false, "Enable OpenTelemetry tracing")
	serveCmd.Flags().StringVar(&serveOTLPURL, "otlp-url", "", "OTLP exporter URL (default from config)")

	rootCmd.AddCommand(serveCmd)
}
