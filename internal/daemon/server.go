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

package daemon

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dotandev/wasmgraph/internal/analyze"
	"github.com/dotandev/wasmgraph/internal/callgraph"
	"github.com/dotandev/wasmgraph/internal/errors"
	"github.com/dotandev/wasmgraph/internal/logger"
	"github.com/dotandev/wasmgraph/internal/pathtree"
	"github.com/dotandev/wasmgraph/internal/telemetry"
)

// Server represents the JSON-RPC daemon server
type Server struct {
	authToken string
}

// Config holds daemon configuration
type Config struct {
	Port      string
	AuthToken string
}

// AnalyzeRequest represents the Graph.Analyze RPC request. A non-empty
// pattern switches the response to call-tree lines, mirroring
// --paths=PATTERN on the command line.
type AnalyzeRequest struct {
	WasmBase64     string   `json:"wasm_base64"`
	Src            []string `json:"src"`
	Dst            []string `json:"dst"`
	Pattern        string   `json:"pattern"`
	ImplicitCalls  []string `json:"implicit_calls"`
	LeavesOnly     bool     `json:"leaves_only"`
	EnvSymbolsJSON string   `json:"env_symbols_json"`
}

// AnalyzeResponse represents the Graph.Analyze RPC response
type AnalyzeResponse struct {
	Lines     []string `json:"lines"`
	Functions int      `json:"functions"`
	Edges     int      `json:"edges"`
	NoMatch   bool     `json:"no_match"`
}

// NewServer creates a new JSON-RPC server
func NewServer(config Config) *Server {
	return &Server{authToken: config.AuthToken}
}

// authenticate validates the authorization token
func (s *Server) authenticate(r *http.Request) bool {
	if s.authToken == "" {
		return true // No auth required
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return false
	}

	// Support "Bearer <token>" format
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ") == s.authToken
	}

	return auth == s.authToken
}

// Analyze handles Graph.Analyze RPC calls: it runs the same pipeline
// the CLI runs, on a module posted as base64.
func (s *Server) Analyze(r *http.Request, req *AnalyzeRequest, resp *AnalyzeResponse) error {
	if !s.authenticate(r) {
		return errors.ErrUnauthorized
	}

	ctx := r.Context()
	tracer := telemetry.GetTracer()
	_, span := tracer.Start(ctx, "rpc_analyze")
	defer span.End()

	data, err := base64.StdEncoding.DecodeString(req.WasmBase64)
	if err != nil {
		return fmt.Errorf("decoding wasm_base64: %w", err)
	}
	span.SetAttributes(attribute.Int("wasm.size", len(data)))

	mo := analyze.ModuleOptions{
		Src:        callgraph.NewNameSet(req.Src),
		Dst:        callgraph.NewNameSet(req.Dst),
		PathsMode:  req.Pattern != "",
		LeavesOnly: req.LeavesOnly,
	}
	if req.EnvSymbolsJSON != "" {
		table, err := callgraph.ParseSymbolTable([]byte(req.EnvSymbolsJSON))
		if err != nil {
			span.RecordError(err)
			return err
		}
		mo.Symbols = table
	}
	hints, err := callgraph.ParseHints(req.ImplicitCalls)
	if err != nil {
		span.RecordError(err)
		return err
	}
	mo.Hints = hints
	pattern, err := pathtree.ParsePattern(req.Pattern)
	if err != nil {
		span.RecordError(err)
		return err
	}
	mo.Pattern = pattern

	logger.Logger.Info("Processing analyze RPC", "bytes", len(data))

	res, err := analyze.RunModule(data, mo)
	if err != nil {
		span.RecordError(err)
		return err
	}

	hasFilter := len(req.Src) > 0 || len(req.Dst) > 0 || req.Pattern != ""
	*resp = AnalyzeResponse{
		Lines:     res.Lines,
		Functions: res.Functions,
		Edges:     res.Edges,
		NoMatch:   hasFilter && len(res.Lines) == 0,
	}
	if resp.Lines == nil {
		resp.Lines = []string{}
	}

	return nil
}

// Handler builds the HTTP handler serving /rpc and /health.
func (s *Server) Handler() (http.Handler, error) {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")

	if err := rpcServer.RegisterService(s, "Graph"); err != nil {
		return nil, fmt.Errorf("failed to register service: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", rpcServer)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	return mux, nil
}

// Start starts the JSON-RPC server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	logger.Logger.Info("Starting JSON-RPC server", "port", port)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Logger.Info("Shutting down JSON-RPC server")
	return srv.Shutdown(context.Background())
}
