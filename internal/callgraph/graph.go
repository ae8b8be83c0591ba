// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

// Package callgraph builds the static call graph of a decoded module
// and resolves the display name of every function.
package callgraph

import (
	"github.com/dotandev/wasmgraph/internal/logger"
	"github.com/dotandev/wasmgraph/internal/wasm"
)

// EdgeKind distinguishes how an edge was discovered.
type EdgeKind int

const (
	// EdgeDirect comes from a call or return_call instruction.
	EdgeDirect EdgeKind = iota
	// EdgeImplicit comes from an operator-supplied hint pairing a host
	// import with the export it re-enters.
	EdgeImplicit
)

// Edge is one outgoing call graph edge.
type Edge struct {
	To   uint32
	Kind EdgeKind
}

// Graph holds one adjacency list per function in the combined index
// space, each in first-discovered order. Built once per module and
// read-only afterwards; cycles and self-loops are allowed.
type Graph struct {
	Module *wasm.Module
	Edges  [][]Edge
}

// Build scans every defined function body and records deduplicated
// direct edges in the order their call sites appear. Indirect call
// sites and targets outside the function index space produce no edges.
func Build(mod *wasm.Module) (*Graph, error) {
	edges := make([][]Edge, len(mod.Functions))
	indirectFuncs := 0
	droppedTargets := 0
	for i := range mod.Functions {
		fn := &mod.Functions[i]
		if fn.Imported {
			continue
		}
		targets, indirect, err := wasm.ScanCalls(fn.Body)
		if err != nil {
			return nil, err
		}
		if indirect {
			indirectFuncs++
		}
		seen := make(map[uint32]struct{}, len(targets))
		for _, t := range targets {
			if int(t) >= len(mod.Functions) {
				droppedTargets++
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			edges[i] = append(edges[i], Edge{To: t, Kind: EdgeDirect})
		}
	}
	if indirectFuncs > 0 {
		logger.Logger.Debug("indirect call sites are not modeled", "functions", indirectFuncs)
	}
	if droppedTargets > 0 {
		logger.Logger.Debug("dropped call targets outside the function index space", "count", droppedTargets)
	}
	return &Graph{Module: mod, Edges: edges}, nil
}

// addImplicit appends an implicit edge unless an edge with the same
// endpoints already exists.
func (g *Graph) addImplicit(from, to uint32) {
	for _, e := range g.Edges[from] {
		if e.To == to {
			return
		}
	}
	g.Edges[from] = append(g.Edges[from], Edge{To: to, Kind: EdgeImplicit})
}
