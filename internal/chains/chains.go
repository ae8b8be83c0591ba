// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

// Package chains enumerates the simple call paths of a call graph.
package chains

import (
	"github.com/dotandev/wasmgraph/internal/callgraph"
)

// Walk enumerates every simple path of the graph, one depth-first
// traversal per start. Starts are the defined functions whose resolved
// name src allows, in ascending index order; children follow each
// node's edge order. A chain is emitted at every entered node whose
// name dst allows, so prefixes of longer chains appear in their own
// right. An edge whose target is already on the active stack is
// skipped, which bounds every chain by the function count.
//
// The emitted slice is the live traversal stack; callers must copy it
// to keep it past the callback.
func Walk(g *callgraph.Graph, src, dst callgraph.NameSet, emit func(chain []uint32)) {
	funcs := g.Module.Functions
	onStack := make([]bool, len(funcs))
	stack := make([]uint32, 0, len(funcs))

	var visit func(u uint32)
	visit = func(u uint32) {
		stack = append(stack, u)
		onStack[u] = true
		if dst.Allows(funcs[u].Resolved) {
			emit(stack)
		}
		for _, e := range g.Edges[u] {
			if onStack[e.To] {
				continue
			}
			visit(e.To)
		}
		onStack[u] = false
		stack = stack[:len(stack)-1]
	}

	for i := int(g.Module.NumImports); i < len(funcs); i++ {
		if !src.Allows(funcs[i].Resolved) {
			continue
		}
		visit(uint32(i))
	}
}

// WalkLeaves runs the same enumeration restricted to exported defined
// starts, reducing each path that reaches an imported function to its
// endpoints. dst applies to the leaf's name. Traversal continues
// through imports that carry implicit edges, and distinct paths
// reaching the same import each emit their own pair.
func WalkLeaves(g *callgraph.Graph, src, dst callgraph.NameSet, emit func(start, leaf uint32)) {
	funcs := g.Module.Functions
	onStack := make([]bool, len(funcs))

	var start uint32
	var visit func(u uint32)
	visit = func(u uint32) {
		onStack[u] = true
		if funcs[u].Imported && dst.Allows(funcs[u].Resolved) {
			emit(start, u)
		}
		for _, e := range g.Edges[u] {
			if onStack[e.To] {
				continue
			}
			visit(e.To)
		}
		onStack[u] = false
	}

	for i := int(g.Module.NumImports); i < len(funcs); i++ {
		if funcs[i].ExportName == "" || !src.Allows(funcs[i].Resolved) {
			continue
		}
		start = uint32(i)
		visit(start)
	}
}
