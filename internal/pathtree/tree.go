// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

// Package pathtree unrolls the call graph into one call tree per
// function and prunes trees with ".."-separated path patterns.
package pathtree

import (
	"strings"

	"github.com/dotandev/wasmgraph/internal/callgraph"
)

// CallNode is one node of an unrolled call tree. A childless node is
// either a function with no outgoing calls or a repeat occurrence cut
// off by the unroll bound.
type CallNode struct {
	Name     string
	Children []*CallNode
}

// String renders the tree in brace form: name{child,child{...}}.
func (n *CallNode) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *CallNode) write(b *strings.Builder) {
	b.WriteString(n.Name)
	if len(n.Children) == 0 {
		return
	}
	b.WriteByte('{')
	for i, c := range n.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		c.write(b)
	}
	b.WriteByte('}')
}

// Build unrolls one tree per defined function passing src, in
// ascending index order. Cycles are bounded per root-to-leaf path: a
// function's third occurrence on a path becomes a leaf, so self-loops
// unroll twice and longer cycles wrap until each member hits the
// bound. Sibling branches do not share the bound.
func Build(g *callgraph.Graph, src callgraph.NameSet) []*CallNode {
	funcs := g.Module.Functions
	counts := make([]int, len(funcs))
	var trees []*CallNode
	for i := int(g.Module.NumImports); i < len(funcs); i++ {
		if !src.Allows(funcs[i].Resolved) {
			continue
		}
		trees = append(trees, grow(g, uint32(i), counts))
	}
	return trees
}

// grow expands the subtree rooted at u. counts tracks occurrences on
// the current path only; every increment is undone on the way out, so
// the slice is all zeros again between trees.
func grow(g *callgraph.Graph, u uint32, counts []int) *CallNode {
	node := &CallNode{Name: g.Module.Functions[u].Resolved}
	if counts[u] >= 2 {
		return node
	}
	counts[u]++
	for _, e := range g.Edges[u] {
		node.Children = append(node.Children, grow(g, e.To, counts))
	}
	counts[u]--
	return node
}
