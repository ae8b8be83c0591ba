// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package pathtree

import (
	"fmt"
	"strings"

	"github.com/dotandev/wasmgraph/internal/errors"
)

// Pattern is a parsed path pattern: one entry per ".."-separated
// group, each holding the group's "|"-separated alternatives.
type Pattern []group

type group []string

func (g group) matches(name string) bool {
	for _, alt := range g {
		if alt == name {
			return true
		}
	}
	return false
}

// ParsePattern parses spec into a Pattern. An empty spec means no
// pruning. Empty groups ("a....b", leading or trailing "..") and
// empty alternatives ("a|") are configuration errors rather than
// patterns that silently never match.
func ParsePattern(spec string) (Pattern, error) {
	if spec == "" {
		return nil, nil
	}
	var p Pattern
	for _, grp := range strings.Split(spec, "..") {
		if grp == "" {
			return nil, errors.WrapValidationError(fmt.Sprintf("path pattern %q has an empty group", spec))
		}
		alts := strings.Split(grp, "|")
		for _, a := range alts {
			if a == "" {
				return nil, errors.WrapValidationError(fmt.Sprintf("path pattern %q has an empty alternative", spec))
			}
		}
		p = append(p, group(alts))
	}
	return p, nil
}

// Filter prunes root down to the paths matching p. Groups must occur
// in order along a root-to-leaf path with any number of other
// functions between them, and the first group may match below the
// root. Returns nil when no path through root matches; an empty
// pattern keeps the tree untouched.
//
// Matching is greedy: a node that matches the next pending group
// always consumes it. For in-order subsequence matching down a path
// this loses nothing, and once the last group is consumed the node's
// whole subtree is kept, so each branch is decided independently.
func (p Pattern) Filter(root *CallNode) *CallNode {
	if len(p) == 0 {
		return root
	}
	return filterNode(root, p)
}

func filterNode(n *CallNode, rem Pattern) *CallNode {
	if rem[0].matches(n.Name) {
		rem = rem[1:]
		if len(rem) == 0 {
			return n
		}
	}
	var kept []*CallNode
	for _, c := range n.Children {
		if fc := filterNode(c, rem); fc != nil {
			kept = append(kept, fc)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &CallNode{Name: n.Name, Children: kept}
}
