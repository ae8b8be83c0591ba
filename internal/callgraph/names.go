// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package callgraph

import (
	"fmt"

	"github.com/dotandev/wasmgraph/internal/wasm"
)

// NameSet filters resolved names; an empty set allows every name.
type NameSet map[string]struct{}

// NewNameSet builds a filter from CLI values. An empty input stays nil,
// so the zero value means unrestricted.
func NewNameSet(names []string) NameSet {
	if len(names) == 0 {
		return nil
	}
	s := make(NameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Allows reports whether name passes the filter.
func (s NameSet) Allows(name string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[name]
	return ok
}

// ResolveNames fills Resolved on every function record. The result is
// total: every index gets exactly one non-empty name.
func ResolveNames(mod *wasm.Module, table SymbolTable) {
	for i := range mod.Functions {
		mod.Functions[i].Resolved = resolve(&mod.Functions[i], table)
	}
}

// resolve tries, in order: the translation table (imports only), the
// debug name, the export name, then a synthesized fallback. A
// translation entry is never overridden by later levels.
func resolve(fn *wasm.Function, table SymbolTable) string {
	if fn.Imported {
		if sym, ok := table.Lookup(fn.Module, fn.Field); ok {
			return sym
		}
	}
	if fn.DebugName != "" {
		return fn.DebugName
	}
	if fn.ExportName != "" {
		return fn.ExportName
	}
	if fn.Imported {
		return fn.Module + "." + fn.Field
	}
	return fmt.Sprintf("func_%d", fn.Index)
}
