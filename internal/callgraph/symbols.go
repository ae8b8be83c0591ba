// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package callgraph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dotandev/wasmgraph/internal/errors"
)

// SymbolTable maps (import module, field) pairs to replacement display
// names, loaded from an operator-supplied translation file. The zero
// value is an empty table.
type SymbolTable struct {
	entries map[symbolKey]string
}

type symbolKey struct {
	module string
	field  string
}

type symbolFile struct {
	Modules []symbolModule `json:"modules"`
}

type symbolModule struct {
	Name      string           `json:"name"`
	Functions []symbolFunction `json:"functions"`
}

type symbolFunction struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// LoadSymbolTable reads and parses a translation file. Any failure is a
// configuration error since the table applies to the whole run.
func LoadSymbolTable(path string) (SymbolTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SymbolTable{}, errors.WrapConfigError(fmt.Sprintf("env symbols file %s", path), err)
	}
	return ParseSymbolTable(data)
}

// ParseSymbolTable decodes the translation JSON. Duplicate (module,
// function) pairs keep the last entry.
func ParseSymbolTable(data []byte) (SymbolTable, error) {
	var file symbolFile
	if err := json.Unmarshal(data, &file); err != nil {
		return SymbolTable{}, errors.WrapConfigError("env symbols JSON", err)
	}
	entries := make(map[symbolKey]string)
	for _, m := range file.Modules {
		for _, fn := range m.Functions {
			entries[symbolKey{module: m.Name, field: fn.Name}] = fn.Symbol
		}
	}
	return SymbolTable{entries: entries}, nil
}

// Lookup returns the translated name for an import, if one was supplied.
func (t SymbolTable) Lookup(module, field string) (string, bool) {
	sym, ok := t.entries[symbolKey{module: module, field: field}]
	return sym, ok
}

// Len reports the number of loaded translations.
func (t SymbolTable) Len() int {
	return len(t.entries)
}
