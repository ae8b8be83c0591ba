// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package wasm

const (
	sectionCustom   byte = 0
	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionTable    byte = 4
	sectionMemory   byte = 5
	sectionGlobal   byte = 6
	sectionExport   byte = 7
	sectionStart    byte = 8
	sectionElement  byte = 9
	sectionCode     byte = 10
	sectionData     byte = 11
)

// Export kind constants.
const exportKindFunc byte = 0

// Import kind constants.
const importKindFunc byte = 0

// Function is one entry in a module's combined function index space:
// imported functions first, in import-section order, then defined
// functions in code-section order.
type Function struct {
	Index      uint32
	Imported   bool
	Module     string // import module name, imports only
	Field      string // import field name, imports only
	ExportName string // first export naming this function, if any
	DebugName  string // entry from the "name" custom section, if any
	Resolved   string // display name, filled in by the name resolver
	Body       []byte // locals vector plus expression, defined functions only
}

// Module is the decoded view of a WASM binary, reduced to what call
// graph construction needs.
type Module struct {
	Functions  []Function
	NumImports uint32
	Start      *uint32
}

// NumDefined returns the number of functions carrying a code body.
func (m *Module) NumDefined() int {
	return len(m.Functions) - int(m.NumImports)
}

// IsImport reports whether idx addresses an imported function.
func (m *Module) IsImport(idx uint32) bool {
	return idx < m.NumImports
}
