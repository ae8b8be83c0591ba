// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package wasm

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dotandev/wasmgraph/internal/errors"
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

const wasmVersion = 1

// ParseModule decodes the sections of a WASM binary that contribute to
// the call graph: imports, exports, start, code, and the "name" custom
// section. Every other section is skipped by its declared length, and
// sections are accepted in any order. Function bodies are kept as raw
// bytes; ScanCalls extracts call sites from them.
func ParseModule(data []byte) (*Module, error) {
	if len(data) < 4 {
		return nil, errors.WrapTruncated(fmt.Sprintf("module is %d bytes, shorter than the 8-byte header", len(data)))
	}
	if !bytes.Equal(data[:4], wasmMagic) {
		return nil, errors.WrapBadMagic(fmt.Sprintf("got % x", data[:4]))
	}
	if len(data) < 8 {
		return nil, errors.WrapTruncated("module ends before the version word")
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != wasmVersion {
		return nil, errors.WrapUnsupportedVersion(v)
	}

	var (
		imports     []Function
		bodies      [][]byte
		exportNames map[uint32]string
		debugNames  map[uint32]string
		start       *uint32
		seen        [13]bool
	)

	pos := 8
	for pos < len(data) {
		id := data[pos]
		secStart := pos
		pos++
		size, n, err := readU32(data, pos)
		if err != nil {
			return nil, errors.WrapTruncated(fmt.Sprintf("section size at offset %d: %v", secStart, err))
		}
		pos += n
		if pos+int(size) > len(data) {
			return nil, errors.WrapTruncated(fmt.Sprintf("section id %d at offset %d: payload of %d bytes runs past module end", id, secStart, size))
		}
		payload := data[pos : pos+int(size)]
		pos += int(size)

		// A duplicate non-custom section is skipped like an unknown one;
		// the first occurrence wins.
		if id != sectionCustom && int(id) < len(seen) {
			if seen[id] {
				continue
			}
			seen[id] = true
		}

		switch id {
		case sectionImport:
			imports, err = parseImportSection(payload)
			if err != nil {
				return nil, errors.WrapMalformedSection(fmt.Sprintf("import section at offset %d: %v", secStart, err))
			}
		case sectionExport:
			exportNames, err = parseExportSection(payload)
			if err != nil {
				return nil, errors.WrapMalformedSection(fmt.Sprintf("export section at offset %d: %v", secStart, err))
			}
		case sectionStart:
			idx, err := parseStartSection(payload)
			if err != nil {
				return nil, errors.WrapMalformedSection(fmt.Sprintf("start section at offset %d: %v", secStart, err))
			}
			start = &idx
		case sectionCode:
			bodies, err = parseCodeSection(payload)
			if err != nil {
				return nil, errors.WrapMalformedSection(fmt.Sprintf("code section at offset %d: %v", secStart, err))
			}
		case sectionCustom:
			name, next, err := readName(payload, 0)
			if err != nil {
				return nil, errors.WrapMalformedSection(fmt.Sprintf("custom section at offset %d: %v", secStart, err))
			}
			if name != "name" || debugNames != nil {
				continue
			}
			debugNames, err = parseNameSection(payload[next:])
			if err != nil {
				return nil, errors.WrapMalformedSection(fmt.Sprintf("name section at offset %d: %v", secStart, err))
			}
		}
	}

	numImports := uint32(len(imports))
	funcs := make([]Function, 0, int(numImports)+len(bodies))
	funcs = append(funcs, imports...)
	for _, body := range bodies {
		funcs = append(funcs, Function{Body: body})
	}
	for i := range funcs {
		funcs[i].Index = uint32(i)
	}
	// Entries addressing indices outside the function space are dropped,
	// not errors: they cannot affect any edge.
	for idx, name := range exportNames {
		if int(idx) < len(funcs) {
			funcs[idx].ExportName = name
		}
	}
	for idx, name := range debugNames {
		if int(idx) < len(funcs) {
			funcs[idx].DebugName = name
		}
	}

	return &Module{
		Functions:  funcs,
		NumImports: numImports,
		Start:      start,
	}, nil
}

func readName(data []byte, pos int) (string, int, error) {
	l, n, err := readU32(data, pos)
	if err != nil {
		return "", 0, err
	}
	pos += n
	if pos+int(l) > len(data) {
		return "", 0, fmt.Errorf("name of %d bytes out of bounds", l)
	}
	return string(data[pos : pos+int(l)]), pos + int(l), nil
}

func parseImportSection(payload []byte) ([]Function, error) {
	count, n, err := readU32(payload, 0)
	if err != nil {
		return nil, err
	}
	pos := n
	var funcs []Function
	for i := uint32(0); i < count; i++ {
		mod, np, err := readName(payload, pos)
		if err != nil {
			return nil, fmt.Errorf("import %d module name: %v", i, err)
		}
		pos = np
		field, np, err := readName(payload, pos)
		if err != nil {
			return nil, fmt.Errorf("import %d field name: %v", i, err)
		}
		pos = np
		if pos >= len(payload) {
			return nil, fmt.Errorf("import %d truncated", i)
		}
		kind := payload[pos]
		pos++
		switch kind {
		case importKindFunc:
			_, n, err := readU32(payload, pos)
			if err != nil {
				return nil, fmt.Errorf("import %d type index: %v", i, err)
			}
			pos += n
			funcs = append(funcs, Function{Imported: true, Module: mod, Field: field})
		case 0x01: // table
			pos, err = skipTableType(payload, pos)
			if err != nil {
				return nil, fmt.Errorf("import %d: %v", i, err)
			}
		case 0x02: // memory
			pos, err = skipLimits(payload, pos)
			if err != nil {
				return nil, fmt.Errorf("import %d: %v", i, err)
			}
		case 0x03: // global
			if pos+2 > len(payload) {
				return nil, fmt.Errorf("import %d global type truncated", i)
			}
			pos += 2
		case 0x04: // tag
			if pos >= len(payload) {
				return nil, fmt.Errorf("import %d tag truncated", i)
			}
			pos++
			_, n, err := readU32(payload, pos)
			if err != nil {
				return nil, fmt.Errorf("import %d tag type index: %v", i, err)
			}
			pos += n
		default:
			return nil, fmt.Errorf("import %d has unsupported kind 0x%02x", i, kind)
		}
	}
	if pos != len(payload) {
		return nil, fmt.Errorf("import section has trailing bytes")
	}
	return funcs, nil
}

func skipTableType(data []byte, pos int) (int, error) {
	if pos >= len(data) {
		return 0, fmt.Errorf("table type truncated")
	}
	pos++
	return skipLimits(data, pos)
}

func skipLimits(data []byte, pos int) (int, error) {
	flags, n, err := readU32(data, pos)
	if err != nil {
		return 0, err
	}
	pos += n
	_, n, err = readU32(data, pos)
	if err != nil {
		return 0, err
	}
	pos += n
	if flags&0x01 != 0 {
		_, n, err = readU32(data, pos)
		if err != nil {
			return 0, err
		}
		pos += n
	}
	return pos, nil
}

func parseExportSection(payload []byte) (map[uint32]string, error) {
	count, n, err := readU32(payload, 0)
	if err != nil {
		return nil, err
	}
	pos := n
	names := make(map[uint32]string)
	for i := uint32(0); i < count; i++ {
		name, np, err := readName(payload, pos)
		if err != nil {
			return nil, fmt.Errorf("export %d name: %v", i, err)
		}
		pos = np
		if pos >= len(payload) {
			return nil, fmt.Errorf("export %d truncated", i)
		}
		kind := payload[pos]
		pos++
		idx, n, err := readU32(payload, pos)
		if err != nil {
			return nil, fmt.Errorf("export %d index: %v", i, err)
		}
		pos += n
		if kind != exportKindFunc {
			continue
		}
		// Several exports may alias one function; the first one wins.
		if _, ok := names[idx]; !ok {
			names[idx] = name
		}
	}
	if pos != len(payload) {
		return nil, fmt.Errorf("export section has trailing bytes")
	}
	return names, nil
}

func parseStartSection(payload []byte) (uint32, error) {
	idx, n, err := readU32(payload, 0)
	if err != nil {
		return 0, err
	}
	if n != len(payload) {
		return 0, fmt.Errorf("start section has trailing bytes")
	}
	return idx, nil
}

func parseCodeSection(payload []byte) ([][]byte, error) {
	count, n, err := readU32(payload, 0)
	if err != nil {
		return nil, err
	}
	pos := n
	out := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		sz, n, err := readU32(payload, pos)
		if err != nil {
			return nil, fmt.Errorf("code body %d size: %v", i, err)
		}
		pos += n
		if pos+int(sz) > len(payload) {
			return nil, fmt.Errorf("code body %d out of bounds", i)
		}
		body := make([]byte, int(sz))
		copy(body, payload[pos:pos+int(sz)])
		out = append(out, body)
		pos += int(sz)
	}
	if pos != len(payload) {
		return nil, fmt.Errorf("code section has trailing bytes")
	}
	return out, nil
}

// parseNameSection decodes the payload that follows the "name" string.
// Only the function-names subsection (id 1) is interpreted; the module
// name and local name subsections are skipped.
func parseNameSection(payload []byte) (map[uint32]string, error) {
	names := make(map[uint32]string)
	pos := 0
	for pos < len(payload) {
		id := payload[pos]
		pos++
		size, n, err := readU32(payload, pos)
		if err != nil {
			return nil, fmt.Errorf("subsection %d size: %v", id, err)
		}
		pos += n
		if pos+int(size) > len(payload) {
			return nil, fmt.Errorf("subsection %d out of bounds", id)
		}
		sub := payload[pos : pos+int(size)]
		pos += int(size)
		if id != 0x01 {
			continue
		}
		count, n, err := readU32(sub, 0)
		if err != nil {
			return nil, fmt.Errorf("function name count: %v", err)
		}
		sp := n
		for i := uint32(0); i < count; i++ {
			idx, n, err := readU32(sub, sp)
			if err != nil {
				return nil, fmt.Errorf("function name %d index: %v", i, err)
			}
			sp += n
			name, np, err := readName(sub, sp)
			if err != nil {
				return nil, fmt.Errorf("function name %d: %v", i, err)
			}
			sp = np
			if _, ok := names[idx]; !ok {
				names[idx] = name
			}
		}
	}
	return names, nil
}
