// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

// Package contractspec reads the Soroban contract specification
// embedded in a module's "contractspecv0" custom section.
package contractspec

import (
	"fmt"
	"io"

	"github.com/dotandev/wasmgraph/internal/errors"
)

// SpecSectionName is the custom section Soroban toolchains emit.
const SpecSectionName = "contractspecv0"

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

// ExtractCustomSection returns the payload of the first custom section
// with the given name, or (nil, nil) when no such section exists. Any
// binary version is accepted: the spec section's layout predates and
// outlives version bumps.
func ExtractCustomSection(module []byte, name string) ([]byte, error) {
	if len(module) < 8 {
		return nil, errors.WrapTruncated("module too short for header")
	}
	if module[0] != wasmMagic[0] || module[1] != wasmMagic[1] ||
		module[2] != wasmMagic[2] || module[3] != wasmMagic[3] {
		return nil, errors.WrapBadMagic(fmt.Sprintf("got % x", module[:4]))
	}

	offset := 8
	for offset < len(module) {
		sectionID := module[offset]
		offset++

		sectionLen, n, err := decodeLEB128(module, offset)
		if err != nil {
			return nil, errors.WrapMalformedSection(fmt.Sprintf("section length at offset %d: %v", offset, err))
		}
		offset += n

		if offset+int(sectionLen) > len(module) {
			return nil, errors.WrapMalformedSection(fmt.Sprintf("section id %d runs past module end", sectionID))
		}
		sectionEnd := offset + int(sectionLen)

		if sectionID == 0 {
			nameLen, n, err := decodeLEB128(module, offset)
			if err != nil {
				return nil, errors.WrapMalformedSection(fmt.Sprintf("custom section name length: %v", err))
			}
			offset += n
			if offset+int(nameLen) > sectionEnd {
				return nil, errors.WrapMalformedSection("custom section name runs past section")
			}
			sectionName := string(module[offset : offset+int(nameLen)])
			offset += int(nameLen)

			if sectionName == name {
				payload := make([]byte, sectionEnd-offset)
				copy(payload, module[offset:sectionEnd])
				return payload, nil
			}
		}

		offset = sectionEnd
	}

	return nil, nil
}

func decodeLEB128(data []byte, offset int) (uint32, int, error) {
	var result uint32
	var shift uint
	for i := 0; i < 5; i++ {
		if offset+i >= len(data) {
			return 0, 0, io.ErrUnexpectedEOF
		}
		b := data[offset+i]
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("LEB128 integer too large")
}
