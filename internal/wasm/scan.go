// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package wasm

import (
	"fmt"

	"github.com/dotandev/wasmgraph/internal/errors"
)

// ScanCalls walks a function body and returns the call and return_call
// target indices in instruction order, duplicates preserved. The second
// result reports whether the body contains indirect calls, whose targets
// are not statically recoverable. Call sites are collected regardless of
// reachability within the body.
func ScanCalls(body []byte) ([]uint32, bool, error) {
	targets, indirect, err := scanBody(body)
	if err != nil {
		return nil, false, errors.WrapMalformedSection(fmt.Sprintf("code body: %v", err))
	}
	return targets, indirect, nil
}

func scanBody(body []byte) ([]uint32, bool, error) {
	pos := 0
	declCount, n, err := readU32(body, pos)
	if err != nil {
		return nil, false, fmt.Errorf("local decls: %v", err)
	}
	pos += n
	for i := uint32(0); i < declCount; i++ {
		_, n, err := readU32(body, pos)
		if err != nil {
			return nil, false, fmt.Errorf("local decl %d: %v", i, err)
		}
		pos += n
		if pos >= len(body) {
			return nil, false, fmt.Errorf("local decl %d type truncated", i)
		}
		pos++
	}

	var (
		targets  []uint32
		indirect bool
	)
	for pos < len(body) {
		op := body[pos]
		opOffset := pos
		pos++
		switch op {
		case 0x02, 0x03, 0x04: // block, loop, if
			np, err := skipBlockType(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos = np
		case 0x0c, 0x0d, 0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26:
			_, n, err := readU32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
		case 0x0e: // br_table
			count, n, err := readU32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
			for i := uint32(0); i < count+1; i++ {
				_, n, err := readU32(body, pos)
				if err != nil {
					return nil, false, err
				}
				pos += n
			}
		case 0x10, 0x12: // call, return_call
			idx, n, err := readU32(body, pos)
			if err != nil {
				return nil, false, fmt.Errorf("call target at offset %d: %v", opOffset, err)
			}
			pos += n
			targets = append(targets, idx)
		case 0x11, 0x13: // call_indirect, return_call_indirect
			indirect = true
			_, n, err := readU32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
			_, n, err = readU32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
		case 0x1c: // select with types
			c, n, err := readU32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
			if pos+int(c) > len(body) {
				return nil, false, fmt.Errorf("select type vector out of bounds")
			}
			pos += int(c)
		case 0x28, 0x29, 0x2a, 0x2b, 0x2c, 0x2d, 0x2e, 0x2f,
			0x30, 0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37,
			0x38, 0x39, 0x3a, 0x3b, 0x3c, 0x3d, 0x3e:
			_, n, err := readU32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
			_, n, err = readU32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
		case 0x3f, 0x40: // memory.size, memory.grow
			_, n, err := readU32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
		case 0x41: // i32.const
			_, n, err := readSLEB32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
		case 0x42: // i64.const
			_, n, err := readSLEB64(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
		case 0x43: // f32.const
			if pos+4 > len(body) {
				return nil, false, fmt.Errorf("f32.const truncated")
			}
			pos += 4
		case 0x44: // f64.const
			if pos+8 > len(body) {
				return nil, false, fmt.Errorf("f64.const truncated")
			}
			pos += 8
		case 0xd0: // ref.null
			if pos >= len(body) {
				return nil, false, fmt.Errorf("ref.null truncated")
			}
			pos++
		case 0xd2: // ref.func takes a function index but is not a call
			_, n, err := readU32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
		case 0xfc:
			sub, n, err := readU32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
			switch sub {
			case 0, 1, 2, 3, 4, 5, 6, 7:
			case 8, 10, 12, 14:
				_, n, err = readU32(body, pos)
				if err != nil {
					return nil, false, err
				}
				pos += n
				_, n, err = readU32(body, pos)
				if err != nil {
					return nil, false, err
				}
				pos += n
			case 9, 11, 13, 15, 16, 17:
				_, n, err = readU32(body, pos)
				if err != nil {
					return nil, false, err
				}
				pos += n
			default:
				return nil, false, fmt.Errorf("unsupported 0xfc subopcode %d", sub)
			}
		case 0xfd: // SIMD prefix
			sub, n, err := readU32(body, pos)
			if err != nil {
				return nil, false, err
			}
			pos += n
			np, err := skipSIMDImmediates(body, pos, sub)
			if err != nil {
				return nil, false, err
			}
			pos = np
		case 0xfe:
			return nil, false, fmt.Errorf("unsupported atomic opcode prefix 0xfe at offset %d", opOffset)
		default:
			if isNoImmediateOpcode(op) {
				continue
			}
			return nil, false, fmt.Errorf("unsupported opcode 0x%02x at offset %d", op, opOffset)
		}
	}
	return targets, indirect, nil
}

// skipSIMDImmediates steps over the immediates of one 0xfd-prefixed
// opcode: memarg for the vector loads/stores, 16 bytes for v128.const
// and i8x16.shuffle, a lane byte for the lane ops, nothing otherwise.
func skipSIMDImmediates(data []byte, pos int, sub uint32) (int, error) {
	switch {
	case sub <= 11, sub == 92, sub == 93: // v128 loads, v128.store, load_zero
		for i := 0; i < 2; i++ {
			_, n, err := readU32(data, pos)
			if err != nil {
				return 0, err
			}
			pos += n
		}
	case sub == 12, sub == 13: // v128.const, i8x16.shuffle
		if pos+16 > len(data) {
			return 0, fmt.Errorf("SIMD immediate truncated")
		}
		pos += 16
	case sub >= 21 && sub <= 34: // extract_lane, replace_lane
		if pos >= len(data) {
			return 0, fmt.Errorf("SIMD lane index truncated")
		}
		pos++
	case sub >= 84 && sub <= 91: // load_lane, store_lane
		for i := 0; i < 2; i++ {
			_, n, err := readU32(data, pos)
			if err != nil {
				return 0, err
			}
			pos += n
		}
		if pos >= len(data) {
			return 0, fmt.Errorf("SIMD lane index truncated")
		}
		pos++
	case sub > 0xff:
		return 0, fmt.Errorf("unsupported SIMD subopcode %d", sub)
	}
	return pos, nil
}

func skipBlockType(data []byte, pos int) (int, error) {
	if pos >= len(data) {
		return 0, fmt.Errorf("blocktype truncated")
	}
	b := data[pos]
	switch b {
	case 0x40, 0x7f, 0x7e, 0x7d, 0x7c, 0x7b, 0x70, 0x6f:
		return pos + 1, nil
	default:
		_, n, err := readSLEB33(data, pos)
		if err != nil {
			return 0, err
		}
		return pos + n, nil
	}
}

func isNoImmediateOpcode(op byte) bool {
	switch op {
	case 0x00, 0x01, 0x05, 0x0b, 0x0f, 0x1a, 0x1b, 0x1d, 0x1e, 0x1f, 0xd1:
		return true
	}
	if op >= 0x45 && op <= 0xc4 {
		return true
	}
	return false
}
