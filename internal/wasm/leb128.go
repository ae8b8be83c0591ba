// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package wasm

import "fmt"

func readU32(data []byte, pos int) (uint32, int, error) {
	var v uint32
	shift := uint(0)
	for i := 0; i < 5; i++ {
		if pos+i >= len(data) {
			return 0, 0, fmt.Errorf("uleb128 out of bounds")
		}
		b := data[pos+i]
		v |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("uleb128 overflow")
}

func readSLEB32(data []byte, pos int) (int32, int, error) {
	val, n, err := readSLEB(data, pos, 32)
	return int32(val), n, err
}

func readSLEB64(data []byte, pos int) (int64, int, error) {
	return readSLEB(data, pos, 64)
}

func readSLEB33(data []byte, pos int) (int64, int, error) {
	return readSLEB(data, pos, 33)
}

func readSLEB(data []byte, pos int, bits uint) (int64, int, error) {
	var result int64
	shift := uint(0)
	var b byte
	for i := 0; i < 10; i++ {
		if pos+i >= len(data) {
			return 0, 0, fmt.Errorf("sleb128 out of bounds")
		}
		b = data[pos+i]
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < bits && (b&0x40) != 0 {
				result |= ^0 << shift
			}
			return result, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("sleb128 overflow")
}

func encodeU32(v uint32) []byte {
	var out [5]byte
	i := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out[i] = b
		i++
		if v == 0 {
			break
		}
	}
	return out[:i]
}
