// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

// Package demangle turns Rust legacy-mangled symbol names into their
// readable path form for display.
package demangle

import (
	"strconv"
	"strings"
)

// DemangleSymbol converts a legacy-mangled Rust symbol
// (_ZN<len><seg>...<len>h<hash>E) to path form (seg::seg). Anything
// that does not parse as the legacy scheme is returned unchanged, so
// callers may pass every display name through it.
func DemangleSymbol(symbol string) string {
	if !strings.HasPrefix(symbol, "_ZN") || !strings.HasSuffix(symbol, "E") {
		return symbol
	}
	body := symbol[3 : len(symbol)-1]
	var parts []string
	for len(body) > 0 {
		i := 0
		for i < len(body) && body[i] >= '0' && body[i] <= '9' {
			i++
		}
		if i == 0 {
			return symbol
		}
		n, err := strconv.Atoi(body[:i])
		if err != nil || n <= 0 {
			return symbol
		}
		if i+n > len(body) {
			// Toolchains do not always pad the trailing hash to its
			// declared length; accept a short remainder when it still
			// looks like a hash.
			if isHash(body[i:]) {
				break
			}
			return symbol
		}
		parts = append(parts, body[i:i+n])
		body = body[i+n:]
	}
	if len(parts) > 1 && isHash(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return symbol
	}
	return strings.Join(parts, "::")
}

// isHash reports whether seg is an 'h' followed by lowercase hex, the
// shape of the legacy scheme's disambiguation suffix.
func isHash(seg string) bool {
	if len(seg) < 2 || seg[0] != 'h' {
		return false
	}
	for i := 1; i < len(seg); i++ {
		c := seg[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
