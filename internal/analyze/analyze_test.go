// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package analyze

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/wasmgraph/internal/errors"
)

// Builders below keep every length and index under 128 so single-byte
// ULEB128 values can be written literally.

type section struct {
	id      byte
	payload []byte
}

func buildModule(sections ...section) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	for _, s := range sections {
		out = append(out, s.id, byte(len(s.payload)))
		out = append(out, s.payload...)
	}
	return out
}

func typeSection() section {
	// one type: () -> ()
	return section{id: 1, payload: []byte{0x01, 0x60, 0x00, 0x00}}
}

type imported struct {
	module, field string
}

func importSection(entries ...imported) section {
	payload := []byte{byte(len(entries))}
	for _, e := range entries {
		payload = append(payload, byte(len(e.module)))
		payload = append(payload, e.module...)
		payload = append(payload, byte(len(e.field)))
		payload = append(payload, e.field...)
		payload = append(payload, 0x00, 0x00) // func import, type 0
	}
	return section{id: 2, payload: payload}
}

func functionSection(n int) section {
	payload := []byte{byte(n)}
	for i := 0; i < n; i++ {
		payload = append(payload, 0x00)
	}
	return section{id: 3, payload: payload}
}

type export struct {
	name string
	idx  byte
}

func exportSection(entries ...export) section {
	payload := []byte{byte(len(entries))}
	for _, e := range entries {
		payload = append(payload, byte(len(e.name)))
		payload = append(payload, e.name...)
		payload = append(payload, 0x00, e.idx)
	}
	return section{id: 7, payload: payload}
}

func codeSection(bodies ...[]byte) section {
	payload := []byte{byte(len(bodies))}
	for _, b := range bodies {
		payload = append(payload, byte(len(b)))
		payload = append(payload, b...)
	}
	return section{id: 10, payload: payload}
}

func bodyCalls(targets ...byte) []byte {
	body := []byte{0x00}
	for _, t := range targets {
		body = append(body, 0x10, t)
	}
	return append(body, 0x0b)
}

type funcName struct {
	idx  byte
	name string
}

func nameSection(names ...funcName) section {
	var sub []byte
	sub = append(sub, byte(len(names)))
	for _, n := range names {
		sub = append(sub, n.idx, byte(len(n.name)))
		sub = append(sub, n.name...)
	}
	payload := []byte{0x04, 'n', 'a', 'm', 'e', 0x01, byte(len(sub))}
	payload = append(payload, sub...)
	return section{id: 0, payload: payload}
}

// linearModule is main -> helper -> log, all defined, main exported.
func linearModule() []byte {
	return buildModule(
		typeSection(),
		functionSection(3),
		exportSection(export{name: "main", idx: 0}),
		codeSection(bodyCalls(1), bodyCalls(2), bodyCalls()),
		nameSection(
			funcName{idx: 0, name: "main"},
			funcName{idx: 1, name: "helper"},
			funcName{idx: 2, name: "log"},
		),
	)
}

// importModule is exported main -> env.log (import).
func importModule() []byte {
	return buildModule(
		typeSection(),
		importSection(imported{module: "env", field: "log"}),
		functionSection(1),
		exportSection(export{name: "main", idx: 1}),
		codeSection(bodyCalls(0)),
		nameSection(funcName{idx: 1, name: "main"}),
	)
}

func boolPtr(b bool) *bool { return &b }

func outLines(buf *bytes.Buffer) []string {
	s := strings.TrimSuffix(buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunModule_Chains(t *testing.T) {
	res, err := RunModule(linearModule(), ModuleOptions{})
	require.NoError(t, err)

	want := []string{
		"main",
		"main,helper",
		"main,helper,log",
		"helper",
		"helper,log",
		"log",
	}
	assert.Equal(t, want, res.Lines)
	assert.Equal(t, 3, res.Functions)
	assert.Equal(t, 2, res.Edges)
}

func TestRunModule_PathsMode(t *testing.T) {
	res, err := RunModule(linearModule(), ModuleOptions{PathsMode: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"main{helper{log}}", "helper{log}", "log"}, res.Lines)
}

func TestRunModule_PathsPatternPrunes(t *testing.T) {
	opts := Options{Pattern: "main..log", PathsMode: true}
	mo, err := opts.parse()
	require.NoError(t, err)

	res, err := RunModule(linearModule(), mo)
	require.NoError(t, err)

	assert.Equal(t, []string{"main{helper{log}}"}, res.Lines)
}

func TestRunModule_LeavesOnly(t *testing.T) {
	res, err := RunModule(importModule(), ModuleOptions{LeavesOnly: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"main,env.log"}, res.Lines)
}

func TestRunModule_ImplicitHints(t *testing.T) {
	mod := buildModule(
		typeSection(),
		importSection(imported{module: "env", field: "host"}),
		functionSection(2),
		exportSection(export{name: "callback", idx: 2}),
		codeSection(bodyCalls(0), bodyCalls()),
		nameSection(funcName{idx: 1, name: "main"}),
	)
	opts := Options{ImplicitCalls: []string{"env.host:callback"}}
	mo, err := opts.parse()
	require.NoError(t, err)

	res, err := RunModule(mod, mo)
	require.NoError(t, err)

	want := []string{
		"main",
		"main,env.host",
		"main,env.host,callback",
		"callback",
	}
	assert.Equal(t, want, res.Lines)
}

func TestRunModule_Demangle(t *testing.T) {
	mod := buildModule(
		typeSection(),
		functionSection(1),
		codeSection(bodyCalls()),
		nameSection(funcName{idx: 0, name: "_ZN11my_contract6invoke17h1a2b3c4d5e6f7890E"}),
	)

	res, err := RunModule(mod, ModuleOptions{Demangle: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"my_contract::invoke"}, res.Lines)

	res, err = RunModule(mod, ModuleOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"_ZN11my_contract6invoke17h1a2b3c4d5e6f7890E"}, res.Lines)
}

func TestRunModule_BadBytes(t *testing.T) {
	_, err := RunModule([]byte("not wasm at all"), ModuleOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsDecodeError(err))
}

func TestRun_SingleFileNoPrefix(t *testing.T) {
	path := writeFile(t, "app.wasm", linearModule())
	var out, errOut bytes.Buffer

	err := Run(Options{Files: []string{path}}, &out, &errOut)
	require.NoError(t, err)

	lines := outLines(&out)
	require.Len(t, lines, 6)
	assert.Equal(t, "main", lines[0])
	assert.Empty(t, errOut.String())
}

func TestRun_MultiFilePrefixes(t *testing.T) {
	a := writeFile(t, "a.wasm", linearModule())
	b := writeFile(t, "b.wasm", importModule())
	var out, errOut bytes.Buffer

	err := Run(Options{Files: []string{a, b}}, &out, &errOut)
	require.NoError(t, err)

	lines := outLines(&out)
	require.Len(t, lines, 8)
	for _, line := range lines[:6] {
		assert.True(t, strings.HasPrefix(line, "a.wasm:"), "line %q", line)
	}
	for _, line := range lines[6:] {
		assert.True(t, strings.HasPrefix(line, "b.wasm:"), "line %q", line)
	}
}

func TestRun_FilenamePrefixForcedOff(t *testing.T) {
	a := writeFile(t, "a.wasm", linearModule())
	b := writeFile(t, "b.wasm", linearModule())
	var out, errOut bytes.Buffer

	err := Run(Options{Files: []string{a, b}, ShowFilename: boolPtr(false)}, &out, &errOut)
	require.NoError(t, err)

	for _, line := range outLines(&out) {
		assert.False(t, strings.Contains(line, "a.wasm:"), "line %q", line)
	}
}

func TestRun_SkipsUnreadableFileAndFails(t *testing.T) {
	good := writeFile(t, "good.wasm", linearModule())
	bad := writeFile(t, "bad.wasm", []byte("garbage"))
	var out, errOut bytes.Buffer

	err := Run(Options{Files: []string{bad, good}}, &out, &errOut)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")

	// The good file still produced output, prefixed since two files
	// were requested.
	assert.Contains(t, out.String(), "good.wasm:main,helper,log\n")
	assert.Contains(t, errOut.String(), "bad.wasm")
}

func TestRun_MissingFile(t *testing.T) {
	var out, errOut bytes.Buffer

	err := Run(Options{Files: []string{"/does/not/exist.wasm"}}, &out, &errOut)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "exist.wasm")
}

func TestRun_NoMatchWithFilter(t *testing.T) {
	path := writeFile(t, "app.wasm", linearModule())
	var out, errOut bytes.Buffer

	err := Run(Options{Files: []string{path}, Dst: []string{"absent"}}, &out, &errOut)
	assert.ErrorIs(t, err, errors.ErrNoMatch)
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String(), "no-match is silent")
}

func TestRun_NoOutputWithoutFilterSucceeds(t *testing.T) {
	// A module with no defined functions yields no chains, which is
	// only an error when a filter was asked for.
	path := writeFile(t, "empty.wasm", buildModule())
	var out, errOut bytes.Buffer

	err := Run(Options{Files: []string{path}}, &out, &errOut)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRun_ConfigErrorAbortsBeforeFiles(t *testing.T) {
	path := writeFile(t, "app.wasm", linearModule())
	var out, errOut bytes.Buffer

	err := Run(Options{Files: []string{path}, ImplicitCalls: []string{"no-colon"}}, &out, &errOut)
	assert.ErrorIs(t, err, errors.ErrConfig)
	assert.Empty(t, out.String())
}

func TestRun_SymbolTranslation(t *testing.T) {
	symbols := writeFile(t, "symbols.json", []byte(`{
		"modules": [{
			"name": "env",
			"functions": [{"name": "log", "symbol": "host_log"}]
		}]
	}`))
	path := writeFile(t, "app.wasm", importModule())
	var out, errOut bytes.Buffer

	err := Run(Options{Files: []string{path}, EnvSymbols: symbols}, &out, &errOut)
	require.NoError(t, err)

	assert.Equal(t, []string{"main", "main,host_log"}, outLines(&out))
}
