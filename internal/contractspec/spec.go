// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package contractspec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/stellar/go/xdr"
)

// ContractSpec holds the decoded contract specification entries,
// grouped by kind.
type ContractSpec struct {
	Functions  []xdr.ScSpecFunctionV0
	Structs    []xdr.ScSpecUdtStructV0
	Unions     []xdr.ScSpecUdtUnionV0
	Enums      []xdr.ScSpecUdtEnumV0
	ErrorEnums []xdr.ScSpecUdtErrorEnumV0
	Events     []xdr.ScSpecEventV0
}

// DecodeContractSpec reads concatenated XDR-encoded ScSpecEntry values
// and returns them grouped by kind.
func DecodeContractSpec(data []byte) (*ContractSpec, error) {
	spec := &ContractSpec{}
	reader := bytes.NewReader(data)

	for reader.Len() > 0 {
		var entry xdr.ScSpecEntry
		if _, err := xdr.Unmarshal(reader, &entry); err != nil {
			return nil, fmt.Errorf("decoding spec entry: %w", err)
		}

		switch entry.Kind {
		case xdr.ScSpecEntryKindScSpecEntryFunctionV0:
			spec.Functions = append(spec.Functions, *entry.FunctionV0)
		case xdr.ScSpecEntryKindScSpecEntryUdtStructV0:
			spec.Structs = append(spec.Structs, *entry.UdtStructV0)
		case xdr.ScSpecEntryKindScSpecEntryUdtUnionV0:
			spec.Unions = append(spec.Unions, *entry.UdtUnionV0)
		case xdr.ScSpecEntryKindScSpecEntryUdtEnumV0:
			spec.Enums = append(spec.Enums, *entry.UdtEnumV0)
		case xdr.ScSpecEntryKindScSpecEntryUdtErrorEnumV0:
			spec.ErrorEnums = append(spec.ErrorEnums, *entry.UdtErrorEnumV0)
		case xdr.ScSpecEntryKindScSpecEntryEventV0:
			spec.Events = append(spec.Events, *entry.EventV0)
		default:
			return nil, fmt.Errorf("unknown spec entry kind: %d", entry.Kind)
		}
	}

	return spec, nil
}

// FunctionNames lists the declared function names in entry order.
func (s *ContractSpec) FunctionNames() []string {
	names := make([]string, len(s.Functions))
	for i, fn := range s.Functions {
		names[i] = string(fn.Name)
	}
	return names
}

// FormatFunction renders one declared function as name(param, param).
func FormatFunction(fn xdr.ScSpecFunctionV0) string {
	params := make([]string, len(fn.Inputs))
	for i, inp := range fn.Inputs {
		params[i] = inp.Name
	}
	return fmt.Sprintf("%s(%s)", string(fn.Name), strings.Join(params, ", "))
}
