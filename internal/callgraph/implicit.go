// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package callgraph

import (
	"fmt"
	"strings"

	"github.com/dotandev/wasmgraph/internal/errors"
	"github.com/dotandev/wasmgraph/internal/logger"
)

// Hint pairs an import's display name with the export it implicitly
// calls back into, as supplied on the command line.
type Hint struct {
	From string
	To   string
}

// ParseHints validates raw import:export specs, splitting at the first
// colon. A spec without a colon is a configuration error; an empty side
// parses but can never match a function.
func ParseHints(specs []string) ([]Hint, error) {
	hints := make([]Hint, 0, len(specs))
	for _, s := range specs {
		from, to, ok := strings.Cut(s, ":")
		if !ok {
			return nil, errors.WrapValidationError(fmt.Sprintf("implicit call %q: expected import:export", s))
		}
		hints = append(hints, Hint{From: from, To: to})
	}
	return hints, nil
}

// ApplyHints adds an implicit edge for every hint whose two names each
// resolve to exactly one function. Hints that match nothing, or more
// than one function, are skipped: a batch run may carry hints that only
// apply to some of its modules.
func (g *Graph) ApplyHints(hints []Hint) {
	for _, h := range hints {
		from, ok := g.uniqueIndex(h.From)
		if !ok {
			logger.Logger.Debug("implicit call hint skipped", "import", h.From, "export", h.To)
			continue
		}
		to, ok := g.uniqueIndex(h.To)
		if !ok {
			logger.Logger.Debug("implicit call hint skipped", "import", h.From, "export", h.To)
			continue
		}
		g.addImplicit(from, to)
	}
}

func (g *Graph) uniqueIndex(name string) (uint32, bool) {
	found := -1
	for i := range g.Module.Functions {
		if g.Module.Functions[i].Resolved != name {
			continue
		}
		if found >= 0 {
			return 0, false
		}
		found = i
	}
	if found < 0 {
		return 0, false
	}
	return uint32(found), true
}
