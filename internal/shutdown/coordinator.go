// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

// Package shutdown runs cleanup hooks when the process winds down.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dotandev/wasmgraph/internal/logger"
)

// HookFunc is one cleanup action. It must respect ctx: the coordinator
// slices its deadline across the hooks still pending.
type HookFunc func(context.Context) error

type hook struct {
	name string
	fn   HookFunc
}

// Coordinator collects named cleanup hooks and runs them exactly once,
// newest first, when Run is called.
type Coordinator struct {
	mu    sync.Mutex
	hooks []hook
	ran   bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Register adds a hook. A nil fn and registration after Run are no-ops.
func (c *Coordinator) Register(name string, fn HookFunc) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ran {
		return
	}
	c.hooks = append(c.hooks, hook{name: name, fn: fn})
}

// Run executes the hooks in LIFO order and joins their errors. Only
// the first call runs anything; later calls return nil.
func (c *Coordinator) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.ran {
		c.mu.Unlock()
		return nil
	}
	c.ran = true
	hooks := c.hooks
	c.hooks = nil
	c.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		hookCtx, cancel := sliceDeadline(ctx, i+1)
		logger.Logger.Debug("Running shutdown hook", "hook", h.name)
		if err := h.fn(hookCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
		}
		cancel()
	}
	return errors.Join(errs...)
}

// sliceDeadline gives one hook an even share of the time remaining on
// ctx, counting the hooks still queued behind it.
func sliceDeadline(ctx context.Context, pending int) (context.Context, context.CancelFunc) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return ctx, func() {}
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return context.WithTimeout(ctx, time.Millisecond)
	}
	share := remaining / time.Duration(pending)
	if share <= 0 {
		share = remaining
	}
	return context.WithTimeout(ctx, share)
}
