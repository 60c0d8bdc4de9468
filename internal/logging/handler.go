package logging

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
)

// SwappableHandler forwards records to a handler that can be replaced at
// runtime. Handlers derived with WithAttrs or WithGroup share the same
// target, so loggers created in bootstrap mode follow a later Swap.
type SwappableHandler struct {
	target *atomic.Pointer[slog.Handler]
	derive []func(slog.Handler) slog.Handler
}

// NewSwappableHandler creates a handler forwarding to initial.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	sh := &SwappableHandler{target: new(atomic.Pointer[slog.Handler])}
	sh.target.Store(&initial)
	return sh
}

// Swap replaces the target for this handler and every handler derived from it.
func (sh *SwappableHandler) Swap(next slog.Handler) {
	sh.target.Store(&next)
}

func (sh *SwappableHandler) current() slog.Handler {
	h := *sh.target.Load()
	for _, d := range sh.derive {
		h = d(h)
	}
	return h
}

func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.current().Enabled(ctx, level)
}

func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return sh.current().Handle(ctx, r)
}

func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	attrs = slices.Clone(attrs)
	return sh.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	return sh.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (sh *SwappableHandler) with(d func(slog.Handler) slog.Handler) *SwappableHandler {
	derive := make([]func(slog.Handler) slog.Handler, 0, len(sh.derive)+1)
	derive = append(derive, sh.derive...)
	return &SwappableHandler{target: sh.target, derive: append(derive, d)}
}
