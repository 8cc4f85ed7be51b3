// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// EscalationThreshold is the number of consecutive append failures after
// which the emitter logs at Error instead of Warn. Operators get visibility
// into a persistently broken sink without the log flooding on one blip.
const EscalationThreshold = 3

// Emitter wraps a Sink with fire-and-forget semantics: Emit never returns
// an error and never panics, because clinical workflows must not be blocked
// by a failing audit collaborator.
type Emitter struct {
	sink        Sink
	log         *slog.Logger
	consecutive atomic.Int64
}

// NewEmitter creates an Emitter. A nil sink disables emission entirely; a
// nil logger falls back to slog.Default.
func NewEmitter(sink Sink, log *slog.Logger) *Emitter {
	if log == nil {
		log = slog.Default()
	}
	return &Emitter{sink: sink, log: log}
}

// Emit appends the event, swallowing any sink failure after logging it at
// an escalating level.
func (e *Emitter) Emit(ctx context.Context, event *Event) {
	if e.sink == nil {
		return
	}

	if err := e.sink.Append(ctx, event); err != nil {
		consecutive := e.consecutive.Add(1)
		level := slog.LevelWarn
		if consecutive >= EscalationThreshold {
			level = slog.LevelError
		}
		e.log.LogAttrs(ctx, level, "audit append failed",
			slog.String("action", event.Action),
			slog.Int64("consecutive_failures", consecutive),
			slog.Any("error", err),
		)
		return
	}

	e.consecutive.Store(0)
}

// ConsecutiveFailures returns the current consecutive append failure count.
func (e *Emitter) ConsecutiveFailures() int64 {
	return e.consecutive.Load()
}
