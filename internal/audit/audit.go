// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

// Package audit constructs and emits write-once audit events describing
// inference requests and outcomes. The audit store itself is an external
// collaborator; this package only defines the event shape, the sink
// contract, and a fire-and-forget emitter whose failures never reach the
// inference caller.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event records one inference-related action. Details carries size/shape
// metadata only — never raw clinical content.
type Event struct {
	ID         string
	Actor      string
	Action     string
	EntityType string
	Details    map[string]any
	Timestamp  time.Time
}

// Sink accepts audit events. Implementations may buffer, forward, or drop;
// Append must be safe for concurrent use.
type Sink interface {
	Append(ctx context.Context, event *Event) error
}

// NewEvent stamps an event with a fresh ID and the current time.
func NewEvent(actor, action, entityType string, details map[string]any) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}
}

// SlogSink writes audit events to a structured logger. It is the default
// sink when no external audit collaborator is wired in.
type SlogSink struct {
	log *slog.Logger
}

// NewSlogSink creates a SlogSink. A nil logger falls back to slog.Default.
func NewSlogSink(log *slog.Logger) *SlogSink {
	if log == nil {
		log = slog.Default()
	}
	return &SlogSink{log: log}
}

func (s *SlogSink) Append(ctx context.Context, event *Event) error {
	s.log.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("event_id", event.ID),
		slog.String("actor", event.Actor),
		slog.String("action", event.Action),
		slog.String("entity_type", event.EntityType),
		slog.Any("details", event.Details),
		slog.Time("timestamp", event.Timestamp),
	)
	return nil
}

// MemorySink retains appended events in memory. Test use only.
type MemorySink struct {
	mu     sync.Mutex
	events []*Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Append(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of everything appended so far.
func (s *MemorySink) Events() []*Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Event(nil), s.events...)
}
