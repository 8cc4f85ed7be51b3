// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/clinscribe/clinscribe/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct {
	calls int
}

func (f *failingSink) Append(_ context.Context, _ *audit.Event) error {
	f.calls++
	return errors.New("sink down")
}

func TestNewEvent_StampsIDAndTime(t *testing.T) {
	ev := audit.NewEvent("system", "soap_requested", "soap_note", map[string]any{"input_chars": 42})

	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Timestamp.IsZero())
	assert.Equal(t, "soap_requested", ev.Action)
	assert.Equal(t, "soap_note", ev.EntityType)
	assert.Equal(t, 42, ev.Details["input_chars"])
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a := audit.NewEvent("system", "a", "t", nil)
	b := audit.NewEvent("system", "a", "t", nil)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestMemorySink_RecordsEvents(t *testing.T) {
	sink := audit.NewMemorySink()
	ctx := context.Background()

	require.NoError(t, sink.Append(ctx, audit.NewEvent("system", "first", "t", nil)))
	require.NoError(t, sink.Append(ctx, audit.NewEvent("system", "second", "t", nil)))

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].Action)
	assert.Equal(t, "second", events[1].Action)
}

func TestEmitter_SwallowsSinkFailure(t *testing.T) {
	sink := &failingSink{}
	emitter := audit.NewEmitter(sink, nil)

	// Must not panic or propagate.
	emitter.Emit(context.Background(), audit.NewEvent("system", "a", "t", nil))
	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, int64(1), emitter.ConsecutiveFailures())
}

func TestEmitter_FailureCountEscalatesAndResets(t *testing.T) {
	sink := &failingSink{}
	emitter := audit.NewEmitter(sink, nil)
	ctx := context.Background()

	for i := 0; i < audit.EscalationThreshold+1; i++ {
		emitter.Emit(ctx, audit.NewEvent("system", "a", "t", nil))
	}
	assert.Equal(t, int64(audit.EscalationThreshold+1), emitter.ConsecutiveFailures())
}

func TestEmitter_SuccessResetsCount(t *testing.T) {
	sink := audit.NewMemorySink()
	emitter := audit.NewEmitter(sink, nil)
	ctx := context.Background()

	emitter.Emit(ctx, audit.NewEvent("system", "a", "t", nil))
	assert.Equal(t, int64(0), emitter.ConsecutiveFailures())
}

func TestEmitter_NilSinkIsNoop(t *testing.T) {
	emitter := audit.NewEmitter(nil, nil)
	emitter.Emit(context.Background(), audit.NewEvent("system", "a", "t", nil))
	assert.Equal(t, int64(0), emitter.ConsecutiveFailures())
}
