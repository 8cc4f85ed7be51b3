// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package inference_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinscribe/clinscribe/internal/audit"
	"github.com/clinscribe/clinscribe/internal/inference"
	"github.com/clinscribe/clinscribe/internal/note"
	"github.com/clinscribe/clinscribe/internal/provider"
)

// scriptedProvider returns a fixed response or error and records calls.
type scriptedProvider struct {
	response string
	err      error
	calls    int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, _ provider.CompletionRequest) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func (p *scriptedProvider) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newService builds a facade over a single scripted provider. A nil
// provider builds the no-credential facade.
func newService(t *testing.T, p provider.Provider) (*inference.Service, *audit.MemorySink) {
	t.Helper()

	sink := audit.NewMemorySink()
	emitter := audit.NewEmitter(sink, discardLogger())

	var orch *provider.Orchestrator
	if p != nil {
		var err error
		orch, err = provider.NewOrchestrator(
			[]provider.Candidate{{Name: "scripted", Model: "test-model", Provider: p}},
			provider.CompletionOptions{},
			time.Second,
			time.Minute,
			discardLogger(),
		)
		require.NoError(t, err)
	}

	return inference.NewService(orch, emitter, 8, discardLogger()), sink
}

func actions(sink *audit.MemorySink) []string {
	var out []string
	for _, ev := range sink.Events() {
		out = append(out, ev.Action)
	}
	return out
}

func TestGenerateSOAP_NoProviderUsesFallback(t *testing.T) {
	svc, sink := newService(t, nil)

	fields := svc.GenerateSOAP(context.Background(), "persistent headache for three days", note.SourceFreeText)

	assert.Contains(t, fields.Objective, "meningeal signs")
	assert.Contains(t, fields.Assessment, "tension-type headache versus migraine")
	assert.Equal(t, []string{"requested", "fallback_used"}, actions(sink))
}

func TestGenerateSOAP_NeverPanicsOnAnyInput(t *testing.T) {
	svc, _ := newService(t, nil)

	for _, input := range []string{"", "   ", "x", strings.Repeat("fever ", 500)} {
		fields := svc.GenerateSOAP(context.Background(), input, note.SourceTranscript)
		assert.NotEmpty(t, fields.Plan)
	}
}

func TestGenerateSOAP_ModelPath(t *testing.T) {
	p := &scriptedProvider{response: `Here is the note:
{"subjective": "Cough for two days", "objective": "Chest clear", "assessment": "URTI", "plan": "Fluids and rest"}
Let me know if you need anything else.`}
	svc, sink := newService(t, p)

	fields := svc.GenerateSOAP(context.Background(), "pt with cough x2/7", note.SourceTranscript)

	assert.Equal(t, "Cough for two days", fields.Subjective)
	assert.Equal(t, "URTI", fields.Assessment)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, []string{"requested", "completed"}, actions(sink))
}

func TestGenerateSOAP_ProviderFailureFallsBack(t *testing.T) {
	p := &scriptedProvider{err: errors.New("upstream down")}
	svc, sink := newService(t, p)

	fields := svc.GenerateSOAP(context.Background(), "severe malaria symptoms", note.SourceFreeText)

	assert.NotEmpty(t, fields.Assessment)
	assert.Equal(t, []string{"requested", "fallback_used"}, actions(sink))
}

func TestGenerateSOAP_ExtractionFailureFallsBack(t *testing.T) {
	p := &scriptedProvider{response: `{"subjective": "only one section"}`}
	svc, sink := newService(t, p)

	fields := svc.GenerateSOAP(context.Background(), "severe malaria symptoms", note.SourceFreeText)

	assert.NotEmpty(t, fields.Plan)
	assert.Equal(t, []string{"requested", "fallback_used"}, actions(sink))
}

func TestParseSingleNoteToSOAP_LabelSplitSkipsInference(t *testing.T) {
	p := &scriptedProvider{response: "unused"}
	svc, sink := newService(t, p)

	text := "Subjective: headache\nObjective: afebrile\nAssessment: tension headache\nPlan: paracetamol"
	fields := svc.ParseSingleNoteToSOAP(context.Background(), text)

	assert.Equal(t, "headache", fields.Subjective)
	assert.Equal(t, "paracetamol", fields.Plan)
	assert.Zero(t, p.calls)
	assert.Equal(t, []string{"requested", "completed"}, actions(sink))
}

func TestParseSingleNoteToSOAP_UnlabeledUsesModel(t *testing.T) {
	p := &scriptedProvider{response: `{"subjective": "s", "objective": "o", "assessment": "a", "plan": "p"}`}
	svc, _ := newService(t, p)

	fields := svc.ParseSingleNoteToSOAP(context.Background(), "free text note without labels")

	assert.Equal(t, "a", fields.Assessment)
	assert.Equal(t, 1, p.calls)
}

func TestSuggestDiagnosisCodes_SanitizesModelOutput(t *testing.T) {
	p := &scriptedProvider{response: `[
		{"code": "J06.9", "description": "URTI", "confidence": 0.4},
		{"code": "", "description": "dropped", "confidence": 0.9},
		{"code": "B50.9", "description": "Malaria", "confidence": 1.7},
		{"code": "R50.9", "description": "Fever", "confidence": -0.2}
	]`}
	svc, sink := newService(t, p)

	got := svc.SuggestDiagnosisCodes(context.Background(), "fever", 2)

	require.Len(t, got, 2)
	assert.Equal(t, "B50.9", got[0].Code)
	assert.Equal(t, 1.0, got[0].Confidence)
	assert.Equal(t, "J06.9", got[1].Code)
	assert.Equal(t, []string{"requested", "completed"}, actions(sink))
}

func TestSuggestDiagnosisCodes_NoProviderUsesFallback(t *testing.T) {
	svc, sink := newService(t, nil)

	got := svc.SuggestDiagnosisCodes(context.Background(), "patient has malaria symptoms, RDT positive", 8)

	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 8)
	var foundMalaria bool
	for _, s := range got {
		if s.Code == "B50.9" {
			foundMalaria = true
			assert.Greater(t, s.Confidence, 0.6)
			assert.LessOrEqual(t, s.Confidence, 0.95)
		}
	}
	assert.True(t, foundMalaria)
	assert.Equal(t, []string{"requested", "fallback_used"}, actions(sink))
}

func TestSuggestDiagnosisCodes_NormalizesNonPositiveMax(t *testing.T) {
	svc, _ := newService(t, nil)

	got := svc.SuggestDiagnosisCodes(context.Background(), "no catalog match here", -1)

	require.Len(t, got, 2)
	assert.Equal(t, "R69", got[0].Code)
	assert.Equal(t, "Z00.0", got[1].Code)
}

func TestSuggestDiagnosisCodes_EmptyModelArrayFallsBack(t *testing.T) {
	p := &scriptedProvider{response: `[]`}
	svc, sink := newService(t, p)

	got := svc.SuggestDiagnosisCodes(context.Background(), "fever", 8)

	require.NotEmpty(t, got)
	assert.Equal(t, []string{"requested", "fallback_used"}, actions(sink))
}

func TestRewriteForClarity_ModelPath(t *testing.T) {
	p := &scriptedProvider{response: `{"rewritten": "Patient complaining of chest pain."}`}
	svc, sink := newService(t, p)

	got := svc.RewriteForClarity(context.Background(), "pt c/o cp")

	assert.Equal(t, "Patient complaining of chest pain.", got)
	assert.Equal(t, []string{"requested", "completed"}, actions(sink))
}

func TestRewriteForClarity_FallbackExpandsAbbreviations(t *testing.T) {
	svc, _ := newService(t, nil)

	got := svc.RewriteForClarity(context.Background(), "pt c/o cp and sob x2 days")

	assert.True(t, strings.HasPrefix(got, "Patient complaining of chest pain and shortness of breath"), got)
}

func TestGenerateReferralContent_ModelPath(t *testing.T) {
	p := &scriptedProvider{response: `{
		"clinicalSummary": "Severe malaria",
		"investigations": "RDT positive",
		"treatmentGiven": "IV fluids",
		"medications": "Artesunate 120mg IV stat",
		"requestedAction": "Kindly admit"
	}`}
	svc, sink := newService(t, p)

	got := svc.GenerateReferralContent(context.Background(), note.Fields{Assessment: "Severe malaria"})

	assert.Equal(t, "Severe malaria", got.ClinicalSummary)
	assert.Equal(t, "Kindly admit", got.RequestedAction)
	assert.Equal(t, []string{"requested", "completed"}, actions(sink))
}

func TestGenerateReferralContent_FallbackNeverFabricates(t *testing.T) {
	svc, _ := newService(t, nil)

	got := svc.GenerateReferralContent(context.Background(), note.Fields{})

	assert.Equal(t, "Not documented", got.Investigations)
	assert.Equal(t, "Not documented", got.TreatmentGiven)
	assert.Equal(t, "As per prescription", got.Medications)
}

func TestAuditDetailsCarryNoClinicalContent(t *testing.T) {
	svc, sink := newService(t, nil)

	const secret = "patient admits heavy alcohol use"
	svc.GenerateSOAP(context.Background(), secret, note.SourceFreeText)
	svc.SuggestDiagnosisCodes(context.Background(), secret, 8)
	svc.RewriteForClarity(context.Background(), secret)

	for _, ev := range sink.Events() {
		for key, val := range ev.Details {
			if s, ok := val.(string); ok {
				assert.NotContains(t, s, "alcohol", "detail %q leaked content", key)
			}
		}
	}
}
