// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

// Package inference exposes the four public clinical-text operations.
// Each delegates to the provider orchestrator when one is configured and
// falls back to the deterministic engines on any failure, so no operation
// ever returns an error to its caller.
package inference

import (
	"context"
	"log/slog"
	"sort"

	"github.com/clinscribe/clinscribe/internal/audit"
	"github.com/clinscribe/clinscribe/internal/extract"
	"github.com/clinscribe/clinscribe/internal/fallback"
	"github.com/clinscribe/clinscribe/internal/note"
	"github.com/clinscribe/clinscribe/internal/provider"
)

const auditActor = "inference"

// Audit action values. One "requested" per operation, then exactly one of
// "completed" (model path) or "fallback_used" (deterministic path).
const (
	actionRequested    = "requested"
	actionCompleted    = "completed"
	actionFallbackUsed = "fallback_used"
)

// Audit entity types, one per artifact.
const (
	entitySOAP     = "soap_note"
	entityCodes    = "icd10_suggestions"
	entityClarity  = "clarity_rewrite"
	entityReferral = "referral_content"
)

// Service is the inference facade. A nil orchestrator means no provider
// credential was configured; every request then routes straight to the
// fallback engines.
type Service struct {
	orch           *provider.Orchestrator
	audit          *audit.Emitter
	log            *slog.Logger
	maxSuggestions int
}

// NewService builds the facade. orch may be nil. maxSuggestions caps
// diagnosis-code output when the caller passes a non-positive max.
func NewService(orch *provider.Orchestrator, emitter *audit.Emitter, maxSuggestions int, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if maxSuggestions <= 0 {
		maxSuggestions = fallback.DefaultMaxSuggestions
	}
	return &Service{
		orch:           orch,
		audit:          emitter,
		log:            log,
		maxSuggestions: maxSuggestions,
	}
}

// Orchestrator returns the underlying orchestrator, or nil when no
// provider is configured. Used by the status and reset surfaces.
func (s *Service) Orchestrator() *provider.Orchestrator {
	return s.orch
}

// GenerateSOAP turns encounter text into a four-section SOAP note.
func (s *Service) GenerateSOAP(ctx context.Context, inputText string, source note.SourceKind) note.SOAPFields {
	s.emit(ctx, actionRequested, entitySOAP, map[string]any{
		"operation":   "generate_soap",
		"input_chars": len(inputText),
		"source":      string(source),
	})

	if fields, ok := s.soapFromModel(ctx, inputText, source); ok {
		s.emit(ctx, actionCompleted, entitySOAP, soapShape("generate_soap", fields))
		return fields
	}

	fields := fallback.SynthesizeSOAP(inputText)
	s.emit(ctx, actionFallbackUsed, entitySOAP, soapShape("generate_soap", fields))
	return fields
}

// ParseSingleNoteToSOAP splits an already-written note into SOAP sections.
// Explicit section labels win without any inference; the model pipeline is
// consulted only for unlabeled text.
func (s *Service) ParseSingleNoteToSOAP(ctx context.Context, noteText string) note.SOAPFields {
	s.emit(ctx, actionRequested, entitySOAP, map[string]any{
		"operation":   "parse_note",
		"input_chars": len(noteText),
	})

	if fields, ok := note.SplitLabeledSOAP(noteText); ok {
		details := soapShape("parse_note", fields)
		details["path"] = "label_split"
		s.emit(ctx, actionCompleted, entitySOAP, details)
		return fields
	}

	if fields, ok := s.soapFromModel(ctx, noteText, note.SourceFreeText); ok {
		s.emit(ctx, actionCompleted, entitySOAP, soapShape("parse_note", fields))
		return fields
	}

	fields := fallback.SynthesizeSOAP(noteText)
	s.emit(ctx, actionFallbackUsed, entitySOAP, soapShape("parse_note", fields))
	return fields
}

// SuggestDiagnosisCodes returns ICD-10 suggestions ordered by descending
// confidence, at most max entries. A non-positive max uses the configured
// default. The result is never empty.
func (s *Service) SuggestDiagnosisCodes(ctx context.Context, clinicalText string, max int) []note.ICD10Suggestion {
	if max <= 0 {
		max = s.maxSuggestions
	}

	s.emit(ctx, actionRequested, entityCodes, map[string]any{
		"operation":       "suggest_codes",
		"input_chars":     len(clinicalText),
		"max_suggestions": max,
	})

	if s.orch != nil {
		raw, err := s.orch.Infer(ctx, codesSystemPrompt, codesUserPrompt(clinicalText, max))
		if err == nil {
			var suggestions []note.ICD10Suggestion
			if exErr := extract.Array(raw, &suggestions); exErr == nil {
				if cleaned := sanitizeSuggestions(suggestions, max); len(cleaned) > 0 {
					s.emit(ctx, actionCompleted, entityCodes, map[string]any{
						"operation":   "suggest_codes",
						"suggestions": len(cleaned),
					})
					return cleaned
				}
				s.log.Warn("model returned no usable code suggestions, using fallback")
			} else {
				s.log.Warn("code suggestion extraction failed, using fallback", "error", exErr)
			}
		} else {
			s.log.Warn("code suggestion inference failed, using fallback", "error", err)
		}
	}

	suggestions := fallback.SuggestCodes(clinicalText, max)
	s.emit(ctx, actionFallbackUsed, entityCodes, map[string]any{
		"operation":   "suggest_codes",
		"suggestions": len(suggestions),
	})
	return suggestions
}

// RewriteForClarity expands abbreviations and normalizes formatting
// without changing clinical content.
func (s *Service) RewriteForClarity(ctx context.Context, text string) string {
	s.emit(ctx, actionRequested, entityClarity, map[string]any{
		"operation":   "rewrite_clarity",
		"input_chars": len(text),
	})

	if s.orch != nil {
		raw, err := s.orch.Infer(ctx, claritySystemPrompt, clarityUserPrompt(text))
		if err == nil {
			var payload struct {
				Rewritten string `json:"rewritten"`
			}
			if exErr := extract.Object(raw, &payload, "rewritten"); exErr == nil && payload.Rewritten != "" {
				s.emit(ctx, actionCompleted, entityClarity, map[string]any{
					"operation":    "rewrite_clarity",
					"output_chars": len(payload.Rewritten),
				})
				return payload.Rewritten
			} else if exErr != nil {
				s.log.Warn("clarity extraction failed, using fallback", "error", exErr)
			}
		} else {
			s.log.Warn("clarity inference failed, using fallback", "error", err)
		}
	}

	out := fallback.RewriteForClarity(text)
	s.emit(ctx, actionFallbackUsed, entityClarity, map[string]any{
		"operation":    "rewrite_clarity",
		"output_chars": len(out),
	})
	return out
}

// GenerateReferralContent drafts referral letter content from note fields.
func (s *Service) GenerateReferralContent(ctx context.Context, f note.Fields) note.ReferralContent {
	s.emit(ctx, actionRequested, entityReferral, map[string]any{
		"operation":   "generate_referral",
		"input_chars": len(f.Subjective) + len(f.Objective) + len(f.Assessment) + len(f.Plan) + len(f.RawText),
	})

	if s.orch != nil {
		raw, err := s.orch.Infer(ctx, referralSystemPrompt, referralUserPrompt(f))
		if err == nil {
			var content note.ReferralContent
			exErr := extract.Object(raw, &content,
				"clinicalSummary", "investigations", "treatmentGiven", "medications", "requestedAction")
			if exErr == nil {
				s.emit(ctx, actionCompleted, entityReferral, referralShape(content))
				return content
			}
			s.log.Warn("referral extraction failed, using fallback", "error", exErr)
		} else {
			s.log.Warn("referral inference failed, using fallback", "error", err)
		}
	}

	content := fallback.BuildReferralContent(f)
	s.emit(ctx, actionFallbackUsed, entityReferral, referralShape(content))
	return content
}

// soapFromModel runs the SOAP generation pipeline against the configured
// providers. Returns false on any failure so the caller falls back.
func (s *Service) soapFromModel(ctx context.Context, text string, source note.SourceKind) (note.SOAPFields, bool) {
	if s.orch == nil {
		return note.SOAPFields{}, false
	}

	raw, err := s.orch.Infer(ctx, soapSystemPrompt, soapUserPrompt(text, source))
	if err != nil {
		s.log.Warn("soap inference failed, using fallback", "error", err)
		return note.SOAPFields{}, false
	}

	var fields note.SOAPFields
	if err := extract.Object(raw, &fields, "subjective", "objective", "assessment", "plan"); err != nil {
		s.log.Warn("soap extraction failed, using fallback", "error", err)
		return note.SOAPFields{}, false
	}

	return fields, true
}

// sanitizeSuggestions enforces the output invariants on model-produced
// suggestions: non-empty codes, confidence clamped to [0,1], descending
// order, at most max entries.
func sanitizeSuggestions(in []note.ICD10Suggestion, max int) []note.ICD10Suggestion {
	out := make([]note.ICD10Suggestion, 0, len(in))
	for _, sug := range in {
		if sug.Code == "" {
			continue
		}
		if sug.Confidence < 0 {
			sug.Confidence = 0
		}
		if sug.Confidence > 1 {
			sug.Confidence = 1
		}
		out = append(out, sug)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})

	if len(out) > max {
		out = out[:max]
	}
	return out
}

// emit records an audit event. Failures are absorbed by the emitter.
func (s *Service) emit(ctx context.Context, action, entityType string, details map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, audit.NewEvent(auditActor, action, entityType, details))
}

// soapShape reports section sizes only, never clinical content.
func soapShape(operation string, f note.SOAPFields) map[string]any {
	return map[string]any{
		"operation":        operation,
		"subjective_chars": len(f.Subjective),
		"objective_chars":  len(f.Objective),
		"assessment_chars": len(f.Assessment),
		"plan_chars":       len(f.Plan),
	}
}

// referralShape reports which fields are populated, never their content.
func referralShape(c note.ReferralContent) map[string]any {
	return map[string]any{
		"operation":         "generate_referral",
		"summary_chars":     len(c.ClinicalSummary),
		"has_investigation": c.Investigations != fallback.PlaceholderNotDocumented,
		"has_treatment":     c.TreatmentGiven != fallback.PlaceholderNotDocumented,
		"has_medications":   c.Medications != fallback.PlaceholderPerPrescription,
	}
}
