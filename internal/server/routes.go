// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/clinscribe/clinscribe/internal/note"
	"github.com/clinscribe/clinscribe/internal/provider"
)

func (s *Server) registerRoutes() {
	// Note endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "generate-soap",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes/soap",
		Summary:     "Generate a SOAP note from encounter text",
		Tags:        []string{"notes"},
	}, s.handleGenerateSOAP)

	huma.Register(s.api, huma.Operation{
		OperationID: "parse-note",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes/parse",
		Summary:     "Split an existing note into SOAP sections",
		Tags:        []string{"notes"},
	}, s.handleParseNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "rewrite-clarity",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes/clarity",
		Summary:     "Rewrite clinical text for clarity",
		Tags:        []string{"notes"},
	}, s.handleRewriteClarity)

	// Coding endpoint
	huma.Register(s.api, huma.Operation{
		OperationID: "suggest-codes",
		Method:      http.MethodPost,
		Path:        "/api/v1/codes/suggest",
		Summary:     "Suggest ICD-10 diagnosis codes",
		Tags:        []string{"codes"},
	}, s.handleSuggestCodes)

	// Referral endpoint
	huma.Register(s.api, huma.Operation{
		OperationID: "referral-content",
		Method:      http.MethodPost,
		Path:        "/api/v1/referrals/content",
		Summary:     "Draft referral letter content from note fields",
		Tags:        []string{"referrals"},
	}, s.handleReferralContent)

	// Provider endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "provider-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/providers/status",
		Summary:     "Provider cooldown status",
		Tags:        []string{"providers"},
	}, s.handleProviderStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "reset-providers",
		Method:      http.MethodPost,
		Path:        "/api/v1/providers/reset",
		Summary:     "Clear all provider cooldowns",
		Tags:        []string{"providers"},
	}, s.handleResetProviders)
}

// --- Request/Response types for huma ---

type generateSOAPInput struct {
	Body struct {
		Text   string `json:"text" minLength:"1" doc:"Encounter text"`
		Source string `json:"source,omitempty" enum:"transcript,free_text" doc:"Where the text came from"`
	}
}
type soapOutput struct {
	Body note.SOAPFields
}

type parseNoteInput struct {
	Body struct {
		Text string `json:"text" minLength:"1" doc:"Existing note text"`
	}
}

type rewriteClarityInput struct {
	Body struct {
		Text string `json:"text" minLength:"1" doc:"Clinical text to rewrite"`
	}
}
type rewriteClarityOutput struct {
	Body struct {
		Rewritten string `json:"rewritten" doc:"Clarity-improved text"`
	}
}

type suggestCodesInput struct {
	Body struct {
		Text           string `json:"text" minLength:"1" doc:"Clinical text"`
		MaxSuggestions int    `json:"max_suggestions,omitempty" minimum:"0" doc:"Cap on returned suggestions; 0 uses the configured default"`
	}
}
type suggestCodesOutput struct {
	Body struct {
		Suggestions []note.ICD10Suggestion `json:"suggestions"`
	}
}

type referralContentInput struct {
	Body note.Fields
}
type referralContentOutput struct {
	Body note.ReferralContent
}

type providerStatusOutput struct {
	Body struct {
		Configured bool                      `json:"configured" doc:"Whether any provider credential is configured"`
		Providers  []provider.CooldownStatus `json:"providers"`
	}
}

type resetProvidersOutput struct {
	Body struct {
		Status string `json:"status" example:"reset" doc:"Reset outcome"`
	}
}

// --- Handlers ---
//
// The facade never returns an error: every operation terminates in a
// well-typed result even when all providers and the extractor fail.

func (s *Server) handleGenerateSOAP(ctx context.Context, input *generateSOAPInput) (*soapOutput, error) {
	source := note.SourceKind(input.Body.Source)
	if source == "" {
		source = note.SourceFreeText
	}
	return &soapOutput{Body: s.svc.GenerateSOAP(ctx, input.Body.Text, source)}, nil
}

func (s *Server) handleParseNote(ctx context.Context, input *parseNoteInput) (*soapOutput, error) {
	return &soapOutput{Body: s.svc.ParseSingleNoteToSOAP(ctx, input.Body.Text)}, nil
}

func (s *Server) handleRewriteClarity(ctx context.Context, input *rewriteClarityInput) (*rewriteClarityOutput, error) {
	out := &rewriteClarityOutput{}
	out.Body.Rewritten = s.svc.RewriteForClarity(ctx, input.Body.Text)
	return out, nil
}

func (s *Server) handleSuggestCodes(ctx context.Context, input *suggestCodesInput) (*suggestCodesOutput, error) {
	out := &suggestCodesOutput{}
	out.Body.Suggestions = s.svc.SuggestDiagnosisCodes(ctx, input.Body.Text, input.Body.MaxSuggestions)
	return out, nil
}

func (s *Server) handleReferralContent(ctx context.Context, input *referralContentInput) (*referralContentOutput, error) {
	return &referralContentOutput{Body: s.svc.GenerateReferralContent(ctx, input.Body)}, nil
}

func (s *Server) handleProviderStatus(_ context.Context, _ *struct{}) (*providerStatusOutput, error) {
	out := &providerStatusOutput{}
	out.Body.Providers = []provider.CooldownStatus{}

	orch := s.svc.Orchestrator()
	if orch == nil {
		return out, nil
	}

	out.Body.Configured = true
	tracker := orch.Tracker()
	for _, name := range orch.Candidates() {
		out.Body.Providers = append(out.Body.Providers, tracker.Status(name))
	}
	return out, nil
}

func (s *Server) handleResetProviders(_ context.Context, _ *struct{}) (*resetProvidersOutput, error) {
	out := &resetProvidersOutput{}
	out.Body.Status = "reset"

	if orch := s.svc.Orchestrator(); orch != nil {
		orch.Tracker().Reset()
	} else {
		out.Body.Status = "no providers configured"
	}
	return out, nil
}
