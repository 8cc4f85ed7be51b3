// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

// Package provider defines the language-model provider contract and the
// failover orchestration over an ordered candidate list.
package provider

import (
	"context"
)

// Provider is the core interface for LLM completion providers. One call to
// Complete issues exactly one upstream request carrying a system prompt, a
// user prompt, and sampling parameters, and returns the full text payload.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Close() error
}

// CompletionRequest is a single-shot inference request.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Options      CompletionOptions
}

// CompletionOptions carries sampling configuration. Nil pointer fields mean
// "provider default".
type CompletionOptions struct {
	Temperature *float32
	MaxTokens   int
	TopP        *float32
}

// Candidate pairs a registered provider with the model it should run. The
// position of a Candidate in the orchestrator's list is its priority.
type Candidate struct {
	Name     string
	Model    string
	Provider Provider
}
