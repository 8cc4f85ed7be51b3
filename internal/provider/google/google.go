// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package google

import (
	"context"

	"google.golang.org/genai"

	"github.com/clinscribe/clinscribe/internal/provider"
	cserr "github.com/clinscribe/clinscribe/pkg/errors"
)

// DefaultModel is used when the candidate configuration names none.
const DefaultModel = "gemini-2.5-flash"

// Config holds Google provider configuration.
type Config struct {
	APIKey string
}

// Provider implements provider.Provider using the Google Gemini API.
type Provider struct {
	client *genai.Client
	config Config
}

var _ provider.Provider = (*Provider)(nil)

// New creates a new Google provider. Returns an error if the API key is
// missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, cserr.New(cserr.CodeProviderRequestInvalid,
			"google: missing api_key in config", cserr.FieldProvider("google"))
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, cserr.Wrapf(err, cserr.CodeProviderUpstreamFailure, "google: creating client")
	}

	return &Provider{
		client: client,
		config: cfg,
	}, nil
}

func (p *Provider) Name() string { return "google" }

// Complete issues one GenerateContent call and returns the response text.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: req.UserPrompt},
			},
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, buildConfig(req))
	if err != nil {
		return "", cserr.Wrap(err, cserr.CodeProviderUpstreamFailure,
			"google: generate content failed", cserr.FieldProvider("google"), cserr.FieldModel(model))
	}

	return resp.Text(), nil
}

func (p *Provider) Close() error { return nil }

// buildConfig converts a CompletionRequest into a genai.GenerateContentConfig.
func buildConfig(req provider.CompletionRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if req.Options.Temperature != nil {
		cfg.Temperature = genai.Ptr(*req.Options.Temperature)
	}

	if req.Options.TopP != nil {
		cfg.TopP = genai.Ptr(*req.Options.TopP)
	}

	if req.Options.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.Options.MaxTokens)
	}

	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: req.SystemPrompt},
			},
		}
	}

	return cfg
}
