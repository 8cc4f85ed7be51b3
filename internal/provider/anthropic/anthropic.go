// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package anthropic

import (
	"context"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/clinscribe/clinscribe/internal/provider"
	cserr "github.com/clinscribe/clinscribe/pkg/errors"
)

// DefaultModel is used when the candidate configuration names none.
const DefaultModel = "claude-sonnet-4-5"

const defaultMaxTokens = 2048

// Config holds Anthropic provider configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
}

// Provider implements provider.Provider using the Anthropic Messages API.
type Provider struct {
	client anthropicsdk.Client
	config Config
}

var _ provider.Provider = (*Provider)(nil)

// New creates a new Anthropic provider. Returns an error if the API key is
// missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, cserr.New(cserr.CodeProviderRequestInvalid,
			"anthropic: missing api_key in config", cserr.FieldProvider("anthropic"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		client: anthropicsdk.NewClient(opts...),
		config: cfg,
	}, nil
}

func (p *Provider) Name() string { return "anthropic" }

// Complete issues one Messages API call and returns the concatenated text
// blocks of the response.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (string, error) {
	msg, err := p.client.Messages.New(ctx, buildParams(req))
	if err != nil {
		return "", cserr.Wrap(err, cserr.CodeProviderUpstreamFailure,
			"anthropic: messages call failed", cserr.FieldProvider("anthropic"), cserr.FieldModel(req.Model))
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

func (p *Provider) Close() error { return nil }

// buildParams converts a CompletionRequest into Anthropic SDK
// MessageNewParams.
func buildParams(req provider.CompletionRequest) anthropicsdk.MessageNewParams {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := int64(req.Options.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(req.UserPrompt)),
		},
	}

	if req.SystemPrompt != "" {
		params.System = []anthropicsdk.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}

	if req.Options.Temperature != nil {
		params.Temperature = anthropicsdk.Float(float64(*req.Options.Temperature))
	}

	if req.Options.TopP != nil {
		params.TopP = anthropicsdk.Float(float64(*req.Options.TopP))
	}

	return params
}
