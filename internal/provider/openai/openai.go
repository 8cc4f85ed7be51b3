// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package openai

import (
	"context"

	"github.com/clinscribe/clinscribe/internal/provider"
	cserr "github.com/clinscribe/clinscribe/pkg/errors"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// DefaultModel is used when the candidate configuration names none.
const DefaultModel = "gpt-4.1"

// Config holds OpenAI provider configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
}

// Provider implements provider.Provider using the OpenAI Chat Completions
// API.
type Provider struct {
	client openaisdk.Client
	config Config
}

var _ provider.Provider = (*Provider)(nil)

// New creates a new OpenAI provider. Returns an error if the API key is
// missing.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, cserr.New(cserr.CodeProviderRequestInvalid,
			"openai: missing api_key in config", cserr.FieldProvider("openai"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		client: openaisdk.NewClient(opts...),
		config: cfg,
	}, nil
}

func (p *Provider) Name() string { return "openai" }

// Complete issues one Chat Completions call and returns the first choice's
// message content.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, buildParams(req))
	if err != nil {
		return "", cserr.Wrap(err, cserr.CodeProviderUpstreamFailure,
			"openai: chat completion failed", cserr.FieldProvider("openai"), cserr.FieldModel(req.Model))
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Close() error { return nil }

// buildParams converts a CompletionRequest into OpenAI SDK
// ChatCompletionNewParams. The system prompt rides as the first message.
func buildParams(req provider.CompletionRequest) openaisdk.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	var msgs []openaisdk.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		msgs = append(msgs, openaisdk.SystemMessage(req.SystemPrompt))
	}
	msgs = append(msgs, openaisdk.UserMessage(req.UserPrompt))

	params := openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: msgs,
	}

	if req.Options.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(req.Options.MaxTokens))
	}

	if req.Options.Temperature != nil {
		params.Temperature = param.NewOpt(float64(*req.Options.Temperature))
	}

	if req.Options.TopP != nil {
		params.TopP = param.NewOpt(float64(*req.Options.TopP))
	}

	return params
}
