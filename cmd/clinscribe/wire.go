// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package main

import (
	"log/slog"

	"github.com/clinscribe/clinscribe/internal/audit"
	"github.com/clinscribe/clinscribe/internal/config"
	"github.com/clinscribe/clinscribe/internal/inference"
	"github.com/clinscribe/clinscribe/internal/provider"
	anthropicprov "github.com/clinscribe/clinscribe/internal/provider/anthropic"
	googleprov "github.com/clinscribe/clinscribe/internal/provider/google"
	openaiprov "github.com/clinscribe/clinscribe/internal/provider/openai"
	cserr "github.com/clinscribe/clinscribe/pkg/errors"
)

// buildService wires providers, orchestrator and audit emitter from config.
// With no credentialed provider the orchestrator is nil and every request
// routes to the deterministic fallbacks.
func buildService(cfg *config.Config) (*inference.Service, error) {
	log := slog.Default()

	candidates, err := buildCandidates(cfg)
	if err != nil {
		return nil, err
	}

	var orch *provider.Orchestrator
	if len(candidates) > 0 {
		opts := provider.CompletionOptions{
			Temperature: &cfg.Inference.Temperature,
			MaxTokens:   cfg.Inference.MaxTokens,
			TopP:        &cfg.Inference.TopP,
		}
		orch, err = provider.NewOrchestrator(candidates,
			opts, cfg.Inference.AttemptTimeout, cfg.Inference.Cooldown, log)
		if err != nil {
			return nil, cserr.Wrap(err, cserr.CodeCLISetupFailure, "wiring orchestrator")
		}
	} else {
		log.Info("no provider credentials configured, using deterministic fallbacks only")
	}

	emitter := audit.NewEmitter(audit.NewSlogSink(log), log)

	return inference.NewService(orch, emitter, cfg.Inference.MaxSuggestions, log), nil
}

// buildCandidates walks the failover order and constructs a candidate for
// every provider that has a credential. Providers without one are skipped,
// not errors.
func buildCandidates(cfg *config.Config) ([]provider.Candidate, error) {
	var candidates []provider.Candidate

	for _, name := range cfg.Inference.Failover {
		pcfg, ok := cfg.Providers[name]
		if !ok || pcfg.APIKey == "" {
			continue
		}

		var (
			p     provider.Provider
			model string
			err   error
		)
		switch name {
		case "anthropic":
			p, err = anthropicprov.New(anthropicprov.Config{APIKey: pcfg.APIKey, BaseURL: pcfg.Endpoint})
			model = orDefault(pcfg.Model, anthropicprov.DefaultModel)
		case "openai":
			p, err = openaiprov.New(openaiprov.Config{APIKey: pcfg.APIKey, BaseURL: pcfg.Endpoint})
			model = orDefault(pcfg.Model, openaiprov.DefaultModel)
		case "google":
			p, err = googleprov.New(googleprov.Config{APIKey: pcfg.APIKey})
			model = orDefault(pcfg.Model, googleprov.DefaultModel)
		default:
			// Unreachable after config validation.
			continue
		}
		if err != nil {
			return nil, cserr.Wrapf(err, cserr.CodeCLISetupFailure, "wiring provider %s", name)
		}

		candidates = append(candidates, provider.Candidate{
			Name:     name,
			Model:    model,
			Provider: p,
		})
	}

	return candidates, nil
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
