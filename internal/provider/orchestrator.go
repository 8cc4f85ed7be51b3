// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package provider

import (
	"context"
	"log/slog"
	"strings"
	"time"

	cserr "github.com/clinscribe/clinscribe/pkg/errors"
)

// DefaultAttemptTimeout bounds one provider attempt.
const DefaultAttemptTimeout = 30 * time.Second

// Orchestrator walks an ordered candidate list sequentially until one
// provider returns non-empty content. Candidates are never probed in
// parallel: list order is a quality ranking, and sequential probing keeps
// rate-limit consumption and latency bounded and deterministic.
type Orchestrator struct {
	candidates     []Candidate
	tracker        *CooldownTracker
	attemptTimeout time.Duration
	options        CompletionOptions
	log            *slog.Logger
}

// attemptResult is the explicit per-attempt outcome consumed by the
// failover loop. Every exit path of an attempt is a value, not a thrown
// control transfer.
type attemptResult struct {
	provider string
	content  string
	err      error
}

func (r attemptResult) ok() bool {
	return r.err == nil
}

// NewOrchestrator builds an Orchestrator over candidates in priority order.
// attemptTimeout and cooldown fall back to the package defaults when zero.
func NewOrchestrator(candidates []Candidate, opts CompletionOptions, attemptTimeout, cooldown time.Duration, log *slog.Logger) (*Orchestrator, error) {
	if len(candidates) == 0 {
		return nil, cserr.New(cserr.CodeProviderNoCandidates, "no provider candidates configured")
	}
	for _, c := range candidates {
		if c.Provider == nil {
			return nil, cserr.New(cserr.CodeProviderNotFound,
				"candidate has no provider instance", cserr.FieldProvider(c.Name))
		}
	}

	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if log == nil {
		log = slog.Default()
	}

	tracker, err := NewCooldownTracker(cooldown)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		candidates:     append([]Candidate(nil), candidates...),
		tracker:        tracker,
		attemptTimeout: attemptTimeout,
		options:        opts,
		log:            log,
	}, nil
}

// Tracker exposes the cooldown state for the status surface and operator
// reset. The orchestrator remains the tracker's owner.
func (o *Orchestrator) Tracker() *CooldownTracker {
	return o.tracker
}

// Candidates returns the configured candidate names in priority order.
func (o *Orchestrator) Candidates() []string {
	names := make([]string, 0, len(o.candidates))
	for _, c := range o.candidates {
		names = append(names, c.Name)
	}
	return names
}

// Infer attempts each eligible candidate in priority order under the
// per-attempt timeout and returns the first non-empty content. A non-success
// response, a timed-out attempt, and blank content are treated identically:
// record the failure and try the next candidate. When every candidate fails
// the aggregate error carries each per-provider reason; that error is the
// fallback trigger, never a user-facing failure.
func (o *Orchestrator) Infer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", cserr.New(cserr.CodeProviderRequestInvalid, "user prompt must not be empty")
	}

	eligible := o.tracker.Eligible(o.candidates)

	var reasons []error
	for _, candidate := range eligible {
		// An outer deadline aborts the sequential loop between attempts.
		if err := ctx.Err(); err != nil {
			reasons = append(reasons, cserr.Wrap(err, cserr.CodeProviderAttemptTimeout,
				"request cancelled before attempt", cserr.FieldProvider(candidate.Name)))
			break
		}

		result := o.attempt(ctx, candidate, systemPrompt, userPrompt)
		if result.ok() {
			o.tracker.MarkSuccess(candidate.Name)
			return result.content, nil
		}

		o.tracker.MarkFailure(candidate.Name)
		o.log.Debug("provider attempt failed",
			"provider", candidate.Name,
			"error", result.err,
		)
		reasons = append(reasons, result.err)
	}

	return "", cserr.Wrap(cserr.Join(reasons...), cserr.CodeProviderAllUnavailable,
		"all providers failed", cserr.Field("attempts", len(reasons)))
}

// attempt issues one bounded provider call and folds its three failure
// shapes (upstream error, timeout, blank content) into attemptResult.
func (o *Orchestrator) attempt(ctx context.Context, candidate Candidate, systemPrompt, userPrompt string) attemptResult {
	attemptCtx, cancel := context.WithTimeout(ctx, o.attemptTimeout)
	defer cancel()

	content, err := candidate.Provider.Complete(attemptCtx, CompletionRequest{
		Model:        candidate.Model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Options:      o.options,
	})

	switch {
	case attemptCtx.Err() != nil && err != nil:
		return attemptResult{provider: candidate.Name, err: cserr.Wrap(err,
			cserr.CodeProviderAttemptTimeout, "attempt timed out", cserr.FieldProvider(candidate.Name))}
	case err != nil:
		return attemptResult{provider: candidate.Name, err: cserr.Wrap(err,
			cserr.CodeProviderUpstreamFailure, "provider call failed", cserr.FieldProvider(candidate.Name))}
	case strings.TrimSpace(content) == "":
		return attemptResult{provider: candidate.Name, err: cserr.New(
			cserr.CodeProviderResponseEmpty, "provider returned blank content", cserr.FieldProvider(candidate.Name))}
	}

	return attemptResult{provider: candidate.Name, content: content}
}

// Close shuts down every distinct provider once.
func (o *Orchestrator) Close() error {
	closed := make(map[Provider]bool)
	var errs []error
	for _, c := range o.candidates {
		if closed[c.Provider] {
			continue
		}
		closed[c.Provider] = true
		if err := c.Provider.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return cserr.Join(errs...)
	}
	return nil
}
