// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package provider_test

import (
	"context"
	"errors"
	"sync"

	"github.com/clinscribe/clinscribe/internal/provider"
)

// fakeProvider scripts Complete outcomes for orchestrator tests and records
// every request it receives.
type fakeProvider struct {
	mu       sync.Mutex
	name     string
	content  string
	err      error
	blockCtx bool // when true, Complete blocks until ctx is done
	requests []provider.CompletionRequest
}

var _ provider.Provider = (*fakeProvider)(nil)

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, req provider.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.blockCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func (f *fakeProvider) Close() error { return nil }

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeProvider) lastRequest() provider.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return provider.CompletionRequest{}
	}
	return f.requests[len(f.requests)-1]
}

var errUpstream = errors.New("upstream exploded")
