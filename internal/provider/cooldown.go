// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package provider

import (
	"sync"
	"time"

	cserr "github.com/clinscribe/clinscribe/pkg/errors"
)

// DefaultCooldown is the window during which a failed provider is excluded
// from candidate selection.
const DefaultCooldown = 5 * time.Minute

// CooldownTracker maps provider names to their last observed failure time.
// It is owned by one Orchestrator instance and shared by every in-flight
// request going through it. Races between concurrent requests are benign:
// a stale read costs at most one wasted attempt, never a wrong result.
type CooldownTracker struct {
	mu       sync.RWMutex
	failedAt map[string]time.Time
	cooldown time.Duration
	nowFunc  func() time.Time // for testing
}

// NewCooldownTracker creates a tracker with the given TTL. Returns an error
// if cooldown is zero or negative.
func NewCooldownTracker(cooldown time.Duration) (*CooldownTracker, error) {
	if cooldown <= 0 {
		return nil, cserr.Errorf(cserr.CodeConfigValidateInvalidValue,
			"cooldown must be positive, got %s", cooldown)
	}
	return &CooldownTracker{
		failedAt: make(map[string]time.Time),
		cooldown: cooldown,
		nowFunc:  time.Now,
	}, nil
}

// MarkFailure records the current time as the provider's last failure.
func (t *CooldownTracker) MarkFailure(name string) {
	t.mu.Lock()
	t.failedAt[name] = t.nowFunc()
	t.mu.Unlock()
}

// MarkSuccess clears the provider's failure record: a later success
// forgives a past failure.
func (t *CooldownTracker) MarkSuccess(name string) {
	t.mu.Lock()
	delete(t.failedAt, name)
	t.mu.Unlock()
}

// InCooldown reports whether the provider failed less than one TTL ago.
func (t *CooldownTracker) InCooldown(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inCooldownLocked(name)
}

func (t *CooldownTracker) inCooldownLocked(name string) bool {
	failed, ok := t.failedAt[name]
	if !ok {
		return false
	}
	return t.nowFunc().Sub(failed) < t.cooldown
}

// Eligible filters candidates to those not in cooldown, preserving order.
// When every candidate is cooling down it returns the full list unchanged —
// the full reset that keeps the orchestrator from locking itself out of all
// providers indefinitely.
func (t *CooldownTracker) Eligible(candidates []Candidate) []Candidate {
	t.mu.RLock()
	defer t.mu.RUnlock()

	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if t.inCooldownLocked(c.Name) {
			continue
		}
		eligible = append(eligible, c)
	}

	if len(eligible) == 0 {
		return candidates
	}
	return eligible
}

// Reset clears every failure record. Operator action.
func (t *CooldownTracker) Reset() {
	t.mu.Lock()
	t.failedAt = make(map[string]time.Time)
	t.mu.Unlock()
}

// CooldownStatus is a point-in-time view of one provider's failure state.
type CooldownStatus struct {
	Provider      string     `json:"provider"`
	InCooldown    bool       `json:"inCooldown"`
	LastFailureAt *time.Time `json:"lastFailureAt,omitempty"`
	CooldownUntil *time.Time `json:"cooldownUntil,omitempty"`
}

// Status returns the tracker's view of the named provider.
func (t *CooldownTracker) Status(name string) CooldownStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	status := CooldownStatus{Provider: name}
	failed, ok := t.failedAt[name]
	if !ok {
		return status
	}

	at := failed
	status.LastFailureAt = &at
	if t.inCooldownLocked(name) {
		status.InCooldown = true
		until := failed.Add(t.cooldown)
		status.CooldownUntil = &until
	}
	return status
}

// SetNowFunc overrides the time source (for testing).
func (t *CooldownTracker) SetNowFunc(fn func() time.Time) {
	t.mu.Lock()
	t.nowFunc = fn
	t.mu.Unlock()
}
