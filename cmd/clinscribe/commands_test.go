// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinscribe/clinscribe/internal/note"
	"github.com/clinscribe/clinscribe/internal/secrets"
	cserr "github.com/clinscribe/clinscribe/pkg/errors"
)

// mockSecretStore is an in-memory secrets.Store for testing.
type mockSecretStore struct {
	data map[string]string
}

func newMockSecretStore(keys ...string) *mockSecretStore {
	m := &mockSecretStore{data: make(map[string]string)}
	for _, k := range keys {
		m.data[k] = "redacted"
	}
	return m
}

func (m *mockSecretStore) Store(_, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *mockSecretStore) Retrieve(_, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", cserr.Errorf(cserr.CodeSecretNotFound, "not found")
	}
	return v, nil
}

func (m *mockSecretStore) Delete(_, key string) error {
	if _, ok := m.data[key]; !ok {
		return cserr.Errorf(cserr.CodeSecretNotFound, "not found")
	}
	delete(m.data, key)
	return nil
}

// withMockSecretStore swaps the store factory for the test's duration.
func withMockSecretStore(t *testing.T, m *mockSecretStore) {
	t.Helper()
	prev := secretStoreFactory
	secretStoreFactory = func() secrets.Store { return m }
	t.Cleanup(func() { secretStoreFactory = prev })
}

// fallbackOnlyConfig writes a config with no provider credentials so
// commands exercise the deterministic fallback path.
func fallbackOnlyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clinscribe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: 127.0.0.1:8754\n"), 0o600))
	return path
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "clinscribe dev")
}

func TestSoapCommand_FallbackPath(t *testing.T) {
	cfg := fallbackOnlyConfig(t)
	notePath := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(notePath, []byte("persistent headache for three days"), 0o600))

	out, err := executeCommand(t, "", "-c", cfg, "soap", notePath)
	require.NoError(t, err)

	var fields note.SOAPFields
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	assert.Contains(t, fields.Objective, "meningeal signs")
}

func TestSoapCommand_RejectsUnknownSource(t *testing.T) {
	cfg := fallbackOnlyConfig(t)

	_, err := executeCommand(t, "headache", "-c", cfg, "soap", "--source", "dictation")
	require.Error(t, err)
	assert.True(t, cserr.HasCode(err, cserr.CodeCLIInputInvalid))
}

func TestSoapCommand_EmptyInput(t *testing.T) {
	cfg := fallbackOnlyConfig(t)

	_, err := executeCommand(t, "   \n", "-c", cfg, "soap")
	require.Error(t, err)
	assert.True(t, cserr.HasCode(err, cserr.CodeCLIInputInvalid))
}

func TestParseCommand_LabeledNote(t *testing.T) {
	cfg := fallbackOnlyConfig(t)
	stdin := "Subjective: headache\nObjective: afebrile\nAssessment: tension headache\nPlan: rest"

	out, err := executeCommand(t, stdin, "-c", cfg, "parse")
	require.NoError(t, err)

	var fields note.SOAPFields
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	assert.Equal(t, "tension headache", fields.Assessment)
}

func TestCodesCommand(t *testing.T) {
	cfg := fallbackOnlyConfig(t)

	out, err := executeCommand(t, "patient has malaria symptoms, RDT positive", "-c", cfg, "codes", "--max", "3")
	require.NoError(t, err)

	var suggestions []note.ICD10Suggestion
	require.NoError(t, json.Unmarshal([]byte(out), &suggestions))
	require.NotEmpty(t, suggestions)
	assert.LessOrEqual(t, len(suggestions), 3)
}

func TestClarityCommand(t *testing.T) {
	cfg := fallbackOnlyConfig(t)

	out, err := executeCommand(t, "pt c/o cp and sob x2 days", "-c", cfg, "clarity")
	require.NoError(t, err)
	assert.Contains(t, out, "chest pain")
	assert.Contains(t, out, "shortness of breath")
}

func TestReferralCommand_LabeledNote(t *testing.T) {
	cfg := fallbackOnlyConfig(t)
	stdin := "Assessment: Severe malaria\nPlan: Artesunate 120mg IV stat"

	out, err := executeCommand(t, stdin, "-c", cfg, "referral")
	require.NoError(t, err)

	var content note.ReferralContent
	require.NoError(t, json.Unmarshal([]byte(out), &content))
	assert.Equal(t, "Severe malaria", content.ClinicalSummary)
	assert.Contains(t, content.Medications, "Artesunate")
}

func TestSecretSetAndDelete(t *testing.T) {
	store := newMockSecretStore()
	withMockSecretStore(t, store)

	out, err := executeCommand(t, "sk-test-123\n", "secret", "set", "openai-api-key")
	require.NoError(t, err)
	assert.Contains(t, out, "keyring://clinscribe/openai-api-key")
	assert.Equal(t, "sk-test-123", store.data["openai-api-key"])

	out, err = executeCommand(t, "", "secret", "delete", "openai-api-key")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted secret")
}

func TestSecretDelete_NotFound(t *testing.T) {
	withMockSecretStore(t, newMockSecretStore())

	_, err := executeCommand(t, "", "secret", "delete", "absent")
	require.Error(t, err)
	assert.True(t, cserr.HasCode(err, cserr.CodeSecretNotFound))
}

func TestStatusCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/providers/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"configured": true, "providers": [{"provider": "anthropic", "inCooldown": false}]}`))
	}))
	defer ts.Close()

	addr := strings.TrimPrefix(ts.URL, "http://")
	out, err := executeCommand(t, "", "status", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "anthropic")
	assert.Contains(t, out, "available")
}

func TestStatusCommand_ServerNotRunning(t *testing.T) {
	out, err := executeCommand(t, "", "status", "--address", "127.0.0.1:1")
	require.NoError(t, err)
	assert.Contains(t, out, "not running")
}
