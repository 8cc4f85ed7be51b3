// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package google_test

import (
	"testing"

	"github.com/clinscribe/clinscribe/internal/provider"
	"github.com/clinscribe/clinscribe/internal/provider/google"
	cserr "github.com/clinscribe/clinscribe/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface satisfaction check.
var _ provider.Provider = (*google.Provider)(nil)

func TestGoogle_MissingAPIKey(t *testing.T) {
	_, err := google.New(google.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
	assert.True(t, cserr.HasCode(err, cserr.CodeProviderRequestInvalid))
}

func TestGoogle_Name(t *testing.T) {
	p, err := google.New(google.Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())
	assert.NoError(t, p.Close())
}
