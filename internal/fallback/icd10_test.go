// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package fallback_test

import (
	"testing"

	"github.com/clinscribe/clinscribe/internal/fallback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestCodes_Malaria(t *testing.T) {
	got := fallback.SuggestCodes("patient has malaria symptoms, RDT positive", 8)

	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 8)

	var found bool
	for _, s := range got {
		if s.Code == "B50.9" {
			found = true
			assert.Greater(t, s.Confidence, 0.6)
			assert.LessOrEqual(t, s.Confidence, 0.95)
		}
	}
	assert.True(t, found, "malaria code B50.9 should be suggested")
}

func TestSuggestCodes_ConfidenceDescending(t *testing.T) {
	got := fallback.SuggestCodes("fever, headache, vomiting and diarrhea for two days", 10)

	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Confidence, got[i].Confidence,
			"confidence must be non-increasing at index %d", i)
	}
}

func TestSuggestCodes_NoMatchReturnsDefaults(t *testing.T) {
	got := fallback.SuggestCodes("zzz quux entirely unrelated text", 8)

	require.Len(t, got, 2)
	assert.Equal(t, "R69", got[0].Code)
	assert.Equal(t, "Z00.0", got[1].Code)
	assert.Greater(t, got[0].Confidence, got[1].Confidence)
}

func TestSuggestCodes_EmptyInputReturnsDefaults(t *testing.T) {
	got := fallback.SuggestCodes("", 5)
	require.Len(t, got, 2)
	assert.Equal(t, "R69", got[0].Code)
}

func TestSuggestCodes_TruncatesToMax(t *testing.T) {
	got := fallback.SuggestCodes("fever, cough, headache, vomiting, back pain, dysuria", 3)
	assert.Len(t, got, 3)
}

func TestSuggestCodes_NonPositiveMaxNormalized(t *testing.T) {
	got := fallback.SuggestCodes("malaria confirmed", 0)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), fallback.DefaultMaxSuggestions)
}

func TestSuggestCodes_LongerKeywordsScoreHigher(t *testing.T) {
	// "urinary tract infection" is a much longer keyword than "fever", so
	// the UTI code should rank above the fever code.
	got := fallback.SuggestCodes("urinary tract infection with mild fever", 8)

	require.NotEmpty(t, got)
	var utiIdx, feverIdx = -1, -1
	for i, s := range got {
		switch s.Code {
		case "N39.0":
			utiIdx = i
		case "R50.9":
			feverIdx = i
		}
	}
	require.NotEqual(t, -1, utiIdx)
	require.NotEqual(t, -1, feverIdx)
	assert.Less(t, utiIdx, feverIdx)
}

func TestSuggestCodes_ConfidenceCeiling(t *testing.T) {
	// Stack every UTI keyword to saturate the score.
	got := fallback.SuggestCodes("urinary tract infection uti dysuria burning urination frequency of urination", 8)

	require.NotEmpty(t, got)
	assert.Equal(t, "N39.0", got[0].Code)
	assert.InDelta(t, 0.95, got[0].Confidence, 1e-9)
}

func TestSuggestCodes_Deterministic(t *testing.T) {
	input := "fever and headache with vomiting"
	first := fallback.SuggestCodes(input, 8)
	second := fallback.SuggestCodes(input, 8)
	assert.Equal(t, first, second)
}
