// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package extract_test

import (
	"testing"

	"github.com/clinscribe/clinscribe/internal/extract"
	cserr "github.com/clinscribe/clinscribe/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_SurroundingProse(t *testing.T) {
	raw := "Here is the result:\n{\"code\":\"B50.9\"}\nHope this helps"

	var out struct {
		Code string `json:"code"`
	}
	err := extract.Object(raw, &out)
	require.NoError(t, err)
	assert.Equal(t, "B50.9", out.Code)
}

func TestObject_NestedBraces(t *testing.T) {
	raw := `The note: {"subjective":"pain","details":{"site":"head"}} done.`

	var out map[string]any
	err := extract.Object(raw, &out)
	require.NoError(t, err)
	assert.Equal(t, "pain", out["subjective"])
	assert.Contains(t, out, "details")
}

func TestObject_BracesInsideStrings(t *testing.T) {
	raw := `{"plan":"monitor {closely} and review","note":"escaped \" quote"}`

	var out map[string]any
	err := extract.Object(raw, &out)
	require.NoError(t, err)
	assert.Equal(t, "monitor {closely} and review", out["plan"])
}

func TestObject_RequiredKeys(t *testing.T) {
	raw := `{"subjective":"a","objective":"b"}`

	var out map[string]any
	err := extract.Object(raw, &out, "subjective", "objective")
	require.NoError(t, err)

	err = extract.Object(raw, &out, "subjective", "plan")
	require.Error(t, err)
	assert.True(t, cserr.HasCode(err, cserr.CodeExtractPayloadMissingKey))
}

func TestObject_NoPayload(t *testing.T) {
	var out map[string]any
	err := extract.Object("no structured data here at all", &out)
	require.Error(t, err)
	assert.True(t, cserr.HasCode(err, cserr.CodeExtractPayloadNotFound))
}

func TestObject_MalformedPayload(t *testing.T) {
	var out map[string]any
	err := extract.Object(`prefix {"code": } suffix`, &out)
	require.Error(t, err)
	assert.True(t, cserr.HasCode(err, cserr.CodeExtractPayloadInvalid))
}

func TestObject_UnterminatedPayload(t *testing.T) {
	var out map[string]any
	err := extract.Object(`{"code":"B50.9"`, &out)
	require.Error(t, err)
	assert.True(t, cserr.HasCode(err, cserr.CodeExtractPayloadNotFound))
}

func TestArray_SurroundingProse(t *testing.T) {
	raw := "Suggested codes follow.\n[{\"code\":\"B50.9\"},{\"code\":\"R50.9\"}]\nLet me know!"

	var out []struct {
		Code string `json:"code"`
	}
	err := extract.Array(raw, &out)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "B50.9", out[0].Code)
	assert.Equal(t, "R50.9", out[1].Code)
}

func TestArray_StrayCloserBeforePayload(t *testing.T) {
	raw := "odd ] prefix [1,2,3] trailing"

	var out []int
	err := extract.Array(raw, &out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestArray_NoPayload(t *testing.T) {
	var out []int
	err := extract.Array("nothing to see", &out)
	require.Error(t, err)
	assert.True(t, cserr.HasCode(err, cserr.CodeExtractPayloadNotFound))
}

func TestArray_Empty(t *testing.T) {
	var out []int
	err := extract.Array("result: []", &out)
	require.NoError(t, err)
	assert.Empty(t, out)
}
