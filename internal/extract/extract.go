// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

// Package extract recovers structured JSON payloads embedded in free-form
// model output. Models are prompted to answer with a bare object or array,
// but in practice wrap the payload in explanatory prose; the extractor
// tolerates the prose and fails only when no well-formed payload exists.
package extract

import (
	"encoding/json"

	cserr "github.com/clinscribe/clinscribe/pkg/errors"
)

// Object locates the first balanced {...} substring in raw, decodes it into
// out, and verifies that every required key is present in the payload.
func Object(raw string, out any, required ...string) error {
	payload, err := firstBalanced(raw, '{', '}')
	if err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &keys); err != nil {
		return cserr.Wrap(err, cserr.CodeExtractPayloadInvalid, "decoding object payload")
	}
	for _, key := range required {
		if _, ok := keys[key]; !ok {
			return cserr.Errorf(cserr.CodeExtractPayloadMissingKey, "payload missing required key %q", key)
		}
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return cserr.Wrap(err, cserr.CodeExtractPayloadInvalid, "decoding object payload")
	}
	return nil
}

// Array locates the first balanced [...] substring in raw and decodes it
// into out.
func Array(raw string, out any) error {
	payload, err := firstBalanced(raw, '[', ']')
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return cserr.Wrap(err, cserr.CodeExtractPayloadInvalid, "decoding array payload")
	}
	return nil
}

// firstBalanced returns the first substring of raw delimited by a balanced
// open/close pair. The scan is JSON-string aware: delimiters inside quoted
// strings (including escaped quotes) do not affect the depth count.
func firstBalanced(raw string, open, close byte) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case open:
			if depth == 0 {
				start = i
			}
			depth++
		case close:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}

	return "", cserr.Errorf(cserr.CodeExtractPayloadNotFound, "no balanced %c...%c payload in response", open, close)
}
