// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

// Package note defines the clinical artifact types produced by the
// inference pipeline. All types are transient per-request values; the
// caller owns whatever is returned to it.
package note

// SOAPFields is a four-section clinical note. All four fields are always
// present; an undocumented section is an empty string, never absent.
type SOAPFields struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// ICD10Suggestion pairs a diagnosis code with a description and a
// confidence in [0.0, 1.0]. Within a returned sequence confidence is
// non-increasing; equal confidences keep catalog order.
type ICD10Suggestion struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Category    string  `json:"category,omitempty"`
}

// ReferralContent is the structured body of a referral letter. Every field
// is derived from the supplied note fields; a field with no supporting
// source text carries an explicit placeholder rather than invented content.
type ReferralContent struct {
	ClinicalSummary string `json:"clinicalSummary"`
	Investigations  string `json:"investigations"`
	TreatmentGiven  string `json:"treatmentGiven"`
	Medications     string `json:"medications"`
	RequestedAction string `json:"requestedAction"`
}

// Fields is the raw clinical note input handed to referral generation.
// RawText carries the free-form encounter text when no structured
// sections exist.
type Fields struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
	RawText    string `json:"rawText,omitempty"`
}

// SourceKind tags where the input text of a SOAP generation came from.
type SourceKind string

const (
	SourceTranscript SourceKind = "transcript"
	SourceFreeText   SourceKind = "free_text"
)
