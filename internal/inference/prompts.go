// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package inference

import (
	"fmt"

	"github.com/clinscribe/clinscribe/internal/note"
)

// System prompts demand a specific structured shape so the extractor can
// pull a JSON payload out of whatever prose surrounds it.

const soapSystemPrompt = `You are a clinical documentation assistant. ` +
	`Given an encounter text, produce a SOAP note as a JSON object with ` +
	`exactly these string keys: "subjective", "objective", "assessment", ` +
	`"plan". Record only information present in the text. Use an empty ` +
	`string for sections the text does not support. Respond with the JSON ` +
	`object only.`

const codesSystemPrompt = `You are a clinical coding assistant. Given ` +
	`clinical text, suggest ICD-10 diagnosis codes as a JSON array of ` +
	`objects with keys "code", "description", "confidence" (a number in ` +
	`[0,1]) and optional "category". Order by descending confidence. ` +
	`Suggest only diagnoses supported by the text. Respond with the JSON ` +
	`array only.`

const claritySystemPrompt = `You are a clinical documentation assistant. ` +
	`Rewrite the given clinical text for clarity: expand abbreviations, fix ` +
	`formatting, preserve every clinical fact. Never add, remove or ` +
	`reinterpret clinical information. Respond with a JSON object with a ` +
	`single string key "rewritten".`

const referralSystemPrompt = `You are a clinical documentation assistant. ` +
	`Given structured note fields, draft referral letter content as a JSON ` +
	`object with exactly these string keys: "clinicalSummary", ` +
	`"investigations", "treatmentGiven", "medications", "requestedAction". ` +
	`Use only facts present in the supplied fields; write "Not documented" ` +
	`where the source is silent. Respond with the JSON object only.`

func soapUserPrompt(text string, source note.SourceKind) string {
	label := "Clinical note"
	if source == note.SourceTranscript {
		label = "Encounter transcript"
	}
	return fmt.Sprintf("%s:\n\n%s", label, text)
}

func codesUserPrompt(text string, max int) string {
	return fmt.Sprintf("Suggest at most %d diagnosis codes for this clinical text:\n\n%s", max, text)
}

func clarityUserPrompt(text string) string {
	return "Rewrite this clinical text:\n\n" + text
}

func referralUserPrompt(f note.Fields) string {
	return fmt.Sprintf(
		"Note fields:\nSubjective: %s\nObjective: %s\nAssessment: %s\nPlan: %s\nFree text: %s",
		f.Subjective, f.Objective, f.Assessment, f.Plan, f.RawText,
	)
}
