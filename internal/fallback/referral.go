// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package fallback

import (
	"strings"

	"github.com/clinscribe/clinscribe/internal/note"
)

// Placeholders used for referral fields with no supporting source text.
// Leaving a field blank or inventing content are both forbidden: the
// referral must never state anything not present in the note.
const (
	PlaceholderNotDocumented   = "Not documented"
	PlaceholderPerPrescription = "As per prescription"
	PlaceholderRequestedAction = "Kindly assess and manage as deemed appropriate"
)

const summaryExcerptLimit = 300

// medicationCues mark a plan line as a medication order: dosage units and
// frequency shorthand.
var medicationCues = []string{
	"mg", "ml", "mcg", "tab", "tablet", "capsule", "syrup", "suspension",
	"od", "bd", "bid", "tds", "tid", "qid", "prn", "nocte", "stat",
	"daily", "twice", "hourly", "dose", "injection",
}

// treatmentCues mark a plan line as treatment or management already given
// or advised.
var treatmentCues = []string{
	"advise", "advised", "counsel", "counselled", "start", "started",
	"administer", "administered", "given", "gave", "dressing", "dressed",
	"iv fluids", "therapy", "manage", "monitor", "review", "refer",
	"rest", "hydration", "observe", "educat",
}

// BuildReferralContent derives referral letter fields from the supplied
// note fields only. Plan lines are routed to medications when they carry
// dosage cues and to treatment when they carry management cues; a line may
// appear in both. Fields with no source lines keep explicit placeholders.
func BuildReferralContent(f note.Fields) note.ReferralContent {
	content := note.ReferralContent{
		ClinicalSummary: summarize(f),
		Investigations:  PlaceholderNotDocumented,
		TreatmentGiven:  PlaceholderNotDocumented,
		Medications:     PlaceholderPerPrescription,
		RequestedAction: PlaceholderRequestedAction,
	}

	if objective := strings.TrimSpace(f.Objective); objective != "" {
		content.Investigations = objective
	}

	var medications, treatments []string
	for _, line := range strings.Split(f.Plan, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if containsAnyWord(lower, medicationCues) {
			medications = append(medications, line)
		}
		if containsAnyWord(lower, treatmentCues) {
			treatments = append(treatments, line)
		}
	}

	if len(medications) > 0 {
		content.Medications = strings.Join(medications, "\n")
	}
	if len(treatments) > 0 {
		content.TreatmentGiven = strings.Join(treatments, "\n")
	}

	return content
}

// summarize prefers the assessment, then the subjective, then an excerpt
// of the raw note text.
func summarize(f note.Fields) string {
	if assessment := strings.TrimSpace(f.Assessment); assessment != "" {
		return assessment
	}
	if subjective := strings.TrimSpace(f.Subjective); subjective != "" {
		return subjective
	}
	if raw := strings.TrimSpace(f.RawText); raw != "" {
		return excerpt(raw, summaryExcerptLimit)
	}
	return PlaceholderNotDocumented
}

// containsAnyWord reports whether any cue appears in lower as a whole word.
// Substring matching alone would route "monitor" lines into medications via
// the "od" cue. Digits are treated as separators so "500mg" matches the
// "mg" unit cue.
func containsAnyWord(lower string, cues []string) bool {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	for _, cue := range cues {
		if strings.Contains(cue, " ") {
			if strings.Contains(lower, cue) {
				return true
			}
			continue
		}
		for _, w := range words {
			if w == cue || strings.HasPrefix(w, cue) && isCuePrefixOK(cue) {
				return true
			}
		}
	}
	return false
}

// isCuePrefixOK allows stem cues ("educat", "advise") to match their
// inflections while keeping short unit cues exact.
func isCuePrefixOK(cue string) bool {
	return len(cue) >= 5
}
