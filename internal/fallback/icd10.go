// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package fallback

import (
	"math"
	"sort"
	"strings"

	"github.com/clinscribe/clinscribe/internal/note"
)

// catalogEntry annotates an ICD-10 code with the trigger keywords that
// suggest it. Longer keywords are stronger signals: the match score is the
// summed length of every keyword found in the input.
type catalogEntry struct {
	code        string
	description string
	category    string
	keywords    []string
}

// icd10Catalog order is the tie-break for equal-confidence suggestions:
// the stable sort preserves it.
var icd10Catalog = []catalogEntry{
	{"B50.9", "Plasmodium falciparum malaria, unspecified", "Infectious", []string{"malaria", "rdt positive", "plasmodium", "fever and chills"}},
	{"A01.0", "Typhoid fever", "Infectious", []string{"typhoid", "widal", "enteric fever"}},
	{"J06.9", "Acute upper respiratory infection, unspecified", "Respiratory", []string{"sore throat", "runny nose", "common cold", "nasal congestion", "urti"}},
	{"J18.9", "Pneumonia, unspecified organism", "Respiratory", []string{"pneumonia", "productive cough", "crepitations", "chest infection"}},
	{"J45.9", "Asthma, unspecified", "Respiratory", []string{"asthma", "wheezing", "wheeze", "bronchospasm"}},
	{"A09", "Infectious gastroenteritis and colitis, unspecified", "Gastrointestinal", []string{"diarrhea", "diarrhoea", "vomiting", "gastroenteritis", "loose stool"}},
	{"I10", "Essential (primary) hypertension", "Cardiovascular", []string{"hypertension", "high blood pressure", "elevated bp"}},
	{"E11.9", "Type 2 diabetes mellitus without complications", "Endocrine", []string{"diabetes", "diabetic", "hyperglycemia", "high blood sugar", "polyuria"}},
	{"M54.5", "Low back pain", "Musculoskeletal", []string{"back pain", "lower back", "lumbar", "sciatica"}},
	{"R51", "Headache", "Symptoms", []string{"headache", "head pain", "cephalgia"}},
	{"G43.9", "Migraine, unspecified", "Neurological", []string{"migraine", "aura", "photophobia"}},
	{"N39.0", "Urinary tract infection, site not specified", "Genitourinary", []string{"urinary tract infection", "uti", "dysuria", "burning urination", "frequency of urination"}},
	{"B34.9", "Viral infection, unspecified", "Infectious", []string{"viral", "body aches", "malaise"}},
	{"R50.9", "Fever, unspecified", "Symptoms", []string{"fever", "pyrexia", "febrile"}},
	{"K30", "Functional dyspepsia", "Gastrointestinal", []string{"indigestion", "epigastric pain", "dyspepsia", "heartburn"}},
	{"L08.9", "Local infection of skin and subcutaneous tissue, unspecified", "Dermatological", []string{"skin infection", "abscess", "cellulitis", "boil"}},
}

// defaultSuggestions is returned when no catalog keyword matches; the
// engine never returns an empty sequence.
var defaultSuggestions = []note.ICD10Suggestion{
	{Code: "R69", Description: "Illness, unspecified", Confidence: 0.50, Category: "Symptoms"},
	{Code: "Z00.0", Description: "General adult medical examination", Confidence: 0.30, Category: "Wellness"},
}

// Confidence scoring constants: a single short keyword lands just above the
// base, saturating well below certainty.
const (
	confidenceBase    = 0.6
	confidenceCeiling = 0.95
	confidenceDivisor = 50.0
)

// DefaultMaxSuggestions caps the suggestion count when the caller supplies
// a non-positive maximum.
const DefaultMaxSuggestions = 8

// SuggestCodes scores the catalog against clinicalText and returns up to
// max suggestions ordered by confidence descending, catalog order breaking
// ties. Zero matches yield the fixed generic defaults; the result is never
// empty. A non-positive max is normalized to DefaultMaxSuggestions.
func SuggestCodes(clinicalText string, max int) []note.ICD10Suggestion {
	if max <= 0 {
		max = DefaultMaxSuggestions
	}

	lower := strings.ToLower(clinicalText)

	var matched []note.ICD10Suggestion
	for _, entry := range icd10Catalog {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				score += len(kw)
			}
		}
		if score == 0 {
			continue
		}

		matched = append(matched, note.ICD10Suggestion{
			Code:        entry.code,
			Description: entry.description,
			Confidence:  math.Min(confidenceCeiling, confidenceBase+float64(score)/confidenceDivisor),
			Category:    entry.category,
		})
	}

	if len(matched) == 0 {
		out := make([]note.ICD10Suggestion, len(defaultSuggestions))
		copy(out, defaultSuggestions)
		if len(out) > max {
			out = out[:max]
		}
		return out
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Confidence > matched[j].Confidence
	})

	if len(matched) > max {
		matched = matched[:max]
	}
	return matched
}
