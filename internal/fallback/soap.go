// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

// Package fallback holds the deterministic text-analysis engines used when
// no provider is configured or every provider attempt failed. Every engine
// is a pure, total function: arbitrary input (including empty) yields a
// well-typed result, never an error.
package fallback

import (
	"strings"

	"github.com/clinscribe/clinscribe/internal/note"
)

// subjectiveExcerptLimit bounds how much raw input is carried into the
// synthesized subjective section.
const subjectiveExcerptLimit = 300

const subjectivePrefix = "Patient reports: "

// Generic sections used when no clinical template matches.
const (
	defaultObjective  = "General examination findings to be documented by clinician."
	defaultAssessment = "Clinical assessment pending clinician review."
	defaultPlan       = "Treatment plan to be determined by attending clinician."
)

// soapTemplate overrides the objective/assessment/plan sections when any of
// its keywords appears in the lower-cased input.
type soapTemplate struct {
	keywords   []string
	objective  string
	assessment string
	plan       string
}

// soapTemplates is scanned in order; the first matching entry wins and at
// most one template fires per call. Order is a clinical priority decision,
// not alphabetical.
var soapTemplates = []soapTemplate{
	{
		keywords:   []string{"headache", "migraine", "head pain", "cephalgia"},
		objective:  "Alert and oriented. No focal neurological deficit elicited. No meningeal signs.",
		assessment: "Probable tension-type headache versus migraine; clinician correlation required.",
		plan:       "Recommend analgesia, hydration, and rest. Review if symptoms persist beyond 48 hours or red flags develop.",
	},
	{
		keywords:   []string{"back pain", "lower back", "lumbar", "sciatica"},
		objective:  "Paraspinal tenderness on palpation. Straight leg raise to be assessed. No bladder or bowel involvement reported.",
		assessment: "Probable mechanical low back pain; rule out radiculopathy.",
		plan:       "Recommend analgesia, activity modification, and physiotherapy referral if not improving within two weeks.",
	},
	{
		keywords:   []string{"diabetes", "diabetic", "hyperglycemia", "high blood sugar", "polyuria"},
		objective:  "Random blood glucose to be checked. Foot examination and visual acuity screening indicated.",
		assessment: "Suspected or known diabetes mellitus; glycaemic control to be evaluated.",
		plan:       "Recommend fasting glucose and HbA1c, dietary counselling, and medication review by clinician.",
	},
	{
		keywords:   []string{"cough", "shortness of breath", "sob", "wheez", "chest tightness"},
		objective:  "Respiratory rate and oxygen saturation to be recorded. Auscultation for added breath sounds indicated.",
		assessment: "Respiratory complaint; differential includes upper respiratory infection, bronchitis, and reactive airway disease.",
		plan:       "Recommend symptomatic treatment and chest examination. Escalate if oxygen saturation falls or breathing worsens.",
	},
	{
		keywords:   []string{"malaria", "rdt positive", "plasmodium", "fever and chills"},
		objective:  "Temperature to be recorded. Malaria rapid diagnostic test or blood smear indicated if not already done.",
		assessment: "Suspected malaria; confirm by RDT or microscopy.",
		plan:       "Recommend antimalarial therapy per local protocol once confirmed, antipyretics, and hydration.",
	},
	{
		keywords:   []string{"typhoid", "widal", "enteric fever"},
		objective:  "Temperature and abdominal examination to be documented. Blood culture or Widal test indicated.",
		assessment: "Suspected typhoid (enteric) fever; laboratory confirmation required.",
		plan:       "Recommend appropriate antibiotic therapy per local guidance, hydration, and follow-up of culture results.",
	},
}

// SynthesizeSOAP builds a SOAP note from raw encounter text without any
// model call. The subjective section always carries an excerpt of the
// input; the remaining sections come from the first matching clinical
// template, or from generic defaults when nothing matches.
func SynthesizeSOAP(text string) note.SOAPFields {
	fields := note.SOAPFields{
		Subjective: subjectivePrefix + excerpt(text, subjectiveExcerptLimit),
		Objective:  defaultObjective,
		Assessment: defaultAssessment,
		Plan:       defaultPlan,
	}

	lower := strings.ToLower(text)
	for _, tpl := range soapTemplates {
		if !matchesAny(lower, tpl.keywords) {
			continue
		}
		fields.Objective = tpl.objective
		fields.Assessment = tpl.assessment
		fields.Plan = tpl.plan
		break
	}

	return fields
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// excerpt truncates s to limit characters, marking truncation with an
// ellipsis. Truncation counts runes so multi-byte text is never split
// mid-character.
func excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
