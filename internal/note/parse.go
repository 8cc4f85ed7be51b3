// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package note

import (
	"regexp"
	"strings"
)

// labelPattern matches an explicit SOAP section label such as
// "Subjective:" or "ASSESSMENT :" at the start of a line or of the text.
var labelPattern = regexp.MustCompile(`(?im)(?:^|\n)\s*(subjective|objective|assessment|plan)\s*:`)

// SplitLabeledSOAP splits note text that already carries explicit section
// labels into SOAPFields. It returns ok=false when no label is present,
// signalling the caller to use the inference pipeline instead. A label
// that appears more than once keeps its first occurrence; later duplicates
// are appended to the same section.
func SplitLabeledSOAP(text string) (SOAPFields, bool) {
	matches := labelPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return SOAPFields{}, false
	}

	var fields SOAPFields
	for i, m := range matches {
		label := strings.ToLower(text[m[2]:m[3]])
		start := m[1] // end of the "label:" match
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		section := strings.TrimSpace(text[start:end])

		switch label {
		case "subjective":
			fields.Subjective = appendSection(fields.Subjective, section)
		case "objective":
			fields.Objective = appendSection(fields.Objective, section)
		case "assessment":
			fields.Assessment = appendSection(fields.Assessment, section)
		case "plan":
			fields.Plan = appendSection(fields.Plan, section)
		}
	}

	return fields, true
}

func appendSection(existing, section string) string {
	if existing == "" {
		return section
	}
	if section == "" {
		return existing
	}
	return existing + "\n" + section
}
