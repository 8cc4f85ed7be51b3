// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package fallback

import (
	"regexp"
	"strings"
	"unicode"
)

// expansion is a whole-word, case-insensitive abbreviation substitution.
// Keys are whole words and no expansion text is itself a key, so applying
// the rewrite twice leaves already-expanded text untouched.
type expansion struct {
	pattern     *regexp.Regexp
	replacement string
}

var clarityExpansions = compileExpansions([][2]string{
	{"pt", "patient"},
	{"pts", "patients"},
	{"c/o", "complaining of"},
	{"cp", "chest pain"},
	{"sob", "shortness of breath"},
	{"hx", "history"},
	{"dx", "diagnosis"},
	{"tx", "treatment"},
	{"rx", "prescription"},
	{"fx", "fracture"},
	{"abd", "abdominal"},
	{"bp", "blood pressure"},
	{"hr", "heart rate"},
	{"rr", "respiratory rate"},
	{"wnl", "within normal limits"},
	{"nkda", "no known drug allergies"},
	{"prn", "as needed"},
	{"bid", "twice daily"},
	{"tid", "three times daily"},
	{"qid", "four times daily"},
	{"po", "by mouth"},
	{"yo", "year old"},
	{"h/o", "history of"},
	{"s/p", "status post"},
	{"n/v", "nausea and vomiting"},
	{"loc", "loss of consciousness"},
	{"urti", "upper respiratory tract infection"},
	{"uti", "urinary tract infection"},
})

var whitespaceRun = regexp.MustCompile(`\s+`)

func compileExpansions(pairs [][2]string) []expansion {
	out := make([]expansion, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, expansion{
			pattern:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p[0]) + `\b`),
			replacement: p[1],
		})
	}
	return out
}

// RewriteForClarity expands clinical shorthand, collapses whitespace, and
// capitalizes sentence starts. It removes no information and is idempotent.
func RewriteForClarity(text string) string {
	out := text
	for _, exp := range clarityExpansions {
		out = exp.pattern.ReplaceAllString(out, exp.replacement)
	}

	out = strings.TrimSpace(whitespaceRun.ReplaceAllString(out, " "))

	return capitalizeSentences(out)
}

// capitalizeSentences upper-cases the first letter of the string and the
// first letter after every ". " boundary.
func capitalizeSentences(s string) string {
	runes := []rune(s)
	capitalizeNext := true

	for i := 0; i < len(runes); i++ {
		if capitalizeNext && unicode.IsLetter(runes[i]) {
			runes[i] = unicode.ToUpper(runes[i])
			capitalizeNext = false
			continue
		}
		if runes[i] == '.' && i+1 < len(runes) && runes[i+1] == ' ' {
			capitalizeNext = true
		}
	}

	return string(runes)
}
