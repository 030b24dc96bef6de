package grading

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxObservationLen is the maximum observation length in runes.
const MaxObservationLen = 500

// ValidObservation reports whether an observation is acceptable feedback.
// The field is optional: empty or whitespace-only text is valid. Non-empty
// text must contain at least one Unicode letter, so strings of digits or
// punctuation alone are rejected.
func ValidObservation(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// ObservationFits reports whether the observation is within MaxObservationLen.
func ObservationFits(s string) bool {
	return utf8.RuneCountInString(s) <= MaxObservationLen
}
