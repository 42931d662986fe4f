package domain

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// SensePolicy decides how gloss text is turned into a sense key, and so
// when two glosses denote the same sense.
type SensePolicy string

const (
	// SensePolicyExact keys senses by their gloss text, byte for byte.
	SensePolicyExact SensePolicy = "exact"
	// SensePolicyNormalized keys senses by NFC-normalised, case-folded gloss
	// text with whitespace runs collapsed.
	SensePolicyNormalized SensePolicy = "normalized"
)

// ParseSensePolicy converts a config value into a SensePolicy.
// An empty string selects SensePolicyExact.
func ParseSensePolicy(s string) (SensePolicy, error) {
	switch p := SensePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return SensePolicyExact, nil
	case SensePolicyExact, SensePolicyNormalized:
		return p, nil
	default:
		return "", fmt.Errorf("sense policy %q: %w", s, ErrValidation)
	}
}

// Key returns the sense key for gloss under the policy.
func (p SensePolicy) Key(gloss string) string {
	if p == SensePolicyNormalized {
		return NormalizeText(gloss)
	}
	return gloss
}

var folder = cases.Fold()

// NormalizeText prepares text for comparison:
//   - applies Unicode NFC
//   - case-folds
//   - compresses whitespace runs into one space and trims the ends
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = folder.String(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteByte(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
