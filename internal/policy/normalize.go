// Package policy turns finalized accumulator state into decisions: dominance
// bucket assignment, the column-prune set, the row-invalidity record, and the
// imputation plan. Everything here is either a pure function over a snapshot
// or a mergeable streaming evaluator fed the same batches as the accumulator.
package policy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName converts arbitrary header text into a lowercase ASCII
// identifier used for rule matching:
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9_]; convert space/dash/dot/slash to underscore; drop others
//
// Rule keywords match against this form, so "Fwd IAT Max", "fwd_iat_max" and
// "Fwd-IAT-Max" are all subject to the same rules. The original header text
// is untouched everywhere else; output files keep the input spelling.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.' || r == '/':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		default:
			// drop anything else
		}
	}
	return strings.Trim(b.String(), "_")
}
