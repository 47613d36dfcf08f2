// Package transform applies category-specific normalization to field values:
// date reformatting, PII masking, and numeric rounding. Transformation never
// fails; values that cannot be parsed under their assigned category degrade
// to a safe fallback instead of raising.
package transform

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Fallou236/blackbox-cleaner/internal/model"
)

// OutputDateLayout is the uniform date-time rendering for exported cells.
const OutputDateLayout = "02/01/2006 15:04:05"

// maxNoteLength bounds masked free-text notes; longer notes are truncated
// with a trailing ellipsis.
const maxNoteLength = 200

var (
	digitRe = regexp.MustCompile(`[0-9]`)
	emailRe = regexp.MustCompile(`[\w.-]+@[\w.-]+`)
)

// Transform normalizes a single value under its field's category and,
// for sensitive fields, masking kind. The second return is false when the
// value could not be parsed and passed through as a fallback; callers
// aggregate these into the run report.
func Transform(v model.Value, cat model.FieldCategory, kind model.SensitiveKind) (string, bool) {
	if model.IsNull(v) {
		return "", true
	}

	switch cat {
	case model.CategoryDate:
		ts, ok := ParseDate(v)
		if !ok {
			// Do not fabricate a date; keep the original value.
			return strings.TrimSpace(model.Text(v)), false
		}
		return ts.Format(OutputDateLayout), true

	case model.CategorySensitiveID:
		return Mask(model.Text(v), kind), true

	case model.CategoryNumeric:
		f, ok := ParseNumber(v)
		if !ok {
			return strings.TrimSpace(model.Text(v)), false
		}
		return FormatNumber(f), true

	default:
		return strings.TrimSpace(model.Text(v)), true
	}
}

// FormatNumber rounds half away from zero to 2 decimal places and renders
// the result with minimal digits but always at least one decimal, so the
// rendering is idempotent under re-parsing: 19.999 -> "20.0", 12.34 ->
// "12.34", 5 -> "5.0".
func FormatNumber(f float64) string {
	rounded := roundHalfAway(f*100) / 100
	s := strconv.FormatFloat(rounded, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func roundHalfAway(f float64) float64 {
	if f < 0 {
		return -float64(int64(-f + 0.5))
	}
	return float64(int64(f + 0.5))
}

// Mask applies the pattern-based obfuscation rule for a sensitive field.
// Masking is not reversible by substring search: no masked output contains
// more than a one-character prefix of the hidden content.
func Mask(s string, kind model.SensitiveKind) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	switch kind {
	case model.KindEmail:
		return maskEmail(s)
	case model.KindPhone:
		return digitRe.ReplaceAllString(s, "X")
	case model.KindNotes:
		return maskNotes(s)
	default:
		return maskNationalID(s)
	}
}

// maskEmail keeps the first rune of the local part and the domain verbatim:
// "charlie@example.com" -> "c****@example.com". Values without an "@" are
// fully suppressed rather than leaked.
func maskEmail(s string) string {
	at := strings.Index(s, "@")
	if at < 0 {
		return ""
	}
	local, domain := s[:at], s[at+1:]
	runes := []rune(local)
	if len(runes) <= 1 {
		return strings.Repeat("*", len(runes)) + "@" + domain
	}
	return string(runes[0]) + "****@" + domain
}

// maskNationalID keeps a 3-character prefix and pads the remainder with X.
func maskNationalID(s string) string {
	runes := []rune(s)
	if len(runes) <= 3 {
		return s
	}
	return string(runes[:3]) + strings.Repeat("X", len(runes)-3)
}

// maskNotes scrubs digit sequences and embedded email-like substrings from
// free text, leaving the remaining prose intact.
func maskNotes(s string) string {
	s = digitRe.ReplaceAllString(s, "X")
	s = emailRe.ReplaceAllString(s, "<masked_email>")
	if runes := []rune(s); len(runes) > maxNoteLength {
		return string(runes[:maxNoteLength]) + "..."
	}
	return s
}
