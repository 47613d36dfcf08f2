// Package classify assigns semantic categories to fields of untyped,
// inconsistently-shaped records, from field-name hints and value shape.
package classify

import (
	"strings"

	"github.com/Fallou236/blackbox-cleaner/internal/model"
	"github.com/Fallou236/blackbox-cleaner/internal/transform"
)

// SampleSize caps how many non-null values per field feed the heuristics.
const SampleSize = 20

// rule is one entry in the ordered heuristics table. Rules are evaluated
// top to bottom and the first match wins; the ordering is load-bearing
// because overlapping heuristics (a field that looks numeric but is named
// like an identifier) need deterministic tie-breaking.
type rule struct {
	name     string
	matches  func(field string, samples []model.Value) bool
	category model.FieldCategory
}

var rules = []rule{
	{
		name:     "pii-name",
		matches:  func(field string, _ []model.Value) bool { return hasToken(field, piiTokens) },
		category: model.CategorySensitiveID,
	},
	{
		name:     "identifier-name",
		matches:  func(field string, _ []model.Value) bool { return isIdentifierName(field) },
		category: model.CategoryText,
	},
	{
		name: "date",
		matches: func(field string, samples []model.Value) bool {
			return hasToken(field, dateTokens) || majority(samples, transform.SniffDate)
		},
		category: model.CategoryDate,
	},
	{
		name: "numeric",
		matches: func(_ string, samples []model.Value) bool {
			return majority(samples, func(v model.Value) bool {
				_, ok := transform.ParseNumber(v)
				return ok
			})
		},
		category: model.CategoryNumeric,
	},
}

var piiTokens = []string{
	"email", "mail", "national", "nid", "ssn", "id_number",
	"phone", "msisdn", "note", "notes", "comment",
}

var dateTokens = []string{"date", "time", "timestamp", "created", "updated"}

// identifierAliases are field names treated as plain-text record keys:
// never masked, never reformatted as numbers.
var identifierAliases = []string{
	"id", "tx_id", "txn_id", "txid", "transaction_id", "txn",
	"user_id", "customer_id", "client_id", "userid", "customerid", "clientid",
}

// Classify assigns a category to a field given its name and a sample of
// its values. Pure and deterministic: the same inputs always yield the
// same category.
func Classify(field string, samples []model.Value) model.FieldCategory {
	for _, r := range rules {
		if r.matches(field, samples) {
			return r.category
		}
	}
	return model.CategoryText
}

// SensitiveKindOf infers the masking sub-kind for a sensitive field from
// its name. Unrecognized sensitive names fall back to national-ID style
// prefix masking.
func SensitiveKindOf(field string) model.SensitiveKind {
	name := strings.ToLower(field)
	switch {
	case strings.Contains(name, "email") || strings.Contains(name, "mail"):
		return model.KindEmail
	case strings.Contains(name, "phone") || strings.Contains(name, "msisdn"):
		return model.KindPhone
	case strings.Contains(name, "note") || strings.Contains(name, "comment"):
		return model.KindNotes
	default:
		return model.KindNationalID
	}
}

func isIdentifierName(field string) bool {
	name := strings.ToLower(strings.TrimSpace(field))
	for _, alias := range identifierAliases {
		if name == alias {
			return true
		}
	}
	return false
}

func hasToken(field string, tokens []string) bool {
	name := strings.ToLower(field)
	for _, tok := range tokens {
		if strings.Contains(name, tok) {
			return true
		}
	}
	return false
}

// majority reports whether strictly more than half of the non-null samples
// satisfy pred. Empty or all-null samples never form a majority, so such
// fields default to plain text.
func majority(samples []model.Value, pred func(model.Value) bool) bool {
	total := 0
	hits := 0
	for _, v := range samples {
		if model.IsNull(v) {
			continue
		}
		total++
		if pred(v) {
			hits++
		}
	}
	if total == 0 {
		return false
	}
	return hits*2 > total
}
