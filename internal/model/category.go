package model

// FieldCategory is the semantic category assigned to a field for one run.
// A field has exactly one category per run; assignment is deterministic
// given the same sample.
type FieldCategory string

const (
	// CategoryDate marks fields holding date-time values.
	CategoryDate FieldCategory = "DATE"
	// CategorySensitiveID marks PII fields that must be masked.
	CategorySensitiveID FieldCategory = "SENSITIVE_ID"
	// CategoryNumeric marks fields holding base-10 numbers.
	CategoryNumeric FieldCategory = "NUMERIC"
	// CategoryText is the default passthrough category.
	CategoryText FieldCategory = "TEXT"
)

// SensitiveKind refines CategorySensitiveID into the masking rule to apply.
type SensitiveKind string

const (
	// KindNone applies to fields that are not sensitive.
	KindNone SensitiveKind = ""
	// KindEmail masks the local part of an address.
	KindEmail SensitiveKind = "email"
	// KindNationalID keeps a short prefix and masks the rest.
	KindNationalID SensitiveKind = "national_id"
	// KindPhone masks every digit.
	KindPhone SensitiveKind = "phone"
	// KindNotes scrubs digits and embedded addresses from free text.
	KindNotes SensitiveKind = "notes"
)
