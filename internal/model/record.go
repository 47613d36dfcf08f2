// Package model defines the core domain types used throughout the application.
package model

import (
	"encoding/json"
	"strings"
)

// Value is a raw scalar decoded from an input file. Concrete types are
// string, json.Number, bool, or nil for JSON null / absent fields.
type Value any

// Record maps field names to raw values for one source entity
// (one user or one transaction).
type Record map[string]Value

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RecordSet is an ordered sequence of records plus the first-seen order of
// their field names. Field presence is not guaranteed uniform across records.
type RecordSet struct {
	Records []Record
	Fields  []string
}

// Add appends a record, registering any field names not seen before.
// orderedFields preserves the source ordering of the record's keys.
func (s *RecordSet) Add(r Record, orderedFields []string) {
	s.Records = append(s.Records, r)
	for _, f := range orderedFields {
		if !s.HasField(f) {
			s.Fields = append(s.Fields, f)
		}
	}
}

// HasField reports whether the set has registered the given field name.
func (s *RecordSet) HasField(name string) bool {
	for _, f := range s.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Len returns the number of records in the set.
func (s *RecordSet) Len() int {
	return len(s.Records)
}

// Empty reports whether the set contains no records.
func (s *RecordSet) Empty() bool {
	return len(s.Records) == 0
}

// Sample returns up to max non-null values of the named field,
// in record order.
func (s *RecordSet) Sample(field string, max int) []Value {
	var out []Value
	for _, r := range s.Records {
		if v, ok := r[field]; ok && v != nil {
			out = append(out, v)
			if len(out) >= max {
				break
			}
		}
	}
	return out
}

// IsNull reports whether a value represents a missing cell.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Text renders a raw value as its plain text representation.
// Nulls render as the empty string.
func Text(v Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		// Non-scalar leftovers (flattened arrays) are stored as JSON text.
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
