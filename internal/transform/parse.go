package transform

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Fallou236/blackbox-cleaner/internal/model"
)

// dateLayouts are tried in order. Month-first slash layouts come before
// day-first so that ambiguous dates resolve the same way every run.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"2 Jan 2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
}

// epoch timestamps above this value are interpreted as milliseconds.
const epochMillisThreshold = 1e12

// minSniffEpoch bounds how small a bare number may be and still count as a
// date during classification sampling (2001-09-09 in seconds). Without the
// floor every small integer column would look like a date column.
const minSniffEpoch = 1e9

// ParseDate attempts a tolerant multi-layout parse of a raw value as a
// date-time. Numeric values are treated as Unix epochs, milliseconds when
// large enough. All results are in UTC.
func ParseDate(v model.Value) (time.Time, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return epochToTime(f), true
	case string:
		return parseDateString(strings.TrimSpace(t))
	default:
		return time.Time{}, false
	}
}

// SniffDate is ParseDate restricted for classification sampling: bare
// numbers only count as dates when they fall in a plausible epoch range.
func SniffDate(v model.Value) bool {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return false
		}
		return f >= minSniffEpoch
	case string:
		s := strings.TrimSpace(t)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f >= minSniffEpoch
		}
		_, ok := parseDateString(s)
		return ok
	default:
		return false
	}
}

func parseDateString(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	// Bare numeric strings are epoch timestamps.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return epochToTime(f), true
	}
	return time.Time{}, false
}

func epochToTime(f float64) time.Time {
	if f > epochMillisThreshold {
		f /= 1000
	}
	sec := int64(f)
	nsec := int64(math.Round((f - float64(sec)) * 1e9))
	return time.Unix(sec, nsec).UTC()
}

// ParseNumber attempts to parse a raw value as a base-10 number,
// tolerating comma thousands separators. Booleans are not numbers.
func ParseNumber(v model.Value) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
