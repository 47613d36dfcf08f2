// Package loader parses JSON source files that may be a single object, an
// array of objects, newline-delimited objects, or partially corrupt. It
// recovers whatever valid records it can and surfaces a count of skipped
// entries for observability.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Fallou236/blackbox-cleaner/internal/common"
	"github.com/Fallou236/blackbox-cleaner/internal/model"
)

// object is a decoded JSON object that remembers its key order, so the
// first-seen column ordering of the output matches the source text.
// encoding/json maps would lose it.
type object struct {
	keys []string
	vals map[string]any
}

// Load parses one source file into a record set. The second return is the
// number of skipped lines or entries. It fails only when the file contains
// zero parseable records; an explicit empty JSON array is a valid load of
// zero records.
func Load(ctx context.Context, path string) (model.RecordSet, int, error) {
	if err := ctx.Err(); err != nil {
		return model.RecordSet{}, 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.RecordSet{}, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	if set, skipped, ok := parseWhole(data); ok {
		return set, skipped, nil
	}

	set, skipped := parseLines(data)
	if set.Empty() {
		return model.RecordSet{}, skipped, fmt.Errorf("%s: %w", path, common.ErrNoRecords)
	}
	return set, skipped, nil
}

// parseWhole attempts to read the file as a single JSON value. An object
// wrapping a list (e.g. {"data": [...]}) unwraps to the first list-valued
// key; a bare object is a single record. The third return is false when
// the file is not one JSON value, so the caller falls back to NDJSON.
func parseWhole(data []byte) (model.RecordSet, int, bool) {
	dec := newDecoder(bytes.NewReader(data))

	v, err := decodeValue(dec)
	if err != nil {
		return model.RecordSet{}, 0, false
	}
	// Trailing content means this is NDJSON, not a single value.
	if _, err := dec.Token(); err != io.EOF {
		return model.RecordSet{}, 0, false
	}

	switch t := v.(type) {
	case []any:
		return recordsFromList(t)
	case *object:
		for _, k := range t.keys {
			if list, ok := t.vals[k].([]any); ok {
				return recordsFromList(list)
			}
		}
		var set model.RecordSet
		rec, order := flatten(t)
		set.Add(rec, order)
		return set, 0, true
	default:
		// A scalar file has no records; let the NDJSON path report it.
		return model.RecordSet{}, 0, false
	}
}

// parseLines parses each line independently as JSON. Unparseable lines and
// parsed non-object entries are skipped and counted, never fatal. Source
// order of the surviving records is preserved.
func parseLines(data []byte) (model.RecordSet, int) {
	var set model.RecordSet
	skipped := 0

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		dec := newDecoder(strings.NewReader(line))
		v, err := decodeValue(dec)
		if err != nil {
			skipped++
			continue
		}
		obj, ok := v.(*object)
		if !ok {
			skipped++
			continue
		}
		rec, order := flatten(obj)
		set.Add(rec, order)
	}

	return set, skipped
}

func recordsFromList(list []any) (model.RecordSet, int, bool) {
	var set model.RecordSet
	skipped := 0
	for _, entry := range list {
		obj, ok := entry.(*object)
		if !ok {
			skipped++
			continue
		}
		rec, order := flatten(obj)
		set.Add(rec, order)
	}
	return set, skipped, true
}

func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// decodeValue reads one JSON value token by token, returning *object for
// objects (key order intact), []any for arrays, and plain scalars
// otherwise.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (any, error) {
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := &object{vals: make(map[string]any)}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			if _, seen := obj.vals[key]; !seen {
				obj.keys = append(obj.keys, key)
			}
			obj.vals[key] = val
		}
		// Consume the closing brace.
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil

	case '[':
		var list []any
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil

	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// flatten turns a decoded object into a flat record. Nested objects are
// flattened with dotted field names; arrays are kept as their JSON text
// since the output coerces every cell to text anyway.
func flatten(obj *object) (model.Record, []string) {
	rec := make(model.Record, len(obj.keys))
	var order []string
	flattenInto(obj, "", rec, &order)
	return rec, order
}

func flattenInto(obj *object, prefix string, rec model.Record, order *[]string) {
	for _, k := range obj.keys {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch v := obj.vals[k].(type) {
		case *object:
			flattenInto(v, name, rec, order)
		case []any:
			rec[name] = renderJSON(v)
			*order = append(*order, name)
		default:
			rec[name] = v
			*order = append(*order, name)
		}
	}
}

func renderJSON(v any) string {
	b, err := json.Marshal(normalize(v))
	if err != nil {
		return ""
	}
	return string(b)
}

// normalize converts *object values back to plain maps for rendering.
func normalize(v any) any {
	switch t := v.(type) {
	case *object:
		m := make(map[string]any, len(t.keys))
		for k, val := range t.vals {
			m[k] = normalize(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
